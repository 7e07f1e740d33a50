package sensitivity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTiers_CanonicalOrder(t *testing.T) {
	want := []ScopeTier{TierNoScope, TierRedDot, Tier2x, Tier3x, Tier4x, Tier6x, Tier8x}
	assert.Equal(t, want, Tiers())

	labels := make([]string, 0, len(want))
	for _, tier := range Tiers() {
		labels = append(labels, tier.Label())
	}
	assert.Equal(t, []string{"No Scope", "Red Dot", "2x", "3x", "4x", "6x", "8x"}, labels)
}

func TestScopeSensitivity_GetSet(t *testing.T) {
	var s ScopeSensitivity
	for i, tier := range Tiers() {
		require.True(t, s.Set(tier, i+1))
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7}, s.Values())

	v, ok := s.Get(Tier6x)
	assert.True(t, ok)
	assert.Equal(t, 6, v)

	_, ok = s.Get(ScopeTier("16x"))
	assert.False(t, ok)
	assert.False(t, s.Set(ScopeTier("16x"), 1))
}

func TestScopeSensitivity_JSONKeys(t *testing.T) {
	s := ScopeSensitivity{NoScope: 95, RedDot: 85, X2: 75, X3: 65, X4: 55, X6: 45, X8: 35}

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"no_scope":95,"red_dot":85,"2x":75,"3x":65,"4x":55,"6x":45,"8x":35}`, string(data))
}

func TestScopeSensitivity_InRange(t *testing.T) {
	assert.True(t, Uniform(MinValue).InRange())
	assert.True(t, Uniform(MaxValue).InRange())

	s := Uniform(100)
	s.X8 = 0
	assert.False(t, s.InRange())

	s = Uniform(100)
	s.NoScope = 301
	assert.False(t, s.InRange())
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 1, Clamp(-3))
	assert.Equal(t, 1, Clamp(0))
	assert.Equal(t, 150, Clamp(150))
	assert.Equal(t, 300, Clamp(301))
}

func TestParseGame(t *testing.T) {
	for _, g := range Games() {
		parsed, err := ParseGame(string(g))
		require.NoError(t, err)
		assert.Equal(t, g, parsed)
	}

	for _, bad := range []string{"", "bgmi", "FreeFire", "free fire", "Valorant"} {
		_, err := ParseGame(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestGames_ReturnsCopy(t *testing.T) {
	gs := Games()
	gs[0] = "mutated"
	assert.Equal(t, GameBGMI, Games()[0])
}

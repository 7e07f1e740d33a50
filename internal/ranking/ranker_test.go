package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sensifinder/sensifinder-server/internal/domain"
	"github.com/sensifinder/sensifinder-server/internal/sensitivity"
)

func profile(id string, game sensitivity.Game, device, code string, upvotes int) domain.SensitivityProfile {
	return domain.SensitivityProfile{
		ID:         id,
		Game:       game,
		DeviceName: device,
		ShareCode:  code,
		Camera:     sensitivity.Uniform(100),
		ADS:        sensitivity.Uniform(100),
		Upvotes:    upvotes,
	}
}

func ids(ps []domain.SensitivityProfile) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

func fixture() []domain.SensitivityProfile {
	return []domain.SensitivityProfile{
		profile("a", sensitivity.GameBGMI, "iPhone 13 Pro", "7245913680", 10),
		profile("b", sensitivity.GameFreeFire, "Samsung Galaxy S24", "FF-22", 50),
		profile("c", sensitivity.GameBGMI, "Redmi Note 10 Pro", "5566", 30),
		profile("d", sensitivity.GameCOD, "OnePlus 12", "COD-9", 30),
	}
}

func TestRank_SortsByUpvotesDescending(t *testing.T) {
	got := Rank(fixture(), Options{})
	assert.Equal(t, []string{"b", "c", "d", "a"}, ids(got))
}

func TestRank_GameFilter(t *testing.T) {
	game := sensitivity.GameBGMI
	got := Rank(fixture(), Options{Game: &game})
	assert.Equal(t, []string{"c", "a"}, ids(got))

	for _, p := range got {
		assert.Equal(t, sensitivity.GameBGMI, p.Game)
	}
}

func TestRank_GameFilterAcrossAllGames(t *testing.T) {
	in := []domain.SensitivityProfile{
		profile("bgmi-1", sensitivity.GameBGMI, "iPhone 13 Pro", "7245913680", 156),
		profile("cod-1", sensitivity.GameCOD, "OnePlus 12", "COD2024PRO", 54),
		profile("pubg-1", sensitivity.GamePUBG, "iPad Pro 12.9", "5567891234", 45),
		profile("ff-1", sensitivity.GameFreeFire, "Samsung Galaxy S24", "FF9283746501", 72),
		profile("cod-2", sensitivity.GameCOD, "Pixel 8", "COD-77", 120),
		profile("cod-3", sensitivity.GameCOD, "Poco F5", "COD-12", 3),
		profile("pubg-2", sensitivity.GamePUBG, "Redmi Note 10 Pro", "8834521907", 89),
	}

	game := sensitivity.GameCOD
	got := Rank(in, Options{Game: &game})
	assert.Equal(t, []string{"cod-2", "cod-1", "cod-3"}, ids(got))
	for i, p := range got {
		assert.Equal(t, sensitivity.GameCOD, p.Game)
		if i > 0 {
			assert.GreaterOrEqual(t, got[i-1].Upvotes, p.Upvotes)
		}
	}

	game = sensitivity.GamePUBG
	assert.Equal(t, []string{"pubg-2", "pubg-1"}, ids(Rank(in, Options{Game: &game})))
}

func TestRank_StableForEqualUpvotes(t *testing.T) {
	in := []domain.SensitivityProfile{
		profile("x", sensitivity.GameBGMI, "A", "", 5),
		profile("y", sensitivity.GameBGMI, "B", "", 5),
		profile("z", sensitivity.GameBGMI, "C", "", 5),
	}
	assert.Equal(t, []string{"x", "y", "z"}, ids(Rank(in, Options{})))
}

func TestRank_Query(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "device substring ignores case", query: "iphone", want: []string{"a"}},
		{name: "share code only", query: "cod-9", want: []string{"d"}},
		{name: "matches either field", query: "pro", want: []string{"c", "a"}},
		{name: "surrounding whitespace trimmed", query: "  galaxy  ", want: []string{"b"}},
		{name: "blank query is no filter", query: "   ", want: []string{"b", "c", "d", "a"}},
		{name: "no match", query: "pixel", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Rank(fixture(), Options{Query: tt.query})
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestRank_GameAndQuery(t *testing.T) {
	game := sensitivity.GameCOD
	got := Rank(fixture(), Options{Game: &game, Query: "pro"})
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRank_EmptyInput(t *testing.T) {
	got := Rank(nil, Options{})
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRank_EmptyResults(t *testing.T) {
	got := Rank([]domain.SensitivityProfile{}, Options{Game: nil, Query: ""})
	require.NotNil(t, got)
	assert.Empty(t, got)

	game := sensitivity.GameBGMI
	got = Rank(fixture(), Options{Game: &game, Query: "nonexistent-device-xyz"})
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRank_DoesNotMutateInput(t *testing.T) {
	in := fixture()
	_ = Rank(in, Options{})
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(in))
}

func TestTop(t *testing.T) {
	ranked := Rank(fixture(), Options{})

	assert.Equal(t, []string{"b", "c"}, ids(Top(ranked, 2)))
	assert.Len(t, Top(ranked, 0), 4)
	assert.Len(t, Top(ranked, -1), 4)
	assert.Len(t, Top(ranked, 10), 4)
}

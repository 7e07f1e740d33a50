package sensitivity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertValue_Scenarios(t *testing.T) {
	table := DefaultTable()

	tests := []struct {
		name  string
		value int
		from  Game
		to    Game
		want  int
	}{
		{"bgmi to free fire", 100, GameBGMI, GameFreeFire, 75},
		{"bgmi to cod clamps high", 300, GameBGMI, GameCOD, 300},
		{"cod to free fire rounds up to floor", 1, GameCOD, GameFreeFire, 1},
		{"bgmi to pubg same engine", 137, GameBGMI, GamePUBG, 137},
		{"free fire to bgmi", 100, GameFreeFire, GameBGMI, 133},
		{"cod to bgmi", 150, GameCOD, GameBGMI, 120},
		{"free fire to cod clamps", 200, GameFreeFire, GameCOD, 300},
		{"half rounds away from zero", 2, GameBGMI, GameFreeFire, 2},
		{"half rounds away from zero cod", 10, GameBGMI, GameCOD, 13},
		{"below half rounds down", 5, GameCOD, GameFreeFire, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConvertValue(table, tt.value, tt.from, tt.to))
		})
	}
}

func TestConvertValue_IdentityIsExact(t *testing.T) {
	table := DefaultTable()

	for _, g := range Games() {
		for _, v := range []int{1, 2, 99, 100, 299, 300} {
			assert.Equal(t, v, ConvertValue(table, v, g, g), "game=%s value=%d", g, v)
		}
		// Same-game conversion bypasses clamping entirely.
		assert.Equal(t, 0, ConvertValue(table, 0, g, g))
		assert.Equal(t, 1000, ConvertValue(table, 1000, g, g))
	}
}

func TestConvertValue_RangeInvariant(t *testing.T) {
	table := DefaultTable()

	for _, from := range Games() {
		for _, to := range Games() {
			for v := MinValue; v <= MaxValue; v++ {
				got := ConvertValue(table, v, from, to)
				if got < MinValue || got > MaxValue {
					t.Fatalf("ConvertValue(%d, %s, %s) = %d, out of range", v, from, to, got)
				}
			}
		}
	}
}

func TestConvertValue_OutOfRangeInputIsClamped(t *testing.T) {
	table := DefaultTable()

	assert.Equal(t, MinValue, ConvertValue(table, -50, GameBGMI, GameCOD))
	assert.Equal(t, MinValue, ConvertValue(table, 0, GameBGMI, GameFreeFire))
	assert.Equal(t, MaxValue, ConvertValue(table, 1000, GameCOD, GameFreeFire))
}

func TestConvertValue_ExtremeInputIsClamped(t *testing.T) {
	table := DefaultTable()

	// value * ratio exceeds the int range here.
	assert.Equal(t, MaxValue, ConvertValue(table, math.MaxInt, GameBGMI, GameCOD))
	assert.Equal(t, MaxValue, ConvertValue(table, 8e18, GameBGMI, GameCOD))
	assert.Equal(t, MinValue, ConvertValue(table, math.MinInt, GameBGMI, GameCOD))
	assert.Equal(t, MaxValue, ConvertValue(table, math.MaxInt, GameCOD, GameFreeFire))

	assert.Equal(t, MaxValue, ConvertDPI(math.MaxInt, 800, 400))
	assert.Equal(t, MinValue, ConvertDPI(math.MinInt, 800, 400))
}

func TestConvertValue_UnknownGameFallsBackToIdentityRatio(t *testing.T) {
	table := DefaultTable()

	assert.Equal(t, 150, ConvertValue(table, 150, Game("Valorant"), GameBGMI))
	assert.Equal(t, 150, ConvertValue(table, 150, GameBGMI, Game("bgmi")))
	// Identity ratio still rounds and clamps for distinct identifiers.
	assert.Equal(t, MaxValue, ConvertValue(table, 500, Game("Valorant"), GameBGMI))
}

func TestConvertValue_NilTable(t *testing.T) {
	assert.Equal(t, 42, ConvertValue(nil, 42, GameBGMI, GameCOD))
}

func TestConvertValue_Deterministic(t *testing.T) {
	table := DefaultTable()

	first := ConvertValue(table, 173, GameFreeFire, GameCOD)
	for range 100 {
		require.Equal(t, first, ConvertValue(table, 173, GameFreeFire, GameCOD))
	}
}

func TestConvertVector_PreservesShape(t *testing.T) {
	table := DefaultTable()
	in := ScopeSensitivity{NoScope: 100, RedDot: 90, X2: 80, X3: 70, X4: 60, X6: 50, X8: 40}

	out := ConvertVector(table, in, GameBGMI, GameFreeFire)

	assert.Equal(t, ScopeSensitivity{NoScope: 75, RedDot: 68, X2: 60, X3: 53, X4: 45, X6: 38, X8: 30}, out)
	for _, tier := range Tiers() {
		v, ok := in.Get(tier)
		require.True(t, ok)
		got, ok := out.Get(tier)
		require.True(t, ok)
		assert.Equal(t, ConvertValue(table, v, GameBGMI, GameFreeFire), got, "tier %s", tier)
	}
}

func TestConvertVector_DoesNotMutateInput(t *testing.T) {
	in := Uniform(200)
	_ = ConvertVector(DefaultTable(), in, GameBGMI, GameCOD)
	assert.Equal(t, Uniform(200), in)
}

func TestConvertVector_SameGame(t *testing.T) {
	in := ScopeSensitivity{NoScope: 1, RedDot: 300, X2: 5, X3: 6, X4: 7, X6: 8, X8: 9}
	assert.Equal(t, in, ConvertVector(DefaultTable(), in, GameCOD, GameCOD))
}

func TestConvertDPI(t *testing.T) {
	tests := []struct {
		name    string
		value   int
		fromDPI int
		toDPI   int
		want    int
	}{
		{"same dpi", 120, 400, 400, 120},
		{"double target dpi halves", 120, 400, 800, 60},
		{"half target dpi doubles", 120, 800, 400, 240},
		{"clamps high", 200, 800, 400, 300},
		{"clamps low", 1, 100, 1000, 1},
		{"zero source dpi is passthrough", 120, 0, 400, 120},
		{"negative target dpi is passthrough", 120, 400, -1, 120},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConvertDPI(tt.value, tt.fromDPI, tt.toDPI))
		})
	}
}

func TestConverter(t *testing.T) {
	c := NewConverter(nil)
	assert.Same(t, DefaultTable(), c.Table())
	assert.Equal(t, 75, c.Value(100, GameBGMI, GameFreeFire))
	assert.Equal(t, Uniform(75), c.Vector(Uniform(100), GamePUBG, GameFreeFire))

	custom, err := NewTable(map[Game]map[Game]float64{GameBGMI: {GameCOD: 2}})
	require.NoError(t, err)
	c = NewConverter(custom)
	assert.Equal(t, 200, c.Value(100, GameBGMI, GameCOD))
	assert.Equal(t, 100, c.Value(100, GameBGMI, GameFreeFire))
}

func TestTable_Ratio(t *testing.T) {
	table := DefaultTable()

	for _, g := range Games() {
		assert.Equal(t, 1.0, table.Ratio(g, g))
	}
	assert.Equal(t, 0.75, table.Ratio(GameBGMI, GameFreeFire))
	assert.Equal(t, 1.33, table.Ratio(GameFreeFire, GameBGMI))
	assert.Equal(t, 0.6, table.Ratio(GameCOD, GameFreeFire))
	assert.Equal(t, 1.0, table.Ratio(Game("Valorant"), GameCOD))

	// Directions are authored independently.
	assert.NotEqual(t, 1.0, table.Ratio(GameBGMI, GameFreeFire)*table.Ratio(GameFreeFire, GameBGMI))
}

func TestNewTable_SelfPairIsAlwaysIdentity(t *testing.T) {
	table, err := NewTable(map[Game]map[Game]float64{
		GameBGMI: {GameBGMI: 2.5, GameCOD: 1.1},
	})
	require.NoError(t, err)

	assert.Equal(t, 1.0, table.Ratio(GameBGMI, GameBGMI))
	assert.False(t, table.Has(GameBGMI, GameBGMI))
	assert.True(t, table.Has(GameBGMI, GameCOD))
	assert.Equal(t, 300, ConvertValue(table, 300, GameBGMI, GameBGMI))
}

func TestNewTable_RejectsInvalidRatios(t *testing.T) {
	for _, r := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err := NewTable(map[Game]map[Game]float64{GameBGMI: {GameCOD: r}})
		assert.Error(t, err, "ratio %v", r)
	}
}

func TestTable_Pairs(t *testing.T) {
	pairs := DefaultTable().Pairs()
	require.Len(t, pairs, 12)

	assert.Equal(t, Pair{From: GameBGMI, To: GamePUBG, Ratio: 1.0}, pairs[0])
	assert.Equal(t, Pair{From: GameCOD, To: GameFreeFire, Ratio: 0.6}, pairs[len(pairs)-1])
	for _, p := range pairs {
		assert.NotEqual(t, p.From, p.To)
	}

	var nilTable *Table
	assert.Empty(t, nilTable.Pairs())
}

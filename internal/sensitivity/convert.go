package sensitivity

import "math"

// ConvertValue rescales value from one game's scale to another's.
//
// Same-game conversion returns value untouched, bypassing rounding and
// clamping. Otherwise the value is multiplied by table.Ratio(from, to),
// rounded half away from zero and clamped into [MinValue, MaxValue].
func ConvertValue(table *Table, value int, from, to Game) int {
	if from == to {
		return value
	}
	return roundClamp(float64(value) * table.Ratio(from, to))
}

// ConvertVector converts each tier of vec independently.
func ConvertVector(table *Table, vec ScopeSensitivity, from, to Game) ScopeSensitivity {
	return vec.Map(func(_ ScopeTier, v int) int {
		return ConvertValue(table, v, from, to)
	})
}

// ConvertDPI rescales a value between two touch DPIs.
// A non-positive DPI on either side leaves the value unchanged.
func ConvertDPI(value, fromDPI, toDPI int) int {
	if fromDPI <= 0 || toDPI <= 0 {
		return value
	}
	return roundClamp(float64(value) * float64(fromDPI) / float64(toDPI))
}

// roundClamp rounds raw and limits it to [MinValue, MaxValue] before the
// int conversion, which would overflow for products beyond the int range.
func roundClamp(raw float64) int {
	return int(math.Min(MaxValue, math.Max(MinValue, math.Round(raw))))
}

// Converter binds a ratio table so callers can hold a single value.
// The zero Converter uses an empty table, converting every pair as identity.
type Converter struct {
	table *Table
}

// NewConverter returns a converter over table. A nil table selects the
// canonical DefaultTable.
func NewConverter(table *Table) Converter {
	if table == nil {
		table = DefaultTable()
	}
	return Converter{table: table}
}

// Table returns the ratio table in use.
func (c Converter) Table() *Table {
	return c.table
}

// Value converts a single value.
func (c Converter) Value(value int, from, to Game) int {
	return ConvertValue(c.table, value, from, to)
}

// Vector converts a full 7-tier vector.
func (c Converter) Vector(vec ScopeSensitivity, from, to Game) ScopeSensitivity {
	return ConvertVector(c.table, vec, from, to)
}

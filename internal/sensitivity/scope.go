package sensitivity

// Value bounds for a stored or converted sensitivity value.
const (
	MinValue = 1
	MaxValue = 300

	// DefaultValue is what the data-entry layer fills in for a tier the
	// user left blank. Read paths never apply it.
	DefaultValue = 100
)

// ScopeTier is one of the optical-zoom levels that carries its own sensitivity.
type ScopeTier string

// Scope tiers in canonical order.
const (
	TierNoScope ScopeTier = "no_scope"
	TierRedDot  ScopeTier = "red_dot"
	Tier2x      ScopeTier = "2x"
	Tier3x      ScopeTier = "3x"
	Tier4x      ScopeTier = "4x"
	Tier6x      ScopeTier = "6x"
	Tier8x      ScopeTier = "8x"
)

var tiers = [...]ScopeTier{TierNoScope, TierRedDot, Tier2x, Tier3x, Tier4x, Tier6x, Tier8x}

var tierLabels = map[ScopeTier]string{
	TierNoScope: "No Scope",
	TierRedDot:  "Red Dot",
	Tier2x:      "2x",
	Tier3x:      "3x",
	Tier4x:      "4x",
	Tier6x:      "6x",
	Tier8x:      "8x",
}

// Tiers returns the 7 scope tiers in display order.
func Tiers() []ScopeTier {
	out := make([]ScopeTier, len(tiers))
	copy(out, tiers[:])
	return out
}

// Label returns the human-readable name of the tier.
func (t ScopeTier) Label() string {
	if l, ok := tierLabels[t]; ok {
		return l
	}
	return string(t)
}

// ScopeSensitivity is a fixed-shape record with one value per scope tier.
type ScopeSensitivity struct {
	NoScope int `json:"no_scope"`
	RedDot  int `json:"red_dot"`
	X2      int `json:"2x"`
	X3      int `json:"3x"`
	X4      int `json:"4x"`
	X6      int `json:"6x"`
	X8      int `json:"8x"`
}

// Uniform returns a vector with every tier set to v.
func Uniform(v int) ScopeSensitivity {
	return ScopeSensitivity{NoScope: v, RedDot: v, X2: v, X3: v, X4: v, X6: v, X8: v}
}

// ptr returns the field backing tier t, or nil for an unknown tier.
func (s *ScopeSensitivity) ptr(t ScopeTier) *int {
	switch t {
	case TierNoScope:
		return &s.NoScope
	case TierRedDot:
		return &s.RedDot
	case Tier2x:
		return &s.X2
	case Tier3x:
		return &s.X3
	case Tier4x:
		return &s.X4
	case Tier6x:
		return &s.X6
	case Tier8x:
		return &s.X8
	default:
		return nil
	}
}

// Get returns the value for tier t. Unknown tiers report false.
func (s ScopeSensitivity) Get(t ScopeTier) (int, bool) {
	p := s.ptr(t)
	if p == nil {
		return 0, false
	}
	return *p, true
}

// Set stores v for tier t. Unknown tiers are ignored and report false.
func (s *ScopeSensitivity) Set(t ScopeTier, v int) bool {
	p := s.ptr(t)
	if p == nil {
		return false
	}
	*p = v
	return true
}

// Values returns the 7 values in canonical tier order.
func (s ScopeSensitivity) Values() []int {
	return []int{s.NoScope, s.RedDot, s.X2, s.X3, s.X4, s.X6, s.X8}
}

// Map returns a new vector with fn applied to every tier independently.
func (s ScopeSensitivity) Map(fn func(ScopeTier, int) int) ScopeSensitivity {
	var out ScopeSensitivity
	for _, t := range tiers {
		v, _ := s.Get(t)
		out.Set(t, fn(t, v))
	}
	return out
}

// InRange reports whether every value lies within [MinValue, MaxValue].
func (s ScopeSensitivity) InRange() bool {
	for _, v := range s.Values() {
		if v < MinValue || v > MaxValue {
			return false
		}
	}
	return true
}

// Clamp limits v to [MinValue, MaxValue].
func Clamp(v int) int {
	if v < MinValue {
		return MinValue
	}
	if v > MaxValue {
		return MaxValue
	}
	return v
}

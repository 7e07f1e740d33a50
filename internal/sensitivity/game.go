// Package sensitivity holds the sensitivity data model and the cross-game
// conversion engine.
//
// Everything in this package is pure: no I/O and no shared mutable state.
// Values may be used concurrently from any number of goroutines.
package sensitivity

import "fmt"

// Game identifies one of the supported mobile shooters.
type Game string

// Supported games. Wire values match the identifiers users see.
const (
	GameBGMI     Game = "BGMI"
	GamePUBG     Game = "PUBG"
	GameFreeFire Game = "Free Fire"
	GameCOD      Game = "COD"
)

// games is the canonical display order.
var games = [...]Game{GameBGMI, GamePUBG, GameFreeFire, GameCOD}

// Games returns all supported games in canonical order.
func Games() []Game {
	out := make([]Game, len(games))
	copy(out, games[:])
	return out
}

// Valid reports whether g is one of the supported games.
// Matching is exact and case-sensitive.
func (g Game) Valid() bool {
	for _, known := range games {
		if g == known {
			return true
		}
	}
	return false
}

// String implements fmt.Stringer.
func (g Game) String() string {
	return string(g)
}

// ParseGame converts s to a Game, failing for anything outside the closed set.
func ParseGame(s string) (Game, error) {
	g := Game(s)
	if !g.Valid() {
		return "", fmt.Errorf("unknown game %q", s)
	}
	return g, nil
}

package sensitivity

import (
	"bytes"
	_ "embed"
	"fmt"
	"math"
	"slices"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

// Table holds the directed conversion ratio for pairs of games.
//
// Ratio(A, B) is the multiplier taking a value in A's scale to B's scale.
// The table is authored independently in each direction, so
// Ratio(A, B) * Ratio(B, A) need not equal 1.
//
// A Table is immutable once built; a nil *Table behaves as an empty table.
type Table struct {
	ratios map[Game]map[Game]float64
}

// Pair is one explicitly authored ratio.
type Pair struct {
	From  Game    `json:"from"`
	To    Game    `json:"to"`
	Ratio float64 `json:"ratio"`
}

// NewTable builds a table from nested from -> to -> ratio rows.
// Self-pairs in rows are dropped: a game converts to itself at exactly 1.
// Ratios must be finite and positive.
func NewTable(rows map[Game]map[Game]float64) (*Table, error) {
	t := &Table{ratios: make(map[Game]map[Game]float64, len(rows))}
	for from, row := range rows {
		for to, r := range row {
			if from == to {
				continue
			}
			if math.IsNaN(r) || math.IsInf(r, 0) || r <= 0 {
				return nil, fmt.Errorf("ratio %s -> %s: must be a positive finite number, got %v", from, to, r)
			}
			if t.ratios[from] == nil {
				t.ratios[from] = make(map[Game]float64, len(row))
			}
			t.ratios[from][to] = r
		}
	}
	return t, nil
}

// Ratio returns the multiplier for from -> to.
// Self-pairs are always 1. Pairs not in the table, including unknown games,
// are 1 as well: an unknown pair converts as identity rather than failing.
func (t *Table) Ratio(from, to Game) float64 {
	if from == to || t == nil {
		return 1.0
	}
	if r, ok := t.ratios[from][to]; ok {
		return r
	}
	return 1.0
}

// Has reports whether from -> to is explicitly authored.
func (t *Table) Has(from, to Game) bool {
	if t == nil {
		return false
	}
	_, ok := t.ratios[from][to]
	return ok
}

// Pairs lists the authored ratios. Known games come first in canonical order,
// followed by any other games in the order they sort.
func (t *Table) Pairs() []Pair {
	if t == nil {
		return []Pair{}
	}
	order := t.gameOrder()
	pairs := make([]Pair, 0)
	for _, from := range order {
		row := t.ratios[from]
		for _, to := range order {
			if r, ok := row[to]; ok {
				pairs = append(pairs, Pair{From: from, To: to, Ratio: r})
			}
		}
	}
	return pairs
}

// gameOrder returns canonical games plus any extra games named in the table.
func (t *Table) gameOrder() []Game {
	order := Games()
	seen := make(map[Game]bool, len(order))
	for _, g := range order {
		seen[g] = true
	}
	var extra []Game
	for from, row := range t.ratios {
		if !seen[from] {
			seen[from] = true
			extra = append(extra, from)
		}
		for to := range row {
			if !seen[to] {
				seen[to] = true
				extra = append(extra, to)
			}
		}
	}
	slices.Sort(extra)
	return append(order, extra...)
}

// defaultTOML is the canonical ratio table, authored once.
//
//go:embed ratios.toml
var defaultTOML []byte

var defaultTable = sync.OnceValue(func() *Table {
	t, err := ParseTable(defaultTOML)
	if err != nil {
		panic(fmt.Sprintf("embedded ratio table: %v", err))
	}
	return t
})

// DefaultTable returns the canonical ratio table.
func DefaultTable() *Table {
	return defaultTable()
}

// ParseTable decodes a TOML ratio document: each table names a source game
// and each key a target game. Every name must be a supported game and every
// ratio a positive finite number.
func ParseTable(data []byte) (*Table, error) {
	var doc map[string]map[string]float64

	dec := toml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode ratio table: %w", err)
	}
	if len(doc) == 0 {
		return nil, fmt.Errorf("ratio table is empty")
	}

	rows := make(map[Game]map[Game]float64, len(doc))
	for fromName, row := range doc {
		from, err := ParseGame(fromName)
		if err != nil {
			return nil, fmt.Errorf("ratio table [%s]: %w", fromName, err)
		}
		rows[from] = make(map[Game]float64, len(row))
		for toName, r := range row {
			to, err := ParseGame(toName)
			if err != nil {
				return nil, fmt.Errorf("ratio table [%s].%s: %w", fromName, toName, err)
			}
			rows[from][to] = r
		}
	}

	return NewTable(rows)
}

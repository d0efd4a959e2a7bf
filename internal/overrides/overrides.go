// Package overrides stores forced win probabilities for specific matchups.
package overrides

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// ErrInvalidProbability is returned when an override lies outside [0, 1].
var ErrInvalidProbability = errors.New("override probability must be within [0, 1]")

// Pair is an unordered matchup stored in canonical order (First < Second).
type Pair struct {
	First  string
	Second string
}

// NewPair returns the canonical pair for two team names.
func NewPair(a, b string) Pair {
	if a < b {
		return Pair{First: a, Second: b}
	}
	return Pair{First: b, Second: a}
}

// Entry is a single override as supplied by the caller.
type Entry struct {
	Team        string
	Opponent    string
	Probability decimal.Decimal
}

// Map holds overrides keyed by canonical pair. The stored value is the
// probability that Pair.First beats Pair.Second.
type Map struct {
	probs map[Pair]decimal.Decimal
}

// New creates an empty override map with its own storage.
func New() *Map {
	return &Map{probs: make(map[Pair]decimal.Decimal)}
}

// FromEntries builds a map from entries, rejecting out-of-range probabilities.
func FromEntries(entries []Entry) (*Map, error) {
	m := New()
	for _, e := range entries {
		if err := m.Add(e.Team, e.Opponent, e.Probability); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Add records that team beats opponent with probability p.
func (m *Map) Add(team, opponent string, p decimal.Decimal) error {
	if p.IsNegative() || p.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("%w: %s vs %s = %s", ErrInvalidProbability, team, opponent, p)
	}
	pair := NewPair(team, opponent)
	if pair.First == team {
		m.probs[pair] = p
	} else {
		m.probs[pair] = decimal.NewFromInt(1).Sub(p)
	}
	return nil
}

// Remove deletes the override for the matchup, if any.
func (m *Map) Remove(team, opponent string) {
	delete(m.probs, NewPair(team, opponent))
}

// Get returns the probability that team beats opponent, oriented for team.
func (m *Map) Get(team, opponent string) (decimal.Decimal, bool) {
	pair := NewPair(team, opponent)
	p, ok := m.probs[pair]
	if !ok {
		return decimal.Decimal{}, false
	}
	if pair.First == team {
		return p, true
	}
	return decimal.NewFromInt(1).Sub(p), true
}

// Lookup is Get with the consultation recorded in usage. A nil usage is allowed.
func (m *Map) Lookup(team, opponent string, usage *Usage) (decimal.Decimal, bool) {
	if m == nil {
		return decimal.Decimal{}, false
	}
	p, ok := m.Get(team, opponent)
	if ok {
		usage.Consult(NewPair(team, opponent))
	}
	return p, ok
}

// Len returns the number of stored overrides.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.probs)
}

// Pairs returns the stored pairs in canonical order.
func (m *Map) Pairs() []Pair {
	pairs := make([]Pair, 0, len(m.probs))
	for p := range m.probs {
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].First != pairs[j].First {
			return pairs[i].First < pairs[j].First
		}
		return pairs[i].Second < pairs[j].Second
	})
	return pairs
}

// Package ratings holds per-team efficiency ratings normalized to league averages.
package ratings

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// ErrTeamNotRated is returned when a team has no entry in the ratings table.
var ErrTeamNotRated = errors.New("team not found in ratings table")

// Params are the league-wide constants the ratings are normalized against.
type Params struct {
	AvgScoring    decimal.Decimal
	AvgTempo      decimal.Decimal
	ScoringStdDev decimal.Decimal
}

// DefaultParams returns the league averages used when no override is configured.
func DefaultParams() Params {
	return Params{
		AvgScoring:    decimal.RequireFromString("104.6"),
		AvgTempo:      decimal.RequireFromString("67.7"),
		ScoringStdDev: decimal.RequireFromString("11.0"),
	}
}

// Rating is a team's offense and defense as relative deviations from the
// league scoring average, plus its raw tempo.
type Rating struct {
	Offense decimal.Decimal
	Defense decimal.Decimal
	Tempo   decimal.Decimal
}

// Raw is an un-normalized ratings row.
type Raw struct {
	Team    string
	Offense decimal.Decimal
	Defense decimal.Decimal
	Tempo   decimal.Decimal
}

// Normalize converts a raw row into a Rating. A non-zero adjustment shifts raw
// offense up and raw defense down by the same amount before normalizing.
func (p Params) Normalize(raw Raw, adjustment decimal.Decimal) Rating {
	offense := raw.Offense.Add(adjustment)
	defense := raw.Defense.Sub(adjustment)
	return Rating{
		Offense: offense.Div(p.AvgScoring).Sub(decimal.NewFromInt(1)),
		Defense: defense.Div(p.AvgScoring).Sub(decimal.NewFromInt(1)),
		Tempo:   raw.Tempo,
	}
}

// Shift returns a copy of r with offense raised and defense lowered by adj,
// both already expressed in normalized rating units.
func (r Rating) Shift(adj decimal.Decimal) Rating {
	return Rating{
		Offense: r.Offense.Add(adj),
		Defense: r.Defense.Sub(adj),
		Tempo:   r.Tempo,
	}
}

// Equal reports whether two ratings hold the same values.
func (r Rating) Equal(other Rating) bool {
	return r.Offense.Equal(other.Offense) &&
		r.Defense.Equal(other.Defense) &&
		r.Tempo.Equal(other.Tempo)
}

// Table maps a team name to its rating.
type Table map[string]Rating

// NewTable normalizes raw rows, applying any per-team adjustments.
func NewTable(params Params, rows []Raw, adjustments map[string]decimal.Decimal) Table {
	table := make(Table, len(rows))
	for _, row := range rows {
		table[row.Team] = params.Normalize(row, adjustments[row.Team])
	}
	return table
}

// Lookup returns the rating for team or ErrTeamNotRated.
func (t Table) Lookup(team string) (Rating, error) {
	r, ok := t[team]
	if !ok {
		return Rating{}, fmt.Errorf("%w: %s", ErrTeamNotRated, team)
	}
	return r, nil
}

// Teams returns the rated team names in sorted order.
func (t Table) Teams() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns an independent copy of the table.
func (t Table) Clone() Table {
	out := make(Table, len(t))
	for name, r := range t {
		out[name] = r
	}
	return out
}

package tourney

import (
	"github.com/shopspring/decimal"
)

// massPlaces bounds the precision of accumulated probabilities.
const massPlaces = 28

// Slot is one leaf of the bracket: a single team that advances outright, or
// an opening matchup whose winner takes the slot.
type Slot struct {
	Teams []string
}

// Bye returns a slot holding one team.
func Bye(team string) Slot {
	return Slot{Teams: []string{team}}
}

// Matchup returns a slot holding an opening game.
func Matchup(team1, team2 string) Slot {
	return Slot{Teams: []string{team1, team2}}
}

// Distribution maps each team that may occupy a bracket position to the
// probability that it does. Teams keep their insertion order.
type Distribution struct {
	teams []string
	mass  map[string]decimal.Decimal
}

func newDistribution(capacity int) Distribution {
	return Distribution{
		teams: make([]string, 0, capacity),
		mass:  make(map[string]decimal.Decimal, capacity),
	}
}

// Certain returns the distribution in which team occupies the position.
func Certain(team string) Distribution {
	d := newDistribution(1)
	d.add(team, decimal.NewFromInt(1))
	return d
}

func (d *Distribution) add(team string, p decimal.Decimal) {
	current, ok := d.mass[team]
	if !ok {
		d.teams = append(d.teams, team)
	}
	d.mass[team] = current.Add(p)
}

// Teams returns the teams in the distribution.
func (d Distribution) Teams() []string {
	return append([]string(nil), d.teams...)
}

// Prob returns the probability mass for team, zero when absent.
func (d Distribution) Prob(team string) decimal.Decimal {
	return d.mass[team]
}

// Total returns the summed mass.
func (d Distribution) Total() decimal.Decimal {
	total := decimal.Zero
	for _, team := range d.teams {
		total = total.Add(d.mass[team])
	}
	return total
}

// Len returns the number of teams in the distribution.
func (d Distribution) Len() int {
	return len(d.teams)
}

func (d Distribution) round() Distribution {
	for team, p := range d.mass {
		d.mass[team] = p.Round(massPlaces)
	}
	return d
}

// Outcome is a resolved bracket position held by exactly one team.
type Outcome struct {
	Team string
}

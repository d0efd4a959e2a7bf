package tourney

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/bracket-value/internal/overrides"
	"github.com/yourusername/bracket-value/internal/ratings"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func rating(offense, defense, tempo string) ratings.Rating {
	return ratings.Rating{Offense: d(offense), Defense: d(defense), Tempo: d(tempo)}
}

func eightTeamRatings() ratings.Table {
	return ratings.Table{
		"Arizona":   rating("0.12", "-0.08", "70.1"),
		"Baylor":    rating("0.10", "-0.06", "66.3"),
		"Creighton": rating("0.08", "-0.02", "68.0"),
		"Duke":      rating("0.11", "-0.07", "69.4"),
		"Furman":    rating("0.02", "0.01", "65.2"),
		"Gonzaga":   rating("0.13", "-0.05", "71.8"),
		"Houston":   rating("0.06", "-0.10", "63.0"),
		"Iona":      rating("-0.01", "0.03", "67.5"),
	}
}

func eightTeamSlots() []Slot {
	return []Slot{
		Bye("Arizona"), Bye("Iona"),
		Bye("Creighton"), Bye("Furman"),
		Bye("Duke"), Bye("Baylor"),
		Bye("Gonzaga"), Bye("Houston"),
	}
}

func newTestTournament(t *testing.T, opts Options) *Tournament {
	t.Helper()
	tour, err := New(opts)
	require.NoError(t, err)
	return tour
}

func overrideMap(t *testing.T, entries ...overrides.Entry) *overrides.Map {
	t.Helper()
	m, err := overrides.FromEntries(entries)
	require.NoError(t, err)
	return m
}

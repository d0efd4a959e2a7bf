package tourney

import "github.com/shopspring/decimal"

// Game is a matchup whose result is not yet fixed by an override.
type Game struct {
	// Round is the scored round the winner earns points for. Opening games
	// are played before round 0 and earn nothing.
	Round   int
	Opening bool
	Team1   string
	Team2   string
}

// PendingGames lists the games that can currently be played: both teams are
// known and no override of exactly 0 or 1 already decides the result.
// Decided games advance their winner; undecided ones block later rounds.
func (t *Tournament) PendingGames() []Game {
	var games []Game

	known := make([]string, len(t.slots))
	for i, slot := range t.slots {
		if len(slot.Teams) == 1 {
			known[i] = slot.Teams[0]
			continue
		}
		team1, team2 := slot.Teams[0], slot.Teams[1]
		if winner, ok := t.decided(team1, team2); ok {
			known[i] = winner
			continue
		}
		games = append(games, Game{Opening: true, Team1: team1, Team2: team2})
	}

	for round := 0; len(known) > 1; round++ {
		next := make([]string, len(known)/2)
		for i := range next {
			team1, team2 := known[2*i], known[2*i+1]
			if team1 == "" || team2 == "" {
				continue
			}
			if winner, ok := t.decided(team1, team2); ok {
				next[i] = winner
				continue
			}
			games = append(games, Game{Round: round, Team1: team1, Team2: team2})
		}
		known = next
	}
	return games
}

func (t *Tournament) decided(team1, team2 string) (string, bool) {
	p, ok := t.overrides.Get(team1, team2)
	if !ok {
		return "", false
	}
	if p.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return team1, true
	}
	if p.IsZero() {
		return team2, true
	}
	return "", false
}

package tourney

import (
	"fmt"
	"math/bits"
	"math/rand"

	"github.com/shopspring/decimal"

	"github.com/yourusername/bracket-value/internal/overrides"
)

// strategy resolves games over a state type S. The expected-value strategy
// works on full distributions, the simulated one on single drawn outcomes.
type strategy[S any] interface {
	leaf(slot Slot) (S, error)
	play(a, b S) (S, error)
	credit(s S, points decimal.Decimal, scores TeamScore)
}

// roundsFor returns log2(n), or ErrBracketSize when n is not a power of two.
func roundsFor(n int) (int, error) {
	if n <= 0 || n&(n-1) != 0 {
		return 0, fmt.Errorf("%w: got %d slots", ErrBracketSize, n)
	}
	return bits.TrailingZeros(uint(n)), nil
}

// propagate halves the list of positions each round until one remains,
// crediting every parent with that round's points.
func propagate[S any](slots []Slot, scoring []decimal.Decimal, strat strategy[S], scores TeamScore) ([][]S, error) {
	rounds, err := roundsFor(len(slots))
	if err != nil {
		return nil, err
	}
	if len(scoring) < rounds {
		return nil, fmt.Errorf("%w: %d weights for %d rounds", ErrScoringTooShort, len(scoring), rounds)
	}

	games := make([]S, len(slots))
	for i, slot := range slots {
		games[i], err = strat.leaf(slot)
		if err != nil {
			return nil, fmt.Errorf("slot %d: %w", i, err)
		}
	}

	history := make([][]S, 0, rounds)
	for round := 0; len(games) > 1; round++ {
		next := make([]S, len(games)/2)
		for i := range next {
			parent, err := strat.play(games[2*i], games[2*i+1])
			if err != nil {
				return nil, fmt.Errorf("round %d game %d: %w", round, i, err)
			}
			strat.credit(parent, scoring[round], scores)
			next[i] = parent
		}
		history = append(history, next)
		games = next
	}
	return history, nil
}

type expectedStrategy struct {
	t     *Tournament
	usage *overrides.Usage
}

func (s expectedStrategy) leaf(slot Slot) (Distribution, error) {
	if len(slot.Teams) == 1 {
		return Certain(slot.Teams[0]), nil
	}
	team1, team2 := slot.Teams[0], slot.Teams[1]
	p, err := s.t.resolve(team1, team2, s.usage)
	if err != nil {
		return Distribution{}, err
	}
	d := newDistribution(2)
	d.add(team1, p)
	d.add(team2, decimal.NewFromInt(1).Sub(p))
	return d, nil
}

func (s expectedStrategy) play(child1, child2 Distribution) (Distribution, error) {
	one := decimal.NewFromInt(1)
	parent := newDistribution(child1.Len() + child2.Len())
	for _, team := range child1.teams {
		parent.add(team, decimal.Zero)
	}
	for _, team := range child2.teams {
		parent.add(team, decimal.Zero)
	}

	for _, team1 := range child1.teams {
		for _, team2 := range child2.teams {
			joint := child1.mass[team1].Mul(child2.mass[team2])
			if joint.IsZero() {
				continue
			}
			p, err := s.t.resolve(team1, team2, s.usage)
			if err != nil {
				return Distribution{}, err
			}
			parent.add(team1, joint.Mul(p))
			parent.add(team2, joint.Mul(one.Sub(p)))
		}
	}
	return parent.round(), nil
}

func (s expectedStrategy) credit(d Distribution, points decimal.Decimal, scores TeamScore) {
	for _, team := range d.teams {
		scores[team] = scores[team].Add(d.mass[team].Mul(points))
	}
}

type simulatedStrategy struct {
	t     *Tournament
	usage *overrides.Usage
	rng   *rand.Rand
}

func (s simulatedStrategy) leaf(slot Slot) (Outcome, error) {
	if len(slot.Teams) == 1 {
		return Outcome{Team: slot.Teams[0]}, nil
	}
	return s.draw(slot.Teams[0], slot.Teams[1])
}

func (s simulatedStrategy) play(a, b Outcome) (Outcome, error) {
	return s.draw(a.Team, b.Team)
}

func (s simulatedStrategy) draw(team1, team2 string) (Outcome, error) {
	p, err := s.t.resolve(team1, team2, s.usage)
	if err != nil {
		return Outcome{}, err
	}
	if s.rng.Float64() < p.InexactFloat64() {
		return Outcome{Team: team1}, nil
	}
	return Outcome{Team: team2}, nil
}

func (s simulatedStrategy) credit(o Outcome, points decimal.Decimal, scores TeamScore) {
	scores[o.Team] = scores[o.Team].Add(points)
}

package tourney

import (
	"fmt"
	"io"
	"sort"

	"github.com/shopspring/decimal"
)

// Scoring schedule names accepted by ScoringFor.
const (
	ScoringStandard = "standard"
	ScoringCalcutta = "calcutta"
	ScoringCustom   = "custom"
)

// StandardScoring returns the points for winning each round of a 64-team bracket.
func StandardScoring() []decimal.Decimal {
	return weights("1", "1", "2", "2", "2", "3")
}

// CalcuttaScoring returns the per-round payouts of an auction pool.
func CalcuttaScoring() []decimal.Decimal {
	return weights("0.5", "1.25", "2.5", "7.75", "3", "7")
}

func weights(values ...string) []decimal.Decimal {
	out := make([]decimal.Decimal, len(values))
	for i, v := range values {
		out[i] = decimal.RequireFromString(v)
	}
	return out
}

// ScoringFor resolves a schedule by name. Custom weights are only read for
// the custom mode.
func ScoringFor(mode string, custom []float64) ([]decimal.Decimal, error) {
	switch mode {
	case ScoringStandard, "":
		return StandardScoring(), nil
	case ScoringCalcutta:
		return CalcuttaScoring(), nil
	case ScoringCustom:
		if len(custom) == 0 {
			return nil, fmt.Errorf("%w: custom scoring needs weights", ErrUnknownScoringMode)
		}
		out := make([]decimal.Decimal, len(custom))
		for i, w := range custom {
			out[i] = decimal.NewFromFloat(w)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownScoringMode, mode)
	}
}

// SortMode orders score output.
type SortMode string

const (
	// SortByName orders teams alphabetically
	SortByName SortMode = "name"
	// SortByScore orders teams by descending score
	SortByScore SortMode = "score"
)

// ParseSortMode validates a sort mode name.
func ParseSortMode(s string) (SortMode, error) {
	switch SortMode(s) {
	case SortByName, SortByScore:
		return SortMode(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSortMode, s)
}

// TeamScore maps each bracket team to its point total.
type TeamScore map[string]decimal.Decimal

// ScoreLine is one row of score output.
type ScoreLine struct {
	Team  string
	Score decimal.Decimal
}

func newTeamScore(teams []string) TeamScore {
	scores := make(TeamScore, len(teams))
	for _, team := range teams {
		scores[team] = decimal.Zero
	}
	return scores
}

// Total returns the sum of all team scores.
func (s TeamScore) Total() decimal.Decimal {
	total := decimal.Zero
	for _, v := range s {
		total = total.Add(v)
	}
	return total
}

// Sorted returns score lines in the requested order. Ties on score fall back to name.
func (s TeamScore) Sorted(mode SortMode) ([]ScoreLine, error) {
	lines := make([]ScoreLine, 0, len(s))
	for team, score := range s {
		lines = append(lines, ScoreLine{Team: team, Score: score})
	}

	switch mode {
	case SortByName:
		sort.Slice(lines, func(i, j int) bool { return lines[i].Team < lines[j].Team })
	case SortByScore:
		sort.Slice(lines, func(i, j int) bool {
			if c := lines[i].Score.Cmp(lines[j].Score); c != 0 {
				return c > 0
			}
			return lines[i].Team < lines[j].Team
		})
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidSortMode, mode)
	}
	return lines, nil
}

// WriteCSV writes "Team,Score" lines with three decimal places.
func (s TeamScore) WriteCSV(w io.Writer, mode SortMode) error {
	lines, err := s.Sorted(mode)
	if err != nil {
		return err
	}
	for _, line := range lines {
		if _, err := fmt.Fprintf(w, "%s,%s\n", line.Team, line.Score.StringFixed(3)); err != nil {
			return err
		}
	}
	return nil
}

// Add accumulates other into s.
func (s TeamScore) Add(other TeamScore) {
	for team, v := range other {
		s[team] = s[team].Add(v)
	}
}

package tourney

import (
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/bracket-value/internal/logger"
	"github.com/yourusername/bracket-value/internal/metrics"
	"github.com/yourusername/bracket-value/internal/overrides"
	"github.com/yourusername/bracket-value/internal/ratings"
)

// Propagation modes, used as metric and log labels.
const (
	ModeExpected  = "expected"
	ModeSimulated = "simulated"
)

// Options configures a Tournament.
type Options struct {
	Slots   []Slot
	Ratings ratings.Table
	Scoring []decimal.Decimal
	// Overrides may be nil for a run without forced results.
	Overrides *overrides.Map
	// ForfeitProb is the chance a model-derived winner forfeits instead.
	ForfeitProb decimal.Decimal
	// Params defaults to ratings.DefaultParams when zero.
	Params ratings.Params
	Logger *logrus.Logger
}

// Tournament bundles a bracket with everything needed to score it.
// Ratings may be nil, in which case every game must be covered by an override.
type Tournament struct {
	slots     []Slot
	teams     []string
	ratings   ratings.Table
	scoring   []decimal.Decimal
	overrides *overrides.Map
	forfeit   decimal.Decimal
	params    ratings.Params
	model     WinModel
	cache     *probCache

	log   *logger.RunLogger
	audit *logger.AuditLogger

	usageMu sync.Mutex
	usage   *overrides.Usage

	substituting atomic.Bool
}

// Result holds an expected-value propagation: the team scores and every
// round's distributions.
type Result struct {
	Scores TeamScore
	Rounds [][]Distribution
	Usage  *overrides.Usage
}

// New validates opts and builds a Tournament. The ratings table is copied.
func New(opts Options) (*Tournament, error) {
	rounds, err := roundsFor(len(opts.Slots))
	if err != nil {
		return nil, err
	}
	if len(opts.Scoring) < rounds {
		return nil, fmt.Errorf("%w: %d weights for %d rounds", ErrScoringTooShort, len(opts.Scoring), rounds)
	}
	if opts.ForfeitProb.IsNegative() || opts.ForfeitProb.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidForfeit, opts.ForfeitProb)
	}

	slots := make([]Slot, len(opts.Slots))
	teams := make([]string, 0, len(opts.Slots)*2)
	seen := make(map[string]struct{}, len(opts.Slots)*2)
	for i, slot := range opts.Slots {
		if len(slot.Teams) < 1 || len(slot.Teams) > 2 {
			return nil, fmt.Errorf("%w: slot %d has %d teams", ErrInvalidSlot, i, len(slot.Teams))
		}
		for _, team := range slot.Teams {
			if _, dup := seen[team]; dup {
				return nil, fmt.Errorf("%w: %s", ErrDuplicateTeam, team)
			}
			seen[team] = struct{}{}
			teams = append(teams, team)
			if opts.Ratings != nil {
				if _, err := opts.Ratings.Lookup(team); err != nil {
					return nil, err
				}
			}
		}
		slots[i] = Slot{Teams: append([]string(nil), slot.Teams...)}
	}

	params := opts.Params
	if params.AvgScoring.IsZero() {
		params = ratings.DefaultParams()
	}
	ovr := opts.Overrides
	if ovr == nil {
		ovr = overrides.New()
	}
	base := opts.Logger
	if base == nil {
		base = logger.Discard()
	}

	var table ratings.Table
	if opts.Ratings != nil {
		table = opts.Ratings.Clone()
	}

	return &Tournament{
		slots:     slots,
		teams:     teams,
		ratings:   table,
		scoring:   append([]decimal.Decimal(nil), opts.Scoring...),
		overrides: ovr,
		forfeit:   opts.ForfeitProb,
		params:    params,
		model:     NewWinModel(params),
		cache:     newProbCache(),
		log:       logger.NewRunLogger(base),
		audit:     logger.NewAuditLogger(base),
		usage:     overrides.NewUsage(ovr.Len()),
	}, nil
}

// Teams returns every bracket team in slot order.
func (t *Tournament) Teams() []string {
	return append([]string(nil), t.teams...)
}

// Rounds returns the number of scored rounds.
func (t *Tournament) Rounds() int {
	rounds, _ := roundsFor(len(t.slots))
	return rounds
}

// Slots returns a copy of the bracket leaves.
func (t *Tournament) Slots() []Slot {
	out := make([]Slot, len(t.slots))
	for i, slot := range t.slots {
		out[i] = Slot{Teams: append([]string(nil), slot.Teams...)}
	}
	return out
}

// Params returns the league averages in use.
func (t *Tournament) Params() ratings.Params {
	return t.params
}

// Ratings returns a copy of the current ratings table.
func (t *Tournament) Ratings() ratings.Table {
	if t.ratings == nil {
		return nil
	}
	return t.ratings.Clone()
}

// Rating returns the current rating for team.
func (t *Tournament) Rating(team string) (ratings.Rating, error) {
	return t.ratings.Lookup(team)
}

// Usage returns a snapshot of the override diagnostics accumulated so far.
func (t *Tournament) Usage() *overrides.Usage {
	t.usageMu.Lock()
	defer t.usageMu.Unlock()
	snapshot := overrides.NewUsage(t.usage.Supplied)
	snapshot.Merge(t.usage)
	return snapshot
}

func (t *Tournament) mergeUsage(u *overrides.Usage) {
	t.usageMu.Lock()
	t.usage.Merge(u)
	t.usageMu.Unlock()
	metrics.RecordOverridesConsulted(u.Consulted)
}

// WinProbability returns P(team1 beats team2) as used during propagation.
func (t *Tournament) WinProbability(team1, team2 string) (decimal.Decimal, error) {
	usage := overrides.NewUsage(t.overrides.Len())
	p, err := t.resolve(team1, team2, usage)
	t.mergeUsage(usage)
	return p, err
}

// resolve returns the probability team1 wins. Overrides are known results
// and bypass both the model and the forfeit adjustment.
func (t *Tournament) resolve(team1, team2 string, usage *overrides.Usage) (decimal.Decimal, error) {
	if p, ok := t.overrides.Lookup(team1, team2, usage); ok {
		return p, nil
	}
	p, err := t.modelProbability(team1, team2)
	if err != nil {
		return decimal.Zero, err
	}
	return applyForfeit(p, t.forfeit), nil
}

func (t *Tournament) modelProbability(team1, team2 string) (decimal.Decimal, error) {
	if p, ok := t.cache.get(team1, team2); ok {
		return p, nil
	}
	r1, err := t.ratings.Lookup(team1)
	if err != nil {
		return decimal.Zero, err
	}
	r2, err := t.ratings.Lookup(team2)
	if err != nil {
		return decimal.Zero, err
	}
	p, err := t.model.Probability(r1, r2)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s vs %s: %w", team1, team2, err)
	}
	t.cache.set(team1, team2, p)
	return p, nil
}

// PropagateExpected runs the expected-value propagation.
func (t *Tournament) PropagateExpected() (Result, error) {
	start := time.Now()
	usage := overrides.NewUsage(t.overrides.Len())
	scores := newTeamScore(t.teams)

	history, err := propagate[Distribution](t.slots, t.scoring, expectedStrategy{t: t, usage: usage}, scores)
	t.mergeUsage(usage)
	if err != nil {
		return Result{}, err
	}

	elapsed := time.Since(start)
	metrics.RecordPropagation(ModeExpected, elapsed.Seconds())
	if t.log.Logger.IsLevelEnabled(logrus.DebugLevel) {
		for round, games := range history {
			mass := decimal.Zero
			for _, d := range games {
				mass = mass.Add(d.Total())
			}
			t.log.LogRoundMass(round, len(games), mass.InexactFloat64())
		}
	}
	t.log.LogPropagation(ModeExpected, len(t.teams), len(history), usage.Consulted, float64(elapsed.Microseconds())/1000)

	return Result{Scores: scores, Rounds: history, Usage: usage}, nil
}

// CalculateScoresExpected returns each team's expected score.
func (t *Tournament) CalculateScoresExpected() (TeamScore, error) {
	result, err := t.PropagateExpected()
	if err != nil {
		return nil, err
	}
	return result.Scores, nil
}

// CalculateScoresSimulated plays the bracket once, drawing every game from
// rng. Safe for concurrent use with distinct rngs while no substitution is
// installed.
func (t *Tournament) CalculateScoresSimulated(rng *rand.Rand) (TeamScore, error) {
	start := time.Now()
	usage := overrides.NewUsage(t.overrides.Len())
	scores := newTeamScore(t.teams)

	_, err := propagate[Outcome](t.slots, t.scoring, simulatedStrategy{t: t, usage: usage, rng: rng}, scores)
	t.mergeUsage(usage)
	if err != nil {
		return nil, err
	}
	metrics.RecordPropagation(ModeSimulated, time.Since(start).Seconds())
	return scores, nil
}

// WithRating installs r for team, runs fn, and restores the original rating
// on every exit path.
func (t *Tournament) WithRating(team string, r ratings.Rating, fn func() error) error {
	if !t.substituting.CompareAndSwap(false, true) {
		return ErrSubstitutionActive
	}
	defer t.substituting.Store(false)

	original, err := t.ratings.Lookup(team)
	if err != nil {
		return err
	}

	t.ratings[team] = r
	t.cache.flush()
	t.audit.LogSubstitution("rating", team, "installed")
	defer func() {
		t.ratings[team] = original
		t.cache.flush()
		t.audit.LogSubstitution("rating", team, "restored")
	}()

	return fn()
}

// WithOverride forces P(team1 beats team2) = p while fn runs, then restores
// the prior override or removes it if there was none.
func (t *Tournament) WithOverride(team1, team2 string, p decimal.Decimal, fn func() error) error {
	if !t.substituting.CompareAndSwap(false, true) {
		return ErrSubstitutionActive
	}
	defer t.substituting.Store(false)

	prior, hadPrior := t.overrides.Get(team1, team2)
	if err := t.overrides.Add(team1, team2, p); err != nil {
		return err
	}
	subject := team1 + " vs " + team2
	t.audit.LogSubstitution("override", subject, "installed")
	defer func() {
		if hadPrior {
			_ = t.overrides.Add(team1, team2, prior)
		} else {
			t.overrides.Remove(team1, team2)
		}
		t.audit.LogSubstitution("override", subject, "restored")
	}()

	return fn()
}

package overrides

import "fmt"

// Usage accumulates override diagnostics for a run: how many overrides were
// supplied and how often they were consulted.
type Usage struct {
	Supplied  int
	Consulted int
	pairs     map[Pair]struct{}
}

// NewUsage creates an accumulator for a map holding supplied overrides.
func NewUsage(supplied int) *Usage {
	return &Usage{Supplied: supplied, pairs: make(map[Pair]struct{})}
}

// Consult records one lookup that returned an override. Safe on a nil receiver.
func (u *Usage) Consult(pair Pair) {
	if u == nil {
		return
	}
	if u.pairs == nil {
		u.pairs = make(map[Pair]struct{})
	}
	u.Consulted++
	u.pairs[pair] = struct{}{}
}

// Distinct returns the number of different overrides consulted.
func (u *Usage) Distinct() int {
	if u == nil {
		return 0
	}
	return len(u.pairs)
}

// Merge folds another accumulator into u.
func (u *Usage) Merge(other *Usage) {
	if u == nil || other == nil {
		return
	}
	if u.pairs == nil {
		u.pairs = make(map[Pair]struct{})
	}
	u.Consulted += other.Consulted
	for p := range other.pairs {
		u.pairs[p] = struct{}{}
	}
}

// String renders the diagnostic line printed after scores.
func (u *Usage) String() string {
	if u == nil {
		return "0 of 0 overrides used"
	}
	return fmt.Sprintf("%d of %d overrides used", u.Distinct(), u.Supplied)
}

// Package tourney propagates win probabilities through a single-elimination bracket.
package tourney

import "errors"

var (
	// ErrBracketSize indicates the slot count is not a power of two
	ErrBracketSize = errors.New("bracket size must be a power of two")

	// ErrScoringTooShort indicates fewer scoring weights than bracket rounds
	ErrScoringTooShort = errors.New("scoring schedule shorter than bracket rounds")

	// ErrDegenerateRating indicates ratings that produce a non-positive scoring deviation
	ErrDegenerateRating = errors.New("degenerate rating: scoring deviation must be positive")

	// ErrSubstitutionActive indicates a nested temporary substitution
	ErrSubstitutionActive = errors.New("a temporary substitution is already installed")

	// ErrInvalidSlot indicates a bracket slot with other than one or two teams
	ErrInvalidSlot = errors.New("bracket slot must hold one or two teams")

	// ErrDuplicateTeam indicates a team placed in more than one slot
	ErrDuplicateTeam = errors.New("team appears more than once in bracket")

	// ErrInvalidForfeit indicates a forfeit probability outside [0, 1)
	ErrInvalidForfeit = errors.New("forfeit probability must be within [0, 1)")

	// ErrUnknownScoringMode indicates an unrecognized scoring schedule name
	ErrUnknownScoringMode = errors.New("unknown scoring mode")

	// ErrInvalidSortMode indicates an unrecognized output ordering
	ErrInvalidSortMode = errors.New("invalid sort mode")
)

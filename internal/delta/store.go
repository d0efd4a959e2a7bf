package delta

import (
	"fmt"
	"math/big"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/yourusername/bracket-value/internal/logger"
)

const (
	teamDeltasField     = "team_deltas"
	pairwiseDeltasField = "pairwise_deltas"
)

// Deltas holds the per-team portfolio swings and, for each perturbed team,
// the score swing of every bracket team.
type Deltas struct {
	TeamDeltas     map[string]decimal.Decimal
	PairwiseDeltas map[string]map[string]decimal.Decimal
}

// NewDeltas returns empty, writable deltas.
func NewDeltas() Deltas {
	return Deltas{
		TeamDeltas:     make(map[string]decimal.Decimal),
		PairwiseDeltas: make(map[string]map[string]decimal.Decimal),
	}
}

// Pairs returns the number of pairwise entries.
func (d Deltas) Pairs() int {
	n := 0
	for _, row := range d.PairwiseDeltas {
		n += len(row)
	}
	return n
}

// Teams returns the perturbed teams in name order.
func (d Deltas) Teams() []string {
	teams := make([]string, 0, len(d.TeamDeltas))
	for team := range d.TeamDeltas {
		teams = append(teams, team)
	}
	sort.Strings(teams)
	return teams
}

// Equal reports whether both mappings hold the same keys and values.
func (d Deltas) Equal(other Deltas) bool {
	if len(d.TeamDeltas) != len(other.TeamDeltas) || len(d.PairwiseDeltas) != len(other.PairwiseDeltas) {
		return false
	}
	for team, v := range d.TeamDeltas {
		w, ok := other.TeamDeltas[team]
		if !ok || !v.Equal(w) {
			return false
		}
	}
	for team, row := range d.PairwiseDeltas {
		otherRow, ok := other.PairwiseDeltas[team]
		if !ok || len(row) != len(otherRow) {
			return false
		}
		for u, v := range row {
			w, ok := otherRow[u]
			if !ok || !v.Equal(w) {
				return false
			}
		}
	}
	return true
}

// MarshalBinary encodes the deltas as a protobuf Struct. Values keep their
// exact coefficient and exponent.
func (d Deltas) MarshalBinary() ([]byte, error) {
	teams := make(map[string]interface{}, len(d.TeamDeltas))
	for team, v := range d.TeamDeltas {
		teams[team] = encodeDecimal(v)
	}
	pairs := make(map[string]interface{}, len(d.PairwiseDeltas))
	for team, row := range d.PairwiseDeltas {
		encoded := make(map[string]interface{}, len(row))
		for u, v := range row {
			encoded[u] = encodeDecimal(v)
		}
		pairs[team] = encoded
	}

	s, err := structpb.NewStruct(map[string]interface{}{
		teamDeltasField:     teams,
		pairwiseDeltasField: pairs,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build deltas struct: %w", err)
	}
	return proto.MarshalOptions{Deterministic: true}.Marshal(s)
}

// UnmarshalBinary decodes deltas written by MarshalBinary.
func (d *Deltas) UnmarshalBinary(data []byte) error {
	var s structpb.Struct
	if err := proto.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("failed to decode deltas: %w", err)
	}

	out := NewDeltas()
	for team, v := range s.GetFields()[teamDeltasField].GetStructValue().GetFields() {
		value, err := decodeDecimal(v.GetStringValue())
		if err != nil {
			return fmt.Errorf("team delta %s: %w", team, err)
		}
		out.TeamDeltas[team] = value
	}
	for team, row := range s.GetFields()[pairwiseDeltasField].GetStructValue().GetFields() {
		fields := row.GetStructValue().GetFields()
		decoded := make(map[string]decimal.Decimal, len(fields))
		for u, v := range fields {
			value, err := decodeDecimal(v.GetStringValue())
			if err != nil {
				return fmt.Errorf("pairwise delta %s/%s: %w", team, u, err)
			}
			decoded[u] = value
		}
		out.PairwiseDeltas[team] = decoded
	}

	*d = out
	return nil
}

func encodeDecimal(v decimal.Decimal) string {
	return v.Coefficient().String() + "e" + strconv.FormatInt(int64(v.Exponent()), 10)
}

func decodeDecimal(s string) (decimal.Decimal, error) {
	coefficient, exponent, ok := strings.Cut(s, "e")
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("malformed decimal %q", s)
	}
	c, ok := new(big.Int).SetString(coefficient, 10)
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("malformed coefficient %q", coefficient)
	}
	exp, err := strconv.ParseInt(exponent, 10, 32)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("malformed exponent %q: %w", exponent, err)
	}
	return decimal.NewFromBigInt(c, int32(exp)), nil
}

// BlobStore persists deltas to flat files.
type BlobStore struct {
	audit *logger.AuditLogger
}

// NewBlobStore creates a store that audits writes and reads to log.
func NewBlobStore(log *logrus.Logger) *BlobStore {
	if log == nil {
		log = logger.Discard()
	}
	return &BlobStore{audit: logger.NewAuditLogger(log)}
}

// Save writes the deltas to path.
func (b *BlobStore) Save(path string, d Deltas) error {
	data, err := d.MarshalBinary()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write deltas: %w", err)
	}
	b.audit.LogDeltasStored(path, len(d.TeamDeltas), d.Pairs(), time.Now())
	return nil
}

// Load reads deltas previously written by Save.
func (b *BlobStore) Load(path string) (Deltas, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Deltas{}, fmt.Errorf("failed to read deltas: %w", err)
	}
	var d Deltas
	if err := d.UnmarshalBinary(data); err != nil {
		return Deltas{}, err
	}
	b.audit.LogDeltasLoaded(path, len(d.TeamDeltas), d.Pairs())
	return d, nil
}

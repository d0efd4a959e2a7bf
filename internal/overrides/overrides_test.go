package overrides

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetIsComplementary(t *testing.T) {
	m := New()
	require.NoError(t, m.Add("Villanova", "Kansas", decimal.RequireFromString("0.35")))
	require.NoError(t, m.Add("Arizona", "Baylor", decimal.RequireFromString("0.8")))
	require.NoError(t, m.Add("Gonzaga", "Duke", decimal.NewFromInt(1)))

	pairs := [][2]string{{"Villanova", "Kansas"}, {"Arizona", "Baylor"}, {"Gonzaga", "Duke"}}
	for _, p := range pairs {
		forward, ok := m.Get(p[0], p[1])
		require.True(t, ok)
		reverse, ok := m.Get(p[1], p[0])
		require.True(t, ok)
		assert.True(t, forward.Equal(decimal.NewFromInt(1).Sub(reverse)), "%s vs %s", p[0], p[1])
	}

	p, _ := m.Get("Villanova", "Kansas")
	assert.True(t, p.Equal(decimal.RequireFromString("0.35")))
	p, _ = m.Get("Duke", "Gonzaga")
	assert.True(t, p.IsZero())
}

func TestCanonicalStorage(t *testing.T) {
	m := New()
	require.NoError(t, m.Add("Zags", "Aggies", decimal.RequireFromString("0.7")))

	assert.Equal(t, []Pair{{First: "Aggies", Second: "Zags"}}, m.Pairs())
	p, ok := m.Get("Aggies", "Zags")
	require.True(t, ok)
	assert.True(t, p.Equal(decimal.RequireFromString("0.3")))

	// Adding the reverse orientation replaces the same entry.
	require.NoError(t, m.Add("Aggies", "Zags", decimal.RequireFromString("0.6")))
	assert.Equal(t, 1, m.Len())
	p, _ = m.Get("Zags", "Aggies")
	assert.True(t, p.Equal(decimal.RequireFromString("0.4")))
}

func TestRemove(t *testing.T) {
	m := New()
	require.NoError(t, m.Add("A", "B", decimal.NewFromInt(1)))
	m.Remove("B", "A")

	_, ok := m.Get("A", "B")
	assert.False(t, ok)
	assert.Equal(t, 0, m.Len())
}

func TestInstancesDoNotShareStorage(t *testing.T) {
	first := New()
	second := New()
	require.NoError(t, first.Add("A", "B", decimal.NewFromInt(1)))

	_, ok := second.Get("A", "B")
	assert.False(t, ok)
}

func TestAddRejectsOutOfRange(t *testing.T) {
	m := New()
	assert.ErrorIs(t, m.Add("A", "B", decimal.RequireFromString("1.01")), ErrInvalidProbability)
	assert.ErrorIs(t, m.Add("A", "B", decimal.RequireFromString("-0.1")), ErrInvalidProbability)

	_, err := FromEntries([]Entry{{Team: "A", Opponent: "B", Probability: decimal.NewFromInt(2)}})
	assert.ErrorIs(t, err, ErrInvalidProbability)
}

func TestLookupRecordsUsage(t *testing.T) {
	m, err := FromEntries([]Entry{
		{Team: "A", Opponent: "B", Probability: decimal.RequireFromString("0.9")},
		{Team: "C", Opponent: "D", Probability: decimal.RequireFromString("0.1")},
	})
	require.NoError(t, err)

	usage := NewUsage(m.Len())
	m.Lookup("A", "B", usage)
	m.Lookup("B", "A", usage)
	m.Lookup("A", "C", usage)

	assert.Equal(t, 2, usage.Consulted)
	assert.Equal(t, 1, usage.Distinct())
	assert.Equal(t, "1 of 2 overrides used", usage.String())

	other := NewUsage(0)
	m.Lookup("D", "C", other)
	usage.Merge(other)
	assert.Equal(t, 3, usage.Consulted)
	assert.Equal(t, 2, usage.Distinct())
}

func TestLookupOnNilMap(t *testing.T) {
	var m *Map
	_, ok := m.Lookup("A", "B", nil)
	assert.False(t, ok)
	assert.Equal(t, 0, m.Len())
}

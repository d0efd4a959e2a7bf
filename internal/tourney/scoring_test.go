package tourney

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoringFor(t *testing.T) {
	standard, err := ScoringFor("standard", nil)
	require.NoError(t, err)
	assert.Len(t, standard, 6)

	calcutta, err := ScoringFor("calcutta", nil)
	require.NoError(t, err)
	assert.True(t, calcutta[3].Equal(d("7.75")))

	custom, err := ScoringFor("custom", []float64{1, 2, 4})
	require.NoError(t, err)
	assert.True(t, custom[2].Equal(d("4")))

	_, err = ScoringFor("custom", nil)
	assert.ErrorIs(t, err, ErrUnknownScoringMode)
	_, err = ScoringFor("fibonacci", nil)
	assert.ErrorIs(t, err, ErrUnknownScoringMode)
}

func TestTeamScoreSorted(t *testing.T) {
	scores := TeamScore{
		"Kansas": d("2.5"),
		"Auburn": d("0.75"),
		"Purdue": d("2.5"),
		"Duke":   d("4.125"),
	}

	byName, err := scores.Sorted(SortByName)
	require.NoError(t, err)
	assert.Equal(t, "Auburn", byName[0].Team)
	assert.Equal(t, "Purdue", byName[3].Team)

	byScore, err := scores.Sorted(SortByScore)
	require.NoError(t, err)
	assert.Equal(t, []string{"Duke", "Kansas", "Purdue", "Auburn"},
		[]string{byScore[0].Team, byScore[1].Team, byScore[2].Team, byScore[3].Team})

	_, err = scores.Sorted("seed")
	assert.ErrorIs(t, err, ErrInvalidSortMode)
}

func TestTeamScoreWriteCSV(t *testing.T) {
	scores := TeamScore{"Kansas": d("2.5"), "Duke": d("0.12345")}

	var buf bytes.Buffer
	require.NoError(t, scores.WriteCSV(&buf, SortByName))
	assert.Equal(t, "Duke,0.123\nKansas,2.500\n", buf.String())
}

func TestParseSortMode(t *testing.T) {
	mode, err := ParseSortMode("score")
	require.NoError(t, err)
	assert.Equal(t, SortByScore, mode)

	_, err = ParseSortMode("random")
	assert.ErrorIs(t, err, ErrInvalidSortMode)
}

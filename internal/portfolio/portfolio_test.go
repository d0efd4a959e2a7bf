package portfolio

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/bracket-value/internal/tourney"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestValue(t *testing.T) {
	scores := tourney.TeamScore{
		"Michigan St.": d("2.5"),
		"Kansas":       d("4"),
		"Vermont":      d("0.25"),
	}
	positions := Positions{
		"Michigan State": d("10"),
		"Kansas":         d("-3"),
		"Vermont":        d("0"),
		PointsKey:        d("-7.5"),
	}

	valuer := NewValuer(DefaultConversions(), nil)
	v := valuer.Value(positions, scores)

	// 10*2.5 - 3*4 - 7.5
	assert.True(t, v.Total.Equal(d("5.5")), "got %s", v.Total)
	assert.Empty(t, v.Missing)
	require.Len(t, v.Holdings, 3)
	assert.Equal(t, "Kansas", v.Holdings[0].Name)
	assert.Equal(t, "Michigan St.", v.Holdings[1].Team)
}

func TestValueMissingTeamIsNonFatal(t *testing.T) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})

	valuer := NewValuer(nil, log)
	v := valuer.Value(Positions{"Atlantis": d("4"), "Kansas": d("1")}, tourney.TeamScore{"Kansas": d("3")})

	assert.True(t, v.Total.Equal(d("3")))
	assert.Equal(t, []string{"Atlantis"}, v.Missing)
	assert.True(t, v.Holdings[0].Missing)
	assert.Contains(t, buf.String(), "Missing team in portfolio valuation")
}

func TestValueQuietSkipsMissingTeamWarning(t *testing.T) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)

	valuer := NewValuer(nil, log)
	v := valuer.ValueQuiet(Positions{"Atlantis": d("4"), "Kansas": d("1")}, tourney.TeamScore{"Kansas": d("3")})

	assert.True(t, v.Total.Equal(d("3")))
	assert.Equal(t, []string{"Atlantis"}, v.Missing)
	assert.Empty(t, buf.String())
}

func TestResolve(t *testing.T) {
	valuer := NewValuer(map[string]string{"Miami": "Miami FL"}, nil)
	assert.Equal(t, "Miami FL", valuer.Resolve("Miami"))
	assert.Equal(t, "Duke", valuer.Resolve("Duke"))
}

func TestValueEmpty(t *testing.T) {
	v := NewValuer(nil, nil).Value(nil, tourney.TeamScore{"Kansas": d("1")})
	assert.True(t, v.Total.IsZero())
	assert.Empty(t, v.Holdings)
}

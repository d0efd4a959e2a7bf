package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/bracket-value/internal/delta"
)

var errClosedPipe = errors.New("broken pipe")

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errClosedPipe
}

func testDeltas() delta.Deltas {
	deltas := delta.NewDeltas()
	deltas.TeamDeltas["Duke"] = decimal.RequireFromString("1.25")
	deltas.TeamDeltas["Kansas"] = decimal.RequireFromString("-0.5")
	return deltas
}

func TestPrintDeltasOrdersBySwing(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, printDeltas(buf, testDeltas()))
	assert.Equal(t, "team,portfolio_delta\nDuke,1.250\nKansas,-0.500\n", buf.String())
}

func TestPrintDeltasReportsWriteError(t *testing.T) {
	assert.ErrorIs(t, printDeltas(failingWriter{}, testDeltas()), errClosedPipe)
}

func TestWriteCSVReportsWriteError(t *testing.T) {
	err := writeCSV(failingWriter{}, [][]string{{"round", "team1"}, {"0", "Duke"}})
	assert.ErrorIs(t, err, errClosedPipe)
}

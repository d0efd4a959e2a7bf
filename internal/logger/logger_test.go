package logger

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() (*logrus.Logger, *bytes.Buffer) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)
	return log, buf
}

func parseLogOutput(buf *bytes.Buffer) map[string]interface{} {
	var logEntry map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &logEntry)
	if err != nil {
		return nil
	}
	return logEntry
}

func TestNewLoggerLevels(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewLoggerWithOutput("debug", buf)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())

	log = NewLoggerWithOutput("bogus", buf)
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	assert.Contains(t, buf.String(), "Invalid log level")
}

func TestRunLoggerPropagation(t *testing.T) {
	log, buf := setupTestLogger()
	runLogger := NewRunLogger(log)

	runLogger.LogPropagation("expected", 64, 6, 3, 12.5)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "expected", logEntry["mode"])
	assert.Equal(t, "tourney", logEntry["component"])
	assert.Equal(t, float64(64), logEntry["teams"])
}

func TestRunLoggerGameDelta(t *testing.T) {
	log, buf := setupTestLogger()
	runLogger := NewRunLogger(log)

	runLogger.LogGameDelta("Duke", "Kansas", 120, 80)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "game_delta", logEntry["event_type"])
	assert.Equal(t, float64(40), logEntry["swing"])
}

func TestRunLoggerMissingPosition(t *testing.T) {
	log, buf := setupTestLogger()
	runLogger := NewRunLogger(log)

	runLogger.LogMissingPosition("Michigan State", "Michigan St.", 25)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "warning", logEntry["level"])
	assert.Equal(t, "Michigan St.", logEntry["resolved_name"])
}

func TestSimulationLoggerCompleted(t *testing.T) {
	log, buf := setupTestLogger()
	simLogger := NewSimulationLogger(log)

	simLogger.LogSimulationCompleted(5000, 101.5, 12.25, 80.0, 4.2)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "simulation", logEntry["component"])
	assert.Equal(t, float64(5000), logEntry["iterations"])
}

func TestAuditLoggerDeltasStored(t *testing.T) {
	log, buf := setupTestLogger()
	auditLogger := NewAuditLogger(log)

	auditLogger.LogDeltasStored("deltas.bin", 68, 4556, time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC))

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "deltas.bin", logEntry["path"])
	assert.Equal(t, float64(4556), logEntry["pairs"])
}

func TestAuditLoggerSubstitution(t *testing.T) {
	log, buf := setupTestLogger()
	auditLogger := NewAuditLogger(log)

	auditLogger.LogSubstitution("rating", "Gonzaga", "installed")

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "audit", logEntry["component"])
	assert.Equal(t, "installed", logEntry["phase"])
}

func BenchmarkRunLoggerPropagation(b *testing.B) {
	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})
	log.SetLevel(logrus.DebugLevel)
	runLogger := NewRunLogger(log)

	for i := 0; i < b.N; i++ {
		runLogger.LogPropagation("simulated", 64, 6, 0, 0.4)
	}
}

// Package logger provides audit logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AuditLogger provides dedicated audit trail logging for state that is
// mutated temporarily or persisted to disk.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogSubstitution logs a temporary rating or override substitution.
func (al *AuditLogger) LogSubstitution(kind, subject, phase string) {
	al.WithFields(logrus.Fields{
		"kind":    kind,
		"subject": subject,
		"phase":   phase,
	}).Debug("Tournament substitution")
}

// LogDeltasStored logs a deltas blob write.
func (al *AuditLogger) LogDeltasStored(path string, teams, pairs int, timestamp time.Time) {
	al.WithFields(logrus.Fields{
		"path":      path,
		"teams":     teams,
		"pairs":     pairs,
		"timestamp": timestamp.Unix(),
	}).Info("Deltas stored")
}

// LogDeltasLoaded logs a deltas blob read.
func (al *AuditLogger) LogDeltasLoaded(path string, teams, pairs int) {
	al.WithFields(logrus.Fields{
		"path":  path,
		"teams": teams,
		"pairs": pairs,
	}).Info("Deltas loaded")
}

package datasource

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/bracket-value/internal/logger"
	"github.com/yourusername/bracket-value/internal/overrides"
	"github.com/yourusername/bracket-value/internal/portfolio"
	"github.com/yourusername/bracket-value/internal/ratings"
	"github.com/yourusername/bracket-value/internal/tourney"
)

// Loader opens inputs by path or http(s) URL and parses them.
type Loader struct {
	http   *RateLimitedHTTPClient
	logger *logrus.Entry
}

// NewLoader creates a loader. A nil client gets the default HTTP settings.
func NewLoader(httpClient *RateLimitedHTTPClient, log *logrus.Logger) *Loader {
	if log == nil {
		log = logger.Discard()
	}
	if httpClient == nil {
		httpClient = NewRateLimitedHTTPClient(DefaultHTTPClientConfig(), log)
	}
	return &Loader{http: httpClient, logger: log.WithField("component", "datasource")}
}

func isURL(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// Open returns a reader for a local file or URL.
func (l *Loader) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	if isURL(location) {
		body, err := l.http.Fetch(ctx, location)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(bytes.NewReader(body)), nil
	}
	f, err := os.Open(location)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewSourceError(location, 0, ErrCodeNotFound, "no such file", fmt.Errorf("%w: %v", ErrNotFound, err))
		}
		return nil, NewSourceError(location, 0, ErrCodeInvalidData, "failed to open", err)
	}
	return f, nil
}

func load[T any](ctx context.Context, l *Loader, location string, parse func(string, io.Reader) (T, error)) (T, error) {
	var zero T
	rc, err := l.Open(ctx, location)
	if err != nil {
		return zero, err
	}
	defer rc.Close()
	out, err := parse(location, rc)
	if err != nil {
		return zero, err
	}
	l.logger.WithField("source", location).Debug("Loaded input")
	return out, nil
}

// LoadRatings reads the ratings file and any adjustment files, then
// normalizes the table.
func (l *Loader) LoadRatings(ctx context.Context, location string, adjustmentLocations []string, params ratings.Params) (ratings.Table, error) {
	rows, err := load(ctx, l, location, ParseRatings)
	if err != nil {
		return nil, err
	}

	adjustments := make(map[string]decimal.Decimal)
	for _, adjLocation := range adjustmentLocations {
		adj, err := load(ctx, l, adjLocation, ParseAdjustments)
		if err != nil {
			return nil, err
		}
		for team, v := range adj {
			adjustments[team] = adjustments[team].Add(v)
		}
	}

	table := ratings.NewTable(params, rows, adjustments)
	l.logger.WithFields(logrus.Fields{"teams": len(table), "adjusted": len(adjustments)}).Info("Ratings loaded")
	return table, nil
}

// LoadBracket reads the bracket file.
func (l *Loader) LoadBracket(ctx context.Context, location string) ([]tourney.Slot, error) {
	return load(ctx, l, location, ParseBracket)
}

// LoadOverrides reads every override file into one map. Later files win on
// conflicting pairs.
func (l *Loader) LoadOverrides(ctx context.Context, locations []string) (*overrides.Map, error) {
	m := overrides.New()
	for _, location := range locations {
		entries, err := load(ctx, l, location, ParseOverrides)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if err := m.Add(e.Team, e.Opponent, e.Probability); err != nil {
				return nil, NewSourceError(location, 0, ErrCodeInvalidData, "override rejected", err)
			}
		}
	}
	if len(locations) > 0 {
		l.logger.WithField("overrides", m.Len()).Info("Overrides loaded")
	}
	return m, nil
}

// LoadPositions reads market positions.
func (l *Loader) LoadPositions(ctx context.Context, location string) (portfolio.Positions, error) {
	return load(ctx, l, location, ParsePositions)
}

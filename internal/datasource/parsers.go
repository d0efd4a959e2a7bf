package datasource

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v2"

	"github.com/yourusername/bracket-value/internal/overrides"
	"github.com/yourusername/bracket-value/internal/portfolio"
	"github.com/yourusername/bracket-value/internal/ratings"
	"github.com/yourusername/bracket-value/internal/tourney"
)

// ParseRatings reads "Team|Offense|Defense|Tempo" lines. Blank lines are skipped.
func ParseRatings(source string, r io.Reader) ([]ratings.Raw, error) {
	var rows []ratings.Raw
	err := eachLine(r, func(line int, text string) error {
		fields := strings.Split(text, "|")
		if len(fields) != 4 {
			return malformed(source, line, fmt.Sprintf("expected 4 fields, got %d", len(fields)))
		}
		team, err := teamName(source, line, fields[0])
		if err != nil {
			return err
		}
		values, err := decimals(source, line, fields[1:]...)
		if err != nil {
			return err
		}
		rows = append(rows, ratings.Raw{
			Team:    team,
			Offense: values[0],
			Defense: values[1],
			Tempo:   values[2],
		})
		return nil
	})
	return rows, err
}

// ParseAdjustments reads "Team|±Adjustment" lines. The sign is optional.
func ParseAdjustments(source string, r io.Reader) (map[string]decimal.Decimal, error) {
	adjustments := make(map[string]decimal.Decimal)
	err := eachLine(r, func(line int, text string) error {
		fields := strings.Split(text, "|")
		if len(fields) != 2 {
			return malformed(source, line, fmt.Sprintf("expected 2 fields, got %d", len(fields)))
		}
		team, err := teamName(source, line, fields[0])
		if err != nil {
			return err
		}
		values, err := decimals(source, line, strings.TrimPrefix(strings.TrimSpace(fields[1]), "+"))
		if err != nil {
			return err
		}
		adjustments[team] = adjustments[team].Add(values[0])
		return nil
	})
	return adjustments, err
}

// ParseBracket reads a CSV bracket: one field per row is a bye, two fields an
// opening matchup. The number of rows must be a power of two.
func ParseBracket(source string, r io.Reader) ([]tourney.Slot, error) {
	var slots []tourney.Slot
	err := eachRecord(source, r, func(line int, record []string) error {
		if err := teamNames(source, line, record); err != nil {
			return err
		}
		switch len(record) {
		case 1:
			slots = append(slots, tourney.Bye(record[0]))
		case 2:
			slots = append(slots, tourney.Matchup(record[0], record[1]))
		default:
			return malformed(source, line, fmt.Sprintf("bracket row must have 1 or 2 teams, got %d", len(record)))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if n := len(slots); n == 0 || n&(n-1) != 0 {
		return nil, NewSourceError(source, 0, ErrCodeInvalidData,
			fmt.Sprintf("%d bracket rows", n), tourney.ErrBracketSize)
	}
	return slots, nil
}

// ParseOverrides reads CSV rows of "TeamA,TeamB,P(TeamA wins)".
func ParseOverrides(source string, r io.Reader) ([]overrides.Entry, error) {
	var entries []overrides.Entry
	err := eachRecord(source, r, func(line int, record []string) error {
		if len(record) != 3 {
			return malformed(source, line, fmt.Sprintf("override row must have 3 fields, got %d", len(record)))
		}
		if err := teamNames(source, line, record[:2]); err != nil {
			return err
		}
		values, err := decimals(source, line, record[2])
		if err != nil {
			return err
		}
		p := values[0]
		if p.IsNegative() || p.GreaterThan(decimal.NewFromInt(1)) {
			return NewSourceError(source, line, ErrCodeInvalidData, p.String(), overrides.ErrInvalidProbability)
		}
		entries = append(entries, overrides.Entry{Team: record[0], Opponent: record[1], Probability: p})
		return nil
	})
	return entries, err
}

// ParsePositions reads a YAML (or JSON) mapping of market name to signed quantity.
func ParsePositions(source string, r io.Reader) (portfolio.Positions, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, NewSourceError(source, 0, ErrCodeInvalidData, "failed to read positions", err)
	}

	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, NewSourceError(source, 0, ErrCodeInvalidData, "failed to parse positions", fmt.Errorf("%w: %v", ErrInvalidData, err))
	}

	positions := make(portfolio.Positions, len(raw))
	for name, qty := range raw {
		if _, err := teamName(source, 0, name); err != nil {
			return nil, err
		}
		v, err := decimal.NewFromString(strings.TrimSpace(qty))
		if err != nil {
			return nil, NewSourceError(source, 0, ErrCodeInvalidData,
				fmt.Sprintf("quantity for %s", name), fmt.Errorf("%w: %v", ErrInvalidData, err))
		}
		positions[name] = v
	}
	return positions, nil
}

func eachLine(r io.Reader, fn func(line int, text string) error) error {
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if err := fn(line, text); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func eachRecord(source string, r io.Reader, fn func(line int, record []string) error) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return NewSourceError(source, 0, ErrCodeMalformedRow, "invalid csv", fmt.Errorf("%w: %v", ErrMalformedRow, err))
		}
		line, _ := reader.FieldPos(0)
		if err := fn(line, record); err != nil {
			return err
		}
	}
}

func decimals(source string, line int, fields ...string) ([]decimal.Decimal, error) {
	out := make([]decimal.Decimal, len(fields))
	for i, f := range fields {
		v, err := decimal.NewFromString(strings.TrimSpace(f))
		if err != nil {
			return nil, NewSourceError(source, line, ErrCodeInvalidData, fmt.Sprintf("bad number %q", f), fmt.Errorf("%w: %v", ErrInvalidData, err))
		}
		out[i] = v
	}
	return out, nil
}

// teamName trims a team name and rejects bytes that are not UTF-8, which the
// deltas blob cannot encode.
func teamName(source string, line int, raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if !utf8.ValidString(name) {
		return "", NewSourceError(source, line, ErrCodeInvalidData,
			fmt.Sprintf("team name %q is not valid UTF-8", name), ErrInvalidData)
	}
	return name, nil
}

func teamNames(source string, line int, names []string) error {
	for _, name := range names {
		if _, err := teamName(source, line, name); err != nil {
			return err
		}
	}
	return nil
}

func malformed(source string, line int, message string) error {
	return NewSourceError(source, line, ErrCodeMalformedRow, message, ErrMalformedRow)
}

package sqlite

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/govalues/decimal"

	"github.com/tinoosan/bookkeep/internal/errs"
)

const dayFormat = "2006-01-02"

func fmtDay(t time.Time) string {
	return t.UTC().Format(dayFormat)
}

func parseDay(s string) (time.Time, error) {
	t, err := time.Parse(dayFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: malformed date %q", errs.ErrPersistence, s)
	}
	return t, nil
}

func fmtOptionalDay(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return fmtDay(t)
}

func parseOptionalDay(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return parseDay(s)
}

func fmtTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: malformed timestamp %q", errs.ErrPersistence, s)
	}
	return t, nil
}

func parseDec(s string) (decimal.Decimal, error) {
	d, err := decimal.Parse(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: malformed decimal %q", errs.ErrPersistence, s)
	}
	return d, nil
}

func fmtUUID(id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}
	return id.String()
}

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: malformed uuid %q", errs.ErrPersistence, s)
	}
	return id, nil
}

// encodeGoals renders a goal vector as a JSON array of exact decimal strings.
func encodeGoals(goals []decimal.Decimal) (string, error) {
	strs := make([]string, len(goals))
	for i, g := range goals {
		strs[i] = g.String()
	}
	b, err := json.Marshal(strs)
	if err != nil {
		return "", fmt.Errorf("%w: encode goals: %v", errs.ErrPersistence, err)
	}
	return string(b), nil
}

func decodeGoals(raw string) ([]decimal.Decimal, error) {
	var strs []string
	if err := json.Unmarshal([]byte(raw), &strs); err != nil {
		return nil, fmt.Errorf("%w: decode goals: %v", errs.ErrPersistence, err)
	}
	out := make([]decimal.Decimal, len(strs))
	for i, s := range strs {
		d, err := parseDec(s)
		if err != nil {
			return nil, err
		}
		out[i] = d
	}
	return out, nil
}

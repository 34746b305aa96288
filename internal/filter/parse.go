// Package filter implements the per-column predicates of a filtered table
// view and the rules that order cells under those predicates.
package filter

import (
	"cmp"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/magpierre/dishledger/datatable"
)

// MalformedPolicy decides what a predicate answers for a cell that does not
// parse to the type the predicate needs.
type MalformedPolicy int

const (
	// FailOpen lets malformed cells pass the filter.
	FailOpen MalformedPolicy = iota
	// FailClosed hides malformed cells.
	FailClosed
)

// String returns the string representation of a MalformedPolicy.
func (p MalformedPolicy) String() string {
	switch p {
	case FailOpen:
		return "FailOpen"
	case FailClosed:
		return "FailClosed"
	default:
		return fmt.Sprintf("unknown(%d)", int(p))
	}
}

// ParseOrFailOpen parses v and runs check on the result. When v does not
// parse, the answer comes from policy instead of check.
func ParseOrFailOpen[T any](v datatable.Value, parse func(datatable.Value) (T, error), policy MalformedPolicy, check func(T) bool) bool {
	parsed, err := parse(v)
	if err != nil {
		return policy == FailOpen
	}
	return check(parsed)
}

// CompareParsed orders two cells by their parsed form. If either side does
// not parse the cells are reported Equal, which keeps them in their current
// relative order under a stable sort.
func CompareParsed[T cmp.Ordered](a, b datatable.Value, parse func(datatable.Value) (T, error)) datatable.Ordering {
	left, err := parse(a)
	if err != nil {
		return datatable.Equal
	}
	right, err := parse(b)
	if err != nil {
		return datatable.Equal
	}
	return datatable.Ordering(cmp.Compare(left, right))
}

// ParseNumber reads a cell as a real number. Numeric raw values are used
// directly; text is trimmed and parsed.
func ParseNumber(v datatable.Value) (float64, error) {
	if v.IsNull {
		return 0, fmt.Errorf("%w: null", datatable.ErrMalformedCell)
	}
	raw := v.Raw
	if s, ok := raw.(string); ok {
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, fmt.Errorf("%w: empty", datatable.ErrMalformedCell)
		}
		raw = s
	}
	n, err := cast.ToFloat64E(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", datatable.ErrMalformedCell, v.Formatted)
	}
	return n, nil
}

// ParseDate reads a cell as a calendar date. time.Time raw values are
// truncated to their day; text must use datatable.DateLayout.
func ParseDate(v datatable.Value) (time.Time, error) {
	if v.IsNull {
		return time.Time{}, fmt.Errorf("%w: null", datatable.ErrMalformedCell)
	}
	if t, ok := v.Raw.(time.Time); ok {
		return Day(t), nil
	}
	t, err := time.Parse(datatable.DateLayout, strings.TrimSpace(v.Formatted))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not a date", datatable.ErrMalformedCell, v.Formatted)
	}
	return t, nil
}

// Day drops the time of day from t, keeping its calendar date in UTC.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// unixDay is ParseDate reduced to an ordered key.
func unixDay(v datatable.Value) (int64, error) {
	t, err := ParseDate(v)
	if err != nil {
		return 0, err
	}
	return t.Unix(), nil
}

func parseText(v datatable.Value) (string, error) {
	return v.Formatted, nil
}

// CompareNumbers orders cells numerically.
func CompareNumbers(a, b datatable.Value) datatable.Ordering {
	return CompareParsed(a, b, ParseNumber)
}

// CompareText orders cells by their formatted text, byte-wise.
func CompareText(a, b datatable.Value) datatable.Ordering {
	return CompareParsed(a, b, parseText)
}

// CompareDates orders cells chronologically.
func CompareDates(a, b datatable.Value) datatable.Ordering {
	return CompareParsed(a, b, unixDay)
}

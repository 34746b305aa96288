package proxy

import (
	"time"

	"github.com/magpierre/dishledger/datatable"
	"github.com/magpierre/dishledger/internal/filter"
)

// Option configures a TableFilterProxy.
type Option func(*TableFilterProxy)

// WithColumnComparator orders unfiltered column col with cmp.
func WithColumnComparator(col int, cmp datatable.Comparator) Option {
	return func(p *TableFilterProxy) {
		p.comparators[col] = cmp
	}
}

// WithDefaultComparator orders every unfiltered column without its own
// comparator with cmp. Without it such columns are unsortable.
func WithDefaultComparator(cmp datatable.Comparator) Option {
	return func(p *TableFilterProxy) {
		p.defaultComparator = cmp
	}
}

// WithClock replaces time.Now as the source of "today" for new date ranges.
func WithClock(now func() time.Time) Option {
	return func(p *TableFilterProxy) {
		p.now = now
	}
}

// WithMalformedPolicy decides whether cells that do not parse as a number or
// date pass number and date filters. By default number filters let them
// through and date filters hide them.
func WithMalformedPolicy(policy MalformedPolicy) Option {
	return func(p *TableFilterProxy) {
		p.numberPolicy = policy
		p.datePolicy = policy
	}
}

// Comparators usable with WithColumnComparator and WithDefaultComparator.
var (
	// CompareText orders cells by their formatted text.
	CompareText datatable.Comparator = filter.CompareText
	// CompareNumber orders cells numerically; non-numbers compare Equal.
	CompareNumber datatable.Comparator = filter.CompareNumbers
	// CompareDate orders cells chronologically; non-dates compare Equal.
	CompareDate datatable.Comparator = filter.CompareDates
)

// MalformedPolicy decides what number and date filters answer for cells
// that do not parse.
type MalformedPolicy = filter.MalformedPolicy

const (
	// FailOpen shows malformed cells.
	FailOpen = filter.FailOpen
	// FailClosed hides malformed cells.
	FailClosed = filter.FailClosed
)

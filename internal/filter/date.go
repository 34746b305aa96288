package filter

import (
	"fmt"
	"time"

	"github.com/magpierre/dishledger/datatable"
)

// DefaultDateWindow is how far back a new date range reaches from today.
const DefaultDateWindow = 7 * 24 * time.Hour

// DateRange keeps cells dated within [Low, High], both inclusive.
// Low and High are calendar days as produced by Day.
type DateRange struct {
	Low    time.Time
	High   time.Time
	Policy MalformedPolicy
}

// NewDateRange returns the default window ending on the day of now:
// [today-7, today].
func NewDateRange(now time.Time, policy MalformedPolicy) *DateRange {
	today := Day(now)
	return &DateRange{
		Low:    today.Add(-DefaultDateWindow),
		High:   today,
		Policy: policy,
	}
}

// Method implements Column.
func (f *DateRange) Method() datatable.FilterMethod {
	return datatable.MethodDateRange
}

// Accepts implements Column.
func (f *DateRange) Accepts(v datatable.Value) bool {
	return ParseOrFailOpen(v, ParseDate, f.Policy, func(d time.Time) bool {
		return !d.Before(f.Low) && !d.After(f.High)
	})
}

// Compare implements Column.
func (f *DateRange) Compare(a, b datatable.Value) datatable.Ordering {
	return CompareDates(a, b)
}

// Description implements Column.
func (f *DateRange) Description(column string) string {
	return fmt.Sprintf("%s from %s to %s", column,
		f.Low.Format(datatable.DateLayout), f.High.Format(datatable.DateLayout))
}

package filter

import (
	"fmt"

	"github.com/magpierre/dishledger/datatable"
)

// NumberRange keeps cells whose numeric value lies in [Min, Max].
// A range with Max <= Min is inactive and keeps every cell.
type NumberRange struct {
	Min    float64
	Max    float64
	Policy MalformedPolicy
}

// Active reports whether the range constrains anything.
func (f *NumberRange) Active() bool {
	return f.Max > f.Min
}

// Method implements Column.
func (f *NumberRange) Method() datatable.FilterMethod {
	return datatable.MethodNumberRange
}

// Accepts implements Column.
func (f *NumberRange) Accepts(v datatable.Value) bool {
	if !f.Active() {
		return true
	}
	return ParseOrFailOpen(v, ParseNumber, f.Policy, func(n float64) bool {
		return f.Min <= n && n <= f.Max
	})
}

// Compare implements Column.
func (f *NumberRange) Compare(a, b datatable.Value) datatable.Ordering {
	return CompareNumbers(a, b)
}

// Description implements Column.
func (f *NumberRange) Description(column string) string {
	if !f.Active() {
		return fmt.Sprintf("%s any number", column)
	}
	return fmt.Sprintf("%s in [%g, %g]", column, f.Min, f.Max)
}

package filter

import (
	"fmt"
	"regexp"

	"github.com/magpierre/dishledger/datatable"
)

// RegexMatch keeps cells whose formatted text contains a match of Pattern.
// The match is a search, so anchoring is up to the pattern.
type RegexMatch struct {
	Pattern *regexp.Regexp
}

// NewRegexMatch compiles pattern. A pattern that does not compile is
// reported as datatable.ErrInvalidPattern.
func NewRegexMatch(pattern string) (*RegexMatch, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", datatable.ErrInvalidPattern, err)
	}
	return &RegexMatch{Pattern: re}, nil
}

// Method implements Column.
func (f *RegexMatch) Method() datatable.FilterMethod {
	return datatable.MethodRegexMatch
}

// Accepts implements Column.
func (f *RegexMatch) Accepts(v datatable.Value) bool {
	return f.Pattern.MatchString(v.Formatted)
}

// Compare implements Column.
func (f *RegexMatch) Compare(a, b datatable.Value) datatable.Ordering {
	return CompareText(a, b)
}

// Description implements Column.
func (f *RegexMatch) Description(column string) string {
	return fmt.Sprintf("%s ~ /%s/", column, f.Pattern.String())
}

// Copyright 2025 Magnus Pierre
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package windows

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/magpierre/dishledger/datatable"
	"github.com/magpierre/dishledger/proxy"
)

// QueryParser turns a filter query such as
//
//	price >= 10 AND price <= 20 AND name ~ ^A AND date >= 2024-03-01
//
// into column filters. Clauses are joined with AND only, since every
// column filter must hold for a row to be shown.
//
// A date value sets a date range. Otherwise = matches the whole cell text,
// so it is refused on int and float columns, which take >= and <= only.
type QueryParser struct {
	columnMap map[string]int // Maps lower-cased column names to indices
}

// Comparison operators
type CompOp int

const (
	OpEqual CompOp = iota
	OpGreaterEqual
	OpLessEqual
	OpMatch
)

// Clause is one comparison of a query.
type Clause struct {
	Column   int
	Name     string
	Operator CompOp
	Value    string
}

// Query is a parsed filter query.
type Query struct {
	Clauses []Clause
}

// NewQueryParser creates a parser resolving column names against headers.
func NewQueryParser(headers []string) *QueryParser {
	columnMap := make(map[string]int)
	for i, header := range headers {
		columnMap[strings.ToLower(header)] = i
	}
	return &QueryParser{columnMap: columnMap}
}

// ParseQuery parses queryStr. An empty query yields an empty Query.
func (qp *QueryParser) ParseQuery(queryStr string) (*Query, error) {
	query := &Query{Clauses: make([]Clause, 0)}
	if strings.TrimSpace(queryStr) == "" {
		return query, nil
	}

	for _, part := range splitByAnd(queryStr) {
		if part == "" {
			return nil, fmt.Errorf("invalid query: empty clause")
		}
		clause, err := qp.parseClause(part)
		if err != nil {
			return nil, err
		}
		query.Clauses = append(query.Clauses, clause)
	}
	return query, nil
}

// splitByAnd splits query on the word AND, case-insensitively.
func splitByAnd(query string) []string {
	parts := make([]string, 0)
	start := 0
	for i := 0; i+3 <= len(query); i++ {
		if !strings.EqualFold(query[i:i+3], "AND") {
			continue
		}
		if (i == 0 || isWhitespace(query[i-1])) && (i+3 == len(query) || isWhitespace(query[i+3])) {
			parts = append(parts, strings.TrimSpace(query[start:i]))
			start = i + 3
			i += 2
		}
	}
	return append(parts, strings.TrimSpace(query[start:]))
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

var operators = []struct {
	op     CompOp
	symbol string
}{
	{OpGreaterEqual, ">="},
	{OpLessEqual, "<="},
	{OpMatch, "~"},
	{OpEqual, "="},
}

// parseClause parses one clause like "column >= value". The leftmost
// operator wins, so patterns may themselves contain operator characters.
func (qp *QueryParser) parseClause(text string) (Clause, error) {
	best, bestIdx := -1, len(text)
	for i, o := range operators {
		if idx := strings.Index(text, o.symbol); idx > 0 && idx < bestIdx {
			best, bestIdx = i, idx
		}
	}
	if best < 0 {
		if strings.ContainsAny(text, "<>!") {
			return Clause{}, fmt.Errorf("unsupported operator in %q, use >=, <=, = or ~", text)
		}
		return Clause{}, fmt.Errorf("missing operator in %q", text)
	}

	o := operators[best]
	name := strings.TrimSpace(text[:bestIdx])
	rest := text[bestIdx+len(o.symbol):]
	if strings.HasSuffix(name, ">") || strings.HasSuffix(name, "<") || strings.HasSuffix(name, "!") {
		return Clause{}, fmt.Errorf("unsupported operator in %q, use >=, <=, = or ~", text)
	}

	col, ok := qp.columnMap[strings.ToLower(name)]
	if !ok {
		return Clause{}, fmt.Errorf("unknown column: %s", name)
	}
	value := strings.Trim(strings.TrimSpace(rest), "\"'")
	if value == "" {
		return Clause{}, fmt.Errorf("missing value in %q", text)
	}
	return Clause{
		Column:   col,
		Name:     name,
		Operator: o.op,
		Value:    value,
	}, nil
}

// Apply sets the filters named by q on p. Columns q does not mention keep
// their filters. Every clause is checked before any filter changes.
func (q *Query) Apply(p *proxy.TableFilterProxy) error {
	steps := make([]func() error, 0, len(q.Clauses))
	for _, c := range q.Clauses {
		step, err := c.plan(p)
		if err != nil {
			return err
		}
		steps = append(steps, step)
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

func (c Clause) plan(p *proxy.TableFilterProxy) (func() error, error) {
	col := c.Column
	if c.Operator == OpMatch {
		re, err := regexp.Compile(c.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", datatable.ErrInvalidPattern, err)
		}
		return func() error { return p.SetRegexFilterCompiled(col, re) }, nil
	}

	if d, err := time.Parse(datatable.DateLayout, c.Value); err == nil {
		switch c.Operator {
		case OpGreaterEqual:
			return func() error { return p.SetDateFilter(col, d, time.Time{}) }, nil
		case OpLessEqual:
			return func() error { return p.SetDateFilter(col, time.Time{}, d) }, nil
		default:
			return func() error { return p.SetDateFilter(col, d, d) }, nil
		}
	}

	if c.Operator == OpEqual {
		if isNumeric(p.Source(), col) {
			return nil, fmt.Errorf("%w: %s", errEqualOnNumber, c.Name)
		}
		re := regexp.MustCompile("^" + regexp.QuoteMeta(c.Value) + "$")
		return func() error { return p.SetRegexFilterCompiled(col, re) }, nil
	}

	n, err := cast.ToFloat64E(c.Value)
	if err != nil {
		return nil, fmt.Errorf("%q is neither a number nor a date (yyyy-mm-dd)", c.Value)
	}
	if n < 0 {
		return nil, errNegativeBound
	}
	if c.Operator == OpGreaterEqual {
		return func() error { return p.SetNumberFilter(col, n, proxy.KeepBound) }, nil
	}
	return func() error { return p.SetNumberFilter(col, proxy.KeepBound, n) }, nil
}

var errEqualOnNumber = errors.New("= compares text, use >= and <= on number column")

func isNumeric(src datatable.DataSource, col int) bool {
	dt, err := src.ColumnType(col)
	if err != nil {
		return false
	}
	return dt == datatable.TypeInt || dt == datatable.TypeFloat
}

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

// Package datatable holds the shared vocabulary of the sales tables: data
// sources, typed cell values, orderings and sort state.
package datatable

import (
	"fmt"
	"time"
)

// DateLayout is the textual layout of date cells.
const DateLayout = "2006-01-02"

// DataType represents the type of data in a column.
type DataType int

const (
	// TypeString represents string data.
	TypeString DataType = iota
	// TypeInt represents integer data (any size).
	TypeInt
	// TypeFloat represents floating-point data (any precision).
	TypeFloat
	// TypeBool represents boolean data.
	TypeBool
	// TypeDate represents date data (without time).
	TypeDate
	// TypeTimestamp represents timestamp data (date + time).
	TypeTimestamp
)

// String returns the string representation of a DataType.
func (dt DataType) String() string {
	switch dt {
	case TypeString:
		return "String"
	case TypeInt:
		return "Int"
	case TypeFloat:
		return "Float"
	case TypeBool:
		return "Bool"
	case TypeDate:
		return "Date"
	case TypeTimestamp:
		return "Timestamp"
	default:
		return fmt.Sprintf("Unknown(%d)", dt)
	}
}

// Value is a typed container for cell values.
// It holds the raw value, type information, and a pre-formatted string for display.
type Value struct {
	// Raw holds the underlying value.
	// The type depends on the DataType field.
	Raw interface{}

	// Type indicates the data type of this value.
	Type DataType

	// IsNull indicates whether this value is null/nil.
	IsNull bool

	// Formatted is a pre-formatted string representation for display.
	// Text filters and text comparison operate on this string.
	Formatted string
}

// NewValue creates a new Value from a raw value and type.
func NewValue(raw interface{}, dataType DataType) Value {
	if raw == nil {
		return NewNullValue(dataType)
	}

	return Value{
		Raw:       raw,
		Type:      dataType,
		IsNull:    false,
		Formatted: formatValue(raw, dataType),
	}
}

// NewNullValue creates a null value of the specified type.
func NewNullValue(dataType DataType) Value {
	return Value{
		Raw:       nil,
		Type:      dataType,
		IsNull:    true,
		Formatted: "",
	}
}

// StringValue is shorthand for a TypeString value.
func StringValue(s string) Value {
	return NewValue(s, TypeString)
}

// formatValue converts a raw value to a formatted string.
func formatValue(raw interface{}, dataType DataType) string {
	if t, ok := raw.(time.Time); ok {
		if dataType == TypeDate {
			return t.Format(DateLayout)
		}
		return t.Format(time.RFC3339)
	}
	return fmt.Sprintf("%v", raw)
}

// Ordering is the result of comparing two cells.
type Ordering int

const (
	// Less means the left cell sorts before the right one.
	Less Ordering = -1
	// Equal means the cells are not ordered relative to each other.
	Equal Ordering = 0
	// Greater means the left cell sorts after the right one.
	Greater Ordering = 1
)

// String returns the string representation of an Ordering.
func (o Ordering) String() string {
	switch o {
	case Less:
		return "Less"
	case Equal:
		return "Equal"
	case Greater:
		return "Greater"
	default:
		return fmt.Sprintf("Unknown(%d)", int(o))
	}
}

// Reverse flips Less and Greater.
func (o Ordering) Reverse() Ordering {
	return -o
}

// Comparator orders two cells of the same column.
type Comparator func(a, b Value) Ordering

// FilterMethod names the predicate family active on a column.
type FilterMethod int

const (
	// MethodNone means the column imposes no constraint.
	MethodNone FilterMethod = iota
	// MethodNumberRange keeps cells inside an inclusive numeric range.
	MethodNumberRange
	// MethodRegexMatch keeps cells whose text contains a pattern match.
	MethodRegexMatch
	// MethodDateRange keeps cells inside an inclusive date range.
	MethodDateRange
)

// String returns the string representation of a FilterMethod.
func (m FilterMethod) String() string {
	switch m {
	case MethodNone:
		return "None"
	case MethodNumberRange:
		return "NumberRange"
	case MethodRegexMatch:
		return "RegexMatch"
	case MethodDateRange:
		return "DateRange"
	default:
		return fmt.Sprintf("Unknown(%d)", int(m))
	}
}

// Metadata holds optional metadata about a data source.
type Metadata map[string]interface{}

// SortDirection specifies the direction of sorting.
type SortDirection int

const (
	// SortNone indicates no sorting.
	SortNone SortDirection = iota
	// SortAscending indicates ascending sort order.
	SortAscending
	// SortDescending indicates descending sort order.
	SortDescending
)

// String returns the string representation of a SortDirection.
func (sd SortDirection) String() string {
	switch sd {
	case SortNone:
		return "None"
	case SortAscending:
		return "Ascending"
	case SortDescending:
		return "Descending"
	default:
		return fmt.Sprintf("Unknown(%d)", sd)
	}
}

// SortState represents the current sorting configuration.
type SortState struct {
	// Column is the index of the sorted column (-1 if unsorted).
	Column int
	// Direction is the sort direction.
	Direction SortDirection
}

// IsSorted returns true if this state represents an active sort.
func (s SortState) IsSorted() bool {
	return s.Column >= 0 && s.Direction != SortNone
}

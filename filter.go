package docsel

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
	"golang.org/x/text/cases"
)

// RegexMatchTimeout bounds the time a text_matches_regex filter may spend on
// a single element.
var RegexMatchTimeout = 2 * time.Second

// FilterKind names a registered filter.
type FilterKind string

// Registered filters.
const (
	FilterIndexInParent    FilterKind = "index_in_parent"
	FilterContainsText     FilterKind = "contains_text"
	FilterTextMatchesRegex FilterKind = "text_matches_regex"
	FilterStyle            FilterKind = "style"
	FilterIsBold           FilterKind = "is_bold"
	FilterRowIndex         FilterKind = "row_index"
	FilterColumnIndex      FilterKind = "column_index"
	FilterTableIndex       FilterKind = "table_index"
	FilterShapeType        FilterKind = "shape_type"
	FilterIsListItem       FilterKind = "is_list_item"
	FilterRangeStart       FilterKind = "range_start"
	FilterRangeEnd         FilterKind = "range_end"
)

// valueType is the JSON type a filter's value must have.
type valueType int

const (
	intValue valueType = iota
	boolValue
	stringValue
)

var filterValueTypes = map[FilterKind]valueType{
	FilterIndexInParent:    intValue,
	FilterContainsText:     stringValue,
	FilterTextMatchesRegex: stringValue,
	FilterStyle:            stringValue,
	FilterIsBold:           boolValue,
	FilterRowIndex:         intValue,
	FilterColumnIndex:      intValue,
	FilterTableIndex:       intValue,
	FilterShapeType:        stringValue,
	FilterIsListItem:       boolValue,
	FilterRangeStart:       intValue,
	FilterRangeEnd:         intValue,
}

// Filter is a single predicate narrowing a candidate list. Only the value
// field matching the kind's value type is meaningful.
type Filter struct {
	Kind FilterKind
	Int  int
	Bool bool
	Text string

	re *regexp2.Regexp
}

// IndexInParent keeps the element at position i of the current list.
// Negative positions count from the end.
func IndexInParent(i int) Filter { return Filter{Kind: FilterIndexInParent, Int: i} }

// ContainsText keeps elements whose text contains s, ignoring case.
func ContainsText(s string) Filter { return Filter{Kind: FilterContainsText, Text: s} }

// TextMatchesRegex keeps elements whose trimmed text matches pattern.
func TextMatchesRegex(pattern string) Filter {
	return Filter{Kind: FilterTextMatchesRegex, Text: pattern}
}

// Style keeps elements whose style name is exactly name.
func Style(name string) Filter { return Filter{Kind: FilterStyle, Text: name} }

// IsBold keeps non-heading elements whose bold flag equals b.
func IsBold(b bool) Filter { return Filter{Kind: FilterIsBold, Bool: b} }

// RowIndex keeps cells in row i.
func RowIndex(i int) Filter { return Filter{Kind: FilterRowIndex, Int: i} }

// ColumnIndex keeps cells in column i.
func ColumnIndex(i int) Filter { return Filter{Kind: FilterColumnIndex, Int: i} }

// TableIndex keeps cells of the table with ordinal i.
func TableIndex(i int) Filter { return Filter{Kind: FilterTableIndex, Int: i} }

// ShapeType keeps inline shapes of the named type, ignoring case.
func ShapeType(name string) Filter { return Filter{Kind: FilterShapeType, Text: name} }

// IsListItem keeps list paragraphs when b is true and excludes them otherwise.
func IsListItem(b bool) Filter { return Filter{Kind: FilterIsListItem, Bool: b} }

// RangeStart keeps elements starting at or after offset.
func RangeStart(offset int) Filter { return Filter{Kind: FilterRangeStart, Int: offset} }

// RangeEnd keeps elements ending at or before offset.
func RangeEnd(offset int) Filter { return Filter{Kind: FilterRangeEnd, Int: offset} }

// Validate checks that the filter is registered and, for regex filters, that
// the pattern compiles.
func (f *Filter) Validate() error {
	if _, ok := filterValueTypes[f.Kind]; !ok {
		return SyntaxErrorf(f, "unknown filter %q", f.Kind)
	}
	if f.Kind == FilterTextMatchesRegex && f.re == nil {
		re, err := regexp2.Compile(f.Text, regexp2.None)
		if err != nil {
			return SyntaxErrorf(f, "invalid regex pattern %q: %s", f.Text, err)
		}
		re.MatchTimeout = RegexMatchTimeout
		f.re = re
	}
	return nil
}

// value returns the filter's value as a generic JSON value.
func (f Filter) value() any {
	switch filterValueTypes[f.Kind] {
	case boolValue:
		return f.Bool
	case stringValue:
		return f.Text
	default:
		return f.Int
	}
}

// MarshalJSON encodes the filter as a single-key object.
func (f Filter) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{string(f.Kind): f.value()})
}

// UnmarshalJSON decodes a single-key filter object.
func (f *Filter) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	decoded, err := DecodeFilter(v)
	if err != nil {
		return err
	}
	*f = decoded
	return nil
}

// DecodeFilter converts a generic JSON value of the form {name: value} into
// a validated Filter. Values are never coerced between types.
func DecodeFilter(v any) (Filter, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return Filter{}, SyntaxErrorf(v, "filter must be an object")
	}
	if len(obj) != 1 {
		return Filter{}, SyntaxErrorf(v, "filter must have exactly one key, got %d", len(obj))
	}

	var name string
	var raw any
	for name, raw = range obj {
	}

	kind := FilterKind(name)
	typ, ok := filterValueTypes[kind]
	if !ok {
		return Filter{}, SyntaxErrorf(v, "unknown filter %q", name)
	}

	f := Filter{Kind: kind}
	switch typ {
	case intValue:
		n, ok := asInt(raw)
		if !ok {
			return Filter{}, SyntaxErrorf(v, "filter %q requires an integer", name)
		}
		f.Int = n
	case boolValue:
		b, ok := raw.(bool)
		if !ok {
			return Filter{}, SyntaxErrorf(v, "filter %q requires a boolean", name)
		}
		f.Bool = b
	case stringValue:
		s, ok := raw.(string)
		if !ok {
			return Filter{}, SyntaxErrorf(v, "filter %q requires a string", name)
		}
		f.Text = s
	}
	if err := f.Validate(); err != nil {
		return Filter{}, err
	}
	return f, nil
}

// asInt converts an integral JSON number to int.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int(n), true
	}
	return 0, false
}

// ApplyFilters applies filters left to right, each one receiving the output
// of the previous one. Processing stops as soon as the list is empty.
func ApplyFilters(elements []Element, filters []Filter) ([]Element, error) {
	for i := range filters {
		if len(elements) == 0 {
			return elements, nil
		}
		var err error
		if elements, err = filters[i].apply(elements); err != nil {
			return nil, err
		}
	}
	return elements, nil
}

func (f *Filter) apply(elements []Element) ([]Element, error) {
	switch f.Kind {
	case FilterIndexInParent:
		i := f.Int
		if i < 0 {
			i += len(elements)
		}
		if i < 0 || i >= len(elements) {
			return []Element{}, nil
		}
		return []Element{elements[i]}, nil
	case FilterContainsText:
		fold := cases.Fold()
		needle := fold.String(f.Text)
		return keep(elements, func(el Element) bool {
			return strings.Contains(fold.String(el.Text()), needle)
		}), nil
	case FilterTextMatchesRegex:
		if err := f.Validate(); err != nil {
			return nil, err
		}
		var matchErr error
		out := keep(elements, func(el Element) bool {
			if matchErr != nil {
				return false
			}
			ok, err := f.re.MatchString(strings.TrimSpace(el.Text()))
			if err != nil {
				matchErr = fmt.Errorf("match %q: %w", f.Text, err)
				return false
			}
			return ok
		})
		if matchErr != nil {
			return nil, matchErr
		}
		return out, nil
	case FilterStyle:
		return keep(elements, func(el Element) bool {
			return el.StyleName() == f.Text
		}), nil
	case FilterIsBold:
		return keep(elements, func(el Element) bool {
			if IsHeadingStyle(el.StyleName()) {
				return false
			}
			bold, ok := el.Bold()
			return ok && bold == f.Bool
		}), nil
	case FilterRowIndex:
		return keepCells(elements, func(pos CellPosition) bool { return pos.Row == f.Int }), nil
	case FilterColumnIndex:
		return keepCells(elements, func(pos CellPosition) bool { return pos.Column == f.Int }), nil
	case FilterTableIndex:
		return keepCells(elements, func(pos CellPosition) bool { return pos.Table == f.Int }), nil
	case FilterShapeType:
		fold := cases.Fold()
		want := fold.String(f.Text)
		return keep(elements, func(el Element) bool {
			t := el.ShapeType()
			return t != "" && fold.String(t) == want
		}), nil
	case FilterIsListItem:
		return keep(elements, func(el Element) bool {
			return (el.ListString() != "") == f.Bool
		}), nil
	case FilterRangeStart:
		return keep(elements, func(el Element) bool { return el.Range().Start >= f.Int }), nil
	case FilterRangeEnd:
		return keep(elements, func(el Element) bool { return el.Range().End <= f.Int }), nil
	default:
		return nil, SyntaxErrorf(f, "unknown filter %q", f.Kind)
	}
}

func keep(elements []Element, pred func(Element) bool) []Element {
	out := make([]Element, 0, len(elements))
	for _, el := range elements {
		if pred(el) {
			out = append(out, el)
		}
	}
	return out
}

func keepCells(elements []Element, pred func(CellPosition) bool) []Element {
	return keep(elements, func(el Element) bool {
		pos, ok := el.Cell()
		return ok && pred(pos)
	})
}

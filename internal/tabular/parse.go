// Package tabular reads spreadsheet content produced by the model: a JSON array of row objects,
// possibly wrapped in code fences or prose.
package tabular

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"

	"github.com/jonathan/docstudio/internal/llm"
	"github.com/jonathan/docstudio/internal/schemas"
	"github.com/jonathan/docstudio/internal/types"
)

// MissingValue is rendered for a header a row does not carry.
const MissingValue = ""

// Table is parsed tabular content. Headers come from the first row only; every row is
// rendered against them, so all rows have len(Headers) cells.
type Table struct {
	Headers []string
	Rows    []types.TabularRow

	// typed mirrors Rows with JSON-native values: float64, bool, string or nil.
	typed [][]any
}

// TypedRow returns row i with numbers as float64 and booleans as bool, for encoders that keep cell types.
// Numbers float64 cannot hold exactly stay as their JSON text.
func (t *Table) TypedRow(i int) []any {
	return t.typed[i]
}

// Parse extracts a Table from raw model output.
func Parse(raw string) (*Table, error) {
	cleaned := llm.CleanJSONBlock(raw)

	if !gjson.Valid(cleaned) {
		return nil, &MalformedError{Reason: ReasonInvalidJSON, Message: "content is not valid JSON"}
	}

	doc := gjson.Parse(cleaned)
	if err := schemas.Validate(schemas.TabularRows, cleaned); err != nil {
		return nil, shapeError(doc, err)
	}

	elements := doc.Array()
	headers := keysOf(elements[0])

	table := &Table{
		Headers: headers,
		Rows:    make([]types.TabularRow, 0, len(elements)),
		typed:   make([][]any, 0, len(elements)),
	}
	for _, element := range elements {
		row := make(types.TabularRow, len(headers))
		typed := make([]any, len(headers))
		for i, header := range headers {
			value := element.Get(gjson.Escape(header))
			row[i] = types.Cell{Column: header, Value: displayString(value)}
			typed[i] = typedValue(value)
		}
		table.Rows = append(table.Rows, row)
		table.typed = append(table.typed, typed)
	}
	return table, nil
}

func shapeError(doc gjson.Result, cause error) *MalformedError {
	switch {
	case !doc.IsArray():
		return &MalformedError{Reason: ReasonNotArray, Message: "content is not a JSON array", Cause: cause}
	case len(doc.Array()) == 0:
		return &MalformedError{Reason: ReasonEmpty, Message: "content is an empty array", Cause: cause}
	default:
		return &MalformedError{Reason: ReasonNotObjects, Message: "content rows are not JSON objects", Cause: cause}
	}
}

// keysOf returns an object's keys in document order. Duplicate keys keep their first position.
func keysOf(object gjson.Result) []string {
	var keys []string
	seen := make(map[string]bool)
	object.ForEach(func(key, _ gjson.Result) bool {
		if !seen[key.String()] {
			seen[key.String()] = true
			keys = append(keys, key.String())
		}
		return true
	})
	return keys
}

// displayString renders a value the way it appears in the preview and the document text.
func displayString(value gjson.Result) string {
	if !value.Exists() {
		return MissingValue
	}
	switch value.Type {
	case gjson.String:
		return value.Str
	case gjson.Number:
		return value.Raw
	case gjson.True:
		return "true"
	case gjson.False:
		return "false"
	case gjson.Null:
		return ""
	default:
		return string(pretty.Ugly([]byte(value.Raw)))
	}
}

func typedValue(value gjson.Result) any {
	if !value.Exists() {
		return nil
	}
	switch value.Type {
	case gjson.Number:
		if f, ok := exactFloat(value.Raw); ok {
			return f
		}
		return value.Raw
	case gjson.True, gjson.False:
		return value.Bool()
	case gjson.Null:
		return nil
	default:
		return displayString(value)
	}
}

// exactFloat parses a JSON number and reports whether float64 holds it without loss.
// Overflowing literals and integers past 2^53 fail and are kept as their text.
func exactFloat(raw string) (float64, bool) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	if f == 0 {
		mantissa, _, _ := strings.Cut(strings.ToLower(raw), "e")
		return f, strings.Trim(mantissa, "-+0.") == ""
	}
	want, ok := new(big.Rat).SetString(raw)
	if !ok {
		return 0, false
	}
	got, ok := new(big.Rat).SetString(strconv.FormatFloat(f, 'g', -1, 64))
	return f, ok && got.Cmp(want) == 0
}

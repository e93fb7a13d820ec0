package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Row is one provider row with cells keyed by field name.
type Row map[string]any

func (r Row) Has(field string) bool {
	_, ok := r[field]
	return ok
}

// String returns the cell as text. Missing and null cells read as "".
func (r Row) String(field string) string {
	switch v := r[field].(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// Float returns the cell as a number. Missing, null and unparsable cells read as 0.
func (r Row) Float(field string) float64 {
	switch v := r[field].(type) {
	case float64:
		return v
	case json.Number:
		f, _ := v.Float64()
		return f
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		return f
	}
	return 0
}

// Bool treats 1, "1", true and "true" as true.
func (r Row) Bool(field string) bool {
	switch v := r[field].(type) {
	case bool:
		return v
	case string:
		return v == "1" || strings.EqualFold(v, "true")
	}
	return r.Float(field) == 1
}

package shotquery

import (
	"fmt"
	"strings"
)

// Compile converts a predicate to a parameterized SQLite condition over
// the JSON column named column. A nil predicate compiles to "1 = 1".
func Compile(column string, p Predicate) (string, []any, error) {
	if err := Validate(p); err != nil {
		return "", nil, err
	}
	return compile(column, p)
}

func compile(column string, p Predicate) (string, []any, error) {
	switch pred := p.(type) {
	case nil:
		return "1 = 1", nil, nil
	case Equals:
		return fmt.Sprintf("json_extract(%s, ?) = ?", column), []any{jsonPath(pred.Field), param(pred.Value)}, nil
	case NotEquals:
		return fmt.Sprintf("json_extract(%s, ?) != ?", column), []any{jsonPath(pred.Field), param(pred.Value)}, nil
	case Contains:
		return fmt.Sprintf("EXISTS (SELECT 1 FROM json_each(%s, ?) WHERE json_each.value = ?)", column),
			[]any{jsonPath(pred.Field), param(pred.Value)}, nil
	case And:
		if len(pred.Predicates) == 0 {
			return "1 = 1", nil, nil
		}
		parts := make([]string, 0, len(pred.Predicates))
		var params []any
		for _, sub := range pred.Predicates {
			sql, subParams, err := compile(column, sub)
			if err != nil {
				return "", nil, err
			}
			parts = append(parts, sql)
			params = append(params, subParams...)
		}
		return "(" + strings.Join(parts, " AND ") + ")", params, nil
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func jsonPath(field string) string {
	return "$." + field
}

// param converts a value to what json_extract returns for it. JSON
// booleans come back from SQLite as 1 and 0.
func param(v any) any {
	switch val := v.(type) {
	case bool:
		if val {
			return int64(1)
		}
		return int64(0)
	case int:
		return int64(val)
	default:
		return v
	}
}

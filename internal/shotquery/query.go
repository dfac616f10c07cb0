package shotquery

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Predicate is a condition on a shot's data.
//
// This is a sealed interface; only types in this package implement it.
type Predicate interface {
	predicateNode()
}

// Equals matches shots whose value at Field equals Value.
type Equals struct {
	Field string
	Value any
}

func (Equals) predicateNode() {}

// NotEquals matches shots whose value at Field is present and differs
// from Value.
type NotEquals struct {
	Field string
	Value any
}

func (NotEquals) predicateNode() {}

// Contains matches shots whose array at Field holds Value.
type Contains struct {
	Field string
	Value any
}

func (Contains) predicateNode() {}

// And matches when every predicate matches. An empty And matches all shots.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

var fieldPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

// Parse builds a predicate from "field=value", "field!=value" and
// "field~=value" expressions. Values are YAML scalars: 1001 is an
// integer, true a boolean, sh010 a string.
func Parse(exprs []string) (Predicate, error) {
	and := And{Predicates: make([]Predicate, 0, len(exprs))}
	for _, expr := range exprs {
		p, err := parseExpr(expr)
		if err != nil {
			return nil, err
		}
		and.Predicates = append(and.Predicates, p)
	}
	if len(and.Predicates) == 1 {
		return and.Predicates[0], nil
	}
	return and, nil
}

func parseExpr(expr string) (Predicate, error) {
	i := strings.IndexByte(expr, '=')
	if i <= 0 {
		return nil, fmt.Errorf("invalid filter %q: want field=value", expr)
	}

	field, op := expr[:i], "="
	if last := field[len(field)-1]; last == '!' || last == '~' {
		field, op = field[:len(field)-1], string(last)+"="
	}
	field = strings.TrimSpace(field)

	value, err := parseValue(expr[i+1:])
	if err != nil {
		return nil, fmt.Errorf("invalid filter %q: %w", expr, err)
	}

	var p Predicate
	switch op {
	case "=":
		p = Equals{Field: field, Value: value}
	case "!=":
		p = NotEquals{Field: field, Value: value}
	default:
		p = Contains{Field: field, Value: value}
	}
	if err := Validate(p); err != nil {
		return nil, fmt.Errorf("invalid filter %q: %w", expr, err)
	}
	return p, nil
}

func parseValue(s string) (any, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	var v any
	if err := yaml.Unmarshal([]byte(s), &v); err != nil {
		return nil, err
	}
	switch v.(type) {
	case string, int, bool, float64:
		return v, nil
	case nil:
		return nil, fmt.Errorf("null never matches")
	default:
		return nil, fmt.Errorf("value must be a scalar")
	}
}

// Validate checks field paths and values of a predicate tree.
func Validate(p Predicate) error {
	switch pred := p.(type) {
	case nil:
		return nil
	case Equals:
		return validateTerm(pred.Field, pred.Value)
	case NotEquals:
		return validateTerm(pred.Field, pred.Value)
	case Contains:
		return validateTerm(pred.Field, pred.Value)
	case And:
		for i, sub := range pred.Predicates {
			if err := Validate(sub); err != nil {
				return fmt.Errorf("and[%d]: %w", i, err)
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func validateTerm(field string, value any) error {
	if !fieldPattern.MatchString(field) {
		return fmt.Errorf("invalid field path %q", field)
	}
	switch value.(type) {
	case string, int, int64, bool, float64:
		return nil
	default:
		return fmt.Errorf("field %s: unsupported value type %T", field, value)
	}
}

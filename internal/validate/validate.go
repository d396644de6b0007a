// Package validate checks single wizard field values against declared rules.
//
// Validation never panics and never returns Go errors: a failing value is an
// expected outcome reported through Result.
package validate

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Kind is the value type a field is parsed into before bound checks run.
type Kind int

const (
	KindText Kind = iota
	KindInt
	KindDecimal
	KindDate
	KindBool
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindInt:
		return "int"
	case KindDecimal:
		return "decimal"
	case KindDate:
		return "date"
	case KindBool:
		return "bool"
	default:
		return "unknown"
	}
}

// Rules declares the constraints of one field.
type Rules struct {
	Required bool
	Kind     Kind

	// Numeric bounds for KindInt and KindDecimal (nil = unbounded).
	Min *float64
	Max *float64

	// Rune length bounds for KindText (0 = unbounded).
	MinLen int
	MaxLen int

	// OneOf restricts a text value to an enumeration. Empty means no restriction.
	OneOf []string

	// NotBefore names another date field this date must not precede.
	// Resolved through the Lookup passed to ValidateWith.
	NotBefore string
}

// Bound returns a pointer for use in Rules.Min and Rules.Max.
func Bound(v float64) *float64 {
	return &v
}

// Result is the outcome of validating one field.
type Result struct {
	Valid   bool
	Message string
}

func pass() Result {
	return Result{Valid: true}
}

func fail(msg string) Result {
	return Result{Valid: false, Message: msg}
}

// Lookup resolves the current value of another field path.
type Lookup func(path string) any

// Validate checks value against rules. Cross-field rules are ignored.
func Validate(path string, value any, rules Rules) Result {
	return ValidateWith(path, value, rules, nil)
}

// ValidateWith checks value against rules, resolving cross-field rules
// (NotBefore) through lookup. A nil lookup skips cross-field checks.
func ValidateWith(path string, value any, rules Rules, lookup Lookup) Result {
	if IsAbsent(value) {
		if rules.Required {
			return fail(message(keyRequired))
		}
		return pass()
	}

	parsed, err := Parse(rules.Kind, value)
	if err != nil {
		return fail(parseMessage(rules.Kind))
	}

	switch rules.Kind {
	case KindText:
		return checkText(parsed.(string), rules)
	case KindInt, KindDecimal:
		return checkNumber(toFloat(parsed), rules)
	case KindDate:
		return checkDate(path, parsed, rules, lookup)
	}
	return pass()
}

// IsAbsent reports whether value counts as "not provided". Nil, empty and
// whitespace-only strings, and zero dates are all absent.
func IsAbsent(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	}
	if t, ok := asTime(value); ok {
		return t.IsZero()
	}
	return false
}

func checkText(s string, rules Rules) Result {
	s = strings.TrimSpace(s)
	if rules.MinLen > 0 {
		if err := engine.Var(s, fmt.Sprintf("min=%d", rules.MinLen)); err != nil {
			return fail(message(keyTextMin, strconv.Itoa(rules.MinLen)))
		}
	}
	if rules.MaxLen > 0 {
		if err := engine.Var(s, fmt.Sprintf("max=%d", rules.MaxLen)); err != nil {
			return fail(message(keyTextMax, strconv.Itoa(rules.MaxLen)))
		}
	}
	if len(rules.OneOf) > 0 && !oneOf(s, rules.OneOf) {
		return fail(message(keyOneOf))
	}
	return pass()
}

// oneOf reports whether s is one of options. Options the validator's oneof
// tag cannot express (empty, or holding separators) are matched directly.
func oneOf(s string, options []string) bool {
	if slices.ContainsFunc(options, func(o string) bool {
		return o == "" || strings.ContainsAny(o, " \t\n,|'")
	}) {
		return slices.Contains(options, s)
	}
	return engine.Var(s, "oneof="+strings.Join(options, " ")) == nil
}

func checkNumber(n float64, rules Rules) Result {
	if rules.Min != nil {
		if err := engine.Var(n, "min="+formatBound(*rules.Min)); err != nil {
			return fail(fieldMessage(err, formatBound(*rules.Min)))
		}
	}
	if rules.Max != nil {
		if err := engine.Var(n, "max="+formatBound(*rules.Max)); err != nil {
			return fail(fieldMessage(err, formatBound(*rules.Max)))
		}
	}
	return pass()
}

func checkDate(path string, parsed any, rules Rules, lookup Lookup) Result {
	if rules.NotBefore == "" || lookup == nil {
		return pass()
	}
	other := lookup(rules.NotBefore)
	if IsAbsent(other) {
		// The other field reports its own absence.
		return pass()
	}
	otherParsed, err := Parse(KindDate, other)
	if err != nil {
		return pass()
	}
	if err := engine.VarWithValue(parsed, otherParsed, "gtefield"); err != nil {
		return fail(message(keyNotBefore, rules.NotBefore))
	}
	return pass()
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case float64:
		return n
	}
	return 0
}

func formatBound(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// fieldMessage translates a numeric bound failure reported by the engine.
func fieldMessage(err error, param string) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return message(keyInvalid)
	}
	switch verrs[0].Tag() {
	case "min":
		return message(keyNumberMin, param)
	case "max":
		return message(keyNumberMax, param)
	}
	return message(keyInvalid)
}

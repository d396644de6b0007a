package validate

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrParse is returned when a raw input cannot be read as the requested kind.
var ErrParse = errors.New("value cannot be parsed")

// Date layouts accepted from text inputs, most specific first.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Parse converts a raw field value into the Go type for kind: string, int,
// float64, time.Time or bool. Parse failures are never coerced to zero.
func Parse(kind Kind, value any) (any, error) {
	switch kind {
	case KindText:
		if s, ok := value.(string); ok {
			return s, nil
		}
	case KindInt:
		return parseInt(value)
	case KindDecimal:
		return parseDecimal(value)
	case KindDate:
		if t, ok := asTime(value); ok {
			return t, nil
		}
		if s, ok := value.(string); ok {
			return ParseDate(s)
		}
	case KindBool:
		switch v := value.(type) {
		case bool:
			return v, nil
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return nil, fmt.Errorf("%w: %q is not a boolean", ErrParse, v)
			}
			return b, nil
		}
	}
	return nil, fmt.Errorf("%w: %T as %s", ErrParse, value, kind)
}

// ParseDate reads a date or date-time typed by a user.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q is not a date", ErrParse, s)
}

func parseInt(value any) (any, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: %v is not a whole number", ErrParse, v)
		}
		// float64(math.MaxInt) may round past the largest int, so that bound is exclusive.
		if v < math.MinInt || v >= math.MaxInt {
			return nil, fmt.Errorf("%w: %v is out of range", ErrParse, v)
		}
		return int(v), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a whole number", ErrParse, v)
		}
		return n, nil
	}
	return nil, fmt.Errorf("%w: %T as int", ErrParse, value)
}

func parseDecimal(value any) (any, error) {
	var f float64
	switch v := value.(type) {
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case float64:
		f = v
	case string:
		s := strings.TrimSpace(v)
		// Accept a single decimal comma ("25,50").
		if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
			s = strings.Replace(s, ",", ".", 1)
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", ErrParse, v)
		}
		f = parsed
	default:
		return nil, fmt.Errorf("%w: %T as decimal", ErrParse, value)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("%w: %v is not a finite number", ErrParse, f)
	}
	return f, nil
}

func asTime(value any) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, true
	case *time.Time:
		if v == nil {
			return time.Time{}, true
		}
		return *v, true
	}
	return time.Time{}, false
}

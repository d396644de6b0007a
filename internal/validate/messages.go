package validate

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
)

// Message keys registered with the translator.
const (
	keyRequired  = "required"
	keyInvalid   = "invalid"
	keyTextMin   = "text.min"
	keyTextMax   = "text.max"
	keyNumberMin = "number.min"
	keyNumberMax = "number.max"
	keyOneOf     = "oneof"
	keyNotBefore = "date.notbefore"
	keyParseInt  = "parse.int"
	keyParseNum  = "parse.decimal"
	keyParseDate = "parse.date"
	keyParseBool = "parse.bool"
	keyParseText = "parse.text"
)

var texts = map[string]string{
	keyRequired:  "this field is required",
	keyInvalid:   "invalid value",
	keyTextMin:   "must contain at least {0} characters",
	keyTextMax:   "must contain at most {0} characters",
	keyNumberMin: "must be at least {0}",
	keyNumberMax: "must be at most {0}",
	keyOneOf:     "is not one of the allowed options",
	keyNotBefore: "must not be before {0}",
	keyParseInt:  "must be a whole number",
	keyParseNum:  "must be a number",
	keyParseDate: "must be a valid date",
	keyParseBool: "must be yes or no",
	keyParseText: "must be text",
}

var (
	// engine runs the bound checks. It is safe for concurrent use.
	engine     *validator.Validate
	translator ut.Translator
)

func init() {
	engine = validator.New(validator.WithRequiredStructEnabled())
	// Report struct failures under their JSON names.
	engine.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	translator, _ = uni.GetTranslator("en")
	for key, text := range texts {
		_ = translator.Add(key, text, false)
	}
}

// message renders the text registered under key with positional params.
func message(key string, params ...string) string {
	s, err := translator.T(key, params...)
	if err != nil {
		return texts[keyInvalid]
	}
	return s
}

func parseMessage(kind Kind) string {
	switch kind {
	case KindInt:
		return message(keyParseInt)
	case KindDecimal:
		return message(keyParseNum)
	case KindDate:
		return message(keyParseDate)
	case KindBool:
		return message(keyParseBool)
	default:
		return message(keyParseText)
	}
}

// Engine exposes the shared validator for struct-level checks elsewhere
// (the assembled submission payload).
func Engine() *validator.Validate {
	return engine
}

// StructErrors flattens a struct validation error into JSON-path keyed
// messages ("batches[0].price"). The root struct name is dropped. Errors that
// are not validation errors yield nil.
func StructErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		path := fe.Namespace()
		if _, rest, ok := strings.Cut(path, "."); ok {
			path = rest
		}
		out[path] = structMessage(fe)
	}
	return out
}

func structMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return message(keyRequired)
	case "min", "max":
		key := keyNumberMin
		if fe.Kind() == reflect.String {
			key = keyTextMin
		}
		if fe.Tag() == "max" {
			key = keyNumberMax
			if fe.Kind() == reflect.String {
				key = keyTextMax
			}
		}
		return message(key, fe.Param())
	case "oneof":
		return message(keyOneOf)
	case "gtefield":
		return message(keyNotBefore, lowerFirst(fe.Param()))
	}
	return message(keyInvalid)
}

// lowerFirst turns a Go field name into its JSON spelling.
func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

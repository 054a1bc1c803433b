package validator

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// Allow-listed character sets for topic strings.
var (
	subjectCharset    = regexp.MustCompile(`^[\p{L}\p{N}\s.,'&()+#_-]+$`)
	subSubjectCharset = regexp.MustCompile(`^[\p{L}\p{N}\s.,'&()+#_/:-]+$`)
)

// charsetRule is a custom tag backed by an allow-list regexp.
type charsetRule struct {
	tag     string
	pattern *regexp.Regexp
	message string
}

var charsetRules = []charsetRule{
	{
		tag:     "subject_chars",
		pattern: subjectCharset,
		message: "{0} may only contain letters, digits, spaces and . , ' & ( ) + # _ -",
	},
	{
		tag:     "subsubject_chars",
		pattern: subSubjectCharset,
		message: "{0} may only contain letters, digits, spaces and . , ' & ( ) + # _ - / :",
	},
}

var (
	// trans is the singleton English translator for validation errors.
	trans     ut.Translator
	setupOnce sync.Once
)

// Setup registers the validator with English translations and the custom
// charset rules on Gin's binding engine. Safe to call more than once.
func Setup() {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*govalidator.Validate)
		if !ok {
			return
		}

		// Use JSON tag name for field names in error messages.
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		enLocale := en.New()
		uni := ut.New(enLocale, enLocale)
		trans, _ = uni.GetTranslator("en")
		_ = en_translations.RegisterDefaultTranslations(v, trans)

		for _, rule := range charsetRules {
			rule := rule
			_ = v.RegisterValidation(rule.tag, func(fl govalidator.FieldLevel) bool {
				return rule.pattern.MatchString(fl.Field().String())
			})
			_ = v.RegisterTranslation(rule.tag, trans,
				func(t ut.Translator) error { return t.Add(rule.tag, rule.message, true) },
				func(t ut.Translator, fe govalidator.FieldError) string {
					msg, _ := t.T(rule.tag, fe.Field())
					return msg
				},
			)
		}
	})
}

// Violation is a single broken constraint.
type Violation struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message"`
}

// ValidationError aggregates every violation found in one payload.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Checker is implemented by payloads with constraints spanning several
// fields. Check must tolerate values that already failed tag validation.
type Checker interface {
	Check() []Violation
}

// Normalizer is implemented by payloads that trim or default fields before
// validation.
type Normalizer interface {
	Normalize()
}

// Validate runs tag rules and, when implemented, Check on v. It returns nil
// or a *ValidationError listing every violation.
func Validate(v interface{}) error {
	Setup()

	var violations []Violation
	if err := binding.Validator.ValidateStruct(v); err != nil {
		violations = append(violations, TranslateErrors(err)...)
	}
	if c, ok := v.(Checker); ok {
		violations = append(violations, c.Check()...)
	}

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

// TranslateErrors turns a validation error into violations keyed by the
// JSON path of the offending field. A non-validation error yields a single
// "detail" violation.
func TranslateErrors(err error) []Violation {
	var ve govalidator.ValidationErrors
	if errors.As(err, &ve) {
		out := make([]Violation, 0, len(ve))
		for _, fe := range ve {
			out = append(out, Violation{
				Field:   fieldPath(fe.Namespace()),
				Rule:    fe.Tag(),
				Param:   fe.Param(),
				Message: fe.Translate(trans),
			})
		}
		return out
	}

	return []Violation{{Field: "detail", Rule: "invalid", Message: err.Error()}}
}

// Bind decodes the JSON request body into dst, normalizes it and validates it.
// A value of the wrong JSON type is reported alongside the rule violations of
// the rest of the body; only an empty or malformed body stops early.
// Returns nil or a *ValidationError.
func Bind(c *gin.Context, dst interface{}) error {
	if c.Request.Body == nil {
		return bodyError("request body is required")
	}
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return bodyError("request body could not be read: " + err.Error())
	}

	var typeViolation *Violation
	if err := json.NewDecoder(bytes.NewReader(raw)).Decode(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return decodeError(err)
		}
		typeViolation = typeMismatch(raw, typeErr)
	}

	if n, ok := dst.(Normalizer); ok {
		n.Normalize()
	}
	err = Validate(dst)
	if typeViolation == nil {
		return err
	}

	violations := []Violation{*typeViolation}
	var ve *ValidationError
	if errors.As(err, &ve) {
		for _, v := range ve.Violations {
			// The mistyped field was left zero, so its own rules add nothing.
			if v.Field != typeViolation.Field {
				violations = append(violations, v)
			}
		}
	}
	return &ValidationError{Violations: violations}
}

func decodeError(err error) error {
	if errors.Is(err, io.EOF) {
		return bodyError("request body is required")
	}
	return bodyError("request body must be valid JSON: " + err.Error())
}

func typeMismatch(raw []byte, typeErr *json.UnmarshalTypeError) *Violation {
	field := "body"
	if typeErr.Field != "" {
		field = typeErr.Field
		var doc interface{}
		if json.Unmarshal(raw, &doc) == nil {
			kind := strings.Fields(typeErr.Value + " ")[0]
			if path, ok := locate(doc, strings.Split(typeErr.Field, "."), kind, ""); ok {
				field = path
			}
		}
	}
	want := typeErr.Type.String()
	return &Violation{
		Field:   field,
		Rule:    "type",
		Param:   want,
		Message: fmt.Sprintf("%s must be of type %s", field, want),
	}
}

// locate resolves a dotted decoder path against the raw document, adding the
// index of every array it crosses. It returns the first value whose JSON kind
// matches the one the decoder rejected.
func locate(node interface{}, segs []string, kind, prefix string) (string, bool) {
	if arr, ok := node.([]interface{}); ok {
		if len(segs) == 0 && kind == "array" {
			return prefix, true
		}
		for i, el := range arr {
			if path, ok := locate(el, segs, kind, fmt.Sprintf("%s[%d]", prefix, i)); ok {
				return path, true
			}
		}
		return "", false
	}
	if len(segs) == 0 {
		return prefix, jsonKind(node) == kind
	}

	obj, ok := node.(map[string]interface{})
	if !ok {
		return "", false
	}
	child, found := obj[segs[0]]
	if !found {
		for k, v := range obj {
			if strings.EqualFold(k, segs[0]) {
				child, found = v, true
				break
			}
		}
	}
	if !found {
		return "", false
	}
	next := segs[0]
	if prefix != "" {
		next = prefix + "." + segs[0]
	}
	return locate(child, segs[1:], kind, next)
}

func jsonKind(v interface{}) string {
	switch v.(type) {
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "bool"
	case map[string]interface{}:
		return "object"
	case []interface{}:
		return "array"
	default:
		return "null"
	}
}

func bodyError(msg string) error {
	return &ValidationError{Violations: []Violation{{Field: "body", Rule: "json", Message: msg}}}
}

// fieldPath strips the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

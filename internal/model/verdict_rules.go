package model

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ramgerassy/ace-ai-sub001/internal/validator"
)

func checkLength(field, s string, min, max int) []validator.Violation {
	n := utf8.RuneCountInString(strings.TrimSpace(s))
	if n < min || n > max {
		return []validator.Violation{{
			Field:   field,
			Rule:    "length",
			Param:   fmt.Sprintf("%d-%d", min, max),
			Message: fmt.Sprintf("%s must be between %d and %d characters", field, min, max),
		}}
	}
	return nil
}

func checkSuggestions(suggestions []string, min, max int) []validator.Violation {
	var out []validator.Violation
	if len(suggestions) < min || len(suggestions) > max {
		rule, msg := "len", fmt.Sprintf("suggestions must contain exactly %d items", max)
		if min != max {
			rule, msg = "max", fmt.Sprintf("suggestions must contain at most %d items", max)
		}
		out = append(out, validator.Violation{
			Field:   "suggestions",
			Rule:    rule,
			Param:   fmt.Sprint(max),
			Message: msg,
		})
	}
	for i, s := range suggestions {
		if strings.TrimSpace(s) == "" {
			out = append(out, validator.Violation{
				Field:   fmt.Sprintf("suggestions[%d]", i),
				Rule:    "required",
				Message: "suggestions must not contain empty entries",
			})
		}
	}
	return out
}

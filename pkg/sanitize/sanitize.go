// Package sanitize strips markup from free text before it is stored.
package sanitize

import (
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"anoa.com/welfaredesk/pkg/apperror"
	"github.com/microcosm-cc/bluemonday"
)

var policy = bluemonday.StrictPolicy()

// Text removes every HTML element, unescapes the entities bluemonday leaves
// behind and trims surrounding space.
func Text(s string) string {
	return strings.TrimSpace(html.UnescapeString(policy.Sanitize(s)))
}

// OptionalText applies Text to a non-nil pointer.
func OptionalText(s *string) *string {
	if s == nil {
		return nil
	}
	cleaned := Text(*s)
	return &cleaned
}

// Field cleans a required text field and re-applies its minimum length to
// what is left, so markup cannot stand in for content.
func Field(label, s string, min int) (string, error) {
	cleaned := Text(s)
	n := utf8.RuneCountInString(cleaned)
	if n == 0 {
		return "", apperror.Validation(fmt.Sprintf("%s is required.", label))
	}
	if n < min {
		return "", apperror.Validation(fmt.Sprintf("%s must be at least %d characters long.", label, min))
	}
	return cleaned, nil
}

// OptionalField is Field for a field that may be absent.
func OptionalField(label string, s *string, min int) (*string, error) {
	if s == nil {
		return nil, nil
	}
	cleaned, err := Field(label, *s, min)
	if err != nil {
		return nil, err
	}
	return &cleaned, nil
}

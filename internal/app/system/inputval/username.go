// Package inputval cleans and validates user-supplied form values.
package inputval

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

const (
	MinUsernameLen = 3
	MaxUsernameLen = 16
)

var (
	ErrUsernameLength = errors.New("username must be between 3 and 16 characters")
	ErrUsernameChars  = errors.New("username may contain only letters, digits, spaces, '-', '_' and '.'")
)

// strict strips all markup.
var strict = bluemonday.StrictPolicy()

// CleanUsername strips markup, collapses inner whitespace and trims.
func CleanUsername(s string) string {
	s = strict.Sanitize(s)
	return strings.Join(strings.Fields(s), " ")
}

// Username cleans s and validates the result.
func Username(s string) (string, error) {
	name := CleanUsername(s)
	if n := utf8.RuneCountInString(name); n < MinUsernameLen || n > MaxUsernameLen {
		return "", ErrUsernameLength
	}
	for _, r := range name {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
		case r == ' ', r == '-', r == '_', r == '.':
		default:
			return "", ErrUsernameChars
		}
	}
	return name, nil
}

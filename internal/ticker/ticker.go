// Package ticker validates stock ticker symbols before any data work happens.
package ticker

import (
	"errors"
	"strings"
)

const maxLen = 10

var (
	ErrEmpty    = errors.New("ticker cannot be empty")
	ErrTooLong  = errors.New("ticker must be 1-10 characters")
	ErrBadChars = errors.New("ticker may only contain letters, '.' or '-'")
)

// Normalize trims and uppercases a raw ticker symbol and checks it against
// the allowed format: 1-10 characters, letters plus '.' and '-'.
func Normalize(raw string) (string, error) {
	cleaned := strings.ToUpper(strings.TrimSpace(raw))
	if cleaned == "" {
		return "", ErrEmpty
	}
	if len(cleaned) > maxLen {
		return "", ErrTooLong
	}
	for _, r := range cleaned {
		if (r < 'A' || r > 'Z') && r != '.' && r != '-' {
			return "", ErrBadChars
		}
	}
	return cleaned, nil
}

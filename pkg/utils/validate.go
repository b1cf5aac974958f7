package utils

import (
	"errors"
	"strings"
	"unicode"
)

var (
	ErrCodeAndURLRequired = errors.New("code and url are required")
	ErrCodeTooLong        = errors.New("code is too long")
	ErrURLTooLong         = errors.New("url is too long")
)

const (
	maxCodeLength = 64
	maxURLLength  = 2048
)

// ValidateLinkInput checks that both fields are present and fit their columns.
func ValidateLinkInput(code, url string) error {
	if IsBlank(code) || IsBlank(url) {
		return ErrCodeAndURLRequired
	}
	if len(code) > maxCodeLength {
		return ErrCodeTooLong
	}
	if len(url) > maxURLLength {
		return ErrURLTooLong
	}
	return nil
}

// IsBlank reports whether s is empty or only whitespace.
func IsBlank(s string) bool {
	return strings.TrimFunc(s, unicode.IsSpace) == ""
}

package middleware

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Input validation and sanitization utilities

const maxNameLength = 200

// ErrInvalidInput marks request-input validation failures; handlers map it
// to a 400 response.
var ErrInvalidInput = errors.New("invalid input")

var analysisIDPattern = regexp.MustCompile(`^[0-9]{10,16}-[0-9a-f]{8}$`)

// ValidateProductName rejects empty or over-long product names
func ValidateProductName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: product name cannot be empty", ErrInvalidInput)
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("%w: product name too long (max %d characters)", ErrInvalidInput, maxNameLength)
	}
	return nil
}

// ValidateAnalysisID checks the generated id shape: unix millis plus an
// 8-char random suffix
func ValidateAnalysisID(id string) error {
	if !analysisIDPattern.MatchString(id) {
		return fmt.Errorf("%w: invalid analysis id: %s", ErrInvalidInput, id)
	}
	return nil
}

// ValidateSelection accepts the average sentinel or a plausible competitor name
func ValidateSelection(selection string) error {
	if selection == "average" {
		return nil
	}
	if selection == "" || len(selection) > maxNameLength {
		return fmt.Errorf("%w: invalid selection: %q", ErrInvalidInput, selection)
	}
	return nil
}

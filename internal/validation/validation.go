package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.\-]+$`)
)

const (
	maxAnswerLength  = 1000
	maxQueryLength   = 100
	maxEnrollBatch   = 500
	minPasswordChars = 8
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IsValidationError reports whether err wraps a ValidationError
func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ValidationError{Field: "email", Message: "email is required"}
	}
	if !emailRegex.MatchString(email) {
		return ValidationError{Field: "email", Message: "invalid email format"}
	}
	return nil
}

// ValidatePassword checks if a password meets requirements
func ValidatePassword(password string) error {
	if password == "" {
		return ValidationError{Field: "password", Message: "password is required"}
	}
	if len(password) < minPasswordChars {
		return ValidationError{Field: "password", Message: "password must be at least 8 characters"}
	}
	return nil
}

// ValidateUsername checks if a username is valid
func ValidateUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return ValidationError{Field: "username", Message: "username is required"}
	}
	if len(username) < 3 || len(username) > 32 {
		return ValidationError{Field: "username", Message: "username must be between 3 and 32 characters"}
	}
	if !usernameRegex.MatchString(username) {
		return ValidationError{Field: "username", Message: "username may only contain letters, digits, '.', '_' and '-'"}
	}
	return nil
}

// ValidateAnswer rejects a blank or oversized translation
func ValidateAnswer(answer string) error {
	if strings.TrimSpace(answer) == "" {
		return ValidationError{Field: "answer", Message: "answer is required"}
	}
	if utf8.RuneCountInString(answer) > maxAnswerLength {
		return ValidationError{Field: "answer", Message: "answer is too long"}
	}
	return nil
}

// ValidateLookupQuery checks a word search term
func ValidateLookupQuery(q string) error {
	q = strings.TrimSpace(q)
	if q == "" {
		return ValidationError{Field: "q", Message: "search term is required"}
	}
	if utf8.RuneCountInString(q) > maxQueryLength {
		return ValidationError{Field: "q", Message: "search term is too long"}
	}
	return nil
}

// ValidateExampleIDs checks an enrollment selection
func ValidateExampleIDs(ids []int64) error {
	if len(ids) == 0 {
		return ValidationError{Field: "example_ids", Message: "select at least one example"}
	}
	if len(ids) > maxEnrollBatch {
		return ValidationError{Field: "example_ids", Message: "too many examples in one request"}
	}
	for _, id := range ids {
		if id <= 0 {
			return ValidationError{Field: "example_ids", Message: "example ids must be positive"}
		}
	}
	return nil
}

// ValidateScoreDelta rejects negative score increments
func ValidateScoreDelta(delta int) error {
	if delta < 0 {
		return ValidationError{Field: "score", Message: "score delta must not be negative"}
	}
	return nil
}

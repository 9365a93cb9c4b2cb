package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	dateRegex  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timeRegex  = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
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
	if len(password) < 8 {
		return ValidationError{Field: "password", Message: "password must be at least 8 characters"}
	}
	return nil
}

// ValidateName checks if a display name is valid
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ValidationError{Field: "name", Message: "name is required"}
	}
	return nil
}

// ValidateDate checks a calendar day in YYYY-MM-DD form
func ValidateDate(date string) error {
	if date == "" {
		return ValidationError{Field: "date", Message: "date is required"}
	}
	if !dateRegex.MatchString(date) {
		return ValidationError{Field: "date", Message: "date must be YYYY-MM-DD"}
	}
	return nil
}

// ValidateTimeOfDay checks a reminder slot in HH:MM form
func ValidateTimeOfDay(t string) error {
	if !timeRegex.MatchString(t) {
		return ValidationError{Field: "time", Message: "time must be HH:MM"}
	}
	return nil
}

// ValidateText checks free-form note text
func ValidateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return ValidationError{Field: "text", Message: "text is required"}
	}
	return nil
}

package checkout

import (
	"fmt"
	"regexp"
	"strings"
)

// ValidationError aborts a submission before any network call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Vietnamese mobile numbers: optional +84 or leading 0, then 9-11 digits.
var phonePattern = regexp.MustCompile(`^(\+84|0)?\d{9,11}$`)

func validateShipping(recipient, address, phone string) error {
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return &ValidationError{Field: "recipient", Message: "recipient name is required"}
	}
	if len(recipient) > 100 {
		return &ValidationError{Field: "recipient", Message: "recipient name is too long"}
	}

	address = strings.TrimSpace(address)
	if address == "" {
		return &ValidationError{Field: "address", Message: "shipping address is required"}
	}
	if len(address) > 255 {
		return &ValidationError{Field: "address", Message: "shipping address is too long"}
	}

	phone = strings.TrimSpace(phone)
	if phone == "" {
		return &ValidationError{Field: "phone", Message: "phone number is required"}
	}
	if !phonePattern.MatchString(phone) {
		return &ValidationError{Field: "phone", Message: "phone number is not valid"}
	}

	return nil
}

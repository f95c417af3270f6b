// Package validate checks raw form input before a record is accepted.
package validate

import (
	"errors"
	"regexp"
	"strings"
	"unicode"

	"github.com/smileynet/userbook/internal/record"
)

// Sentinel errors for each rejection class, compared with errors.Is.
var (
	ErrMissingField = errors.New("missing field")
	ErrInvalidEmail = errors.New("invalid email")
	ErrInvalidPhone = errors.New("invalid phone")
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?\d{10,15}$`)
)

// Error is a rejection carrying the user-facing message.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return "validate: " + e.Kind.Error()
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// Message returns the user-facing text for a validation error, or err's
// own text for any other error.
func Message(err error) string {
	var ve *Error
	if errors.As(err, &ve) {
		return ve.Message
	}
	return err.Error()
}

// Validate trims and checks the three required fields. Rules run in order
// and the first failure wins: missing field, then email shape, then phone.
// Any Unicode space inside the email rejects it.
// On success the phone has all whitespace removed; a leading "+" is kept.
func Validate(rawName, rawEmail, rawPhone string) (record.Fields, error) {
	name := strings.TrimSpace(rawName)
	email := strings.TrimSpace(rawEmail)
	phone := strings.TrimSpace(rawPhone)

	if name == "" || email == "" || phone == "" {
		return record.Fields{}, &Error{
			Kind:    ErrMissingField,
			Message: "Fill in all form fields.",
		}
	}

	if !emailPattern.MatchString(email) || strings.IndexFunc(email, unicode.IsSpace) >= 0 {
		return record.Fields{}, &Error{
			Kind:    ErrInvalidEmail,
			Message: "Enter a valid email address in the form name@example.com.",
		}
	}

	digits := stripSpace(phone)
	if !phonePattern.MatchString(digits) {
		return record.Fields{}, &Error{
			Kind:    ErrInvalidPhone,
			Message: "Enter a valid phone number: digits only, optional leading + (10-15 digits).",
		}
	}

	return record.Fields{Name: name, Email: email, Phone: digits}, nil
}

// Form validates raw input and attaches an optional photo reference.
func Form(rawName, rawEmail, rawPhone, photoURI string) (record.Fields, error) {
	f, err := Validate(rawName, rawEmail, rawPhone)
	if err != nil {
		return record.Fields{}, err
	}
	f.PhotoURI = record.PhotoRef(photoURI)
	return f, nil
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// Package validate holds the checks the storefront runs before it sends
// anything to the backend. Messages are shown to the user as-is.
package validate

import (
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	reEmail    = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reUsername = regexp.MustCompile(`^[A-Za-z0-9_.-]{3,20}$`)
)

// Error is a rejected input. Field names the form field.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string { return e.Message }

func fail(field, msg string) error { return &Error{Field: field, Message: msg} }

// IsValidation reports whether err came from this package.
func IsValidation(err error) bool {
	var v *Error
	return errors.As(err, &v)
}

func Email(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 50 || !reEmail.MatchString(s) {
		return "", fail("email", "Please enter a valid email address")
	}
	return s, nil
}

func Username(s string) (string, error) {
	s = strings.TrimSpace(s)
	if !reUsername.MatchString(s) {
		return "", fail("username", "Username must be 3-20 letters, digits, '.', '_' or '-'")
	}
	return s, nil
}

// Password enforces the register length window.
func Password(s string) error {
	if l := len(s); l < 6 || l > 40 {
		return fail("password", "Password must be 6-40 characters")
	}
	return nil
}

// Credentials only checks presence; the backend judges correctness.
func Credentials(username, password string) error {
	if strings.TrimSpace(username) == "" || password == "" {
		return fail("credentials", "Please enter username and password")
	}
	return nil
}

// ErrQuantity is returned for any quantity below 1.
var ErrQuantity = &Error{Field: "quantity", Message: "Quantity must be at least 1"}

func Quantity(n int) error {
	if n < 1 {
		return ErrQuantity
	}
	return nil
}

// Rating: 0 means nothing was picked.
func Rating(n int) error {
	if n == 0 {
		return fail("rating", "Please select a rating")
	}
	if n < 1 || n > 5 {
		return fail("rating", "Rating must be between 1 and 5")
	}
	return nil
}

func Comment(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fail("comment", "Please write a review comment")
	}
	return s, nil
}

func ShippingAddress(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fail("shippingAddress", "Please enter a shipping address")
	}
	return s, nil
}

// Name validates a product or category name.
func Name(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 100 {
		return "", fail("name", "Name is required (max 100 characters)")
	}
	return s, nil
}

func Price(d decimal.Decimal) error {
	if !d.IsPositive() {
		return fail("price", "Price must be greater than 0")
	}
	return nil
}

// Q trims a search keyword and caps it at 100 characters.
func Q(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if r := []rune(s); len(r) > 100 {
		s = string(r[:100])
	}
	return s, true
}

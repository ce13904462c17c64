// Package report renders assessment results as spreadsheets and hands them to
// an external delivery service.
package report

import (
	"errors"
	"regexp"
	"strings"
)

// ErrInvalidEmail is returned for addresses that are not local@domain.tld.
var ErrInvalidEmail = errors.New("invalid email address")

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateEmail checks the local@domain.tld shape. It does not resolve the
// domain.
func ValidateEmail(email string) error {
	if !emailPattern.MatchString(strings.TrimSpace(email)) {
		return ErrInvalidEmail
	}
	return nil
}

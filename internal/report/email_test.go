package report_test

import (
	"errors"
	"testing"

	"github.com/p-n-ai/risk-snapshot/internal/report"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email string
		valid bool
	}{
		{"jane@example.com", true},
		{"  jane.doe+risk@sub.example.org ", true},
		{"jane@example", false},
		{"jane example@example.com", false},
		{"@example.com", false},
		{"jane@@example.com", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			err := report.ValidateEmail(tt.email)
			if tt.valid && err != nil {
				t.Errorf("ValidateEmail(%q) error = %v", tt.email, err)
			}
			if !tt.valid && !errors.Is(err, report.ErrInvalidEmail) {
				t.Errorf("ValidateEmail(%q) error = %v, want ErrInvalidEmail", tt.email, err)
			}
		})
	}
}

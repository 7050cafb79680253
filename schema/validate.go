package schema

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func validateEmail(value string) error {
	if err := validate.Var(strings.TrimSpace(value), "required,email"); err != nil {
		return fmt.Errorf("%q is not a valid email address", value)
	}
	return nil
}

// CanonicalPhone strips separators and returns the bare digit sequence.
// An optional leading "+" country prefix is kept as digits only.
func CanonicalPhone(value string) string {
	var sb strings.Builder
	for _, r := range value {
		if unicode.IsDigit(r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func validatePhone(value string) error {
	digits := CanonicalPhone(value)
	switch {
	case len(digits) == 10:
		return nil
	case len(digits) == 11 && digits[0] == '1':
		return nil
	default:
		return fmt.Errorf("%q does not reduce to a plausible national phone number", value)
	}
}

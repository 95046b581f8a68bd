package security

import (
	"fmt"

	zxcvbn "github.com/nbutton23/zxcvbn-go"
)

const (
	minPasswordLength = 6
	minPasswordScore  = 1
)

// PasswordValidationError represents a single password policy violation.
type PasswordValidationError struct {
	Code    string
	Message string
}

// Error implements error for PasswordValidationError.
func (e *PasswordValidationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// PasswordValidator applies the registration password policy.
type PasswordValidator struct {
	minLength int
	minScore  int
}

// DefaultPasswordValidator returns the policy applied at registration:
// a length floor plus a zxcvbn strength floor to reject trivially guessable
// passwords that still satisfy the length rule.
func DefaultPasswordValidator() *PasswordValidator {
	return &PasswordValidator{
		minLength: minPasswordLength,
		minScore:  minPasswordScore,
	}
}

// Validate returns the first encountered violation, or nil.
func (v *PasswordValidator) Validate(password string) error {
	if v == nil {
		return fmt.Errorf("password validator not configured")
	}

	if len([]rune(password)) < v.minLength {
		return &PasswordValidationError{
			Code:    "min_length",
			Message: fmt.Sprintf("password must be at least %d characters long", v.minLength),
		}
	}

	if result := zxcvbn.PasswordStrength(password, nil); result.Score < v.minScore {
		return &PasswordValidationError{
			Code:    "too_guessable",
			Message: "password is too easy to guess",
		}
	}

	return nil
}

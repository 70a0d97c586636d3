package service

import (
	"fmt"
	"unicode"

	"github.com/pashumitra/internal/config"
)

func validatePassword(policy config.PasswordPolicyConfig, password string) error {
	if policy.MinLength <= 0 &&
		!policy.RequireUpper &&
		!policy.RequireLower &&
		!policy.RequireNumber {
		return nil
	}

	if policy.MinLength > 0 {
		if len([]rune(password)) < policy.MinLength {
			return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, policy.MinLength)
		}
	}

	var hasUpper, hasLower, hasNumber bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasNumber = true
		}
	}

	if policy.RequireUpper && !hasUpper {
		return fmt.Errorf("%w: password must contain an uppercase letter", ErrValidation)
	}
	if policy.RequireLower && !hasLower {
		return fmt.Errorf("%w: password must contain a lowercase letter", ErrValidation)
	}
	if policy.RequireNumber && !hasNumber {
		return fmt.Errorf("%w: password must contain a digit", ErrValidation)
	}
	return nil
}

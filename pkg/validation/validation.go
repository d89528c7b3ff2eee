// Package validation provides common validation utilities.
package validation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/iwvelando/mortgage-planner/pkg/constants"
)

// ValidateRate checks that an annual percentage rate is within the accepted
// range for a deal.
func ValidateRate(rate float64) error {
	if rate < 0 || rate > constants.MaxDealRate {
		return fmt.Errorf("expected rate between 0 and %.0f, got %v", constants.MaxDealRate, rate)
	}
	return nil
}

// ValidateOverpaymentAmount checks that an overpayment amount is positive and
// below the sanity ceiling.
func ValidateOverpaymentAmount(amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("overpayment amount must be positive, got %v", amount)
	}
	if amount > constants.MaxOverpaymentAmount {
		return fmt.Errorf("overpayment amount exceeds ceiling of %.0f", constants.MaxOverpaymentAmount)
	}
	return nil
}

// ParseOverpaymentAmount parses free-form popover input into an amount and
// validates it. Non-numeric input is rejected.
func ParseOverpaymentAmount(input string) (float64, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return 0, fmt.Errorf("overpayment amount is required")
	}
	amount, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid overpayment amount %q: %w", input, err)
	}
	if err := ValidateOverpaymentAmount(amount); err != nil {
		return 0, err
	}
	return amount, nil
}

// ValidateTermYears checks that a mortgage term in years produces a usable
// month horizon.
func ValidateTermYears(years int) error {
	if years < 1 {
		return fmt.Errorf("mortgage term must be at least 1 year, got %d", years)
	}
	return nil
}

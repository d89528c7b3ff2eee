// Package plan defines the full planner form state: scalar mortgage and
// savings parameters plus the deal and overpayment collections.
package plan

import (
	"fmt"
	"time"

	"github.com/iwvelando/mortgage-planner/internal/overpay"
	"github.com/iwvelando/mortgage-planner/internal/timeline"
	"github.com/iwvelando/mortgage-planner/pkg/constants"
	"github.com/iwvelando/mortgage-planner/pkg/validation"
)

// SavingsAccount holds one savings account's parameters.
type SavingsAccount struct {
	Name                string  `json:"name"`
	Rate                float64 `json:"rate"`
	MonthlyContribution float64 `json:"monthlyContribution"`
	InitialBalance      float64 `json:"initialBalance"`
}

// State is the complete form state serialized into snapshots and share links.
// The legacy fixed_rate/fixed_term_months wire fields are not stored here;
// they are derived from the deal collection at request-assembly time.
type State struct {
	MortgageAmount float64          `json:"mortgageAmount"`
	TermYears      int              `json:"termYears"`
	VariableRate   float64          `json:"variableRate"`
	StartDate      string           `json:"startDate"`
	Savings        []SavingsAccount `json:"savings"`
	Deals          []timeline.Deal  `json:"deals"`
	Overpayments   []overpay.Marker `json:"overpayments"`
}

// DefaultState returns the planner defaults with the simulation starting in
// the month containing now.
func DefaultState(now time.Time) State {
	return State{
		MortgageAmount: 200000,
		TermYears:      25,
		VariableRate:   5.5,
		StartDate:      now.Format(constants.DateTimeLayout),
	}
}

// TermMonths derives the simulation horizon from the term in years.
func (s State) TermMonths() int {
	return s.TermYears * constants.MonthsPerYear
}

// Timeline builds a validated deal timeline from the stored deals. An error
// here means the state is corrupt (overlap or out-of-range deals) and callers
// should fall back to defaults.
func (s State) Timeline() (*timeline.Timeline, error) {
	return timeline.NewWithDeals(s.TermMonths(), s.Deals)
}

// MarkerStore builds an overpayment store from the stored markers, relabelled
// against the state's start date. Markers beyond the term horizon are dropped,
// so deserialized state cannot smuggle out-of-range periods into the wire
// format.
func (s State) MarkerStore() *overpay.Store {
	store := overpay.NewStore(s.StartDate)
	store.Restore(s.Overpayments, s.TermMonths())
	return store
}

// Validate checks the scalar fields and the deal collection. Marker amounts
// are not re-validated here; the popover already gates them and zero-amount
// markers are legal (they are simply excluded from the wire format).
func (s State) Validate() error {
	if err := validation.ValidateTermYears(s.TermYears); err != nil {
		return err
	}
	if err := validation.ValidateRate(s.VariableRate); err != nil {
		return fmt.Errorf("variable rate: %w", err)
	}
	if _, err := time.Parse(constants.DateTimeLayout, s.StartDate); err != nil {
		return fmt.Errorf("invalid start date %q: %w", s.StartDate, err)
	}
	if _, err := s.Timeline(); err != nil {
		return err
	}
	return nil
}

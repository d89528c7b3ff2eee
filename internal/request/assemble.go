// Package request assembles accumulated plan state into the wire payload for
// the external simulation API.
package request

import (
	json "github.com/goccy/go-json"

	"github.com/iwvelando/mortgage-planner/internal/plan"
	"github.com/iwvelando/mortgage-planner/internal/timeline"
)

// DealPayload is the wire form of one fixed-rate deal.
type DealPayload struct {
	StartMonth int     `json:"start_month"`
	EndMonth   int     `json:"end_month"`
	Rate       float64 `json:"rate"`
}

// MortgagePayload is the mortgage section of the simulation request.
type MortgagePayload struct {
	Amount          float64       `json:"amount"`
	Deals           []DealPayload `json:"deals"`
	FixedRate       float64       `json:"fixed_rate"`
	FixedTermMonths int           `json:"fixed_term_months"`
	VariableRate    float64       `json:"variable_rate"`
	TermMonths      int           `json:"term_months"`
}

// AccountPayload is the wire form of one savings account.
type AccountPayload struct {
	Name                string  `json:"name"`
	Rate                float64 `json:"rate"`
	MonthlyContribution float64 `json:"monthly_contribution"`
	InitialBalance      float64 `json:"initial_balance"`
}

// SavingsPayload is the savings section of the simulation request.
type SavingsPayload struct {
	Accounts []AccountPayload `json:"accounts"`
}

// SimulationPayload carries the simulation parameters, including the
// overpayment string in the upstream "month:amount,month:amount" format.
type SimulationPayload struct {
	Overpayments *string `json:"overpayments"`
	StartDate    string  `json:"start_date"`
}

// SimulationRequest is the full body sent to POST /simulate.
type SimulationRequest struct {
	Mortgage   MortgagePayload   `json:"mortgage"`
	Savings    SavingsPayload    `json:"savings"`
	Simulation SimulationPayload `json:"simulation"`
}

// DeriveLegacyFields computes the backward-compatible scalar fields from the
// deal collection: the rate and duration of the earliest-starting deal, or
// zeros when no deals exist. This is a one-way derivation performed at
// assembly time; the legacy fields are never stored.
func DeriveLegacyFields(deals []timeline.Deal) (fixedRate float64, fixedTermMonths int) {
	if len(deals) == 0 {
		return 0, 0
	}
	first := deals[0]
	for _, deal := range deals[1:] {
		if deal.StartMonth < first.StartMonth {
			first = deal
		}
	}
	return first.Rate, first.Duration()
}

// Assemble converts plan state into the simulation request body. The deal
// collection must already be valid; Assemble performs no validation of its
// own.
func Assemble(state plan.State) SimulationRequest {
	deals := make([]DealPayload, 0, len(state.Deals))
	for _, deal := range state.Deals {
		deals = append(deals, DealPayload{
			StartMonth: deal.StartMonth,
			EndMonth:   deal.EndMonth,
			Rate:       deal.Rate,
		})
	}

	accounts := make([]AccountPayload, 0, len(state.Savings))
	for _, account := range state.Savings {
		accounts = append(accounts, AccountPayload{
			Name:                account.Name,
			Rate:                account.Rate,
			MonthlyContribution: account.MonthlyContribution,
			InitialBalance:      account.InitialBalance,
		})
	}

	fixedRate, fixedTermMonths := DeriveLegacyFields(state.Deals)

	return SimulationRequest{
		Mortgage: MortgagePayload{
			Amount:          state.MortgageAmount,
			Deals:           deals,
			FixedRate:       fixedRate,
			FixedTermMonths: fixedTermMonths,
			VariableRate:    state.VariableRate,
			TermMonths:      state.TermMonths(),
		},
		Savings: SavingsPayload{Accounts: accounts},
		Simulation: SimulationPayload{
			Overpayments: state.MarkerStore().ToAPIString(),
			StartDate:    state.StartDate,
		},
	}
}

// Marshal encodes the request body for transport and cache keying.
func Marshal(req SimulationRequest) ([]byte, error) {
	return json.Marshal(req)
}

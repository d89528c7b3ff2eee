package overpay

import (
	"strconv"

	"github.com/iwvelando/mortgage-planner/pkg/validation"
)

// PopoverMode distinguishes adding a new marker from editing an existing one.
type PopoverMode int

const (
	// PopoverAdd creates a marker on confirmation
	PopoverAdd PopoverMode = iota
	// PopoverEdit updates an existing marker on confirmation
	PopoverEdit
)

// PendingEdit holds the uncommitted state of an open popover. Nothing touches
// the store until Confirm; discarding a pending edit leaves the model
// unchanged.
type PendingEdit struct {
	store       *Store
	mode        PopoverMode
	markerID    string
	periodIndex int
	input       string
	amount      float64
	valid       bool
}

// NewAddPending opens a pending add at the given period index with a zero
// default amount (invalid until a positive amount is entered).
func NewAddPending(store *Store, periodIndex int) *PendingEdit {
	return &PendingEdit{store: store, mode: PopoverAdd, periodIndex: periodIndex}
}

// NewEditPending opens a pending edit for an existing marker, prefilled with
// its current amount.
func NewEditPending(store *Store, marker Marker) *PendingEdit {
	p := &PendingEdit{
		store:       store,
		mode:        PopoverEdit,
		markerID:    marker.ID,
		periodIndex: marker.PeriodIndex,
	}
	p.SetInput(strconv.FormatFloat(marker.Amount, 'f', -1, 64))
	return p
}

// Mode returns whether the popover adds or edits.
func (p *PendingEdit) Mode() PopoverMode {
	return p.mode
}

// MarkerID returns the target marker id for edit popovers.
func (p *PendingEdit) MarkerID() string {
	return p.markerID
}

// PeriodIndex returns the period the popover is anchored to.
func (p *PendingEdit) PeriodIndex() int {
	return p.periodIndex
}

// SetInput records free-form amount input and validates it. Non-numeric,
// non-positive, or over-ceiling input marks the pending edit invalid, which
// blocks confirmation.
func (p *PendingEdit) SetInput(input string) {
	p.input = input
	amount, err := validation.ParseOverpaymentAmount(input)
	if err != nil {
		p.valid = false
		p.amount = 0
		return
	}
	p.valid = true
	p.amount = amount
}

// Input returns the raw entered text.
func (p *PendingEdit) Input() string {
	return p.input
}

// Valid reports whether the entered amount passes validation.
func (p *PendingEdit) Valid() bool {
	return p.valid
}

// Confirm commits the pending amount to the store. It reports false, mutating
// nothing, when the amount is invalid or an edited marker no longer exists.
func (p *PendingEdit) Confirm() bool {
	if !p.valid {
		return false
	}
	switch p.mode {
	case PopoverAdd:
		p.store.Add(p.periodIndex, p.amount)
		return true
	case PopoverEdit:
		amount := p.amount
		return p.store.Update(p.markerID, Patch{Amount: &amount})
	}
	return false
}

// Delete removes the edited marker. Only available on edit popovers.
func (p *PendingEdit) Delete() bool {
	if p.mode != PopoverEdit {
		return false
	}
	return p.store.Remove(p.markerID)
}

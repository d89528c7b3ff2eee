package overpay

import (
	"testing"
)

func TestPendingAddValidation(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
	}{
		{name: "Positive amount", input: "500", wantValid: true},
		{name: "Decimal amount", input: "1250.75", wantValid: true},
		{name: "Zero rejected", input: "0", wantValid: false},
		{name: "Negative rejected", input: "-10", wantValid: false},
		{name: "Non-numeric rejected", input: "lots", wantValid: false},
		{name: "Empty rejected", input: "", wantValid: false},
		{name: "Over ceiling rejected", input: "10000001", wantValid: false},
		{name: "At ceiling accepted", input: "10000000", wantValid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore("2026-01")
			pending := NewAddPending(s, 12)
			pending.SetInput(tt.input)
			if pending.Valid() != tt.wantValid {
				t.Errorf("Valid() = %v, expected %v for input %q", pending.Valid(), tt.wantValid, tt.input)
			}
			if !tt.wantValid {
				if pending.Confirm() {
					t.Error("Confirm() should be blocked while invalid")
				}
				if len(s.Markers()) != 0 {
					t.Error("blocked Confirm() mutated the store")
				}
			}
		})
	}
}

func TestPendingAddConfirm(t *testing.T) {
	s := NewStore("2026-01")
	pending := NewAddPending(s, 12)
	pending.SetInput("500")

	if !pending.Confirm() {
		t.Fatal("Confirm() unexpectedly failed")
	}
	marker, ok := s.AtPeriod(12)
	if !ok {
		t.Fatal("confirmed add did not create a marker")
	}
	if marker.Amount != 500 {
		t.Errorf("Amount = %v, expected 500", marker.Amount)
	}
}

func TestPendingEditConfirm(t *testing.T) {
	s := NewStore("2026-01")
	marker := s.Add(12, 500)

	pending := NewEditPending(s, marker)
	if pending.Input() != "500" {
		t.Errorf("edit popover should prefill the current amount, got %q", pending.Input())
	}
	pending.SetInput("900")
	if !pending.Confirm() {
		t.Fatal("Confirm() unexpectedly failed")
	}
	updated, _ := s.Get(marker.ID)
	if updated.Amount != 900 {
		t.Errorf("Amount = %v, expected 900", updated.Amount)
	}
	if updated.PeriodIndex != 12 {
		t.Errorf("edit confirm must not move the marker, period = %d", updated.PeriodIndex)
	}
}

func TestPendingDiscardLeavesStoreUntouched(t *testing.T) {
	s := NewStore("2026-01")
	s.Add(12, 500)

	// A pending edit that is simply dropped (popover closed) mutates nothing.
	pending := NewAddPending(s, 24)
	pending.SetInput("750")
	_ = pending

	if len(s.Markers()) != 1 {
		t.Errorf("pending state leaked into the store: %+v", s.Markers())
	}
}

func TestPendingDelete(t *testing.T) {
	s := NewStore("2026-01")
	marker := s.Add(12, 500)

	add := NewAddPending(s, 24)
	if add.Delete() {
		t.Error("Delete() must not be available on add popovers")
	}

	edit := NewEditPending(s, marker)
	if !edit.Delete() {
		t.Fatal("Delete() unexpectedly failed on edit popover")
	}
	if len(s.Markers()) != 0 {
		t.Error("Delete() did not remove the marker")
	}
}

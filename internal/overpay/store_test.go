package overpay

import (
	"testing"
)

func TestAddUpdatesExistingAtSamePeriod(t *testing.T) {
	s := NewStore("2026-01")

	first := s.Add(12, 500)
	second := s.Add(12, 750)

	if len(s.Markers()) != 1 {
		t.Fatalf("expected one marker after adding at an occupied period, got %d", len(s.Markers()))
	}
	if second.ID != first.ID {
		t.Errorf("add at occupied period created a new marker: %q vs %q", second.ID, first.ID)
	}
	if second.Amount != 750 {
		t.Errorf("add at occupied period amount = %v, expected 750", second.Amount)
	}
	if active, ok := s.Active(); !ok || active.ID != first.ID {
		t.Error("marker at occupied period should become the active marker")
	}
}

func TestAddKeepsMarkersSorted(t *testing.T) {
	s := NewStore("2026-01")
	s.Add(24, 100)
	s.Add(6, 200)
	s.Add(12, 300)

	markers := s.Markers()
	periods := []int{6, 12, 24}
	for i, m := range markers {
		if m.PeriodIndex != periods[i] {
			t.Fatalf("markers not sorted by period: %+v", markers)
		}
	}
	for i, m := range markers {
		for j, other := range markers {
			if i != j && m.PeriodIndex == other.PeriodIndex {
				t.Fatalf("duplicate period index %d", m.PeriodIndex)
			}
		}
	}
}

func TestDateLabels(t *testing.T) {
	tests := []struct {
		name        string
		startDate   string
		periodIndex int
		expected    string
	}{
		{name: "First period is the start month", startDate: "2026-01", periodIndex: 1, expected: "Jan 2026"},
		{name: "Crosses year boundary", startDate: "2026-11", periodIndex: 3, expected: "Jan 2027"},
		{name: "Two years out", startDate: "2026-01", periodIndex: 25, expected: "Jan 2028"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore(tt.startDate)
			m := s.Add(tt.periodIndex, 100)
			if m.DateLabel != tt.expected {
				t.Errorf("DateLabel = %q, expected %q", m.DateLabel, tt.expected)
			}
		})
	}
}

func TestSetStartDateRelabelsAllMarkers(t *testing.T) {
	s := NewStore("2026-01")
	s.Add(1, 100)
	s.Add(13, 200)

	s.SetStartDate("2030-06")

	markers := s.Markers()
	if markers[0].DateLabel != "Jun 2030" {
		t.Errorf("marker 0 label = %q, expected %q", markers[0].DateLabel, "Jun 2030")
	}
	if markers[1].DateLabel != "Jun 2031" {
		t.Errorf("marker 1 label = %q, expected %q", markers[1].DateLabel, "Jun 2031")
	}
}

func TestUpdateMovesAndRelabels(t *testing.T) {
	s := NewStore("2026-01")
	a := s.Add(5, 100)
	s.Add(10, 200)

	period := 20
	if !s.Update(a.ID, Patch{PeriodIndex: &period}) {
		t.Fatal("Update() unexpectedly failed")
	}

	moved, ok := s.Get(a.ID)
	if !ok {
		t.Fatal("updated marker disappeared")
	}
	if moved.PeriodIndex != 20 {
		t.Errorf("PeriodIndex = %d, expected 20", moved.PeriodIndex)
	}
	if moved.DateLabel != "Aug 2027" {
		t.Errorf("DateLabel = %q, expected %q", moved.DateLabel, "Aug 2027")
	}
	if markers := s.Markers(); markers[len(markers)-1].ID != a.ID {
		t.Errorf("collection not re-sorted after period change: %+v", markers)
	}

	if s.Update("missing", Patch{PeriodIndex: &period}) {
		t.Error("Update() with unknown id should fail")
	}
}

func TestUpdateRejectsOccupiedPeriod(t *testing.T) {
	s := NewStore("2026-01")
	s.Add(5, 100)
	b := s.Add(10, 200)

	// Moving onto a period held by another marker is rejected wholesale, even
	// when the patch also carries an amount change.
	period := 5
	amount := 999.0
	if s.Update(b.ID, Patch{PeriodIndex: &period, Amount: &amount}) {
		t.Fatal("Update() onto an occupied period should be rejected")
	}
	got, _ := s.Get(b.ID)
	if got.PeriodIndex != 10 || got.Amount != 200 {
		t.Errorf("rejected update mutated the marker: %+v", got)
	}
	if len(s.Markers()) != 2 {
		t.Fatalf("expected 2 markers, got %+v", s.Markers())
	}
	if api := s.ToAPIString(); api == nil || *api != "5:100,10:200" {
		t.Errorf("ToAPIString() after rejected move = %v", api)
	}

	// A patch targeting the marker's own period is not a collision.
	own := 10
	if !s.Update(b.ID, Patch{PeriodIndex: &own, Amount: &amount}) {
		t.Error("Update() onto the marker's own period should apply")
	}
	if got, _ := s.Get(b.ID); got.Amount != 999 {
		t.Errorf("Amount = %v, expected 999", got.Amount)
	}

	// Once the period frees up the move applies.
	free := 7
	if !s.Update(b.ID, Patch{PeriodIndex: &free}) {
		t.Error("Update() onto a free period should apply")
	}
}

func TestRemoveClearsActive(t *testing.T) {
	s := NewStore("2026-01")
	m := s.Add(5, 100)

	if !s.Remove(m.ID) {
		t.Fatal("Remove() unexpectedly failed")
	}
	if _, ok := s.Active(); ok {
		t.Error("removing the active marker should clear the active reference")
	}
	if len(s.Markers()) != 0 {
		t.Error("marker not removed")
	}
	if s.Remove(m.ID) {
		t.Error("Remove() of a missing marker should fail")
	}
}

func TestSetDragging(t *testing.T) {
	s := NewStore("2026-01")
	m := s.Add(5, 100)

	if !s.SetDragging(m.ID, true) {
		t.Fatal("SetDragging() unexpectedly failed")
	}
	if got, _ := s.Get(m.ID); !got.Dragging {
		t.Error("dragging flag not set")
	}
	if !s.SetDragging(m.ID, false) {
		t.Fatal("SetDragging(false) unexpectedly failed")
	}
	if got, _ := s.Get(m.ID); got.Dragging {
		t.Error("dragging flag not cleared")
	}
}

func TestToAPIString(t *testing.T) {
	tests := []struct {
		name     string
		markers  map[int]float64
		expected string
		wantNil  bool
	}{
		{
			name:    "Empty store",
			wantNil: true,
		},
		{
			name:    "Only zero amounts",
			markers: map[int]float64{5: 0},
			wantNil: true,
		},
		{
			name:     "Single marker",
			markers:  map[int]float64{12: 1000},
			expected: "12:1000",
		},
		{
			name:     "Multiple markers in ascending order",
			markers:  map[int]float64{24: 250.5, 6: 1000, 60: 75},
			expected: "6:1000,24:250.5,60:75",
		},
		{
			name:     "Zero amounts skipped",
			markers:  map[int]float64{6: 1000, 12: 0, 24: 500},
			expected: "6:1000,24:500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore("2026-01")
			for period, amount := range tt.markers {
				s.Add(period, amount)
			}
			result := s.ToAPIString()
			if tt.wantNil {
				if result != nil {
					t.Errorf("ToAPIString() = %q, expected nil", *result)
				}
				return
			}
			if result == nil {
				t.Fatal("ToAPIString() = nil, expected a value")
			}
			if *result != tt.expected {
				t.Errorf("ToAPIString() = %q, expected %q", *result, tt.expected)
			}
		})
	}
}

func TestAtPeriod(t *testing.T) {
	s := NewStore("2026-01")
	s.Add(5, 100)

	if _, ok := s.AtPeriod(5); !ok {
		t.Error("AtPeriod(5) expected a marker")
	}
	if _, ok := s.AtPeriod(6); ok {
		t.Error("AtPeriod(6) expected no marker")
	}
}

func TestRestore(t *testing.T) {
	s := NewStore("2026-01")
	s.Restore([]Marker{
		{ID: "stale-1", PeriodIndex: 12, Amount: 500, Dragging: true},
		{ID: "stale-2", PeriodIndex: 12, Amount: 900},
		{ID: "stale-3", PeriodIndex: 0, Amount: 100},
		{ID: "stale-4", PeriodIndex: 3, Amount: 250},
		{ID: "stale-5", PeriodIndex: 9999, Amount: 50},
	}, 300)

	markers := s.Markers()
	if len(markers) != 2 {
		t.Fatalf("Restore() kept %d markers, expected 2: %+v", len(markers), markers)
	}
	if markers[0].PeriodIndex != 3 || markers[1].PeriodIndex != 12 {
		t.Errorf("Restore() order wrong: %+v", markers)
	}
	if markers[1].Amount != 500 {
		t.Errorf("Restore() should keep the first entry for a duplicated period")
	}
	for _, m := range markers {
		if m.Dragging {
			t.Error("Restore() should not carry the transient dragging flag")
		}
		if m.DateLabel == "" {
			t.Error("Restore() should recompute date labels")
		}
	}
}

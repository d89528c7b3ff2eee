package timeline

import (
	"testing"
)

// timelineWidth gives one pixel per month on a 300-month horizon, making
// pixel displacements read directly as months.
const timelineWidth = 300.0

func TestDragMoveDisplacement(t *testing.T) {
	tests := []struct {
		name      string
		startPx   float64
		movePx    float64
		wantStart int
		wantEnd   int
	}{
		{
			name:      "Shift right by five months",
			startPx:   20,
			movePx:    25,
			wantStart: 15,
			wantEnd:   39,
		},
		{
			name:      "Overshoot clamps at horizon preserving duration",
			startPx:   20,
			movePx:    320,
			wantStart: 276,
			wantEnd:   300,
		},
		{
			name:      "Overshoot left clamps at zero",
			startPx:   20,
			movePx:    -100,
			wantStart: 0,
			wantEnd:   24,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tl, err := NewWithDeals(300, []Deal{{StartMonth: 10, EndMonth: 34, Rate: 2.0}})
			if err != nil {
				t.Fatalf("NewWithDeals() error = %v", err)
			}
			session, ok := tl.BeginDrag(0, DragMove, tt.startPx, timelineWidth)
			if !ok {
				t.Fatal("BeginDrag() unexpectedly failed")
			}
			session.MoveTo(tt.movePx)
			deal := session.Deal()
			if deal.StartMonth != tt.wantStart || deal.EndMonth != tt.wantEnd {
				t.Errorf("drag produced [%d, %d), expected [%d, %d)",
					deal.StartMonth, deal.EndMonth, tt.wantStart, tt.wantEnd)
			}
			if deal.Rate != 2.0 {
				t.Errorf("drag changed the rate: %v", deal.Rate)
			}
			checkInvariants(t, tl)
		})
	}
}

func TestDragResolvesAgainstSnapshot(t *testing.T) {
	tl, err := NewWithDeals(300, []Deal{{StartMonth: 10, EndMonth: 34, Rate: 2.0}})
	if err != nil {
		t.Fatalf("NewWithDeals() error = %v", err)
	}
	session, ok := tl.BeginDrag(0, DragMove, 0, timelineWidth)
	if !ok {
		t.Fatal("BeginDrag() unexpectedly failed")
	}

	// Many small moves must not compound rounding: the final position depends
	// only on the total displacement from drag start.
	for px := 1.0; px <= 50; px++ {
		session.MoveTo(px)
	}
	deal := session.Deal()
	if deal.StartMonth != 60 || deal.EndMonth != 84 {
		t.Errorf("cumulative drag produced [%d, %d), expected [60, 84)", deal.StartMonth, deal.EndMonth)
	}
}

func TestDragRejectedFrameLeavesDealInPlace(t *testing.T) {
	tl, err := NewWithDeals(300, []Deal{
		{StartMonth: 10, EndMonth: 34, Rate: 2.0},
		{StartMonth: 40, EndMonth: 64, Rate: 3.0},
	})
	if err != nil {
		t.Fatalf("NewWithDeals() error = %v", err)
	}
	session, ok := tl.BeginDrag(0, DragMove, 0, timelineWidth)
	if !ok {
		t.Fatal("BeginDrag() unexpectedly failed")
	}

	// +10 months lands [20, 44) on top of the second deal: rejected, no move.
	if session.MoveTo(10) {
		t.Error("overlapping frame should be rejected")
	}
	if deal := session.Deal(); deal.StartMonth != 10 {
		t.Errorf("rejected frame moved the deal to %+v", deal)
	}

	// A later frame with a valid displacement still applies.
	if !session.MoveTo(5) {
		t.Error("valid frame after a rejected one should apply")
	}
	if deal := session.Deal(); deal.StartMonth != 15 || deal.EndMonth != 39 {
		t.Errorf("drag produced %+v, expected [15, 39)", session.Deal())
	}
	checkInvariants(t, tl)
}

func TestDragResizeEdges(t *testing.T) {
	tl, err := NewWithDeals(300, []Deal{{StartMonth: 100, EndMonth: 150, Rate: 2.0}})
	if err != nil {
		t.Fatalf("NewWithDeals() error = %v", err)
	}

	start, ok := tl.BeginDrag(0, DragResizeStart, 100, timelineWidth)
	if !ok {
		t.Fatal("BeginDrag() unexpectedly failed")
	}
	start.MoveTo(80)
	if deal := start.Deal(); deal.StartMonth != 80 || deal.EndMonth != 150 {
		t.Errorf("resize-start produced %+v, expected [80, 150)", deal)
	}
	// Dragging the start past the end clamps to a one-month deal.
	start.MoveTo(290)
	if deal := start.Deal(); deal.StartMonth != 149 {
		t.Errorf("resize-start clamp produced %+v", deal)
	}

	tl2, err := NewWithDeals(300, []Deal{{StartMonth: 100, EndMonth: 150, Rate: 2.0}})
	if err != nil {
		t.Fatalf("NewWithDeals() error = %v", err)
	}
	end, ok := tl2.BeginDrag(0, DragResizeEnd, 150, timelineWidth)
	if !ok {
		t.Fatal("BeginDrag() unexpectedly failed")
	}
	end.MoveTo(400)
	if deal := end.Deal(); deal.EndMonth != 300 {
		t.Errorf("resize-end clamp produced %+v, expected end 300", deal)
	}
	checkInvariants(t, tl2)
}

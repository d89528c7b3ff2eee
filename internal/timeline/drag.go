package timeline

import (
	"github.com/iwvelando/mortgage-planner/pkg/chartmap"
	"github.com/iwvelando/mortgage-planner/pkg/mathutil"
)

// DragKind selects which part of a deal a drag session manipulates.
type DragKind int

const (
	// DragMove drags the deal body, shifting the whole interval
	DragMove DragKind = iota
	// DragResizeStart drags the left edge handle
	DragResizeStart
	// DragResizeEnd drags the right edge handle
	DragResizeEnd
)

// DragSession tracks one pointer drag over a deal. Every pointer move is
// resolved against the pre-drag snapshot plus the cumulative pixel
// displacement, not against the live value, so rounding does not compound
// across move events. Each successful intermediate state is committed
// immediately; there is no separate commit on release.
type DragSession struct {
	tl       *Timeline
	kind     DragKind
	snapshot Deal
	current  Deal
	startPx  float64
	widthPx  float64
}

// BeginDrag starts a drag session over the deal at index. startPx is the
// pointer-down position and widthPx the rendered timeline width.
func (t *Timeline) BeginDrag(index int, kind DragKind, startPx, widthPx float64) (*DragSession, bool) {
	deal, ok := t.Deal(index)
	if !ok || widthPx <= 0 {
		return nil, false
	}
	return &DragSession{
		tl:       t,
		kind:     kind,
		snapshot: deal,
		current:  deal,
		startPx:  startPx,
		widthPx:  widthPx,
	}, true
}

// MoveTo handles a pointer-move event at the given pixel position. It reports
// whether the deal changed for this frame; a rejected frame leaves the deal
// where it was, with no error surfaced.
func (s *DragSession) MoveTo(pixelX float64) bool {
	delta := s.monthDisplacement(pixelX)
	candidate := s.candidateFor(delta)
	if candidate == s.current {
		return false
	}
	index := s.tl.indexOf(s.current)
	if index < 0 {
		return false
	}
	if !s.tl.replace(index, candidate) {
		return false
	}
	s.current = candidate
	return true
}

// Deal returns the dragged deal's current committed state.
func (s *DragSession) Deal() Deal {
	return s.current
}

// monthDisplacement converts cumulative pixel displacement since drag start
// into whole months.
func (s *DragSession) monthDisplacement(pixelX float64) int {
	startMonth := chartmap.MonthAt(s.startPx, s.widthPx, s.tl.termMonths)
	currentMonth := chartmap.MonthAt(pixelX, s.widthPx, s.tl.termMonths)
	return currentMonth - startMonth
}

// candidateFor builds the target interval from the snapshot and a month
// displacement, applying the clamping rules of the underlying operation.
func (s *DragSession) candidateFor(delta int) Deal {
	candidate := s.snapshot
	switch s.kind {
	case DragMove:
		candidate = s.tl.movedDeal(s.snapshot, delta)
	case DragResizeStart:
		candidate.StartMonth = mathutil.ClampInt(s.snapshot.StartMonth+delta, 0, s.snapshot.EndMonth-1)
	case DragResizeEnd:
		candidate.EndMonth = mathutil.ClampInt(s.snapshot.EndMonth+delta, s.snapshot.StartMonth+1, s.tl.termMonths)
	}
	return candidate
}

package overpay

import (
	"math"
	"time"

	"github.com/iwvelando/mortgage-planner/pkg/chartmap"
	"github.com/iwvelando/mortgage-planner/pkg/constants"
)

// PressTimer is the cancellable timer behind a touch long-press. *time.Timer
// satisfies it; tests substitute a manual implementation.
type PressTimer interface {
	Stop() bool
}

// TimerFunc schedules f after d and returns a cancellable timer.
type TimerFunc func(d time.Duration, f func()) PressTimer

// RecognizerConfig wires a Recognizer to its chart scale and output hooks.
type RecognizerConfig struct {
	// Scale maps chart pixels to period indices.
	Scale chartmap.Scale
	// OnPopover receives the pending edit when an interaction opens a popover.
	OnPopover func(*PendingEdit)
	// Haptics, when non-nil, fires a vibration cue on touch long-press.
	Haptics func()
	// NewTimer overrides long-press timer creation; defaults to time.AfterFunc.
	NewTimer TimerFunc
}

// Recognizer translates pointer and touch events over the balance chart into
// overpayment store operations and popover openings. All methods are expected
// to run on the single UI event loop; there is at most one active gesture at a
// time and a new gesture replaces the previous session.
type Recognizer struct {
	store *Store
	cfg   RecognizerConfig

	dragID      string
	pressTimer  PressTimer
	pressX      float64
	pressY      float64
	pressPeriod int
}

// NewRecognizer builds a gesture recognizer over the given store.
func NewRecognizer(store *Store, cfg RecognizerConfig) *Recognizer {
	if cfg.NewTimer == nil {
		cfg.NewTimer = func(d time.Duration, f func()) PressTimer {
			return time.AfterFunc(d, f)
		}
	}
	return &Recognizer{store: store, cfg: cfg}
}

// Click handles a desktop click at the given chart pixel. A click within the
// hit threshold of an existing marker opens an edit popover for it; a click on
// empty chart area opens an add popover at the period under the pointer.
func (r *Recognizer) Click(pixelX float64) {
	if marker, ok := r.markerNear(pixelX); ok {
		r.openPopover(NewEditPending(r.store, marker))
		return
	}
	r.openPopover(NewAddPending(r.store, r.cfg.Scale.PeriodAt(pixelX)))
}

// PointerDown begins a desktop drag when the pointer lands within the hit
// threshold of an existing marker. It reports whether a drag started.
func (r *Recognizer) PointerDown(pixelX float64) bool {
	marker, ok := r.markerNear(pixelX)
	if !ok {
		return false
	}
	r.dragID = marker.ID
	r.store.SetDragging(marker.ID, true)
	return true
}

// PointerMove applies a live position update for the dragged marker. The
// marker's period index follows the pointer on every move event rather than
// committing once at release.
func (r *Recognizer) PointerMove(pixelX float64) bool {
	if r.dragID == "" {
		return false
	}
	period := r.cfg.Scale.PeriodAt(pixelX)
	return r.store.Update(r.dragID, Patch{PeriodIndex: &period})
}

// PointerUp ends the active drag and clears the dragging flag.
func (r *Recognizer) PointerUp() {
	if r.dragID == "" {
		return
	}
	r.store.SetDragging(r.dragID, false)
	r.dragID = ""
}

// TouchStart handles a touch-down. A touch on an existing marker begins an
// immediate drag. A touch on empty area arms the long-press timer; if it fires
// the add popover opens at the held position with a haptic cue.
func (r *Recognizer) TouchStart(pixelX, pixelY float64) {
	if r.PointerDown(pixelX) {
		return
	}
	r.cancelPress()
	r.pressX = pixelX
	r.pressY = pixelY
	r.pressPeriod = r.cfg.Scale.PeriodAt(pixelX)
	r.pressTimer = r.cfg.NewTimer(constants.LongPressDelayMs*time.Millisecond, r.firePress)
}

// TouchMove either continues a marker drag or, when a long-press is pending,
// cancels it once the touch has travelled far enough to read as a scroll.
func (r *Recognizer) TouchMove(pixelX, pixelY float64) bool {
	if r.dragID != "" {
		return r.PointerMove(pixelX)
	}
	if r.pressTimer != nil {
		if math.Hypot(pixelX-r.pressX, pixelY-r.pressY) > constants.LongPressCancelThresholdPx {
			r.cancelPress()
		}
	}
	return false
}

// TouchEnd ends the active drag and disarms any pending long-press.
func (r *Recognizer) TouchEnd() {
	r.cancelPress()
	r.PointerUp()
}

func (r *Recognizer) firePress() {
	r.pressTimer = nil
	if r.cfg.Haptics != nil {
		r.cfg.Haptics()
	}
	r.openPopover(NewAddPending(r.store, r.pressPeriod))
}

func (r *Recognizer) cancelPress() {
	if r.pressTimer != nil {
		r.pressTimer.Stop()
		r.pressTimer = nil
	}
}

func (r *Recognizer) openPopover(pending *PendingEdit) {
	if r.cfg.OnPopover != nil {
		r.cfg.OnPopover(pending)
	}
}

// markerNear returns the marker whose rendered position is closest to pixelX
// within the hit threshold.
func (r *Recognizer) markerNear(pixelX float64) (Marker, bool) {
	var (
		best     Marker
		bestDist = math.Inf(1)
		found    bool
	)
	for _, m := range r.store.Markers() {
		dist := math.Abs(pixelX - r.cfg.Scale.PixelFor(m.PeriodIndex))
		if dist <= constants.MarkerHitThresholdPx && dist < bestDist {
			best = m
			bestDist = dist
			found = true
		}
	}
	return best, found
}

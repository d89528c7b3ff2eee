// Package timeline maintains the collection of fixed-rate deal periods over a
// mortgage term. Deals occupy non-overlapping half-open month intervals; the
// gaps between them are implicitly the variable-rate periods.
package timeline

import (
	"fmt"
	"sort"

	"github.com/iwvelando/mortgage-planner/pkg/constants"
	"github.com/iwvelando/mortgage-planner/pkg/mathutil"
	"github.com/iwvelando/mortgage-planner/pkg/validation"
)

// Deal represents one fixed-rate period as a half-open month interval
// [StartMonth, EndMonth) with an annual percentage rate.
type Deal struct {
	StartMonth int     `json:"startMonth"`
	EndMonth   int     `json:"endMonth"`
	Rate       float64 `json:"rate"`
}

// Duration returns the deal length in months.
func (d Deal) Duration() int {
	return d.EndMonth - d.StartMonth
}

// Overlaps reports whether two half-open month intervals intersect. This is
// the single overlap test used by every mutating operation on a Timeline.
func (d Deal) Overlaps(other Deal) bool {
	return d.StartMonth < other.EndMonth && d.EndMonth > other.StartMonth
}

// Gap is a variable-rate period between deals, derived rather than stored.
type Gap struct {
	StartMonth int `json:"startMonth"`
	EndMonth   int `json:"endMonth"`
}

// Field identifies a directly-editable deal field.
type Field int

const (
	// FieldStartMonth edits Deal.StartMonth
	FieldStartMonth Field = iota
	// FieldEndMonth edits Deal.EndMonth
	FieldEndMonth
	// FieldRate edits Deal.Rate
	FieldRate
)

// Timeline owns an ordered collection of non-overlapping deals over the
// horizon [0, termMonths). Every mutating operation either preserves validity
// or leaves the collection untouched and reports rejection.
type Timeline struct {
	termMonths int
	deals      []Deal
}

// New returns an empty timeline over the given horizon.
func New(termMonths int) *Timeline {
	return &Timeline{termMonths: termMonths}
}

// NewWithDeals builds a timeline from an existing deal collection, validating
// bounds, rates, and the no-overlap invariant. Used when restoring persisted
// or shared plan state.
func NewWithDeals(termMonths int, deals []Deal) (*Timeline, error) {
	t := New(termMonths)
	sorted := append([]Deal(nil), deals...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].StartMonth < sorted[j].StartMonth })
	for i, deal := range sorted {
		if deal.StartMonth < 0 || deal.EndMonth > termMonths || deal.EndMonth <= deal.StartMonth {
			return nil, fmt.Errorf("deal %d has invalid interval [%d, %d) over %d-month term",
				i, deal.StartMonth, deal.EndMonth, termMonths)
		}
		if err := validation.ValidateRate(deal.Rate); err != nil {
			return nil, fmt.Errorf("deal %d: %w", i, err)
		}
		if i > 0 && deal.Overlaps(sorted[i-1]) {
			return nil, fmt.Errorf("deal %d overlaps preceding deal", i)
		}
	}
	t.deals = sorted
	return t, nil
}

// TermMonths returns the horizon in months.
func (t *Timeline) TermMonths() int {
	return t.termMonths
}

// Len returns the number of deals.
func (t *Timeline) Len() int {
	return len(t.deals)
}

// Deals returns a copy of the collection sorted by start month.
func (t *Timeline) Deals() []Deal {
	return append([]Deal(nil), t.deals...)
}

// Deal returns the deal at the given index.
func (t *Timeline) Deal(index int) (Deal, bool) {
	if index < 0 || index >= len(t.deals) {
		return Deal{}, false
	}
	return t.deals[index], true
}

// First returns the earliest-starting deal, used for legacy field derivation.
func (t *Timeline) First() (Deal, bool) {
	if len(t.deals) == 0 {
		return Deal{}, false
	}
	return t.deals[0], true
}

// Add places a new deal with the given rate into the first gap of any size,
// spanning from the gap start to at most the default span, clipped to the gap.
// It reports false when the deals already cover the full horizon or the rate
// is out of range.
func (t *Timeline) Add(rate float64) (Deal, bool) {
	if err := validation.ValidateRate(rate); err != nil {
		return Deal{}, false
	}
	gaps := t.Gaps()
	if len(gaps) == 0 {
		return Deal{}, false
	}
	gap := gaps[0]
	deal := Deal{
		StartMonth: gap.StartMonth,
		EndMonth:   mathutil.MinInt(gap.EndMonth, gap.StartMonth+constants.DefaultDealSpanMonths),
		Rate:       rate,
	}
	t.deals = append(t.deals, deal)
	t.sortDeals()
	return deal, true
}

// Remove deletes the deal at the given index. Removal never creates overlap so
// no re-validation is needed.
func (t *Timeline) Remove(index int) bool {
	if index < 0 || index >= len(t.deals) {
		return false
	}
	t.deals = append(t.deals[:index], t.deals[index+1:]...)
	return true
}

// Move shifts the deal at index by deltaMonths, preserving its duration. The
// start clamps at 0 and the end clamps at the horizon with the start re-derived
// to keep the duration. The move is rejected when the shifted interval would
// overlap another deal.
func (t *Timeline) Move(index, deltaMonths int) bool {
	deal, ok := t.Deal(index)
	if !ok {
		return false
	}
	return t.replace(index, t.movedDeal(deal, deltaMonths))
}

// ResizeStart sets the deal's start month, clamped to [0, EndMonth-1].
// Rejected on overlap.
func (t *Timeline) ResizeStart(index, newStart int) bool {
	deal, ok := t.Deal(index)
	if !ok {
		return false
	}
	deal.StartMonth = mathutil.ClampInt(newStart, 0, deal.EndMonth-1)
	return t.replace(index, deal)
}

// ResizeEnd sets the deal's end month, clamped to [StartMonth+1, termMonths].
// Rejected on overlap.
func (t *Timeline) ResizeEnd(index, newEnd int) bool {
	deal, ok := t.Deal(index)
	if !ok {
		return false
	}
	deal.EndMonth = mathutil.ClampInt(newEnd, deal.StartMonth+1, t.termMonths)
	return t.replace(index, deal)
}

// EditField applies a direct numeric edit from the companion list view. Unlike
// the drag operations it never clamps: an edit that would invert the interval,
// push a bound outside the horizon, exceed the rate range, or overlap another
// deal is rejected outright and the prior value retained.
func (t *Timeline) EditField(index int, field Field, value float64) bool {
	deal, ok := t.Deal(index)
	if !ok {
		return false
	}
	switch field {
	case FieldStartMonth:
		month := int(value)
		if float64(month) != value || month < 0 || month >= deal.EndMonth {
			return false
		}
		deal.StartMonth = month
	case FieldEndMonth:
		month := int(value)
		if float64(month) != value || month <= deal.StartMonth || month > t.termMonths {
			return false
		}
		deal.EndMonth = month
	case FieldRate:
		if err := validation.ValidateRate(value); err != nil {
			return false
		}
		deal.Rate = value
	default:
		return false
	}
	return t.replace(index, deal)
}

// Gaps derives the variable-rate zones: before the first deal, between
// consecutive deals, and after the last deal.
func (t *Timeline) Gaps() []Gap {
	var gaps []Gap
	cursor := 0
	for _, deal := range t.deals {
		if deal.StartMonth > cursor {
			gaps = append(gaps, Gap{StartMonth: cursor, EndMonth: deal.StartMonth})
		}
		cursor = deal.EndMonth
	}
	if cursor < t.termMonths {
		gaps = append(gaps, Gap{StartMonth: cursor, EndMonth: t.termMonths})
	}
	return gaps
}

// movedDeal computes the interval for a move by deltaMonths with edge clamping
// that preserves duration.
func (t *Timeline) movedDeal(deal Deal, deltaMonths int) Deal {
	duration := deal.Duration()
	start := deal.StartMonth + deltaMonths
	if start < 0 {
		start = 0
	}
	if start+duration > t.termMonths {
		start = t.termMonths - duration
	}
	deal.StartMonth = start
	deal.EndMonth = start + duration
	return deal
}

// replace swaps the deal at index for candidate when the candidate interval is
// valid and free of overlap with every other deal; otherwise the collection is
// left untouched.
func (t *Timeline) replace(index int, candidate Deal) bool {
	if candidate.StartMonth < 0 || candidate.EndMonth > t.termMonths ||
		candidate.EndMonth <= candidate.StartMonth {
		return false
	}
	for i, other := range t.deals {
		if i == index {
			continue
		}
		if candidate.Overlaps(other) {
			return false
		}
	}
	t.deals[index] = candidate
	t.sortDeals()
	return true
}

// indexOf locates a deal by value; mutating operations keep the collection
// sorted so an index is only stable until the next successful mutation.
func (t *Timeline) indexOf(deal Deal) int {
	for i, d := range t.deals {
		if d == deal {
			return i
		}
	}
	return -1
}

func (t *Timeline) sortDeals() {
	sort.Slice(t.deals, func(i, j int) bool { return t.deals[i].StartMonth < t.deals[j].StartMonth })
}

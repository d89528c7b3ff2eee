// Package overpay maintains the collection of one-time overpayment events
// keyed by 1-based period index, along with the chart interaction state used
// to add, move, and edit them. Stores are explicitly owned and injectable;
// there is no package-level singleton.
package overpay

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/iwvelando/mortgage-planner/pkg/datetime"
)

// Marker represents one lump-sum overpayment event. Dragging is transient UI
// state and is excluded from serialization.
type Marker struct {
	ID          string  `json:"id"`
	PeriodIndex int     `json:"periodIndex"`
	Amount      float64 `json:"amount"`
	DateLabel   string  `json:"dateLabel"`
	Dragging    bool    `json:"-"`
}

// Patch carries a partial marker update; nil fields are left unchanged.
type Patch struct {
	PeriodIndex *int
	Amount      *float64
}

// Store owns a collection of overpayment markers with at most one marker per
// period index, kept sorted by period.
type Store struct {
	startDate string
	markers   []Marker
	activeID  string
	nextID    int
}

// NewStore returns an empty store labelling markers relative to startDate.
func NewStore(startDate string) *Store {
	return &Store{startDate: startDate, nextID: 1}
}

// SetStartDate stores the simulation start date and recomputes every marker's
// calendar label.
func (s *Store) SetStartDate(date string) {
	s.startDate = date
	for i := range s.markers {
		s.markers[i].DateLabel = s.label(s.markers[i].PeriodIndex)
	}
}

// StartDate returns the simulation start date used for labels.
func (s *Store) StartDate() string {
	return s.startDate
}

// Add places a marker at the given period index. When the index is already
// occupied the existing marker's amount is updated in place instead of
// creating a duplicate. Either way the affected marker becomes the active
// (editing) marker and is returned.
func (s *Store) Add(periodIndex int, amount float64) Marker {
	if existing, ok := s.AtPeriod(periodIndex); ok {
		i := s.indexOf(existing.ID)
		s.markers[i].Amount = amount
		s.activeID = existing.ID
		return s.markers[i]
	}

	marker := Marker{
		ID:          fmt.Sprintf("op-%d", s.nextID),
		PeriodIndex: periodIndex,
		Amount:      amount,
		DateLabel:   s.label(periodIndex),
	}
	s.nextID++
	s.markers = append(s.markers, marker)
	s.sortMarkers()
	s.activeID = marker.ID
	return marker
}

// Update merges the patch into the marker with the given id, recomputing the
// calendar label when the period changes. A period change onto a period
// occupied by another marker is rejected wholesale, leaving the marker where
// it was; the next in-bounds frame of a drag applies normally. Reports false
// for an unknown id or a rejected patch.
func (s *Store) Update(id string, patch Patch) bool {
	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	if patch.PeriodIndex != nil && *patch.PeriodIndex != s.markers[i].PeriodIndex {
		if _, occupied := s.AtPeriod(*patch.PeriodIndex); occupied {
			return false
		}
	}
	if patch.PeriodIndex != nil {
		s.markers[i].PeriodIndex = *patch.PeriodIndex
		s.markers[i].DateLabel = s.label(*patch.PeriodIndex)
	}
	if patch.Amount != nil {
		s.markers[i].Amount = *patch.Amount
	}
	s.sortMarkers()
	return true
}

// Remove deletes the marker with the given id, clearing the active reference
// if it pointed at the removed marker.
func (s *Store) Remove(id string) bool {
	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.markers = append(s.markers[:i], s.markers[i+1:]...)
	if s.activeID == id {
		s.activeID = ""
	}
	return true
}

// SetDragging toggles the transient dragging flag used for rendering emphasis.
func (s *Store) SetDragging(id string, dragging bool) bool {
	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.markers[i].Dragging = dragging
	return true
}

// AtPeriod returns the marker at the exact period index, if any. Used to
// decide between editing an existing marker and creating a new one on a chart
// click.
func (s *Store) AtPeriod(periodIndex int) (Marker, bool) {
	for _, m := range s.markers {
		if m.PeriodIndex == periodIndex {
			return m, true
		}
	}
	return Marker{}, false
}

// Get returns the marker with the given id.
func (s *Store) Get(id string) (Marker, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return Marker{}, false
	}
	return s.markers[i], true
}

// Active returns the marker currently open for editing, if any.
func (s *Store) Active() (Marker, bool) {
	if s.activeID == "" {
		return Marker{}, false
	}
	return s.Get(s.activeID)
}

// ClearActive drops the active (editing) marker reference.
func (s *Store) ClearActive() {
	s.activeID = ""
}

// Markers returns a copy of the collection sorted by period index.
func (s *Store) Markers() []Marker {
	return append([]Marker(nil), s.markers...)
}

// Restore replaces the collection with previously persisted markers,
// recomputing labels and dropping entries with duplicate, non-positive, or
// out-of-horizon period indices. A maxPeriod below 1 disables the horizon
// check. IDs are regenerated so they remain unique within the store.
func (s *Store) Restore(markers []Marker, maxPeriod int) {
	s.markers = nil
	seen := make(map[int]struct{})
	for _, m := range markers {
		if m.PeriodIndex < 1 {
			continue
		}
		if maxPeriod >= 1 && m.PeriodIndex > maxPeriod {
			continue
		}
		if _, dup := seen[m.PeriodIndex]; dup {
			continue
		}
		seen[m.PeriodIndex] = struct{}{}
		s.markers = append(s.markers, Marker{
			ID:          fmt.Sprintf("op-%d", s.nextID),
			PeriodIndex: m.PeriodIndex,
			Amount:      m.Amount,
			DateLabel:   s.label(m.PeriodIndex),
		})
		s.nextID++
	}
	s.sortMarkers()
	s.activeID = ""
}

// ToAPIString serializes markers with positive amounts into the upstream wire
// format "period:amount,period:amount" in ascending period order. It returns
// nil when no marker carries a positive amount.
func (s *Store) ToAPIString() *string {
	var parts []string
	for _, m := range s.markers {
		if m.Amount <= 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%d:%s", m.PeriodIndex,
			strconv.FormatFloat(m.Amount, 'f', -1, 64)))
	}
	if len(parts) == 0 {
		return nil
	}
	joined := strings.Join(parts, ",")
	return &joined
}

func (s *Store) label(periodIndex int) string {
	label, err := datetime.PeriodLabel(s.startDate, periodIndex)
	if err != nil {
		return ""
	}
	return label
}

func (s *Store) indexOf(id string) int {
	for i, m := range s.markers {
		if m.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) sortMarkers() {
	sort.Slice(s.markers, func(i, j int) bool {
		return s.markers[i].PeriodIndex < s.markers[j].PeriodIndex
	})
}

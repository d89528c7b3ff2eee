// Package store provides BoltDB-backed persistence for plan and overpayment
// snapshots. Snapshots are versioned and aged: a stale or schema-mismatched
// entry is deleted on load and reported as absent, never as a fatal error.
package store

import (
	"errors"
	"fmt"
	"time"

	bolt "github.com/boltdb/bolt"
	json "github.com/goccy/go-json"

	"github.com/iwvelando/mortgage-planner/internal/overpay"
	"github.com/iwvelando/mortgage-planner/internal/plan"
	"github.com/iwvelando/mortgage-planner/pkg/constants"
)

// ErrNotFound is returned when a requested snapshot does not exist (including
// snapshots discarded for being stale or version-mismatched).
var ErrNotFound = errors.New("snapshot not found")

// envelope wraps every persisted payload with its schema version and save
// time.
type envelope struct {
	Version int             `json:"version"`
	SavedAt time.Time       `json:"savedAt"`
	Payload json.RawMessage `json:"payload"`
}

// Snapshots wraps a BoltDB database holding plan and overpayment snapshots.
type Snapshots struct {
	db *bolt.DB

	// Now is the clock used for save stamps and staleness checks; tests
	// override it.
	Now func() time.Time
}

// Open opens (or creates) the snapshot database at the given path and ensures
// both buckets exist.
func Open(path string) (*Snapshots, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range []string{constants.PlanBucket, constants.MarkerBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(bucket)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare snapshot buckets: %w", err)
	}

	return &Snapshots{db: db, Now: time.Now}, nil
}

// Close releases the database file lock.
func (s *Snapshots) Close() error {
	return s.db.Close()
}

// SavePlan persists the full plan state under the given name.
func (s *Snapshots) SavePlan(name string, state plan.State) error {
	return s.save(constants.PlanBucket, name, state)
}

// LoadPlan retrieves a plan snapshot. Corrupt, stale, or version-mismatched
// entries are cleared and reported as ErrNotFound so callers fall back to
// defaults.
func (s *Snapshots) LoadPlan(name string) (plan.State, error) {
	var state plan.State
	if err := s.load(constants.PlanBucket, name, &state); err != nil {
		return plan.State{}, err
	}
	if err := state.Validate(); err != nil {
		s.discard(constants.PlanBucket, name)
		return plan.State{}, ErrNotFound
	}
	return state, nil
}

// SaveMarkers persists the overpayment marker collection under the given
// name. The transient dragging flag is excluded by the marker's serialization
// rules.
func (s *Snapshots) SaveMarkers(name string, markers []overpay.Marker) error {
	return s.save(constants.MarkerBucket, name, markers)
}

// LoadMarkers retrieves an overpayment marker snapshot.
func (s *Snapshots) LoadMarkers(name string) ([]overpay.Marker, error) {
	var markers []overpay.Marker
	if err := s.load(constants.MarkerBucket, name, &markers); err != nil {
		return nil, err
	}
	return markers, nil
}

func (s *Snapshots) save(bucket, name string, payload interface{}) error {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot payload: %w", err)
	}
	data, err := json.Marshal(envelope{
		Version: constants.SnapshotVersion,
		SavedAt: s.Now().UTC(),
		Payload: payloadBytes,
	})
	if err != nil {
		return fmt.Errorf("failed to encode snapshot envelope: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucket)).Put([]byte(name), data)
	})
}

func (s *Snapshots) load(bucket, name string, out interface{}) error {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket([]byte(bucket)).Get([]byte(name)); v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if data == nil {
		return ErrNotFound
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		s.discard(bucket, name)
		return ErrNotFound
	}
	if env.Version != constants.SnapshotVersion {
		s.discard(bucket, name)
		return ErrNotFound
	}
	if s.Now().Sub(env.SavedAt) > constants.SnapshotMaxAgeDays*24*time.Hour {
		s.discard(bucket, name)
		return ErrNotFound
	}
	if err := json.Unmarshal(env.Payload, out); err != nil {
		s.discard(bucket, name)
		return ErrNotFound
	}
	return nil
}

// discard best-effort deletes an invalid snapshot; a failed delete still
// results in the entry being treated as absent.
func (s *Snapshots) discard(bucket, name string) {
	_ = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucket)).Delete([]byte(name))
	})
}

// Package journal persists live events locally before a background drainer
// flushes them to the store. Emitting an event never waits on Postgres.
package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/choreboard/backend/domain"
)

// Store wraps BoltDB as a write-ahead journal for live events.
type Store struct {
	db     *bolt.DB
	bucket []byte
}

// Open initializes the BoltDB file and ensures the bucket exists.
func Open(path string, bucket string) (*Store, error) {
	if bucket == "" {
		bucket = "events"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{
		db:     db,
		bucket: []byte(bucket),
	}, nil
}

// Record journals one event. Implements usecase.EventSink.
func (s *Store) Record(_ context.Context, familyID, eventType string, payload any) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	event := domain.LiveEvent{
		ID:        uuid.NewString(),
		FamilyID:  familyID,
		EventType: eventType,
		Payload:   raw,
		CreatedAt: time.Now(),
	}

	encoded, err := json.Marshal(event)
	if err != nil {
		return err
	}
	key := buildKey(event)
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put([]byte(key), encoded)
	})
}

// GetBatch returns up to limit journaled events, oldest first, without
// removing them.
func (s *Store) GetBatch(limit int) ([]domain.LiveEvent, error) {
	if s == nil || s.db == nil {
		return nil, bolt.ErrDatabaseNotOpen
	}
	if limit <= 0 {
		limit = 50
	}

	var events []domain.LiveEvent
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(s.bucket).Cursor()
		for k, v := c.First(); k != nil && len(events) < limit; k, v = c.Next() {
			var event domain.LiveEvent
			if err := json.Unmarshal(v, &event); err != nil {
				continue
			}
			events = append(events, event)
		}
		return nil
	})
	return events, err
}

// Remove deletes drained events from the journal.
func (s *Store) Remove(events []domain.LiveEvent) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(s.bucket)
		for _, event := range events {
			if err := bucket.Delete([]byte(buildKey(event))); err != nil {
				return err
			}
		}
		return nil
	})
}

// Size returns the number of journaled events.
func (s *Store) Size() (int, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	var count int
	err := s.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket(s.bucket).Stats().KeyN
		return nil
	})
	return count, err
}

// Cleanup removes events older than the provided timestamp. Events that
// never drained are dropped after the retention window rather than kept
// forever.
func (s *Store) Cleanup(olderThan time.Time) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		c := tx.Bucket(s.bucket).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var event domain.LiveEvent
			if err := json.Unmarshal(v, &event); err != nil {
				continue
			}
			if event.CreatedAt.Before(olderThan) {
				if err := c.Delete(); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// Close closes the Bolt database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Stats exposes Bolt statistics for the health endpoint.
func (s *Store) Stats() bolt.Stats {
	if s == nil || s.db == nil {
		return bolt.Stats{}
	}
	return s.db.Stats()
}

// buildKey orders events by creation time; the ID breaks ties.
func buildKey(event domain.LiveEvent) string {
	return fmt.Sprintf("%020d_%s", event.CreatedAt.UnixNano(), event.ID)
}

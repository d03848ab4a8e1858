package settings

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryKey struct {
	owner string
	view  string
}

// MemoryStore keeps settings in process memory. Used in demo mode and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[memoryKey]Record
	now     func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[memoryKey]Record),
		now:     time.Now,
	}
}

func (s *MemoryStore) Get(ctx context.Context, owner, view string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[memoryKey{owner, view}]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (s *MemoryStore) Put(ctx context.Context, rec Record) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := memoryKey{rec.Owner, rec.View}
	if existing, ok := s.records[key]; ok {
		rec.ID = existing.ID
	} else if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	rec.Settings.UpdatedAt = s.now().UTC()

	s.records[key] = rec
	return rec, nil
}

func (s *MemoryStore) Delete(ctx context.Context, owner, view string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, memoryKey{owner, view})
	return nil
}

func (s *MemoryStore) Close() error { return nil }

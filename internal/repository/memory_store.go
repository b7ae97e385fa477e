package repository

import (
	"context"
	"fmt"
	"sync"

	"go-clinic-management/internal/domain/entity"
	domainRepo "go-clinic-management/internal/domain/repository"

	"github.com/goccy/go-json"
)

type memoryRecord struct {
	version int64
	data    []byte
}

// MemoryStore keeps encoded entities in process memory. Entities are stored
// encoded so callers never share state with the store.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[entity.Kind]map[string]memoryRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[entity.Kind]map[string]memoryRecord),
	}
}

func (s *MemoryStore) Load(ctx context.Context, kind entity.Kind, id string, dst entity.Entity) error {
	s.mu.RLock()
	rec, ok := s.records[kind][id]
	s.mu.RUnlock()
	if !ok {
		return domainRepo.ErrNotFound
	}

	if err := json.Unmarshal(rec.data, dst); err != nil {
		return fmt.Errorf("%w: decode %s %s: %w", domainRepo.ErrIOFailure, kind, id, err)
	}
	dst.SetVersion(rec.version)
	return nil
}

func (s *MemoryStore) Save(ctx context.Context, entities ...entity.Entity) error {
	encoded := make([][]byte, len(entities))
	for i, e := range entities {
		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("%w: encode %s %s: %w", domainRepo.ErrIOFailure, e.EntityKind(), e.EntityID(), err)
		}
		encoded[i] = data
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(entities))
	for _, e := range entities {
		key := string(e.EntityKind()) + ":" + e.EntityID()
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: %s saved twice", domainRepo.ErrVersionConflict, key)
		}
		seen[key] = struct{}{}

		current := s.records[e.EntityKind()][e.EntityID()].version
		if current != e.GetVersion() {
			return fmt.Errorf("%w: %s", domainRepo.ErrVersionConflict, key)
		}
	}

	for i, e := range entities {
		byID, ok := s.records[e.EntityKind()]
		if !ok {
			byID = make(map[string]memoryRecord)
			s.records[e.EntityKind()] = byID
		}
		byID[e.EntityID()] = memoryRecord{version: e.GetVersion() + 1, data: encoded[i]}
	}
	for _, e := range entities {
		e.SetVersion(e.GetVersion() + 1)
	}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, entities ...entity.Entity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range entities {
		rec, ok := s.records[e.EntityKind()][e.EntityID()]
		if !ok {
			return fmt.Errorf("%w: %s %s", domainRepo.ErrNotFound, e.EntityKind(), e.EntityID())
		}
		if rec.version != e.GetVersion() {
			return fmt.Errorf("%w: %s %s", domainRepo.ErrVersionConflict, e.EntityKind(), e.EntityID())
		}
	}
	for _, e := range entities {
		delete(s.records[e.EntityKind()], e.EntityID())
	}
	return nil
}

func (s *MemoryStore) IDs(ctx context.Context, kind entity.Kind) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.records[kind]))
	for id := range s.records[kind] {
		ids = append(ids, id)
	}
	return ids, nil
}

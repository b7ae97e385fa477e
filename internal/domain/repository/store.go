package repository

import (
	"context"
	"errors"
	"sort"

	"go-clinic-management/internal/domain/entity"
)

var (
	ErrNotFound        = errors.New("entity not found")
	ErrIOFailure       = errors.New("persistence failure")
	ErrVersionConflict = errors.New("entity was modified concurrently")
)

// Store is the whole-object persistence contract shared by every manager.
//
// Save writes all given entities or none of them. Each entity must still carry the
// version it was loaded with (zero for new entities), otherwise ErrVersionConflict
// is returned and nothing is written. On success the versions are advanced in place.
//
// Delete follows the same rule: every entity is removed only while its stored
// version equals the loaded one. A missing entity yields ErrNotFound.
type Store interface {
	Load(ctx context.Context, kind entity.Kind, id string, dst entity.Entity) error
	Save(ctx context.Context, entities ...entity.Entity) error
	Delete(ctx context.Context, entities ...entity.Entity) error
	IDs(ctx context.Context, kind entity.Kind) ([]string, error)
}

// LoadAll loads every entity of a kind, ordered by identifier
func LoadAll[T any, P interface {
	*T
	entity.Entity
}](ctx context.Context, store Store, kind entity.Kind) ([]*T, error) {
	ids, err := store.IDs(ctx, kind)
	if err != nil {
		return nil, err
	}
	sort.Strings(ids)

	items := make([]*T, 0, len(ids))
	for _, id := range ids {
		var item T
		if err := store.Load(ctx, kind, id, P(&item)); err != nil {
			// removed between IDs and Load
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		items = append(items, &item)
	}
	return items, nil
}

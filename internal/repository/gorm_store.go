package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-clinic-management/internal/domain/entity"
	domainRepo "go-clinic-management/internal/domain/repository"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// entityRecord is one row of the entities table
type entityRecord struct {
	Kind      string    `gorm:"primaryKey;type:varchar(32)"`
	ID        string    `gorm:"primaryKey;type:varchar(255)"`
	Version   int64     `gorm:"not null"`
	Data      string    `gorm:"type:jsonb;not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (entityRecord) TableName() string {
	return "entities"
}

// GormStore persists entities as versioned JSON documents in PostgreSQL
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Load(ctx context.Context, kind entity.Kind, id string, dst entity.Entity) error {
	var rec entityRecord
	err := s.db.WithContext(ctx).
		Where("kind = ? AND id = ?", string(kind), id).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domainRepo.ErrNotFound
		}
		return fmt.Errorf("%w: load %s %s: %w", domainRepo.ErrIOFailure, kind, id, err)
	}

	if err := json.Unmarshal([]byte(rec.Data), dst); err != nil {
		return fmt.Errorf("%w: decode %s %s: %w", domainRepo.ErrIOFailure, kind, id, err)
	}
	dst.SetVersion(rec.Version)
	return nil
}

// Save writes all entities in one transaction. New entities are inserted and a
// unique violation means another writer created them first; existing entities
// are updated only while their stored version is unchanged.
func (s *GormStore) Save(ctx context.Context, entities ...entity.Entity) error {
	records := make([]entityRecord, len(entities))
	now := time.Now().UTC()
	for i, e := range entities {
		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("%w: encode %s %s: %w", domainRepo.ErrIOFailure, e.EntityKind(), e.EntityID(), err)
		}
		records[i] = entityRecord{
			Kind:      string(e.EntityKind()),
			ID:        e.EntityID(),
			Version:   e.GetVersion() + 1,
			Data:      string(data),
			UpdatedAt: now,
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, e := range entities {
			rec := records[i]
			if e.GetVersion() == 0 {
				if err := tx.Create(&rec).Error; err != nil {
					if isUniqueViolation(err) {
						return fmt.Errorf("%w: %s %s already exists", domainRepo.ErrVersionConflict, rec.Kind, rec.ID)
					}
					return fmt.Errorf("%w: insert %s %s: %w", domainRepo.ErrIOFailure, rec.Kind, rec.ID, err)
				}
				continue
			}

			result := tx.Model(&entityRecord{}).
				Where("kind = ? AND id = ? AND version = ?", rec.Kind, rec.ID, e.GetVersion()).
				Updates(map[string]interface{}{
					"version":    rec.Version,
					"data":       rec.Data,
					"updated_at": rec.UpdatedAt,
				})
			if result.Error != nil {
				return fmt.Errorf("%w: update %s %s: %w", domainRepo.ErrIOFailure, rec.Kind, rec.ID, result.Error)
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("%w: %s %s", domainRepo.ErrVersionConflict, rec.Kind, rec.ID)
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domainRepo.ErrVersionConflict) || errors.Is(err, domainRepo.ErrIOFailure) {
			return err
		}
		return fmt.Errorf("%w: commit: %w", domainRepo.ErrIOFailure, err)
	}

	for i, e := range entities {
		e.SetVersion(records[i].Version)
	}
	return nil
}

// Delete removes all entities in one transaction, each only at its loaded version
func (s *GormStore) Delete(ctx context.Context, entities ...entity.Entity) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, e := range entities {
			kind, id := string(e.EntityKind()), e.EntityID()
			result := tx.Where("kind = ? AND id = ? AND version = ?", kind, id, e.GetVersion()).
				Delete(&entityRecord{})
			if result.Error != nil {
				return fmt.Errorf("%w: delete %s %s: %w", domainRepo.ErrIOFailure, kind, id, result.Error)
			}
			if result.RowsAffected > 0 {
				continue
			}

			var count int64
			if err := tx.Model(&entityRecord{}).Where("kind = ? AND id = ?", kind, id).Count(&count).Error; err != nil {
				return fmt.Errorf("%w: delete %s %s: %w", domainRepo.ErrIOFailure, kind, id, err)
			}
			if count == 0 {
				return fmt.Errorf("%w: %s %s", domainRepo.ErrNotFound, kind, id)
			}
			return fmt.Errorf("%w: %s %s", domainRepo.ErrVersionConflict, kind, id)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domainRepo.ErrNotFound) || errors.Is(err, domainRepo.ErrVersionConflict) || errors.Is(err, domainRepo.ErrIOFailure) {
			return err
		}
		return fmt.Errorf("%w: commit: %w", domainRepo.ErrIOFailure, err)
	}
	return nil
}

func (s *GormStore) IDs(ctx context.Context, kind entity.Kind) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).
		Model(&entityRecord{}).
		Where("kind = ?", string(kind)).
		Order("id ASC").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("%w: list %s: %w", domainRepo.ErrIOFailure, kind, err)
	}
	return ids, nil
}

// isUniqueViolation checks for PostgreSQL error code 23505
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

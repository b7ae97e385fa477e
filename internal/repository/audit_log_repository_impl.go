package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go-clinic-management/internal/domain/entity"
	domainRepo "go-clinic-management/internal/domain/repository"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type auditLogRepository struct {
	db *gorm.DB
}

func NewAuditLogRepository(db *gorm.DB) domainRepo.AuditLogRepository {
	return &auditLogRepository{db: db}
}

func (r *auditLogRepository) Create(ctx context.Context, log *entity.AuditLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *auditLogRepository) FindAll(ctx context.Context, filter entity.AuditLogFilter) ([]entity.AuditLog, error) {
	query := r.db.WithContext(ctx).Model(&entity.AuditLog{})
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.EntityKind != "" {
		query = query.Where("entity_kind = ?", string(filter.EntityKind))
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var logs []entity.AuditLog
	if err := query.Order("id DESC").Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *auditLogRepository) FindByID(ctx context.Context, id int64) (*entity.AuditLog, error) {
	var log entity.AuditLog
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&log).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &log, nil
}

// redisAuditLogRepository keeps audit entries in a hash keyed by a sequence id
type redisAuditLogRepository struct {
	client *redis.Client
	prefix string
}

func NewRedisAuditLogRepository(client *redis.Client, prefix string) domainRepo.AuditLogRepository {
	return &redisAuditLogRepository{client: client, prefix: prefix}
}

func (r *redisAuditLogRepository) seqKey() string  { return r.prefix + ":audit_logs:seq" }
func (r *redisAuditLogRepository) dataKey() string { return r.prefix + ":audit_logs" }

func (r *redisAuditLogRepository) Create(ctx context.Context, log *entity.AuditLog) error {
	id, err := r.client.Incr(ctx, r.seqKey()).Result()
	if err != nil {
		return err
	}
	log.ID = id
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(log)
	if err != nil {
		return err
	}
	return r.client.HSet(ctx, r.dataKey(), fmt.Sprint(id), data).Err()
}

func (r *redisAuditLogRepository) FindAll(ctx context.Context, filter entity.AuditLogFilter) ([]entity.AuditLog, error) {
	values, err := r.client.HVals(ctx, r.dataKey()).Result()
	if err != nil {
		return nil, err
	}

	logs := make([]entity.AuditLog, 0, len(values))
	for _, v := range values {
		var log entity.AuditLog
		if err := json.Unmarshal([]byte(v), &log); err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}
	return filterAuditLogs(logs, filter), nil
}

func (r *redisAuditLogRepository) FindByID(ctx context.Context, id int64) (*entity.AuditLog, error) {
	v, err := r.client.HGet(ctx, r.dataKey(), fmt.Sprint(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var log entity.AuditLog
	if err := json.Unmarshal([]byte(v), &log); err != nil {
		return nil, err
	}
	return &log, nil
}

type memoryAuditLogRepository struct {
	mu   sync.RWMutex
	logs []entity.AuditLog
}

func NewMemoryAuditLogRepository() domainRepo.AuditLogRepository {
	return &memoryAuditLogRepository{}
}

func (r *memoryAuditLogRepository) Create(ctx context.Context, log *entity.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	log.ID = int64(len(r.logs) + 1)
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	r.logs = append(r.logs, *log)
	return nil
}

func (r *memoryAuditLogRepository) FindAll(ctx context.Context, filter entity.AuditLogFilter) ([]entity.AuditLog, error) {
	r.mu.RLock()
	logs := make([]entity.AuditLog, len(r.logs))
	copy(logs, r.logs)
	r.mu.RUnlock()

	return filterAuditLogs(logs, filter), nil
}

func (r *memoryAuditLogRepository) FindByID(ctx context.Context, id int64) (*entity.AuditLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if id < 1 || id > int64(len(r.logs)) {
		return nil, nil
	}
	log := r.logs[id-1]
	return &log, nil
}

// filterAuditLogs applies the filter and orders newest first
func filterAuditLogs(logs []entity.AuditLog, filter entity.AuditLogFilter) []entity.AuditLog {
	out := make([]entity.AuditLog, 0, len(logs))
	for i := range logs {
		if filter.Matches(&logs[i]) {
			out = append(out, logs[i])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out
}

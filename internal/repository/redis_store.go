package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go-clinic-management/internal/domain/entity"
	domainRepo "go-clinic-management/internal/domain/repository"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

// saveEntitiesScript checks every expected version before writing anything.
//
// KEYS[1..n]     entity hashes
// KEYS[n+1..2n]  id index sets
// ARGV[1]        n
// ARGV[2..n+1]   expected versions
// ARGV[n+2..2n+1] encoded entities
// ARGV[2n+2..3n+1] entity ids
//
// Returns 1 when written, 0 on a version mismatch.
var saveEntitiesScript = redis.NewScript(`
	local n = tonumber(ARGV[1])
	for i = 1, n do
		local current = tonumber(redis.call('HGET', KEYS[i], 'version') or '0')
		if current ~= tonumber(ARGV[1 + i]) then
			return 0
		end
	end
	for i = 1, n do
		local version = tonumber(ARGV[1 + i]) + 1
		redis.call('HSET', KEYS[i], 'version', version, 'data', ARGV[1 + n + i])
		redis.call('SADD', KEYS[n + i], ARGV[1 + 2 * n + i])
	end
	return 1
`)

// deleteEntitiesScript removes entities only while every version still matches.
//
// KEYS[1..n]     entity hashes
// KEYS[n+1..2n]  id index sets
// ARGV[1]        n
// ARGV[2..n+1]   expected versions
// ARGV[n+2..2n+1] entity ids
//
// Returns 1 when deleted, 0 on a version mismatch, -1 if an entity is missing.
var deleteEntitiesScript = redis.NewScript(`
	local n = tonumber(ARGV[1])
	for i = 1, n do
		local current = redis.call('HGET', KEYS[i], 'version')
		if not current then
			return -1
		end
		if tonumber(current) ~= tonumber(ARGV[1 + i]) then
			return 0
		end
	end
	for i = 1, n do
		redis.call('DEL', KEYS[i])
		redis.call('SREM', KEYS[n + i], ARGV[1 + n + i])
	end
	return 1
`)

// RedisStore persists entities as hashes of {version, data} with a per-kind id set
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) entityKey(kind entity.Kind, id string) string {
	return fmt.Sprintf("%s:%s:%s", s.prefix, kind, id)
}

func (s *RedisStore) idsKey(kind entity.Kind) string {
	return fmt.Sprintf("%s:%s:ids", s.prefix, kind)
}

func (s *RedisStore) Load(ctx context.Context, kind entity.Kind, id string, dst entity.Entity) error {
	values, err := s.client.HMGet(ctx, s.entityKey(kind, id), "version", "data").Result()
	if err != nil {
		return fmt.Errorf("%w: load %s %s: %w", domainRepo.ErrIOFailure, kind, id, err)
	}
	if len(values) != 2 || values[1] == nil {
		return domainRepo.ErrNotFound
	}

	versionStr, _ := values[0].(string)
	data, _ := values[1].(string)
	version, err := strconv.ParseInt(versionStr, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: corrupt version for %s %s: %w", domainRepo.ErrIOFailure, kind, id, err)
	}

	if err := json.Unmarshal([]byte(data), dst); err != nil {
		return fmt.Errorf("%w: decode %s %s: %w", domainRepo.ErrIOFailure, kind, id, err)
	}
	dst.SetVersion(version)
	return nil
}

func (s *RedisStore) Save(ctx context.Context, entities ...entity.Entity) error {
	if len(entities) == 0 {
		return nil
	}

	n := len(entities)
	keys := make([]string, 2*n)
	args := make([]interface{}, 1+3*n)
	args[0] = n
	for i, e := range entities {
		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("%w: encode %s %s: %w", domainRepo.ErrIOFailure, e.EntityKind(), e.EntityID(), err)
		}
		keys[i] = s.entityKey(e.EntityKind(), e.EntityID())
		keys[n+i] = s.idsKey(e.EntityKind())
		args[1+i] = e.GetVersion()
		args[1+n+i] = string(data)
		args[1+2*n+i] = e.EntityID()
	}

	written, err := saveEntitiesScript.Run(ctx, s.client, keys, args...).Int()
	if err != nil {
		return fmt.Errorf("%w: save: %w", domainRepo.ErrIOFailure, err)
	}
	if written == 0 {
		return domainRepo.ErrVersionConflict
	}

	for _, e := range entities {
		e.SetVersion(e.GetVersion() + 1)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, entities ...entity.Entity) error {
	if len(entities) == 0 {
		return nil
	}

	n := len(entities)
	keys := make([]string, 2*n)
	args := make([]interface{}, 1+2*n)
	args[0] = n
	for i, e := range entities {
		keys[i] = s.entityKey(e.EntityKind(), e.EntityID())
		keys[n+i] = s.idsKey(e.EntityKind())
		args[1+i] = e.GetVersion()
		args[1+n+i] = e.EntityID()
	}

	result, err := deleteEntitiesScript.Run(ctx, s.client, keys, args...).Int()
	if err != nil {
		return fmt.Errorf("%w: delete: %w", domainRepo.ErrIOFailure, err)
	}
	switch result {
	case -1:
		return domainRepo.ErrNotFound
	case 0:
		return domainRepo.ErrVersionConflict
	}
	return nil
}

func (s *RedisStore) IDs(ctx context.Context, kind entity.Kind) ([]string, error) {
	ids, err := s.client.SMembers(ctx, s.idsKey(kind)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: list %s: %w", domainRepo.ErrIOFailure, kind, err)
	}
	return ids, nil
}

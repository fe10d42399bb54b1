package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/juju/clock"

	"livenotify-srv/pkg/log"
	pkgRedis "livenotify-srv/pkg/redis"
)

// RedisStore keeps every document as a string value under "<prefix>:<component>:<file>".
type RedisStore struct {
	redis    pkgRedis.IRedis
	prefix   string
	backuper Backuper
	clock    clock.Clock
	logger   log.Logger
}

// NewRedisStore returns a store backed by r. backuper may be nil.
func NewRedisStore(r pkgRedis.IRedis, prefix string, backuper Backuper, clk clock.Clock, logger log.Logger) *RedisStore {
	if clk == nil {
		clk = clock.WallClock
	}
	return &RedisStore{redis: r, prefix: prefix, backuper: backuper, clock: clk, logger: logger}
}

func (s *RedisStore) key(component, file string) string {
	return fmt.Sprintf("%s:%s:%s", s.prefix, component, file)
}

func (s *RedisStore) LoadRaw(ctx context.Context, component, file string) ([]byte, bool, error) {
	if err := validateName(component, file); err != nil {
		return nil, false, err
	}
	v, err := s.redis.Get(ctx, s.key(component, file))
	if errors.Is(err, pkgRedis.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("storage.RedisStore.LoadRaw: %w", err)
	}
	return []byte(v), true, nil
}

func (s *RedisStore) Load(ctx context.Context, component, file string, v any) (bool, error) {
	data, found, err := s.LoadRaw(ctx, component, file)
	if err != nil || !found {
		return false, err
	}
	found, err = decode(data, v)
	if err != nil {
		return false, fmt.Errorf("storage.RedisStore.Load %s/%s: %w", component, file, err)
	}
	return found, nil
}

func (s *RedisStore) Save(ctx context.Context, component, file string, v any) error {
	if err := validateName(component, file); err != nil {
		return err
	}
	data, err := encode(v)
	if err != nil {
		return fmt.Errorf("storage.RedisStore.Save %s/%s: %w", component, file, err)
	}

	key := s.key(component, file)
	if s.backuper != nil {
		old, err := s.redis.Get(ctx, key)
		switch {
		case err == nil && old != "" && old != string(data):
			if err := s.backuper.Backup(ctx, component, file, []byte(old), s.clock.Now()); err != nil {
				s.logger.Warnf(ctx, "storage.RedisStore.Save: backup %s: %v", key, err)
			}
		case err != nil && !errors.Is(err, pkgRedis.ErrKeyNotFound):
			s.logger.Warnf(ctx, "storage.RedisStore.Save: read previous %s: %v", key, err)
		}
	}

	if err := s.redis.Set(ctx, key, string(data), 0); err != nil {
		return fmt.Errorf("storage.RedisStore.Save: %w", err)
	}
	return nil
}

package redis

import (
	"context"

	"github.com/redis/rueidis"

	"github.com/neo-assistant/portfolio-chat/internal/db"
)

// Get returns the raw bytes at key, or db.ErrKeyNotFound on a cache miss.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	cmd := s.b().Get().Key(key).Build()
	data, err := s.do(ctx, cmd).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, db.ErrKeyNotFound
		}
		return nil, &db.Error{Op: db.OpGet, Err: err}
	}
	return data, nil
}

// Set stores raw bytes at key without expiration. Cache entries are keyed
// by content hash, so stale values cannot occur and no TTL is needed.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	cmd := s.b().Set().Key(key).Value(string(value)).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpSet, Err: err}
	}
	return nil
}

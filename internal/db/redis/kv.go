package redis

import (
	"context"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/retailerdir/internal/db"
)

// SetNX claims key for value (SET NX). It returns false when another
// writer holds the key; Redis answers that case with a nil reply.
func (s *Store) SetNX(ctx context.Context, key string, value []byte) (bool, error) {
	cmd := s.b().Set().Key(key).Value(rueidis.BinaryString(value)).Nx().Build()
	err := s.do(ctx, cmd).Error()
	switch {
	case err == nil:
		return true, nil
	case rueidis.IsRedisNil(err):
		return false, nil
	default:
		return false, &db.Error{Op: db.OpSetNX, Key: key, Err: err}
	}
}

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ActiveStreamStore holds the per-session active stream reference. It is
// the only writer of that state; everything else resolves through it.
// Every switch bumps a monotonically increasing epoch, which scoped
// handlers use to detect that a fetch they started belongs to a stream
// that is no longer active.
type ActiveStreamStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewActiveStreamStore(rdb *redis.Client, ttl time.Duration) *ActiveStreamStore {
	return &ActiveStreamStore{rdb: rdb, ttl: ttl}
}

type StreamRef struct {
	StreamID string `json:"sid"`
	Epoch    int64  `json:"epoch"`
}

func activeKey(sessionID string) string { return fmt.Sprintf("crm:stream:active:%s", sessionID) }
func epochKey(sessionID string) string  { return fmt.Sprintf("crm:stream:epoch:%s", sessionID) }

// Set records streamID as the session's active stream and returns the new
// reference. The epoch counter outlives Clear so late responses from
// before a clear are still recognizably stale.
func (s *ActiveStreamStore) Set(ctx context.Context, sessionID, streamID string) (*StreamRef, error) {
	epoch, err := s.rdb.Incr(ctx, epochKey(sessionID)).Result()
	if err != nil {
		return nil, err
	}
	ref := &StreamRef{StreamID: streamID, Epoch: epoch}
	b, _ := json.Marshal(ref)
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, activeKey(sessionID), b, s.ttl)
	pipe.Expire(ctx, epochKey(sessionID), s.ttl)
	_, err = pipe.Exec(ctx)
	if err != nil {
		return nil, err
	}
	return ref, nil
}

// Get returns the stored reference, or nil when none is set. Callers must
// still validate the stream id against current memberships.
func (s *ActiveStreamStore) Get(ctx context.Context, sessionID string) (*StreamRef, error) {
	b, err := s.rdb.Get(ctx, activeKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var ref StreamRef
	if err := json.Unmarshal(b, &ref); err != nil {
		return nil, err
	}
	return &ref, nil
}

// Clear drops the reference and bumps the epoch in one pipeline, so there
// is no window where observers see the old stream with a current epoch.
func (s *ActiveStreamStore) Clear(ctx context.Context, sessionID string) error {
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, activeKey(sessionID))
	pipe.Incr(ctx, epochKey(sessionID))
	_, err := pipe.Exec(ctx)
	return err
}

// Epoch reads the session's current switch counter. Missing key means no
// switch ever happened and reads as zero.
func (s *ActiveStreamStore) Epoch(ctx context.Context, sessionID string) (int64, error) {
	n, err := s.rdb.Get(ctx, epochKey(sessionID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// Stale reports whether the session switched streams since sinceEpoch was
// captured. A handler that started a scoped fetch at sinceEpoch must drop
// its result when this returns true.
func (s *ActiveStreamStore) Stale(ctx context.Context, sessionID string, sinceEpoch int64) (bool, error) {
	n, err := s.Epoch(ctx, sessionID)
	if err != nil {
		return false, err
	}
	return n != sinceEpoch, nil
}

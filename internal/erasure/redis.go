package erasure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/rueidis"
)

// RedisProgress stores checkpoints in Redis, one key per account.
type RedisProgress struct {
	redis rueidis.Client
	ttl   time.Duration
}

const redisProgressPrefix = "erasure:progress:"

// NewRedisProgress creates a RedisProgress. Checkpoints expire after ttl;
// a ttl under a second keeps them until the erasure succeeds.
func NewRedisProgress(redis rueidis.Client, ttl time.Duration) *RedisProgress {
	return &RedisProgress{redis: redis, ttl: ttl}
}

func (s *RedisProgress) Save(ctx context.Context, checkpoint Checkpoint) error {
	checkpointBytes, err := json.Marshal(checkpoint)
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}

	set := s.redis.B().Set().Key(redisProgressPrefix + checkpoint.UserID).Value(rueidis.BinaryString(checkpointBytes))
	cmd := set.Build()
	if s.ttl >= time.Second {
		cmd = set.ExSeconds(int64(s.ttl / time.Second)).Build()
	}

	if err := s.redis.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}

	return nil
}

func (s *RedisProgress) Get(ctx context.Context, userID string) (Checkpoint, error) {
	return s.get(ctx, redisProgressPrefix+userID)
}

func (s *RedisProgress) get(ctx context.Context, key string) (Checkpoint, error) {
	reply := s.redis.Do(ctx, s.redis.B().Get().Key(key).Build())
	if err := reply.Error(); err != nil {
		if rueidis.IsRedisNil(err) {
			return Checkpoint{}, ErrNoCheckpoint
		}

		return Checkpoint{}, err
	}

	var checkpoint Checkpoint
	if err := reply.DecodeJSON(&checkpoint); err != nil {
		return Checkpoint{}, fmt.Errorf("decode checkpoint: %w", err)
	}

	return checkpoint, nil
}

func (s *RedisProgress) Delete(ctx context.Context, userID string) error {
	reply := s.redis.Do(ctx, s.redis.B().Del().Key(redisProgressPrefix+userID).Build())
	if reply.Error() != nil {
		return reply.Error()
	}

	return nil
}

func (s *RedisProgress) List(ctx context.Context) ([]Checkpoint, error) {
	var (
		cursor      uint64
		checkpoints []Checkpoint
	)

	for {
		cursorReply := s.redis.Do(ctx, s.redis.B().Scan().Cursor(cursor).Match(redisProgressPrefix+"*").Count(100).Build())
		if cursorReply.Error() != nil {
			return nil, fmt.Errorf("list checkpoints: %w", cursorReply.Error())
		}

		scanEntry, err := cursorReply.AsScanEntry()
		if err != nil {
			return nil, fmt.Errorf("parse checkpoint keys: %w", err)
		}

		for _, element := range scanEntry.Elements {
			checkpoint, err := s.get(ctx, element)
			if err != nil {
				// expired or cleared since the scan
				if errors.Is(err, ErrNoCheckpoint) {
					continue
				}

				return nil, fmt.Errorf("get checkpoint: %w", err)
			}

			checkpoints = append(checkpoints, checkpoint)
		}

		if scanEntry.Cursor == 0 {
			break
		}

		cursor = scanEntry.Cursor
	}

	return checkpoints, nil
}

// CountPending counts the recorded checkpoints by phase.
func (s *RedisProgress) CountPending(ctx context.Context) (map[string]int, error) {
	checkpoints, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, checkpoint := range checkpoints {
		counts[checkpoint.Phase]++
	}

	return counts, nil
}

var _ Progress = (*RedisProgress)(nil)

package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"millionaire-service/internal/domain"

	"github.com/redis/go-redis/v9"
)

// FlashStore keeps pending flash messages of a browser session in a Redis list so that
// any instance behind the load balancer can render them on the next request.
type FlashStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewFlashStore(client *redis.Client, ttl time.Duration) *FlashStore {
	return &FlashStore{client: client, ttl: ttl}
}

func (s *FlashStore) Push(ctx context.Context, sessionID string, flash domain.Flash) error {
	data, err := json.Marshal(flash)
	if err != nil {
		return err
	}
	key := s.key(sessionID)
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, data)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("push flash: %w", err)
	}
	return nil
}

// Pop returns and clears the pending flashes in push order.
func (s *FlashStore) Pop(ctx context.Context, sessionID string) ([]domain.Flash, error) {
	key := s.key(sessionID)
	var list *redis.StringSliceCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		list = pipe.LRange(ctx, key, 0, -1)
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("pop flash: %w", err)
	}

	raw := list.Val()
	flashes := make([]domain.Flash, 0, len(raw))
	for _, item := range raw {
		var flash domain.Flash
		if err := json.Unmarshal([]byte(item), &flash); err != nil {
			continue
		}
		flashes = append(flashes, flash)
	}
	return flashes, nil
}

func (s *FlashStore) key(sessionID string) string {
	return "flash:" + sessionID
}

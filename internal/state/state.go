package state

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RefreshJournal records when each marketplace's taxonomy was last refreshed
// and how many categories the refresh produced. Read by the health endpoint;
// written by the engine after every successful fetch.
type RefreshJournal interface {
	SetLastRefresh(ctx context.Context, marketplace string, at time.Time, categoryCount int) error
	GetLastRefresh(ctx context.Context, marketplace string) (time.Time, int, error)
}

type redisRefreshJournal struct {
	redisClient *redis.Client
	keyPrefix   string
}

func NewRedisRefreshJournal(redisClient *redis.Client) RefreshJournal {
	return &redisRefreshJournal{
		redisClient: redisClient,
		keyPrefix:   "matcher:refresh:",
	}
}

func (j *redisRefreshJournal) SetLastRefresh(ctx context.Context, marketplace string, at time.Time, categoryCount int) error {
	key := j.keyPrefix + marketplace
	err := j.redisClient.HSet(ctx, key, map[string]interface{}{
		"refreshed_at":   at.Unix(),
		"category_count": categoryCount,
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to record refresh for %s: %w", marketplace, err)
	}
	return nil
}

func (j *redisRefreshJournal) GetLastRefresh(ctx context.Context, marketplace string) (time.Time, int, error) {
	key := j.keyPrefix + marketplace
	values, err := j.redisClient.HGetAll(ctx, key).Result()
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("failed to read refresh state for %s: %w", marketplace, err)
	}
	if len(values) == 0 {
		return time.Time{}, 0, nil // never refreshed
	}

	unix, err := strconv.ParseInt(values["refreshed_at"], 10, 64)
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("failed to parse refresh time for %s: %w", marketplace, err)
	}
	count, err := strconv.Atoi(values["category_count"])
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("failed to parse category count for %s: %w", marketplace, err)
	}
	return time.Unix(unix, 0), count, nil
}

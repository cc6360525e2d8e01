package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/iho/loanledger/internal/calendar"
)

// InterestCheckQuota implements usecase.InterestCheckQuota with one counter per loan and
// calendar month. A counter expires when its month ends.
type InterestCheckQuota struct {
	client *redis.Client
	prefix string
}

// NewInterestCheckQuota creates a new InterestCheckQuota.
func NewInterestCheckQuota(client *redis.Client) *InterestCheckQuota {
	return &InterestCheckQuota{
		client: client,
		prefix: "interest_checks:",
	}
}

func (q *InterestCheckQuota) key(loanID string, day calendar.Day) string {
	return q.prefix + loanID + ":" + day.Format("2006-01")
}

// Consume increments the counter for the month containing day.
func (q *InterestCheckQuota) Consume(ctx context.Context, loanID string, day calendar.Day) (int64, error) {
	key := q.key(loanID, day)
	monthEnd := day.EndOf(calendar.Monthly).AddDays(1).Time()

	var incr *redis.IntCmd
	_, err := q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireAt(ctx, key, monthEnd)
		return nil
	})
	if err != nil {
		return 0, err
	}

	return incr.Val(), nil
}

// Used returns the counter for the month containing day without changing it.
func (q *InterestCheckQuota) Used(ctx context.Context, loanID string, day calendar.Day) (int64, error) {
	n, err := q.client.Get(ctx, q.key(loanID, day)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}


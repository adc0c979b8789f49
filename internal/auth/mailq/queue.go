package mailq

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	pendingKey    = "mailq:pending"
	processingKey = "mailq:processing"
	delayedKey    = "mailq:delayed"
	deadKey       = "mailq:dead"
)

// Queue moves jobs between four Redis structures: a pending list, a
// processing list (jobs currently held by a worker), a delayed zset scored by
// retry-at time, and a dead list for jobs that exhausted their retries.
type Queue struct {
	rdb *redis.Client
}

func NewQueue(rdb *redis.Client) *Queue {
	return &Queue{rdb: rdb}
}

// Enqueue pushes a job onto the pending list.
func (q *Queue) Enqueue(ctx context.Context, job Job) error {
	data, err := job.encode()
	if err != nil {
		return err
	}
	if err := q.rdb.LPush(ctx, pendingKey, data).Err(); err != nil {
		return fmt.Errorf("enqueue mail job: %w", err)
	}
	return nil
}

// Dequeue blocks up to timeout for the next pending job, moving it to the
// processing list so a crash between dequeue and ack leaves it recoverable.
// Returns redis.Nil when the timeout elapses with no job.
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (Job, error) {
	data, err := q.rdb.BLMove(ctx, pendingKey, processingKey, "RIGHT", "LEFT", timeout).Result()
	if err != nil {
		return Job{}, err
	}
	return decodeJob(data)
}

// Ack removes a delivered job from the processing list.
func (q *Queue) Ack(ctx context.Context, job Job) error {
	return q.remove(ctx, processingKey, job)
}

// Delay moves a job from processing to the delayed zset, to be promoted back
// to pending at retryAt with its attempt counter bumped.
func (q *Queue) Delay(ctx context.Context, job Job, retryAt time.Time) error {
	if err := q.remove(ctx, processingKey, job); err != nil {
		return err
	}
	job.Attempt++
	data, err := job.encode()
	if err != nil {
		return err
	}
	return q.rdb.ZAdd(ctx, delayedKey, redis.Z{
		Score:  float64(retryAt.UnixMilli()),
		Member: data,
	}).Err()
}

// Kill moves a job from processing to the dead list.
func (q *Queue) Kill(ctx context.Context, job Job) error {
	if err := q.remove(ctx, processingKey, job); err != nil {
		return err
	}
	data, err := job.encode()
	if err != nil {
		return err
	}
	return q.rdb.LPush(ctx, deadKey, data).Err()
}

// PromoteDue moves delayed jobs whose retry time has passed back onto the
// pending list. Returns how many were promoted.
func (q *Queue) PromoteDue(ctx context.Context, now time.Time) (int, error) {
	max := strconv.FormatInt(now.UnixMilli(), 10)

	due, err := q.rdb.ZRangeByScore(ctx, delayedKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: max,
	}).Result()
	if err != nil {
		return 0, err
	}

	promoted := 0
	for _, data := range due {
		// ZRem first so two promoters cannot double-enqueue the same job.
		removed, err := q.rdb.ZRem(ctx, delayedKey, data).Result()
		if err != nil {
			return promoted, err
		}
		if removed == 0 {
			continue
		}
		if err := q.rdb.LPush(ctx, pendingKey, data).Err(); err != nil {
			return promoted, err
		}
		promoted++
	}
	return promoted, nil
}

// Depths reports the length of each queue structure, for logging.
func (q *Queue) Depths(ctx context.Context) (pending, processing, delayed, dead int64, err error) {
	if pending, err = q.rdb.LLen(ctx, pendingKey).Result(); err != nil {
		return
	}
	if processing, err = q.rdb.LLen(ctx, processingKey).Result(); err != nil {
		return
	}
	if delayed, err = q.rdb.ZCard(ctx, delayedKey).Result(); err != nil {
		return
	}
	dead, err = q.rdb.LLen(ctx, deadKey).Result()
	return
}

// TrimDead caps the dead list at keep entries, dropping the oldest.
func (q *Queue) TrimDead(ctx context.Context, keep int64) error {
	return q.rdb.LTrim(ctx, deadKey, 0, keep-1).Err()
}

func (q *Queue) remove(ctx context.Context, key string, job Job) error {
	data, err := job.encode()
	if err != nil {
		return err
	}
	n, err := q.rdb.LRem(ctx, key, 1, data).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("mail job %s not found in %s", job.ID, key)
	}
	return nil
}

// IsEmpty reports whether err is the no-job-available sentinel from Dequeue.
func IsEmpty(err error) bool {
	return errors.Is(err, redis.Nil)
}

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/socialspark/api/internal/model"
)

// ErrNotFound is returned when no schedule record exists for an asset id
var ErrNotFound = errors.New("scheduled item not found")

// ScheduleStore is the persistence contract for schedule records. One record
// per asset id, last write wins. UpdateStatus is a get/mutate/set without a
// transaction: concurrent updates to the same asset id can race, and the
// last writer wins. Harden with a versioned write if that ever matters.
type ScheduleStore interface {
	Upsert(ctx context.Context, item *model.ScheduledItem) error
	Get(ctx context.Context, assetID string) (*model.ScheduledItem, error)
	UpdateStatus(ctx context.Context, assetID string, status model.ScheduleStatus) error
}

// ScheduleRepository implements ScheduleStore on Redis
type ScheduleRepository struct {
	redis *redis.Client
}

func NewScheduleRepository(redisClient *redis.Client) *ScheduleRepository {
	return &ScheduleRepository{redis: redisClient}
}

// Upsert writes the record for its asset id, replacing any previous one.
// Records are kept indefinitely; status transitions are append-only in
// intent, never proactive deletes.
func (r *ScheduleRepository) Upsert(ctx context.Context, item *model.ScheduledItem) error {
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to marshal scheduled item: %w", err)
	}
	return r.redis.Set(ctx, scheduleKey(item.AssetID), data, 0).Err()
}

// Get looks up the record for an asset id
func (r *ScheduleRepository) Get(ctx context.Context, assetID string) (*model.ScheduledItem, error) {
	data, err := r.redis.Get(ctx, scheduleKey(assetID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var item model.ScheduledItem
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal scheduled item: %w", err)
	}

	return &item, nil
}

// UpdateStatus flips the stored status for an asset id
func (r *ScheduleRepository) UpdateStatus(ctx context.Context, assetID string, status model.ScheduleStatus) error {
	item, err := r.Get(ctx, assetID)
	if err != nil {
		return err
	}

	item.Status = status
	return r.Upsert(ctx, item)
}

func scheduleKey(assetID string) string {
	return "schedule:" + assetID
}

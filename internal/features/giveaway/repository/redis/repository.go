// Package redis implements the giveaway repository on Redis. Records are
// stored as JSON values under giveaway:<id>; an insertion-ordered id list
// preserves the List contract; the panel reference lives under a meta key.
package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"giveaway-bot-backend/internal/features/giveaway/models"
	"giveaway-bot-backend/internal/features/giveaway/repository"
)

const (
	keyPrefixGiveaway  = "giveaway:"
	keyGiveawayIDs     = "giveaways:ids"
	keyStatusMessageID = "meta:status_message_id"
)

type redisRepository struct {
	client *redis.Client
}

func New(client *redis.Client) repository.GiveawayRepository {
	return &redisRepository{client: client}
}

func makeGiveawayKey(id string) string {
	return keyPrefixGiveaway + id
}

func (r *redisRepository) Create(ctx context.Context, giveaway *models.Giveaway) error {
	data, err := json.Marshal(giveaway)
	if err != nil {
		return fmt.Errorf("failed to marshal giveaway: %w", err)
	}

	ok, err := r.client.SetNX(ctx, makeGiveawayKey(giveaway.ID), data, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return repository.ErrDuplicateID
	}
	return r.client.RPush(ctx, keyGiveawayIDs, giveaway.ID).Err()
}

func (r *redisRepository) GetByID(ctx context.Context, id string) (*models.Giveaway, error) {
	data, err := r.client.Get(ctx, makeGiveawayKey(id)).Bytes()
	if err == redis.Nil {
		return nil, repository.ErrGiveawayNotFound
	}
	if err != nil {
		return nil, err
	}

	var giveaway models.Giveaway
	if err := json.Unmarshal(data, &giveaway); err != nil {
		return nil, err
	}
	return &giveaway, nil
}

func (r *redisRepository) List(ctx context.Context, filter repository.Filter) ([]*models.Giveaway, error) {
	ids, err := r.client.LRange(ctx, keyGiveawayIDs, 0, -1).Result()
	if err != nil {
		return nil, err
	}

	out := make([]*models.Giveaway, 0, len(ids))
	for _, id := range ids {
		g, err := r.GetByID(ctx, id)
		if err == repository.ErrGiveawayNotFound {
			// Id list entry without a record; skip rather than fail the
			// whole listing.
			continue
		}
		if err != nil {
			return nil, err
		}
		if filter.Ended != nil && g.Ended != *filter.Ended {
			continue
		}
		out = append(out, g)
	}
	return out, nil
}

func (r *redisRepository) Update(ctx context.Context, id string, patch repository.Patch) (*models.Giveaway, error) {
	g, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.EndsAt != nil {
		g.EndsAt = *patch.EndsAt
	}
	if patch.Participants != nil {
		g.Participants = append([]string(nil), (*patch.Participants)...)
	}
	if patch.Ended != nil {
		g.Ended = *patch.Ended
	}
	if patch.WinnersPicked != nil {
		g.WinnersPicked = append([]string(nil), (*patch.WinnersPicked)...)
	}

	data, err := json.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal giveaway: %w", err)
	}
	if err := r.client.Set(ctx, makeGiveawayKey(id), data, 0).Err(); err != nil {
		return nil, err
	}
	return g, nil
}

func (r *redisRepository) PanelRef(ctx context.Context) (string, bool, error) {
	id, err := r.client.Get(ctx, keyStatusMessageID).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return id, id != "", nil
}

func (r *redisRepository) SetPanelRef(ctx context.Context, messageID string) error {
	return r.client.Set(ctx, keyStatusMessageID, messageID, 0).Err()
}

func (r *redisRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *redisRepository) Close() error {
	return r.client.Close()
}

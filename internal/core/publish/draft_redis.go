// Copyright (c) 2026 Milize. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/milize/internal/platform/apperr"
	"github.com/taibuivan/milize/internal/platform/constants"
)

// redisDrafts implements [DraftStore] with one JSON value per session.
type redisDrafts struct {
	client *redis.Client
}

// NewDraftStore constructs a Redis backed [DraftStore].
func NewDraftStore(client *redis.Client) DraftStore {
	return &redisDrafts{client: client}
}

func (store *redisDrafts) Save(ctx context.Context, draft *Draft, ttl time.Duration) error {
	encoded, err := json.Marshal(draft)
	if err != nil {
		return apperr.Internal(fmt.Errorf("encode draft: %w", err))
	}

	if err := store.client.Set(ctx, constants.RedisPrefixDraft+draft.ID, encoded, ttl).Err(); err != nil {
		return apperr.Internal(fmt.Errorf("save draft: %w", err))
	}
	return nil
}

func (store *redisDrafts) Load(ctx context.Context, id string) (*Draft, error) {
	encoded, err := store.client.Get(ctx, constants.RedisPrefixDraft+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperr.NotFound("Draft")
	}
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("load draft: %w", err))
	}

	var draft Draft
	if err := json.Unmarshal(encoded, &draft); err != nil {
		return nil, apperr.Internal(fmt.Errorf("decode draft: %w", err))
	}
	return &draft, nil
}

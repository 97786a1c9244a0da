package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/sirpyerre/storefront-api/internal/core/domain"
	"github.com/sirpyerre/storefront-api/internal/core/ports"
)

// idempotent runs create at most once per (scope, key). A repeated key
// replays the first result through load. When the store is unreachable the
// request is processed without deduplication.
func idempotent[T any](
	ctx context.Context,
	store ports.IdempotencyStore,
	log zerolog.Logger,
	scope, key string,
	load func(ctx context.Context, id string) (T, error),
	create func(ctx context.Context) (T, string, error),
) (T, error) {
	if store == nil || key == "" {
		res, _, err := create(ctx)
		return res, err
	}

	resultID, claimed, err := store.Claim(ctx, scope, key)
	if err != nil {
		log.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency claim failed, processing anyway")
		res, _, err := create(ctx)
		return res, err
	}
	if !claimed {
		if resultID == "" {
			var zero T
			return zero, domain.ErrIdempotencyInFlight
		}
		log.Info().Str("idempotency_key", key).Str("result_id", resultID).Msg("idempotent replay")
		return load(ctx, resultID)
	}

	// The key must be settled even if the client went away mid-request.
	settleCtx := context.WithoutCancel(ctx)

	res, id, err := create(ctx)
	if err != nil {
		if relErr := store.Release(settleCtx, scope, key); relErr != nil {
			log.Warn().Err(relErr).Str("idempotency_key", key).Msg("idempotency release failed")
		}
		return res, err
	}
	if err := store.Complete(settleCtx, scope, key, id); err != nil {
		log.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency complete failed")
	}
	return res, nil
}

package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/icar1an/serenity/internal/model"
)

// NotifyChannel is the Postgres NOTIFY channel carrying cache invalidation
// keys whenever a new prediction lands.
const NotifyChannel = "classification_changes"

type PredictionRepo struct {
	pool *pgxpool.Pool
}

func NewPredictionRepo(pool *pgxpool.Pool) *PredictionRepo {
	return &PredictionRepo{pool: pool}
}

// Insert appends a prediction row (never overwrites prior rows) and
// notifies listeners so sibling processes drop their cached entry.
func (r *PredictionRepo) Insert(ctx context.Context, p *model.ConsensusPrediction) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO channel_predictions (channel_id, is_ai, confidence, model_version)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		p.ChannelID, p.IsAI, p.Confidence, p.ModelVersion,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `SELECT pg_notify($1, $2)`, NotifyChannel, p.ChannelID.String()); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// LatestForChannel returns the most recent prediction for a channel.
func (r *PredictionRepo) LatestForChannel(ctx context.Context, channelID uuid.UUID) (*model.ConsensusPrediction, error) {
	var p model.ConsensusPrediction
	err := r.pool.QueryRow(ctx, `
		SELECT id, channel_id, is_ai, confidence, model_version, created_at
		FROM channel_predictions
		WHERE channel_id = $1
		ORDER BY created_at DESC
		LIMIT 1`, channelID,
	).Scan(&p.ID, &p.ChannelID, &p.IsAI, &p.Confidence, &p.ModelVersion, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

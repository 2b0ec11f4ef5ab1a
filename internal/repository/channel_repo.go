package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/icar1an/serenity/internal/model"
	"github.com/icar1an/serenity/pkg/identifier"
)

// ErrNotFound is returned for explicit lookups of absent rows.
var ErrNotFound = errors.New("not found")

const channelColumns = `
	id, youtube_channel_id, normalized_identifier, handle, channel_title,
	description, sample_video_id, sample_thumbnail, sample_title,
	sample_description, created_at, updated_at`

type ChannelRepo struct {
	pool *pgxpool.Pool
}

func NewChannelRepo(pool *pgxpool.Pool) *ChannelRepo {
	return &ChannelRepo{pool: pool}
}

// FindByID returns a channel by its internal UUID.
func (r *ChannelRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Channel, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+channelColumns+` FROM channels WHERE id = $1`, id)
	return scanChannel(row)
}

// FindByIdentifier returns a channel by raw identifier: the normalized form
// is matched against youtube_channel_id (case-insensitive), the normalized
// identifier column, and the handle.
func (r *ChannelRepo) FindByIdentifier(ctx context.Context, rawID string) (*model.Channel, error) {
	normalized := identifier.Normalize(rawID)
	if normalized == "" {
		return nil, ErrNotFound
	}

	row := r.pool.QueryRow(ctx, `
		SELECT `+channelColumns+`
		FROM channels
		WHERE normalized_identifier = $1
		   OR LOWER(youtube_channel_id) = $1
		   OR LOWER(handle) = $1
		LIMIT 1`, normalized)
	return scanChannel(row)
}

// GetOrCreate resolves a channel by identifier, inserting it on first
// reference. Metadata merges in: a non-null incoming field wins, but a null
// (or placeholder, sanitized upstream) field never blanks a present value.
func (r *ChannelRepo) GetOrCreate(ctx context.Context, rawID string, meta *model.ChannelMetadata) (*model.Channel, error) {
	display := identifier.NormalizeDisplay(rawID)
	normalized := identifier.Normalize(rawID)
	if normalized == "" {
		return nil, ErrNotFound
	}

	meta.Sanitize()
	var m model.ChannelMetadata
	if meta != nil {
		m = *meta
	}
	if m.Handle == nil && !identifier.IsChannelID(display) {
		m.Handle = model.CleanField(&display)
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO channels (
			youtube_channel_id, normalized_identifier, handle, channel_title,
			description, sample_video_id, sample_thumbnail, sample_title,
			sample_description
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (normalized_identifier) DO UPDATE SET
			handle             = COALESCE(EXCLUDED.handle, channels.handle),
			channel_title      = COALESCE(EXCLUDED.channel_title, channels.channel_title),
			description        = COALESCE(EXCLUDED.description, channels.description),
			sample_video_id    = COALESCE(EXCLUDED.sample_video_id, channels.sample_video_id),
			sample_thumbnail   = COALESCE(EXCLUDED.sample_thumbnail, channels.sample_thumbnail),
			sample_title       = COALESCE(EXCLUDED.sample_title, channels.sample_title),
			sample_description = COALESCE(EXCLUDED.sample_description, channels.sample_description),
			updated_at         = NOW()
		RETURNING `+channelColumns,
		display, normalized, m.Handle, m.ChannelTitle, m.Description,
		m.SampleVideoID, m.SampleThumbnail, m.SampleTitle, m.SampleDescription,
	)
	return scanChannel(row)
}

// CandidateBatch returns up to limit channels the given voter has not voted
// on yet. The batch is bounded, not globally random; the queue picks
// uniformly within it.
func (r *ChannelRepo) CandidateBatch(ctx context.Context, voterID string, limit int) ([]model.Channel, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+channelColumns+`
		FROM channels c
		WHERE NOT EXISTS (
			SELECT 1 FROM channel_votes v
			WHERE v.channel_id = c.id AND v.voter_id = $1
		)
		ORDER BY c.created_at
		LIMIT $2`, voterID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var channels []model.Channel
	for rows.Next() {
		ch, err := scanChannel(rows)
		if err != nil {
			return nil, err
		}
		channels = append(channels, *ch)
	}
	return channels, rows.Err()
}

// ListBlocked returns channels whose latest prediction says AI, newest
// first, with at least the given confidence.
func (r *ChannelRepo) ListBlocked(ctx context.Context, limit int, minConfidence float64) ([]model.BlockedChannel, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.youtube_channel_id, c.handle, c.channel_title,
		       p.confidence, p.model_version, p.created_at
		FROM channels c
		JOIN LATERAL (
			SELECT is_ai, confidence, model_version, created_at
			FROM channel_predictions
			WHERE channel_id = c.id
			ORDER BY created_at DESC
			LIMIT 1
		) p ON TRUE
		WHERE p.is_ai AND p.confidence >= $1
		ORDER BY p.created_at DESC
		LIMIT $2`, minConfidence, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.BlockedChannel
	for rows.Next() {
		var bc model.BlockedChannel
		if err := rows.Scan(&bc.ChannelID, &bc.Handle, &bc.ChannelTitle,
			&bc.Confidence, &bc.ModelVersion, &bc.PredictedAt); err != nil {
			return nil, err
		}
		out = append(out, bc)
	}
	return out, rows.Err()
}

func scanChannel(row pgx.Row) (*model.Channel, error) {
	var ch model.Channel
	err := row.Scan(
		&ch.ID, &ch.YouTubeChannelID, &ch.NormalizedIdentifier, &ch.Handle,
		&ch.ChannelTitle, &ch.Description, &ch.SampleVideoID,
		&ch.SampleThumbnail, &ch.SampleTitle, &ch.SampleDescription,
		&ch.CreatedAt, &ch.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ch, nil
}

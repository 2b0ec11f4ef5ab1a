package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/icar1an/serenity/internal/model"
)

type VoteRepo struct {
	pool *pgxpool.Pool
}

func NewVoteRepo(pool *pgxpool.Pool) *VoteRepo {
	return &VoteRepo{pool: pool}
}

// Insert appends a vote row. Votes are immutable and never upserted; the
// aggregate is recomputed from the full history.
func (r *VoteRepo) Insert(ctx context.Context, v *model.Vote) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO channel_votes (channel_id, voter_id, vote, weight, is_shadowbanned)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		v.ChannelID, v.VoterID, v.IsAI, v.Weight, v.IsShadowbanned,
	).Scan(&v.ID, &v.CreatedAt)
}

// CountForChannel returns how many votes are already recorded for a
// channel. This is the "n" the weight decay is computed against.
func (r *VoteRepo) CountForChannel(ctx context.Context, channelID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM channel_votes WHERE channel_id = $1`, channelID).Scan(&n)
	return n, err
}

// ActiveVotes returns the vote set the consensus aggregates over: every
// vote for the channel whose voter was not shadow-banned at vote time.
func (r *VoteRepo) ActiveVotes(ctx context.Context, channelID uuid.UUID) ([]model.VoteSample, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT vote, weight
		FROM channel_votes
		WHERE channel_id = $1 AND is_shadowbanned = FALSE`, channelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []model.VoteSample
	for rows.Next() {
		var s model.VoteSample
		if err := rows.Scan(&s.IsAI, &s.Weight); err != nil {
			return nil, err
		}
		samples = append(samples, s)
	}
	return samples, rows.Err()
}

package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/icar1an/serenity/internal/model"
)

type ReputationRepo struct {
	pool *pgxpool.Pool
}

func NewReputationRepo(pool *pgxpool.Pool) *ReputationRepo {
	return &ReputationRepo{pool: pool}
}

// GetOrCreate returns the reputation for a voter, inserting a default row
// on first vote. The shadow-ban flag is administrative input; this code
// only ever reads it.
func (r *ReputationRepo) GetOrCreate(ctx context.Context, voterID string) (*model.VoterReputation, error) {
	var rep model.VoterReputation
	err := r.pool.QueryRow(ctx, `
		INSERT INTO voter_reputation (voter_id)
		VALUES ($1)
		ON CONFLICT (voter_id) DO UPDATE SET voter_id = EXCLUDED.voter_id
		RETURNING voter_id, is_shadowbanned, created_at`, voterID,
	).Scan(&rep.VoterID, &rep.IsShadowbanned, &rep.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

package model

import (
	"time"

	"github.com/google/uuid"
)

// Vote is an individual, immutable vote record. Multiple votes by the same
// voter on the same channel are all retained; the consensus is recomputed
// from the full history, never from an upsert.
type Vote struct {
	ID             int64     `json:"id"`
	ChannelID      uuid.UUID `json:"channel_id"`
	VoterID        string    `json:"voter_id"`
	IsAI           bool      `json:"is_ai"`
	Weight         float64   `json:"weight"`
	IsShadowbanned bool      `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}

// VoteSample is the slice of a vote the consensus aggregation needs.
type VoteSample struct {
	IsAI   bool
	Weight float64
}

// VoterReputation carries the administrative standing of a voter.
// The voting engine reads the shadow-ban flag but never sets it.
type VoterReputation struct {
	VoterID        string    `json:"voter_id"`
	IsShadowbanned bool      `json:"is_shadowbanned"`
	CreatedAt      time.Time `json:"created_at"`
}

// ConsensusPrediction is one row of the append-only prediction log.
// The most recent row per channel is the authoritative classification.
type ConsensusPrediction struct {
	ID           int64     `json:"id"`
	ChannelID    uuid.UUID `json:"channel_id"`
	IsAI         bool      `json:"is_ai"`
	Confidence   float64   `json:"confidence"`
	ModelVersion string    `json:"model_version"`
	CreatedAt    time.Time `json:"created_at"`
}

// VoteRequest is the API request body for submitting a vote.
type VoteRequest struct {
	ChannelID  string           `json:"channel_id,omitempty"`
	Identifier string           `json:"identifier,omitempty"`
	VoterID    string           `json:"voter_id"`
	IsAI       *bool            `json:"is_ai"`
	Metadata   *ChannelMetadata `json:"metadata,omitempty"`
}

// VoteResponse is the API response after submitting a vote. Only the
// assigned weight is exposed, never the internal score or threshold.
type VoteResponse struct {
	Success        bool    `json:"success"`
	WeightAssigned float64 `json:"weight_assigned"`
}

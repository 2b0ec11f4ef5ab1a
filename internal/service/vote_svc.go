package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/icar1an/serenity/internal/model"
	"github.com/icar1an/serenity/internal/repository"
)

// ModelVersion tags consensus predictions produced by this engine.
const ModelVersion = "consensus-v1"

// aiThreshold is the weighted-score cutoff above which the crowd verdict
// is "AI generated".
const aiThreshold = 0.6

// ErrValidation marks business-logic rejections that happen before any
// persistence.
var ErrValidation = errors.New("validation")

// Invalidator is the resolver surface the voting engine needs after a
// recompute.
type Invalidator interface {
	Invalidate(key string)
}

// VoteService is the crowd-consensus voting engine: it accepts a vote,
// computes its decaying weight, persists it, and recomputes the channel's
// weighted-average classification.
type VoteService struct {
	channels    *repository.ChannelRepo
	votes       *repository.VoteRepo
	predictions *repository.PredictionRepo
	reputation  *repository.ReputationRepo
	invalidator Invalidator
	log         zerolog.Logger
}

func NewVoteService(
	channels *repository.ChannelRepo,
	votes *repository.VoteRepo,
	predictions *repository.PredictionRepo,
	reputation *repository.ReputationRepo,
	invalidator Invalidator,
	logger zerolog.Logger,
) *VoteService {
	return &VoteService{
		channels:    channels,
		votes:       votes,
		predictions: predictions,
		reputation:  reputation,
		invalidator: invalidator,
		log:         logger,
	}
}

// Submit processes one vote submission and returns the assigned weight.
// The internal score and threshold are never exposed to the caller.
func (s *VoteService) Submit(ctx context.Context, req model.VoteRequest) (float64, error) {
	if req.IsAI == nil {
		return 0, fmt.Errorf("%w: is_ai is required", ErrValidation)
	}
	if req.ChannelID == "" && req.Identifier == "" {
		return 0, fmt.Errorf("%w: channel_id or identifier is required", ErrValidation)
	}
	if req.VoterID == "" {
		return 0, fmt.Errorf("%w: voter_id is required", ErrValidation)
	}

	ch, err := s.resolveChannel(ctx, req)
	if err != nil {
		return 0, err
	}

	rep, err := s.reputation.GetOrCreate(ctx, req.VoterID)
	if err != nil {
		return 0, fmt.Errorf("resolve voter reputation: %w", err)
	}

	// Shadow-banned votes are recorded with zero weight; everyone else
	// decays against the channel's existing vote volume.
	weight := 0.0
	if !rep.IsShadowbanned {
		priorVotes, err := s.votes.CountForChannel(ctx, ch.ID)
		if err != nil {
			return 0, fmt.Errorf("count prior votes: %w", err)
		}
		weight = VoteWeight(priorVotes)
	}

	vote := &model.Vote{
		ChannelID:      ch.ID,
		VoterID:        rep.VoterID,
		IsAI:           *req.IsAI,
		Weight:         weight,
		IsShadowbanned: rep.IsShadowbanned,
	}
	if err := s.votes.Insert(ctx, vote); err != nil {
		return 0, fmt.Errorf("persist vote: %w", err)
	}

	// The vote row is durable now. Recompute and invalidation must finish
	// even if the caller walks away, so detach from its cancellation.
	rctx := context.WithoutCancel(ctx)
	if err := s.recomputeConsensus(rctx, ch); err != nil {
		return 0, err
	}

	s.log.Info().
		Str("channel", ch.YouTubeChannelID).
		Bool("is_ai", *req.IsAI).
		Float64("weight", weight).
		Bool("shadowbanned", rep.IsShadowbanned).
		Msg("vote recorded")

	return weight, nil
}

// resolveChannel resolves the vote's channel reference: an existing
// internal UUID, or a raw identifier created on demand.
func (s *VoteService) resolveChannel(ctx context.Context, req model.VoteRequest) (*model.Channel, error) {
	if req.ChannelID != "" {
		id, err := uuid.Parse(req.ChannelID)
		if err != nil {
			return nil, fmt.Errorf("%w: channel_id is not a valid id", ErrValidation)
		}
		ch, err := s.channels.FindByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("resolve channel %s: %w", req.ChannelID, err)
		}
		return ch, nil
	}

	ch, err := s.channels.GetOrCreate(ctx, req.Identifier, req.Metadata)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: identifier normalizes to empty", ErrValidation)
	}
	if err != nil {
		return nil, fmt.Errorf("get or create channel: %w", err)
	}
	return ch, nil
}

// recomputeConsensus re-aggregates the full non-shadow-banned vote history
// and appends a fresh prediction. An empty active set writes nothing.
func (s *VoteService) recomputeConsensus(ctx context.Context, ch *model.Channel) error {
	samples, err := s.votes.ActiveVotes(ctx, ch.ID)
	if err != nil {
		return fmt.Errorf("load vote history: %w", err)
	}

	score, ok := ConsensusScore(samples)
	if !ok {
		return nil
	}

	isAI, confidence := ClassifyScore(score)
	pred := &model.ConsensusPrediction{
		ChannelID:    ch.ID,
		IsAI:         isAI,
		Confidence:   confidence,
		ModelVersion: ModelVersion,
	}
	if err := s.predictions.Insert(ctx, pred); err != nil {
		return fmt.Errorf("persist prediction: %w", err)
	}

	if s.invalidator != nil {
		s.invalidator.Invalidate(ch.ID.String())
		s.invalidator.Invalidate(ch.NormalizedIdentifier)
	}
	return nil
}

// VoteWeight computes the anti-brigading weight for a vote given n prior
// votes on the channel:
//
//	weight = max(0.1, 1.0 - 0.2*log10(n+1))
//
// Monotonically decreasing and floored at 0.1, so late voters on a
// well-voted channel influence the consensus less without ever being
// silenced: 0 prior -> 1.0, 9 prior -> 0.8, 99 prior -> 0.6.
func VoteWeight(priorVotes int) float64 {
	if priorVotes < 0 {
		priorVotes = 0
	}
	return math.Max(0.1, 1.0-0.2*math.Log10(float64(priorVotes)+1))
}

// ClassifyScore turns a weighted score into the prediction fields: AI when
// the crowd leans past the threshold, confidence as distance from the
// losing side.
func ClassifyScore(score float64) (isAI bool, confidence float64) {
	return score > aiThreshold, math.Max(score, 1-score)
}

// ConsensusScore computes the weighted-average AI score over the active
// vote set. ok=false when the set carries no weight (empty, or zero-weight
// rows only), in which case no prediction should be written.
func ConsensusScore(samples []model.VoteSample) (float64, bool) {
	var weightedSum, totalWeight float64
	for _, s := range samples {
		val := 0.0
		if s.IsAI {
			val = 1.0
		}
		weightedSum += val * s.Weight
		totalWeight += s.Weight
	}
	if totalWeight <= 0 {
		return 0, false
	}
	return weightedSum / totalWeight, true
}

package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/icar1an/serenity/internal/model"
	"github.com/icar1an/serenity/internal/repository"
)

// CandidateBatchSize bounds the candidate window the queue samples from.
// Selection is uniform within the batch, not over the entire unvoted set.
const CandidateBatchSize = 50

// ErrEmptyQueue signals that no unvoted candidate exists for the voter.
// It is a distinguishable outcome, not a failure.
var ErrEmptyQueue = errors.New("empty_queue")

// QueueService feeds labelers channels they have not voted on yet.
type QueueService struct {
	channels   *repository.ChannelRepo
	reputation *repository.ReputationRepo
	pick       func(n int) int
}

func NewQueueService(channels *repository.ChannelRepo, reputation *repository.ReputationRepo) *QueueService {
	return &QueueService{
		channels:   channels,
		reputation: reputation,
		pick:       rand.IntN,
	}
}

// Next returns a random channel the voter has not voted on, or
// ErrEmptyQueue when none remains.
func (s *QueueService) Next(ctx context.Context, voterID string) (*model.CandidateItem, error) {
	// Make sure the voter exists so their vote history filter is stable.
	if _, err := s.reputation.GetOrCreate(ctx, voterID); err != nil {
		return nil, fmt.Errorf("resolve voter: %w", err)
	}

	batch, err := s.channels.CandidateBatch(ctx, voterID, CandidateBatchSize)
	if err != nil {
		return nil, fmt.Errorf("load candidates: %w", err)
	}
	if len(batch) == 0 {
		return nil, ErrEmptyQueue
	}

	ch := batch[s.pick(len(batch))]
	return candidateItem(&ch), nil
}

// candidateItem shapes a channel for the labeler UI. Sample fields fall
// back to the channel-level ones, and placeholder values read as absent.
func candidateItem(ch *model.Channel) *model.CandidateItem {
	sampleTitle := model.CleanField(ch.SampleTitle)
	if sampleTitle == nil {
		sampleTitle = model.CleanField(ch.ChannelTitle)
	}
	sampleDescription := model.CleanField(ch.SampleDescription)
	if sampleDescription == nil {
		sampleDescription = model.CleanField(ch.Description)
	}

	return &model.CandidateItem{
		ID:                ch.ID.String(),
		YouTubeChannelID:  ch.YouTubeChannelID,
		Handle:            model.CleanField(ch.Handle),
		ChannelTitle:      model.CleanField(ch.ChannelTitle),
		SampleVideoID:     model.CleanField(ch.SampleVideoID),
		SampleThumbnail:   model.CleanField(ch.SampleThumbnail),
		SampleTitle:       sampleTitle,
		SampleDescription: sampleDescription,
	}
}

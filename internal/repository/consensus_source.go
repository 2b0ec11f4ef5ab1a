package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ConsensusSource adapts the channel and prediction repos to the resolver's
// consensus tier: look the channel up by internal ID or identifier, then
// fetch its latest prediction.
type ConsensusSource struct {
	channels    *ChannelRepo
	predictions *PredictionRepo
}

func NewConsensusSource(channels *ChannelRepo, predictions *PredictionRepo) *ConsensusSource {
	return &ConsensusSource{channels: channels, predictions: predictions}
}

// Latest implements resolver.ConsensusLookup. An absent channel or a
// channel with no predictions is (false, false, nil): reachable but silent.
func (s *ConsensusSource) Latest(ctx context.Context, channelID, normalized string) (bool, bool, error) {
	var chID uuid.UUID

	if channelID != "" {
		if parsed, err := uuid.Parse(channelID); err == nil {
			chID = parsed
		}
	}

	if chID == uuid.Nil {
		lookup := channelID
		if lookup == "" {
			lookup = normalized
		}
		ch, err := s.channels.FindByIdentifier(ctx, lookup)
		if errors.Is(err, ErrNotFound) {
			return false, false, nil
		}
		if err != nil {
			return false, false, err
		}
		chID = ch.ID
	}

	pred, err := s.predictions.LatestForChannel(ctx, chID)
	if errors.Is(err, ErrNotFound) {
		return false, false, nil
	}
	if err != nil {
		return false, false, err
	}
	return pred.IsAI, true, nil
}

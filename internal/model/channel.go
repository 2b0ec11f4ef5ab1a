package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Channel represents a YouTube channel tracked for consensus labeling.
// Metadata fields are nullable and only ever merged in, never blanked.
type Channel struct {
	ID                   uuid.UUID `json:"id"`
	YouTubeChannelID     string    `json:"youtube_channel_id"`
	Handle               *string   `json:"handle,omitempty"`
	NormalizedIdentifier string    `json:"-"`
	ChannelTitle         *string   `json:"channel_title,omitempty"`
	Description          *string   `json:"description,omitempty"`
	SampleVideoID        *string   `json:"sample_video_id,omitempty"`
	SampleThumbnail      *string   `json:"sample_thumbnail,omitempty"`
	SampleTitle          *string   `json:"sample_title,omitempty"`
	SampleDescription    *string   `json:"sample_description,omitempty"`
	CreatedAt            time.Time `json:"-"`
	UpdatedAt            time.Time `json:"-"`
}

// ChannelMetadata is the optional display metadata submitted with a vote.
type ChannelMetadata struct {
	Handle            *string `json:"handle,omitempty"`
	ChannelTitle      *string `json:"channel_title,omitempty"`
	Description       *string `json:"description,omitempty"`
	SampleVideoID     *string `json:"sample_video_id,omitempty"`
	SampleThumbnail   *string `json:"sample_thumbnail,omitempty"`
	SampleTitle       *string `json:"sample_title,omitempty"`
	SampleDescription *string `json:"sample_description,omitempty"`
}

// Sanitize strips placeholder values from every field in place.
func (m *ChannelMetadata) Sanitize() {
	if m == nil {
		return
	}
	m.Handle = CleanField(m.Handle)
	m.ChannelTitle = CleanField(m.ChannelTitle)
	m.Description = CleanField(m.Description)
	m.SampleVideoID = CleanField(m.SampleVideoID)
	m.SampleThumbnail = CleanField(m.SampleThumbnail)
	m.SampleTitle = CleanField(m.SampleTitle)
	m.SampleDescription = CleanField(m.SampleDescription)
}

// CleanField treats scraper placeholders ("(unknown)", "null", "undefined",
// any casing) and blank strings as absent values.
func CleanField(v *string) *string {
	if v == nil {
		return nil
	}
	cleaned := strings.TrimSpace(*v)
	switch strings.ToLower(cleaned) {
	case "", "(unknown)", "null", "undefined":
		return nil
	}
	return &cleaned
}

// CandidateItem is the queue entry served to a labeler.
type CandidateItem struct {
	ID                string  `json:"id"`
	YouTubeChannelID  string  `json:"youtube_channel_id"`
	Handle            *string `json:"handle,omitempty"`
	ChannelTitle      *string `json:"channel_title,omitempty"`
	SampleVideoID     *string `json:"sample_video_id,omitempty"`
	SampleThumbnail   *string `json:"sample_thumbnail,omitempty"`
	SampleTitle       *string `json:"sample_title,omitempty"`
	SampleDescription *string `json:"sample_description,omitempty"`
}

// BlockedChannel pairs a channel with its latest AI prediction, for the
// blocked-channel listing.
type BlockedChannel struct {
	ChannelID    string    `json:"channel_id"`
	Handle       *string   `json:"handle,omitempty"`
	ChannelTitle *string   `json:"channel_title,omitempty"`
	Confidence   float64   `json:"confidence"`
	ModelVersion string    `json:"model_version"`
	PredictedAt  time.Time `json:"predicted_at"`
}

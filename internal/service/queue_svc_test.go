package service

import (
	"testing"

	"github.com/google/uuid"

	"github.com/icar1an/serenity/internal/model"
)

func strptr(s string) *string { return &s }

func TestCandidateItem_SampleFallbacks(t *testing.T) {
	ch := &model.Channel{
		ID:                uuid.New(),
		YouTubeChannelID:  "UCAAAAAAAAAAAAAAAAAAAAAA",
		Handle:            strptr("@somechannel"),
		ChannelTitle:      strptr("Some Channel"),
		Description:       strptr("A channel about things."),
		SampleTitle:       nil,
		SampleDescription: strptr("(unknown)"),
	}

	item := candidateItem(ch)

	if item.SampleTitle == nil || *item.SampleTitle != "Some Channel" {
		t.Errorf("sample title should fall back to channel title, got %v", item.SampleTitle)
	}
	if item.SampleDescription == nil || *item.SampleDescription != "A channel about things." {
		t.Errorf("placeholder sample description should fall back to channel description, got %v", item.SampleDescription)
	}
}

func TestCandidateItem_PlaceholdersReadAsAbsent(t *testing.T) {
	ch := &model.Channel{
		ID:               uuid.New(),
		YouTubeChannelID: "UCBBBBBBBBBBBBBBBBBBBBBB",
		Handle:           strptr("null"),
		ChannelTitle:     strptr("  "),
		SampleVideoID:    strptr("undefined"),
		SampleThumbnail:  strptr("(Unknown)"),
	}

	item := candidateItem(ch)

	if item.Handle != nil {
		t.Errorf("handle = %q, want nil", *item.Handle)
	}
	if item.ChannelTitle != nil {
		t.Errorf("channel title = %q, want nil", *item.ChannelTitle)
	}
	if item.SampleVideoID != nil {
		t.Errorf("sample video id = %q, want nil", *item.SampleVideoID)
	}
	if item.SampleThumbnail != nil {
		t.Errorf("sample thumbnail = %q, want nil", *item.SampleThumbnail)
	}
	if item.SampleTitle != nil || item.SampleDescription != nil {
		t.Error("sample fields should stay absent when both levels are placeholders")
	}
}

func TestCandidateItem_TrimsWhitespace(t *testing.T) {
	ch := &model.Channel{
		ID:               uuid.New(),
		YouTubeChannelID: "UCCCCCCCCCCCCCCCCCCCCCC",
		SampleTitle:      strptr("  My Video  "),
	}

	item := candidateItem(ch)
	if item.SampleTitle == nil || *item.SampleTitle != "My Video" {
		t.Errorf("sample title = %v, want %q", item.SampleTitle, "My Video")
	}
}

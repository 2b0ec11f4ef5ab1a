package model

import "testing"

func TestCleanField(t *testing.T) {
	ptr := func(s string) *string { return &s }

	for _, c := range []struct {
		in   *string
		want *string
	}{
		{nil, nil},
		{ptr(""), nil},
		{ptr("   "), nil},
		{ptr("(unknown)"), nil},
		{ptr("(Unknown)"), nil},
		{ptr("(UNKNOWN)"), nil},
		{ptr("null"), nil},
		{ptr("NULL"), nil},
		{ptr("undefined"), nil},
		{ptr("Undefined"), nil},
		{ptr("  real title  "), ptr("real title")},
		{ptr("nullish but real"), ptr("nullish but real")},
	} {
		got := CleanField(c.in)
		switch {
		case got == nil && c.want == nil:
		case got == nil || c.want == nil:
			t.Errorf("CleanField(%v) = %v, want %v", deref(c.in), deref(got), deref(c.want))
		case *got != *c.want:
			t.Errorf("CleanField(%q) = %q, want %q", *c.in, *got, *c.want)
		}
	}
}

func deref(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func TestChannelMetadataSanitize(t *testing.T) {
	ptr := func(s string) *string { return &s }

	m := &ChannelMetadata{
		Handle:       ptr("(unknown)"),
		ChannelTitle: ptr("  Channel  "),
		Description:  ptr("undefined"),
		SampleTitle:  ptr("A video"),
	}
	m.Sanitize()

	if m.Handle != nil {
		t.Errorf("Handle = %q, want nil", *m.Handle)
	}
	if m.ChannelTitle == nil || *m.ChannelTitle != "Channel" {
		t.Errorf("ChannelTitle = %v, want %q", deref(m.ChannelTitle), "Channel")
	}
	if m.Description != nil {
		t.Errorf("Description = %q, want nil", *m.Description)
	}
	if m.SampleTitle == nil || *m.SampleTitle != "A video" {
		t.Errorf("SampleTitle = %v, want %q", deref(m.SampleTitle), "A video")
	}

	var nilMeta *ChannelMetadata
	nilMeta.Sanitize() // must not panic
}

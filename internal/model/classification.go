package model

// Classification is the closed set of verdicts a channel can carry.
type Classification string

const (
	AIGenerated  Classification = "ai_generated"
	HumanCreated Classification = "human_created"
	AIAssisted   Classification = "ai_assisted"
	Mixed        Classification = "mixed"
	Unknown      Classification = "unknown"
)

// ParseClassification maps a stored string onto the closed enum.
// Anything unrecognized comes back as Unknown with ok=false.
func ParseClassification(s string) (Classification, bool) {
	switch Classification(s) {
	case AIGenerated, HumanCreated, AIAssisted, Mixed:
		return Classification(s), true
	default:
		return Unknown, false
	}
}

// HidePreferences carries the per-variant hide flags supplied by the caller.
type HidePreferences struct {
	HideAI          bool
	HideAIAssisted  bool
	HideMixed       bool
}

// ShouldHide maps a classification onto the caller's preferences.
// HumanCreated and Unknown never hide.
func (c Classification) ShouldHide(prefs HidePreferences) bool {
	switch c {
	case AIGenerated:
		return prefs.HideAI
	case AIAssisted:
		return prefs.HideAIAssisted
	case Mixed:
		return prefs.HideMixed
	case HumanCreated, Unknown:
		return false
	default:
		return false
	}
}

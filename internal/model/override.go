package model

import "time"

// OverrideAction is a manual user decision for a channel.
type OverrideAction string

const (
	OverrideBlock OverrideAction = "block" // always hide
	OverrideAllow OverrideAction = "allow" // never hide
)

// ParseOverrideAction validates a stored or submitted action string.
func ParseOverrideAction(s string) (OverrideAction, bool) {
	switch OverrideAction(s) {
	case OverrideBlock, OverrideAllow:
		return OverrideAction(s), true
	default:
		return "", false
	}
}

// Override is a manual block/allow decision keyed by normalized identifier.
// At most one override exists per identifier; the last write wins.
type Override struct {
	Identifier string         `json:"identifier"`
	Handle     string         `json:"handle,omitempty"`
	Action     OverrideAction `json:"action"`
	Timestamp  time.Time      `json:"timestamp"`
}

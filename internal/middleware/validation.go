package middleware

import (
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v3"
)

// Field length limits matching database schema constraints.
const (
	MaxIdentifierLen = 128
	MaxVoterIDLen    = 64
)

var (
	// voterIDRe matches voter IDs: client-generated UUIDs or hashed IDs.
	voterIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

// ErrorResponse returns a standard API error response.
func ErrorResponse(c fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	})
}

// ValidateIdentifier checks that a raw channel identifier is present and
// within storage limits. Shape normalization happens downstream.
func ValidateIdentifier(id string) (string, string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", "identifier is required"
	}
	if len(id) > MaxIdentifierLen {
		return "", "identifier must be at most 128 characters"
	}
	return id, ""
}

// ValidateVoterID checks that a voter ID is well-formed.
func ValidateVoterID(id string) (string, string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", "voter_id is required"
	}
	if len(id) > MaxVoterIDLen {
		return "", "voter_id must be at most 64 characters"
	}
	if !voterIDRe.MatchString(id) {
		return "", "voter_id contains invalid characters"
	}
	return id, ""
}

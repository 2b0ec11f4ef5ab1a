package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/icar1an/serenity/internal/middleware"
	"github.com/icar1an/serenity/internal/model"
	"github.com/icar1an/serenity/internal/repository"
	"github.com/icar1an/serenity/internal/resolver"
)

// ChannelHandler serves classification lookups and the blocked-channel
// listing.
type ChannelHandler struct {
	channels *repository.ChannelRepo
	resolver *resolver.Resolver
}

func NewChannelHandler(channels *repository.ChannelRepo, res *resolver.Resolver) *ChannelHandler {
	return &ChannelHandler{channels: channels, resolver: res}
}

// Classify handles GET /api/classification?identifier=&channel_id=&hide_ai=&hide_ai_assisted=&hide_mixed=
// It is the HTTP face of the resolver and inherits its fail-open contract:
// it always answers, degrading to unknown/not-hidden.
func (h *ChannelHandler) Classify(c fiber.Ctx) error {
	rawID := c.Query("identifier")
	channelID := c.Query("channel_id")
	if rawID == "" && channelID == "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", "identifier or channel_id is required")
	}

	prefs := model.HidePreferences{
		HideAI:         queryBool(c, "hide_ai", true),
		HideAIAssisted: queryBool(c, "hide_ai_assisted", false),
		HideMixed:      queryBool(c, "hide_mixed", false),
	}

	cls, found := h.resolver.Resolve(c.Context(), rawID, channelID)
	tier := "unknown"
	if found {
		tier = "resolved"
	}
	Metrics.Resolutions.WithLabelValues(string(cls), tier).Inc()

	return c.JSON(fiber.Map{
		"classification": cls,
		"hide":           found && cls.ShouldHide(prefs),
	})
}

// ListBlocked handles GET /api/channels/blocked?limit=&min_confidence=
func (h *ChannelHandler) ListBlocked(c fiber.Ctx) error {
	limit := queryInt(c, "limit", 100, 1, 1000)
	minConfidence := queryFloat(c, "min_confidence", 0)

	channels, err := h.channels.ListBlocked(c.Context(), limit, minConfidence)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list blocked channels")
	}
	if channels == nil {
		channels = []model.BlockedChannel{}
	}
	return c.JSON(fiber.Map{"channels": channels})
}

func queryBool(c fiber.Ctx, key string, fallback bool) bool {
	v := c.Query(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func queryInt(c fiber.Ctx, key string, fallback, lo, hi int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil || n < lo || n > hi {
		return fallback
	}
	return n
}

func queryFloat(c fiber.Ctx, key string, fallback float64) float64 {
	f, err := strconv.ParseFloat(c.Query(key), 64)
	if err != nil || f < 0 || f > 1 {
		return fallback
	}
	return f
}

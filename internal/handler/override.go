package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/icar1an/serenity/internal/middleware"
	"github.com/icar1an/serenity/internal/model"
	"github.com/icar1an/serenity/internal/override"
)

// OverrideHandler exposes the manual block/allow decisions.
type OverrideHandler struct {
	store *override.Store
}

func NewOverrideHandler(store *override.Store) *OverrideHandler {
	return &OverrideHandler{store: store}
}

type overrideRequest struct {
	Action string `json:"action"`
	Handle string `json:"handle,omitempty"`
}

// List handles GET /api/overrides?action=block|allow
func (h *OverrideHandler) List(c fiber.Ctx) error {
	var (
		records []model.Override
		err     error
	)
	switch c.Query("action") {
	case "block":
		records, err = h.store.ListBlocked(c.Context())
	case "allow":
		records, err = h.store.ListAllowed(c.Context())
	case "":
		records, err = h.store.List(c.Context())
	default:
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", "action must be block or allow")
	}
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list overrides")
	}

	if records == nil {
		records = []model.Override{}
	}
	return c.JSON(fiber.Map{"overrides": records})
}

// Put handles PUT /api/overrides/:identifier
func (h *OverrideHandler) Put(c fiber.Ctx) error {
	id, errMsg := middleware.ValidateIdentifier(c.Params("identifier"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	var req overrideRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}

	action, ok := model.ParseOverrideAction(req.Action)
	if !ok {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", "action must be block or allow")
	}

	if err := h.store.Set(c.Context(), id, action, req.Handle); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to save override")
	}
	return c.JSON(fiber.Map{"success": true})
}

// Delete handles DELETE /api/overrides/:identifier
func (h *OverrideHandler) Delete(c fiber.Ctx) error {
	id, errMsg := middleware.ValidateIdentifier(c.Params("identifier"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	if err := h.store.Remove(c.Context(), id); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to remove override")
	}
	return c.JSON(fiber.Map{"success": true})
}

// Clear handles DELETE /api/overrides
func (h *OverrideHandler) Clear(c fiber.Ctx) error {
	if err := h.store.ClearAll(c.Context()); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to clear overrides")
	}
	return c.JSON(fiber.Map{"success": true})
}

package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/icar1an/serenity/internal/middleware"
	"github.com/icar1an/serenity/internal/model"
	"github.com/icar1an/serenity/internal/repository"
	"github.com/icar1an/serenity/internal/service"
)

// LabelerHandler serves the consensus-labeling front end: the candidate
// queue and vote submission.
type LabelerHandler struct {
	queue *service.QueueService
	votes *service.VoteService
}

func NewLabelerHandler(queue *service.QueueService, votes *service.VoteService) *LabelerHandler {
	return &LabelerHandler{queue: queue, votes: votes}
}

// NextCandidate handles GET /api/labeler/next-candidate
func (h *LabelerHandler) NextCandidate(c fiber.Ctx) error {
	rawVoter := c.Query("voter_id")
	if rawVoter == "" {
		rawVoter = c.Query("labeler_id")
	}
	voterID, errMsg := middleware.ValidateVoterID(rawVoter)
	if errMsg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": errMsg})
	}

	item, err := h.queue.Next(c.Context(), voterID)
	if errors.Is(err, service.ErrEmptyQueue) {
		// A drained queue is a normal outcome, not an error status.
		return c.JSON(fiber.Map{"ok": false, "error": "empty_queue"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"ok": false, "error": "failed to fetch candidate"})
	}

	return c.JSON(fiber.Map{"ok": true, "item": item})
}

// SubmitVote handles POST /api/labeler/submit-vote
func (h *LabelerHandler) SubmitVote(c fiber.Ctx) error {
	var req model.VoteRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "invalid request body"})
	}

	voterID, errMsg := middleware.ValidateVoterID(req.VoterID)
	if errMsg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": errMsg})
	}
	req.VoterID = voterID

	if req.Identifier != "" {
		id, errMsg := middleware.ValidateIdentifier(req.Identifier)
		if errMsg != "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": errMsg})
		}
		req.Identifier = id
	}

	weight, err := h.votes.Submit(c.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": err.Error()})
		case errors.Is(err, repository.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": "channel not found"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "failed to submit vote"})
		}
	}

	Metrics.VotesTotal.WithLabelValues(verdictLabel(req.IsAI)).Inc()

	return c.JSON(model.VoteResponse{Success: true, WeightAssigned: weight})
}

func verdictLabel(isAI *bool) string {
	if isAI != nil && *isAI {
		return "ai"
	}
	return "human"
}

package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/repair-service/internal/service"
)

// TrackingHandler serves the public, unauthenticated repair status page.
type TrackingHandler struct {
	tracking *service.TrackingService
}

// NewTrackingHandler constructs handler.
func NewTrackingHandler(tracking *service.TrackingService) *TrackingHandler {
	return &TrackingHandler{tracking: tracking}
}

// Track GET /track/:id.
func (h *TrackingHandler) Track(c *fiber.Ctx) error {
	jobID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	snapshot, err := h.tracking.GetSnapshot(c.Context(), jobID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": snapshot})
}

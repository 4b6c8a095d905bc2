package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/repair-service/internal/api/dto"
	"github.com/spec-kit/repair-service/internal/auth"
	"github.com/spec-kit/repair-service/internal/service"
	apperrors "github.com/spec-kit/repair-service/pkg/util"
)

// AssignmentsHandler manages technician dispatch endpoints.
type AssignmentsHandler struct {
	assignments *service.AssignmentService
}

// NewAssignmentsHandler constructs handler.
func NewAssignmentsHandler(assignments *service.AssignmentService) *AssignmentsHandler {
	return &AssignmentsHandler{assignments: assignments}
}

// Assign POST /assignments. Dispatches one technician to a batch of jobs;
// any open assignment on those jobs is superseded.
func (h *AssignmentsHandler) Assign(c *fiber.Ctx) error {
	caller, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	assignment, err := h.assignments.Assign(c.Context(), caller, req.TechnicianID, req.JobIDs, req.Notes)
	if err != nil {
		return err
	}
	if assignment == nil {
		return c.Status(http.StatusNoContent).Send(nil)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": assignmentResponse(assignment)})
}

// GetActive GET /jobs/:id/assignment.
func (h *AssignmentsHandler) GetActive(c *fiber.Ctx) error {
	caller, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	jobID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	assignment, err := h.assignments.GetActiveAssignment(c.Context(), caller, jobID)
	if err != nil {
		return err
	}
	if assignment == nil {
		return c.JSON(fiber.Map{"data": nil})
	}
	return c.JSON(fiber.Map{"data": assignmentResponse(assignment)})
}

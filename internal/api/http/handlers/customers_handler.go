package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/repair-service/internal/auth"
	"github.com/spec-kit/repair-service/internal/service"
	apperrors "github.com/spec-kit/repair-service/pkg/util"
)

// CustomersHandler serves customer lookups for the intake flow.
type CustomersHandler struct {
	jobs *service.JobService
}

// NewCustomersHandler constructs handler.
func NewCustomersHandler(jobs *service.JobService) *CustomersHandler {
	return &CustomersHandler{jobs: jobs}
}

// Lookup GET /customers/lookup?phone=&email=.
func (h *CustomersHandler) Lookup(c *fiber.Ctx) error {
	caller, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	phone := strings.TrimSpace(c.Query("phone"))
	email := strings.TrimSpace(c.Query("email"))
	if phone == "" && email == "" {
		return apperrors.NewValidationError("phone or email required", nil)
	}

	customer, err := h.jobs.LookupCustomer(c.Context(), caller, phone, email)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": customerResponse(customer)})
}

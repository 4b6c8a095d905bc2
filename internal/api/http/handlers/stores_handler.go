package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/repair-service/internal/api/dto"
	"github.com/spec-kit/repair-service/internal/auth"
	"github.com/spec-kit/repair-service/internal/service"
	apperrors "github.com/spec-kit/repair-service/pkg/util"
)

// StoresHandler serves the store and technician directory.
type StoresHandler struct {
	directory *service.DirectoryService
}

// NewStoresHandler constructs handler.
func NewStoresHandler(directory *service.DirectoryService) *StoresHandler {
	return &StoresHandler{directory: directory}
}

// ListStores GET /stores.
func (h *StoresHandler) ListStores(c *fiber.Ctx) error {
	stores, err := h.directory.ListStores(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.StoreResponse, 0, len(stores))
	for i := range stores {
		items = append(items, storeResponse(&stores[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetStore GET /stores/:id.
func (h *StoresHandler) GetStore(c *fiber.Ctx) error {
	storeID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	store, err := h.directory.GetStore(c.Context(), storeID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": storeResponse(store)})
}

// UpdateContact PATCH /stores/:id/contact.
func (h *StoresHandler) UpdateContact(c *fiber.Ctx) error {
	caller, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	storeID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateStoreContactRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.directory.UpdateStoreContact(c.Context(), caller, storeID, req.Phone, req.Email); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"updated": true}})
}

// ListTechnicians GET /stores/:id/technicians.
func (h *StoresHandler) ListTechnicians(c *fiber.Ctx) error {
	storeID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	technicians, err := h.directory.ListStoreTechnicians(c.Context(), storeID)
	if err != nil {
		return err
	}
	items := make([]dto.UserSummary, 0, len(technicians))
	for i := range technicians {
		items = append(items, userSummary(&technicians[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// LinkTechnician POST /stores/:id/technicians.
func (h *StoresHandler) LinkTechnician(c *fiber.Ctx) error {
	caller, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	storeID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.LinkTechnicianRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.directory.LinkTechnician(c.Context(), caller, storeID, req.TechnicianID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"linked": true}})
}

// UnlinkTechnician DELETE /stores/:id/technicians/:technicianID.
func (h *StoresHandler) UnlinkTechnician(c *fiber.Ctx) error {
	caller, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	storeID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	technicianID, err := parseID(c, "technicianID")
	if err != nil {
		return err
	}
	if err := h.directory.UnlinkTechnician(c.Context(), caller, storeID, technicianID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"unlinked": true}})
}

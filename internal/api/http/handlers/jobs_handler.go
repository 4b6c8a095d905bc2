package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/repair-service/internal/api/dto"
	"github.com/spec-kit/repair-service/internal/auth"
	"github.com/spec-kit/repair-service/internal/domain"
	"github.com/spec-kit/repair-service/internal/service"
	apperrors "github.com/spec-kit/repair-service/pkg/util"
)

// JobsHandler manages job lifecycle endpoints.
type JobsHandler struct {
	jobs        *service.JobService
	transitions *service.TransitionService
}

// NewJobsHandler constructs handler.
func NewJobsHandler(jobs *service.JobService, transitions *service.TransitionService) *JobsHandler {
	return &JobsHandler{jobs: jobs, transitions: transitions}
}

// CreateJob POST /jobs.
func (h *JobsHandler) CreateJob(c *fiber.Ctx) error {
	caller, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateJobRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.JobCreateInput{
		ExistingCustomerID:  req.ExistingCustomerID,
		CustomerName:        req.CustomerName,
		CustomerPhone:       req.CustomerPhone,
		CustomerEmail:       req.CustomerEmail,
		CustomerAddress:     req.CustomerAddress,
		StoreID:             req.StoreID,
		DeviceType:          req.DeviceType,
		DeviceModel:         req.DeviceModel,
		DeviceLockType:      req.DeviceLockType,
		DeviceLockSecret:    req.DeviceLockSecret,
		ProblemDescription:  req.ProblemDescription,
		NotificationMethods: req.NotificationMethods,
		DepositCost:         req.DepositCost,
		EstimateCost:        req.EstimateCost,
		TechnicianID:        req.TechnicianID,
	}
	job, err := h.jobs.CreateJob(c.Context(), caller, input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": jobSummary(job)})
}

// ListJobs GET /jobs.
func (h *JobsHandler) ListJobs(c *fiber.Ctx) error {
	caller, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	filter := parseJobListQuery(c)
	jobs, err := h.jobs.ListJobs(c.Context(), caller, filter)
	if err != nil {
		return err
	}
	items := make([]dto.JobSummary, 0, len(jobs))
	for i := range jobs {
		items = append(items, jobSummary(&jobs[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetJob GET /jobs/:id.
func (h *JobsHandler) GetJob(c *fiber.Ctx) error {
	caller, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	jobID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	projection, err := h.jobs.GetJobProjection(c.Context(), caller, jobID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": jobDetail(projection)})
}

// Transition POST /jobs/:id/transition.
func (h *JobsHandler) Transition(c *fiber.Ctx) error {
	caller, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	jobID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.TransitionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if !req.Status.Valid() {
		return apperrors.NewValidationError("unknown status", map[string]any{"status": req.Status})
	}

	costs := service.CostOverrides{RawCost: req.RawCost, ActualCost: req.ActualCost}
	job, err := h.transitions.Transition(c.Context(), caller, jobID, req.Status, costs, req.Note)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": jobSummary(job)})
}

// Reopen POST /jobs/:id/reopen.
func (h *JobsHandler) Reopen(c *fiber.Ctx) error {
	caller, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	jobID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.ReopenRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	job, err := h.transitions.Reopen(c.Context(), caller, jobID, req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": jobSummary(job)})
}

// RecordPayment POST /jobs/:id/payment.
func (h *JobsHandler) RecordPayment(c *fiber.Ctx) error {
	caller, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	jobID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.PaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.PaymentMethod) == "" {
		return apperrors.NewValidationError("payment_method required", nil)
	}

	job, err := h.jobs.RecordPayment(c.Context(), caller, jobID, req.PaymentMethod)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": jobSummary(job)})
}

// AddNote POST /jobs/:id/notes.
func (h *JobsHandler) AddNote(c *fiber.Ctx) error {
	caller, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	jobID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.NoteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Note) == "" {
		return apperrors.NewValidationError("note required", nil)
	}

	note, err := h.jobs.AddNote(c.Context(), caller, jobID, req.Note)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": noteResponse(note)})
}

// ListNotes GET /jobs/:id/notes.
func (h *JobsHandler) ListNotes(c *fiber.Ctx) error {
	caller, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	jobID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	notes, err := h.jobs.ListNotes(c.Context(), caller, jobID)
	if err != nil {
		return err
	}
	items := make([]dto.JobNoteResponse, 0, len(notes))
	for i := range notes {
		items = append(items, noteResponse(&notes[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func jobDetail(projection *service.JobProjection) dto.JobDetailResponse {
	job := projection.Job
	detail := dto.JobDetailResponse{
		JobSummary:          jobSummary(&job),
		DeviceLockType:      job.DeviceLockType,
		DeviceLockSecret:    job.DeviceLockSecret,
		NotificationMethods: job.NotificationMethods,
		Customer:            customerResponse(&projection.Customer),
		Store:               storeResponse(&projection.Store),
		Notes:               make([]dto.JobNoteResponse, 0, len(projection.Notes)),
	}
	if projection.Technician != nil {
		summary := userSummary(projection.Technician)
		detail.Technician = &summary
	}
	if projection.Assignment != nil {
		resp := assignmentResponse(projection.Assignment)
		detail.Assignment = &resp
	}
	for i := range projection.Notes {
		detail.Notes = append(detail.Notes, noteResponse(&projection.Notes[i]))
	}
	return detail
}

func parseJobListQuery(c *fiber.Ctx) service.JobListFilter {
	filter := service.JobListFilter{}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.JobStatus(strings.TrimSpace(part)))
		}
	}
	if paymentStr := c.Query("payment_status"); paymentStr != "" {
		for _, part := range strings.Split(paymentStr, ",") {
			filter.PaymentStatuses = append(filter.PaymentStatuses, domain.PaymentStatus(strings.TrimSpace(part)))
		}
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		filter.SearchTerm = &search
	}
	if from := parseTime(c.Query("created_from")); from != nil {
		filter.CreatedFrom = from
	}
	if to := parseTime(c.Query("created_to")); to != nil {
		filter.CreatedTo = to
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func parseID(c *fiber.Ctx, param string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(param), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid id", map[string]any{"param": param})
	}
	return id, nil
}

func parseTime(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &t
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

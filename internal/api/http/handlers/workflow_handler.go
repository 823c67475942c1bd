package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/request-workflow/internal/api/dto"
	"github.com/spec-kit/request-workflow/internal/domain"
	"github.com/spec-kit/request-workflow/internal/observability"
	"github.com/spec-kit/request-workflow/internal/service"
	apperrors "github.com/spec-kit/request-workflow/pkg/util"
)

// WorkflowHandler exposes the state-machine commands. Every endpoint resolves
// the acting identity from the gateway headers; authentication itself happens
// upstream of this service.
type WorkflowHandler struct {
	approvals   *service.ApprovalService
	routing     *service.RoutingService
	assignments *service.AssignmentService
	progress    *service.ProgressService
	closures    *service.ClosureService
	metrics     *observability.Metrics
}

// WorkflowHandlerDependencies bundles construction inputs.
type WorkflowHandlerDependencies struct {
	Approvals   *service.ApprovalService
	Routing     *service.RoutingService
	Assignments *service.AssignmentService
	Progress    *service.ProgressService
	Closures    *service.ClosureService
	Metrics     *observability.Metrics
}

// NewWorkflowHandler constructs handler.
func NewWorkflowHandler(deps WorkflowHandlerDependencies) *WorkflowHandler {
	return &WorkflowHandler{
		approvals:   deps.Approvals,
		routing:     deps.Routing,
		assignments: deps.Assignments,
		progress:    deps.Progress,
		closures:    deps.Closures,
		metrics:     deps.Metrics,
	}
}

func actorFrom(c *fiber.Ctx) service.Actor {
	return service.Actor{
		ID:   strings.TrimSpace(c.Get("X-Actor-Id")),
		Name: strings.TrimSpace(c.Get("X-Actor-Name")),
	}
}

func (h *WorkflowHandler) recordCommand(command string) {
	if h.metrics != nil {
		h.metrics.RecordCommand(command)
	}
}

// Decide POST /tickets/:number/approvals/decision.
func (h *WorkflowHandler) Decide(c *fiber.Ctx) error {
	var req dto.DecisionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Level == "" || req.Level == domain.LevelNone {
		return apperrors.NewValidationError("level required", nil)
	}
	h.recordCommand("decide")
	ticket, err := h.approvals.Decide(c.Context(), c.Params("number"), service.DecisionInput{
		Level:    req.Level,
		Decision: req.Decision,
		Actor:    actorFrom(c),
		Remarks:  req.Remarks,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// Route POST /tickets/:number/route.
func (h *WorkflowHandler) Route(c *fiber.Ctx) error {
	h.recordCommand("route")
	ticket, err := h.routing.Route(c.Context(), c.Params("number"), actorFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// Assign POST /tickets/:number/assign.
func (h *WorkflowHandler) Assign(c *fiber.Ctx) error {
	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	h.recordCommand("assign")
	ticket, err := h.assignments.AssignToSpecialist(c.Context(), c.Params("number"), service.AssignInput{
		SpecialistID:   req.SpecialistID,
		SpecialistName: req.SpecialistName,
		Queue:          req.Queue,
		Notes:          req.Notes,
		Actor:          actorFrom(c),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// Reassign POST /tickets/:number/reassign.
func (h *WorkflowHandler) Reassign(c *fiber.Ctx) error {
	var req dto.ReassignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	h.recordCommand("reassign")
	ticket, err := h.assignments.Reassign(c.Context(), c.Params("number"), service.ReassignInput{
		SpecialistID:   req.SpecialistID,
		SpecialistName: req.SpecialistName,
		Reason:         req.Reason,
		Actor:          actorFrom(c),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// StartWork POST /tickets/:number/start.
func (h *WorkflowHandler) StartWork(c *fiber.Ctx) error {
	h.recordCommand("start_work")
	ticket, err := h.progress.StartWork(c.Context(), c.Params("number"), actorFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// Pause POST /tickets/:number/pause.
func (h *WorkflowHandler) Pause(c *fiber.Ctx) error {
	var req dto.PauseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Reason) == "" {
		return apperrors.NewValidationError("reason required", nil)
	}
	h.recordCommand("pause")
	ticket, err := h.progress.Pause(c.Context(), c.Params("number"), actorFrom(c), req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// Resume POST /tickets/:number/resume.
func (h *WorkflowHandler) Resume(c *fiber.Ctx) error {
	h.recordCommand("resume")
	ticket, err := h.progress.Resume(c.Context(), c.Params("number"), actorFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// CompleteWork POST /tickets/:number/complete.
func (h *WorkflowHandler) CompleteWork(c *fiber.Ctx) error {
	var req dto.CompleteRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}
	h.recordCommand("complete_work")
	ticket, err := h.progress.CompleteWork(c.Context(), c.Params("number"), actorFrom(c), req.Notes)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// ConfirmCompletion POST /tickets/:number/confirm.
func (h *WorkflowHandler) ConfirmCompletion(c *fiber.Ctx) error {
	var req dto.ConfirmRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}
	h.recordCommand("confirm")
	ticket, err := h.progress.ConfirmCompletion(c.Context(), c.Params("number"), actorFrom(c), req.Feedback)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// Close POST /tickets/:number/close.
func (h *WorkflowHandler) Close(c *fiber.Ctx) error {
	var req dto.CloseRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}
	h.recordCommand("close")
	ticket, err := h.closures.Close(c.Context(), c.Params("number"), actorFrom(c), req.Note)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// Cancel POST /tickets/:number/cancel.
func (h *WorkflowHandler) Cancel(c *fiber.Ctx) error {
	var req dto.CancelRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}
	h.recordCommand("cancel")
	ticket, err := h.closures.Cancel(c.Context(), c.Params("number"), actorFrom(c), req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// Reopen POST /tickets/:number/reopen.
func (h *WorkflowHandler) Reopen(c *fiber.Ctx) error {
	var req dto.ReopenRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}
	h.recordCommand("reopen")
	ticket, err := h.closures.Reopen(c.Context(), c.Params("number"), actorFrom(c), req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

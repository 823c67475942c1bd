package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/request-workflow/internal/api/dto"
	"github.com/spec-kit/request-workflow/internal/domain"
	"github.com/spec-kit/request-workflow/internal/repository"
	"github.com/spec-kit/request-workflow/internal/service"
	"github.com/spec-kit/request-workflow/internal/sla"
	"github.com/spec-kit/request-workflow/internal/timeline"
	apperrors "github.com/spec-kit/request-workflow/pkg/util"
)

// TicketsHandler manages the intake and read endpoints.
type TicketsHandler struct {
	intake *service.IntakeService
	now    func() time.Time
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(intake *service.IntakeService) *TicketsHandler {
	return &TicketsHandler{intake: intake, now: time.Now}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.SubCategory == "" || req.Subject == "" {
		return apperrors.NewValidationError("sub_category and subject required", nil)
	}

	input := service.TicketCreateInput{
		Module:      req.Module,
		SubCategory: req.SubCategory,
		Subject:     req.Subject,
		Description: req.Description,
		Urgency:     req.Urgency,
		Requester: domain.Requester{
			ID:         req.Requester.ID,
			Name:       req.Requester.Name,
			Email:      req.Requester.Email,
			Department: req.Requester.Department,
		},
	}
	ticket, err := h.intake.CreateTicket(c.Context(), input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	filter := parseTicketFilter(c)
	tickets, err := h.intake.ListTickets(c.Context(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /tickets/:number.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, msgs, history, err := h.intake.GetTicket(c.Context(), c.Params("number"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket, msgs, history)})
}

// GetHistory GET /tickets/:number/history.
func (h *TicketsHandler) GetHistory(c *fiber.Ctx) error {
	_, history, err := h.intake.History(c.Context(), c.Params("number"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": historyResponses(history)})
}

// GetTimeline GET /tickets/:number/timeline.
func (h *TicketsHandler) GetTimeline(c *fiber.Ctx) error {
	ticket, history, err := h.intake.History(c.Context(), c.Params("number"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TimelineResponse{
		TicketNumber: ticket.TicketNumber,
		Status:       ticket.Status,
		Steps:        timeline.Build(ticket, history),
	}})
}

// GetSLA GET /tickets/:number/sla.
func (h *TicketsHandler) GetSLA(c *fiber.Ctx) error {
	ticket, _, err := h.intake.History(c.Context(), c.Params("number"))
	if err != nil {
		return err
	}
	status := sla.Evaluate(ticket, h.now())
	return c.JSON(fiber.Map{"data": dto.SLAResponse{
		TicketNumber:       ticket.TicketNumber,
		Phase:              status.Phase,
		ApprovalDeadline:   status.ApprovalDeadline,
		ProcessingDeadline: status.ProcessingDeadline,
		Deadline:           status.Deadline,
		Overdue:            status.Overdue,
		OverdueSeconds:     int64(status.OverdueBy.Seconds()),
	}})
}

// AddMessage POST /tickets/:number/messages.
func (h *TicketsHandler) AddMessage(c *fiber.Ctx) error {
	var req dto.CreateMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Body) == "" {
		return apperrors.NewValidationError("body required", nil)
	}
	if req.SenderRole == "" {
		req.SenderRole = domain.SenderRequester
	}
	attachments := make([]domain.AttachmentReference, 0, len(req.Attachments))
	for _, att := range req.Attachments {
		attachments = append(attachments, domain.AttachmentReference{
			StorageKey: att.StorageKey,
			FileName:   att.FileName,
			MimeType:   att.MimeType,
			SizeBytes:  att.SizeBytes,
		})
	}
	msg, err := h.intake.AddMessage(c.Context(), c.Params("number"), service.MessageInput{
		SenderRole:  req.SenderRole,
		SenderName:  req.SenderName,
		Body:        req.Body,
		Attachments: attachments,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": messageResponse(msg)})
}

func parseTicketFilter(c *fiber.Ctx) repository.TicketFilter {
	filter := repository.TicketFilter{}
	if moduleStr := c.Query("module"); moduleStr != "" {
		for _, part := range strings.Split(moduleStr, ",") {
			filter.Modules = append(filter.Modules, domain.Module(strings.TrimSpace(part)))
		}
	}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.TicketStatus(strings.TrimSpace(part)))
		}
	}
	if urgencyStr := c.Query("urgency"); urgencyStr != "" {
		for _, part := range strings.Split(urgencyStr, ",") {
			filter.Urgencies = append(filter.Urgencies, domain.Urgency(strings.TrimSpace(part)))
		}
	}
	if requester := c.Query("requester_id"); requester != "" {
		filter.RequesterID = &requester
	}
	if assignee := c.Query("assignee_id"); assignee != "" {
		filter.AssigneeID = &assignee
	}
	if queue := c.Query("queue"); queue != "" {
		filter.Queue = &queue
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
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

func ticketSummary(ticket *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:           ticket.ID,
		TicketNumber: ticket.TicketNumber,
		Module:       ticket.Module,
		SubCategory:  ticket.SubCategory,
		Subject:      ticket.Subject,
		Urgency:      ticket.Urgency,
		Status:       ticket.Status,
		Progress:     ticket.Progress,
		AssigneeName: ticket.Assignment.AssigneeName,
		Queue:        ticket.Assignment.Queue,
		ReopenCount:  ticket.ReopenCount,
		SubmittedAt:  ticket.SubmittedAt,
		UpdatedAt:    ticket.UpdatedAt,
	}
}

func ticketDetail(ticket *domain.Ticket, messages []domain.Message, history []domain.HistoryEntry) dto.TicketDetailResponse {
	msgs := make([]dto.MessageResponse, 0, len(messages))
	for i := range messages {
		msgs = append(msgs, messageResponse(&messages[i]))
	}
	return dto.TicketDetailResponse{
		ID:                   ticket.ID,
		TicketNumber:         ticket.TicketNumber,
		Module:               ticket.Module,
		SubCategory:          ticket.SubCategory,
		Subject:              ticket.Subject,
		Description:          ticket.Description,
		Urgency:              ticket.Urgency,
		Requester:            ticket.Requester,
		Status:               ticket.Status,
		Progress:             ticket.Progress,
		RequiresApproval:     ticket.RequiresApproval,
		RequiredLevels:       ticket.RequiredLevels,
		CurrentApprovalLevel: ticket.CurrentApprovalLevel,
		ApprovalCompleted:    ticket.ApprovalCompleted,
		Approvals:            ticket.Approvals,
		Route:                ticket.Route,
		Assignment:           ticket.Assignment,
		RequiresConfirmation: ticket.RequiresConfirmation,
		UserConfirmedAt:      ticket.UserConfirmedAt,
		PauseReason:          ticket.PauseReason,
		Resolution:           ticket.Resolution,
		ReopenCount:          ticket.ReopenCount,
		ClosedAt:             ticket.ClosedAt,
		ClosingReason:        ticket.ClosingReason,
		ClosingNote:          ticket.ClosingNote,
		SubmittedAt:          ticket.SubmittedAt,
		RoutedAt:             ticket.RoutedAt,
		CreatedAt:            ticket.CreatedAt,
		UpdatedAt:            ticket.UpdatedAt,
		Messages:             msgs,
		History:              historyResponses(history),
	}
}

func messageResponse(msg *domain.Message) dto.MessageResponse {
	attachments := make([]dto.AttachmentResponse, 0, len(msg.Attachments))
	for _, att := range msg.Attachments {
		attachments = append(attachments, dto.AttachmentResponse{
			ID:        att.ID,
			FileName:  att.FileName,
			MimeType:  att.MimeType,
			SizeBytes: att.SizeBytes,
		})
	}
	return dto.MessageResponse{
		ID:          msg.ID,
		SenderRole:  msg.SenderRole,
		SenderName:  msg.SenderName,
		Body:        msg.Body,
		Attachments: attachments,
		CreatedAt:   msg.CreatedAt,
	}
}

func historyResponses(entries []domain.HistoryEntry) []dto.HistoryResponse {
	resp := make([]dto.HistoryResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, dto.HistoryResponse{
			ID:         entry.ID,
			Kind:       entry.Kind,
			Action:     entry.Action,
			ActorID:    entry.ActorID,
			ActorName:  entry.ActorName,
			Detail:     entry.Detail,
			PrevStatus: entry.PrevStatus,
			NewStatus:  entry.NewStatus,
			CreatedAt:  entry.CreatedAt,
		})
	}
	return resp
}

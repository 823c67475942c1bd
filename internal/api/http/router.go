package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/request-workflow/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health   *handlers.HealthHandler
	Tickets  *handlers.TicketsHandler
	Workflow *handlers.WorkflowHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	tickets := app.Group("/tickets")
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/:number", cfg.Tickets.GetTicket)
	tickets.Get("/:number/history", cfg.Tickets.GetHistory)
	tickets.Get("/:number/timeline", cfg.Tickets.GetTimeline)
	tickets.Get("/:number/sla", cfg.Tickets.GetSLA)
	tickets.Post("/:number/messages", cfg.Tickets.AddMessage)

	tickets.Post("/:number/approvals/decision", cfg.Workflow.Decide)
	tickets.Post("/:number/route", cfg.Workflow.Route)
	tickets.Post("/:number/assign", cfg.Workflow.Assign)
	tickets.Post("/:number/reassign", cfg.Workflow.Reassign)
	tickets.Post("/:number/start", cfg.Workflow.StartWork)
	tickets.Post("/:number/pause", cfg.Workflow.Pause)
	tickets.Post("/:number/resume", cfg.Workflow.Resume)
	tickets.Post("/:number/complete", cfg.Workflow.CompleteWork)
	tickets.Post("/:number/confirm", cfg.Workflow.ConfirmCompletion)
	tickets.Post("/:number/close", cfg.Workflow.Close)
	tickets.Post("/:number/cancel", cfg.Workflow.Cancel)
	tickets.Post("/:number/reopen", cfg.Workflow.Reopen)
}

package worker

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/request-workflow/internal/domain"
	"github.com/spec-kit/request-workflow/internal/repository"
	"github.com/spec-kit/request-workflow/internal/service"
	"github.com/spec-kit/request-workflow/internal/sla"
)

// SLASweeper periodically scans active tickets and auto-closes the ones whose
// processing deadline has passed in a category configured for auto-close.
// Each breach goes through the ordinary Close command path, so history and
// events stay consistent with interactive closures.
type SLASweeper struct {
	tickets  repository.TicketRepository
	closures *service.ClosureService
	logger   *zap.Logger
	interval time.Duration
	now      func() time.Time
}

// SLASweeperDependencies bundles construction inputs for SLASweeper.
type SLASweeperDependencies struct {
	TicketRepo repository.TicketRepository
	Closures   *service.ClosureService
	Logger     *zap.Logger
	Interval   time.Duration
	Clock      func() time.Time
}

// NewSLASweeper constructs the sweeper.
func NewSLASweeper(deps SLASweeperDependencies) *SLASweeper {
	sweeper := &SLASweeper{
		tickets:  deps.TicketRepo,
		closures: deps.Closures,
		logger:   deps.Logger,
		interval: deps.Interval,
		now:      deps.Clock,
	}
	if sweeper.interval <= 0 {
		sweeper.interval = 5 * time.Minute
	}
	if sweeper.now == nil {
		sweeper.now = time.Now
	}
	if sweeper.logger == nil {
		sweeper.logger = zap.NewNop()
	}
	return sweeper
}

// Run loops until the context is cancelled.
func (w *SLASweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("sla sweeper started", zap.Duration("interval", w.interval))
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("sla sweeper stopped")
			return
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep runs one pass. Exposed for tests and manual triggering.
func (w *SLASweeper) Sweep(ctx context.Context) {
	active, err := w.tickets.ListActive(ctx)
	if err != nil {
		w.logger.Error("sla sweep: listing active tickets failed", zap.Error(err))
		return
	}
	now := w.now()
	for i := range active {
		ticket := &active[i]
		if !sla.AutoCloseEligible(ticket, now) {
			continue
		}
		note := autoCloseNote(ticket, now)
		if _, err := w.closures.AutoClose(ctx, ticket.TicketNumber, note); err != nil {
			// A concurrent command may have moved the ticket on since the
			// listing; that is not a sweep failure.
			w.logger.Warn("sla sweep: auto-close skipped",
				zap.String("ticket_number", ticket.TicketNumber),
				zap.Error(err))
			continue
		}
		w.logger.Info("sla sweep: ticket auto-closed",
			zap.String("ticket_number", ticket.TicketNumber))
	}
}

func autoCloseNote(t *domain.Ticket, now time.Time) string {
	status := sla.Evaluate(t, now)
	if status.OverdueBy <= 0 {
		return "processing SLA breached"
	}
	return fmt.Sprintf("processing SLA breached by %s", status.OverdueBy.Round(time.Minute))
}

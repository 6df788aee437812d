package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tradiehq/portal-server-go/internal/repository"
)

// MaintenanceJob runs periodic housekeeping: access-log retention and overdue
// invoice flagging. Portal tokens are deliberately never deleted; expired rows
// stay as audit history.
type MaintenanceJob struct {
	accessLogRepo repository.PortalAccessLogRepository
	invoiceRepo   repository.InvoiceRepository
	retention     time.Duration
	interval      time.Duration
	done          chan struct{}
}

func NewMaintenanceJob(
	accessLogRepo repository.PortalAccessLogRepository,
	invoiceRepo repository.InvoiceRepository,
	retention time.Duration,
	interval time.Duration,
) *MaintenanceJob {
	return &MaintenanceJob{
		accessLogRepo: accessLogRepo,
		invoiceRepo:   invoiceRepo,
		retention:     retention,
		interval:      interval,
		done:          make(chan struct{}),
	}
}

func (j *MaintenanceJob) Start() {
	go j.run()
	log.Info().Dur("interval", j.interval).Msg("maintenance job started")
}

func (j *MaintenanceJob) Stop() {
	close(j.done)
	log.Info().Msg("maintenance job stopped")
}

func (j *MaintenanceJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.sweep()

	for {
		select {
		case <-j.done:
			return
		case <-ticker.C:
			j.sweep()
		}
	}
}

func (j *MaintenanceJob) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	j.runTask(ctx, "access logs", func(ctx context.Context) (int64, error) {
		return j.accessLogRepo.DeleteOlderThan(ctx, time.Now().Add(-j.retention))
	})
	j.runTask(ctx, "overdue invoices", j.invoiceRepo.MarkOverdue)
}

func (j *MaintenanceJob) runTask(ctx context.Context, name string, fn func(context.Context) (int64, error)) {
	count, err := fn(ctx)
	if err != nil {
		log.Error().Err(err).Msgf("maintenance task failed: %s", name)
	} else if count > 0 {
		log.Info().Int64("count", count).Msgf("maintenance task processed %s", name)
	}
}

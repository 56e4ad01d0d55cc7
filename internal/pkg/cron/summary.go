package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-ledger-go/internal/domain/payroll"
)

// Recomputer is the slice of the report service the summary job needs.
type Recomputer interface {
	Recompute(ctx context.Context, req payroll.PeriodRequest) (payroll.RecomputeResult, error)
}

// SummaryJobs keeps the current month's period summaries fresh.
type SummaryJobs struct {
	reports  Recomputer
	interval time.Duration
	now      func() time.Time
}

func NewSummaryJobs(reports Recomputer, interval time.Duration) *SummaryJobs {
	return &SummaryJobs{
		reports:  reports,
		interval: interval,
		now:      time.Now,
	}
}

// RegisterJobs adds the recompute job unless the interval is zero.
func (j *SummaryJobs) RegisterJobs(scheduler *Scheduler) {
	if j.interval <= 0 {
		slog.Info("Cron: summary recompute disabled")
		return
	}
	scheduler.AddJob("recompute_current_month", j.interval, j.RecomputeCurrentMonth)
}

func (j *SummaryJobs) RecomputeCurrentMonth(ctx context.Context) error {
	period := payroll.MonthOf(j.now().UTC())
	result, err := j.reports.Recompute(ctx, period)
	if err != nil {
		return err
	}
	slog.Info("Cron: recomputed current month",
		"period_start", result.PeriodStart,
		"created", result.Created,
		"recomputed", result.Recomputed,
		"skipped", result.Skipped)
	return nil
}

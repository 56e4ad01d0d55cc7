package report

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/attendance-ledger-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/domain/payroll"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/pkg/clock"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/pkg/database"
	pkgjwt "github.com/cmlabs-hris/attendance-ledger-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/pkg/money"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/service/aggregation"
)

type ReportServiceImpl struct {
	tx           database.Transactor
	summaryRepo  payroll.SummaryRepository
	entryRepo    attendance.EntryRepository
	employeeRepo employee.EmployeeRepository
	engine       *aggregation.Engine
}

func NewReportService(
	tx database.Transactor,
	summaryRepo payroll.SummaryRepository,
	entryRepo attendance.EntryRepository,
	employeeRepo employee.EmployeeRepository,
	engine *aggregation.Engine,
) payroll.ReportService {
	return &ReportServiceImpl{
		tx:           tx,
		summaryRepo:  summaryRepo,
		entryRepo:    entryRepo,
		employeeRepo: employeeRepo,
		engine:       engine,
	}
}

var kinds = []payroll.Kind{payroll.KindPayroll, payroll.KindPerformance}

// Recompute implements payroll.ReportService.
func (s *ReportServiceImpl) Recompute(ctx context.Context, req payroll.PeriodRequest) (payroll.RecomputeResult, error) {
	if err := req.Validate(); err != nil {
		return payroll.RecomputeResult{}, err
	}

	result := payroll.RecomputeResult{
		PeriodStart: clock.FormatDay(req.Start),
		PeriodEnd:   clock.FormatDay(req.End),
	}

	employees, err := s.employeeRepo.ListActive(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to list active employees: %w", err)
	}
	entries, err := s.entryRepo.ListRange(ctx, req.Start, req.End, nil)
	if err != nil {
		return result, fmt.Errorf("failed to list attendance entries: %w", err)
	}
	byEmployee := make(map[string][]attendance.Entry, len(employees))
	for _, e := range entries {
		byEmployee[e.EmployeeID] = append(byEmployee[e.EmployeeID], e)
	}

	actor := pkgjwt.ActorFromContext(ctx)
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		for _, emp := range employees {
			figures := s.engine.Summarize(emp, req.Start, req.End, byEmployee[emp.ID])

			for _, kind := range kinds {
				existing, err := s.summaryRepo.GetByKey(ctx, emp.ID, kind, req.Start, req.End)
				if err != nil {
					return err
				}
				if existing != nil && existing.Locked() {
					result.Skipped++
					continue
				}

				summary := payroll.PeriodSummary{
					EmployeeID:     emp.ID,
					EmployeeNumber: emp.EmployeeNumber,
					EmployeeName:   emp.FullName(),
					Kind:           kind,
					PeriodStart:    req.Start,
					PeriodEnd:      req.End,
					SalaryType:     emp.SalaryType,
					Figures:        figures,
					Status:         payroll.SummaryStatusDraft,
					LastUpdatedBy:  actor,
				}
				if _, err := s.summaryRepo.Upsert(ctx, summary); err != nil {
					return err
				}
				if existing == nil {
					result.Created++
				} else {
					result.Recomputed++
				}
			}
		}
		return nil
	})
	if err != nil {
		return result, fmt.Errorf("failed to recompute period summaries: %w", err)
	}

	slog.Info("Period summaries recomputed",
		"period_start", result.PeriodStart, "period_end", result.PeriodEnd,
		"created", result.Created, "recomputed", result.Recomputed, "skipped", result.Skipped)
	return result, nil
}

// Report implements payroll.ReportService. It is not read-only: draft
// summaries of the period are recomputed and written before the read, so
// GET /reports/* persists fresh drafts as a side effect.
func (s *ReportServiceImpl) Report(ctx context.Context, kind payroll.Kind, req payroll.PeriodRequest) (payroll.PeriodReport, error) {
	if !kind.Valid() {
		return payroll.PeriodReport{}, payroll.ErrInvalidReportKind
	}
	if _, err := s.Recompute(ctx, req); err != nil {
		return payroll.PeriodReport{}, err
	}

	summaries, err := s.summaryRepo.ListPeriod(ctx, kind, req.Start, req.End)
	if err != nil {
		return payroll.PeriodReport{}, fmt.Errorf("failed to list period summaries: %w", err)
	}

	report := payroll.PeriodReport{
		Kind:        kind,
		PeriodStart: clock.FormatDay(req.Start),
		PeriodEnd:   clock.FormatDay(req.End),
		Rows:        make([]payroll.SummaryResponse, 0, len(summaries)),
	}

	var base, deduction, ot, net []float64
	scoreTotal := 0
	for _, sum := range summaries {
		report.Rows = append(report.Rows, payroll.MapSummaryToResponse(sum))
		base = append(base, sum.Figures.BaseSalary)
		deduction = append(deduction, sum.Figures.TotalDeduction)
		ot = append(ot, sum.Figures.TotalOTAmount)
		net = append(net, sum.Figures.NetSalary)
		scoreTotal += sum.Figures.PerformanceScore
	}

	report.Totals = payroll.ReportTotals{
		Employees:      len(summaries),
		BaseSalary:     money.Round2(money.Sum(base...)),
		TotalDeduction: money.Round2(money.Sum(deduction...)),
		TotalOTAmount:  money.Round2(money.Sum(ot...)),
		NetSalary:      money.Round2(money.Sum(net...)),
	}
	if len(summaries) > 0 {
		report.Totals.AverageScore = money.Round2(float64(scoreTotal) / float64(len(summaries)))
	}

	return report, nil
}

// Override implements payroll.ReportService.
func (s *ReportServiceImpl) Override(ctx context.Context, req payroll.OverrideRequest) (payroll.SummaryResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.SummaryResponse{}, err
	}

	summary, err := s.summaryRepo.GetByID(ctx, req.ID)
	if err != nil {
		return payroll.SummaryResponse{}, err
	}
	if summary.Status == payroll.SummaryStatusFinalized {
		return payroll.SummaryResponse{}, payroll.ErrSummaryFinalized
	}

	req.Apply(&summary.Figures)
	summary.ScoreOverride = true
	if req.Note != nil {
		summary.OverrideNote = req.Note
	}
	summary.LastUpdatedBy = pkgjwt.ActorFromContext(ctx)

	saved, err := s.summaryRepo.Upsert(ctx, summary)
	if err != nil {
		return payroll.SummaryResponse{}, fmt.Errorf("failed to save override: %w", err)
	}

	slog.Info("Period summary overridden", "summary_id", saved.ID, "employee_id", saved.EmployeeID, "by", saved.LastUpdatedBy)
	return payroll.MapSummaryToResponse(saved), nil
}

// Finalize implements payroll.ReportService.
func (s *ReportServiceImpl) Finalize(ctx context.Context, id string) (payroll.SummaryResponse, error) {
	if id == "" {
		return payroll.SummaryResponse{}, payroll.ErrSummaryNotFound
	}

	summary, err := s.summaryRepo.GetByID(ctx, id)
	if err != nil {
		return payroll.SummaryResponse{}, err
	}
	if summary.Status == payroll.SummaryStatusFinalized {
		return payroll.MapSummaryToResponse(summary), nil
	}

	summary.Status = payroll.SummaryStatusFinalized
	summary.LastUpdatedBy = pkgjwt.ActorFromContext(ctx)
	saved, err := s.summaryRepo.Upsert(ctx, summary)
	if err != nil {
		return payroll.SummaryResponse{}, fmt.Errorf("failed to finalize summary: %w", err)
	}
	return payroll.MapSummaryToResponse(saved), nil
}

// Command seed writes the demo directory and a month of attendance, then
// prints a development admin token.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/cmlabs-hris/attendance-ledger-go/internal/app"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/config"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/domain/payroll"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/pkg/clock"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/pkg/jwt"
)

func main() {
	month := flag.String("month", time.Now().UTC().Format(clock.ISODate), "any day of the month to seed (YYYY-MM-DD or dd/mm/yyyy)")
	flag.Parse()

	if err := run(*month); err != nil {
		slog.Error("Seeding failed", "error", err)
		os.Exit(1)
	}
}

func run(month string) error {
	anchor, err := clock.ParseDay(month)
	if err != nil {
		return fmt.Errorf("invalid -month: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx := context.Background()
	stores, err := app.OpenStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer stores.Close()

	services, err := app.NewServices(cfg, stores)
	if err != nil {
		return err
	}

	result, err := app.SeedDemo(ctx, stores, services.Attendance, anchor)
	if err != nil {
		return err
	}

	summary, err := services.Reports.Recompute(ctx, payroll.MonthOf(anchor))
	if err != nil {
		return err
	}

	token, expiresAt, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration).
		GenerateAccessToken("seed-admin", nil, jwt.RoleAdmin)
	if err != nil {
		return fmt.Errorf("failed to sign admin token: %w", err)
	}

	fmt.Printf("seeded %d employees, %d records (%d locked rows kept)\n", result.Employees, result.Records, result.Locked)
	fmt.Printf("summaries for %s..%s: %d created, %d recomputed\n", summary.PeriodStart, summary.PeriodEnd, summary.Created, summary.Recomputed)
	fmt.Printf("admin token (expires %s):\n%s\n", time.Unix(expiresAt, 0).UTC().Format(time.RFC3339), token)
	return nil
}

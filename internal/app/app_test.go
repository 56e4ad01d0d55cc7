package app

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-ledger-go/internal/config"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/domain/payroll"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/pkg/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig() *config.Config {
	return &config.Config{
		Database: config.DatabaseConfig{Driver: config.StorageDriverMemory},
		Ledger:   config.LedgerConfig{PunchPairingMode: "window"},
	}
}

func TestSeedDemo_MemoryStoresAndReports(t *testing.T) {
	ctx := context.Background()
	cfg := memoryConfig()

	stores, err := OpenStores(ctx, cfg)
	require.NoError(t, err)
	defer stores.Close()

	services, err := NewServices(cfg, stores)
	require.NoError(t, err)

	anchor := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	result, err := SeedDemo(ctx, stores, services.Attendance, anchor)
	require.NoError(t, err)

	workingDays := clock.WorkingDays(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 5, result.Employees)
	assert.Equal(t, 5*workingDays, result.Records)
	assert.Zero(t, result.Locked)

	report, err := services.Reports.Report(ctx, payroll.KindPayroll, payroll.MonthOf(anchor))
	require.NoError(t, err)
	assert.Len(t, report.Rows, 5)
	assert.Positive(t, report.Totals.NetSalary)
}

func TestSeedDemo_LeavesManualRowsAlone(t *testing.T) {
	ctx := context.Background()
	cfg := memoryConfig()

	stores, err := OpenStores(ctx, cfg)
	require.NoError(t, err)
	services, err := NewServices(cfg, stores)
	require.NoError(t, err)

	anchor := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	first, err := SeedDemo(ctx, stores, services.Attendance, anchor)
	require.NoError(t, err)

	rows, err := services.Attendance.ListRange(ctx, attendance.RangeFilter{From: "2024-03-04", To: "2024-03-04"})
	require.NoError(t, err)
	require.NotEmpty(t, rows)

	status := string(attendance.StatusLeave)
	_, err = services.Attendance.SaveManual(ctx, attendance.ManualSaveRequest{
		EmployeeID: rows[0].EmployeeID, Date: "2024-03-04", Status: &status,
	})
	require.NoError(t, err)

	second, err := SeedDemo(ctx, stores, services.Attendance, anchor)
	require.NoError(t, err)
	assert.Equal(t, 1, second.Locked)
	assert.Equal(t, first.Records-1, second.Records)
}

func TestOpenStores_UnknownDriver(t *testing.T) {
	cfg := memoryConfig()
	cfg.Database.Driver = "sqlite"

	_, err := OpenStores(context.Background(), cfg)
	assert.Error(t, err)
}

func TestNewServices_BadPairingMode(t *testing.T) {
	cfg := memoryConfig()
	cfg.Ledger.PunchPairingMode = "fuzzy"

	stores, err := OpenStores(context.Background(), cfg)
	require.NoError(t, err)
	_, err = NewServices(cfg, stores)
	assert.Error(t, err)
}

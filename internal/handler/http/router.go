package http

import (
	"log/slog"
	"os"

	"github.com/cmlabs-hris/attendance-ledger-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/attendance-ledger-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterConfig struct {
	Env            string
	AllowedOrigins []string
	LogLevel       slog.Level
}

func NewRouter(
	cfg RouterConfig,
	JWTService jwt.Service,
	attendanceHandler AttendanceHandler,
	worksheetHandler WorksheetHandler,
	reportHandler ReportHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(cfg.Env != "development")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
		Level:       cfg.LogLevel,
	})).With(
		slog.String("app", "attendance-ledger"),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(chiMiddleware.RequestID)
	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  cfg.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/api/v1/health"))

	r.Route("/api/v1", func(r chi.Router) {
		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)

			r.Route("/attendance", func(r chi.Router) {
				r.With(middleware.RequireRole(jwt.RoleAdmin, jwt.RoleEmployee)).Get("/me", attendanceHandler.GetMyAttendance)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Get("/", attendanceHandler.List)
					r.Post("/import", attendanceHandler.Import)
					r.Put("/manual", attendanceHandler.SaveManual)
					r.Put("/manual/batch", attendanceHandler.SaveManualBatch)
					r.Post("/leave-approvals", attendanceHandler.ApproveLeave)
					r.Post("/correction-approvals", attendanceHandler.ApproveCorrection)
					r.Delete("/{employeeID}/{date}", attendanceHandler.Delete)
				})
			})

			// Admin only
			r.Group(func(r chi.Router) {
				r.Use(middleware.AdminOnly)

				r.Get("/worksheet", worksheetHandler.Get)

				r.Route("/reports", func(r chi.Router) {
					r.Get("/payroll", reportHandler.GetPayrollReport)
					r.Get("/performance", reportHandler.GetPerformanceReport)
					r.Get("/{kind}/export", reportHandler.Export)
					r.Post("/recompute", reportHandler.Recompute)
					r.Put("/summaries/{id}/override", reportHandler.Override)
					r.Post("/summaries/{id}/finalize", reportHandler.Finalize)
				})
			})
		})
	})
	return r
}

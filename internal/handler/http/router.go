package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"

	"github.com/talentpay/payroll-backend-go/internal/handler/http/middleware"
	"github.com/talentpay/payroll-backend-go/internal/pkg/jwt"
)

func NewRouter(
	jwtService jwt.Service,
	env string,
	masterHandler MasterHandler,
	employeeHandler EmployeeHandler,
	compensationHandler CompensationHandler,
	deductionHandler DeductionHandler,
	loanHandler LoanHandler,
	payrollHandler PayrollHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "talentpay-payroll"),
		slog.String("version", "v1.0.0"),
		slog.String("env", env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwtService.JWTAuth()))

			r.Route("/departments", func(r chi.Router) {
				r.Get("/", masterHandler.ListDepartments)
				r.Get("/{id}", masterHandler.GetDepartment)
				r.Get("/{id}/divisions", masterHandler.ListDivisions)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(middleware.RoleHR))
					r.Post("/", masterHandler.CreateDepartment)
					r.Put("/{id}", masterHandler.UpdateDepartment)
					r.Post("/{id}/divisions", masterHandler.CreateDivision)
					r.Put("/{id}/divisions/{divisionId}", masterHandler.UpdateDivision)
				})
			})

			r.Route("/employees", func(r chi.Router) {
				r.Get("/", employeeHandler.ListByDepartment)
				r.Get("/{id}", employeeHandler.Get)
				r.Get("/{employeeId}/loans", loanHandler.ListLoansByEmployee)
				r.Get("/{employeeId}/compensation-overrides", compensationHandler.GetEmployeeOverrides)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(middleware.RoleHR))
					r.Post("/", employeeHandler.Create)
					r.Put("/{id}", employeeHandler.Update)
					r.Post("/{employeeId}/compensation-overrides", compensationHandler.AssignEmployeeOverride)
				})
			})

			r.Route("/compensation-definitions", func(r chi.Router) {
				r.Get("/", compensationHandler.ListDefinitions)
				r.Get("/{id}", compensationHandler.GetDefinition)
				r.Get("/{id}/resolve", compensationHandler.ResolvePreview)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(middleware.RoleHR))
					r.Post("/", compensationHandler.CreateDefinition)
					r.Put("/{id}", compensationHandler.UpdateDefinition)
					r.Delete("/{id}", compensationHandler.DeactivateDefinition)
					r.Put("/{id}/overrides", compensationHandler.UpsertOverride)
					r.Delete("/{id}/overrides", compensationHandler.DeleteOverride)
				})
			})

			r.Route("/compensation-overrides", func(r chi.Router) {
				r.Use(middleware.RequireRole(middleware.RoleHR))
				r.Delete("/{id}", compensationHandler.RemoveEmployeeOverride)
			})

			r.Route("/deductions", func(r chi.Router) {
				r.Get("/configs", deductionHandler.ListRuleConfigs)
				r.Get("/early-out-settings", deductionHandler.ListEarlyOutSettings)
				r.Post("/preview", deductionHandler.PreviewDeduction)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(middleware.RoleHR))
					r.Put("/configs", deductionHandler.UpsertRuleConfig)
					r.Delete("/configs/{id}", deductionHandler.DeleteRuleConfig)
					r.Put("/early-out-settings", deductionHandler.UpsertEarlyOutSettings)
				})
			})

			r.Route("/loan-policies", func(r chi.Router) {
				r.Get("/", loanHandler.ListPolicies)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(middleware.RoleFinance))
					r.Post("/", loanHandler.CreatePolicy)
					r.Delete("/{id}", loanHandler.DeactivatePolicy)
				})
			})

			r.Route("/loans", func(r chi.Router) {
				r.Post("/", loanHandler.ApplyLoan)
				r.Get("/", loanHandler.ListLoans)
				r.Get("/{id}", loanHandler.GetLoan)
				r.Get("/{id}/schedule", loanHandler.GetSchedule)
				r.Get("/{id}/settlement", loanHandler.PreviewSettlement)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(middleware.RoleFinance))
					r.Post("/{id}/decision", loanHandler.DecideLoan)
					r.Post("/{id}/repayments", loanHandler.RecordRepayment)
					r.Post("/{id}/settlement", loanHandler.SettleLoan)
				})
			})

			r.Route("/payroll/batches", func(r chi.Router) {
				r.Get("/", payrollHandler.ListBatches)
				r.Get("/{id}", payrollHandler.GetBatch)
				r.Get("/{id}/records", payrollHandler.ListRecords)
				r.Get("/{id}/records/{recordId}", payrollHandler.GetRecord)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(middleware.RoleHR, middleware.RoleFinance))
					r.Post("/", payrollHandler.CreateBatch)
					r.Post("/{id}/transition", payrollHandler.TransitionBatch)
					r.Post("/{id}/recalculation/request", payrollHandler.RequestRecalculation)
					r.Post("/{id}/recalculation/grant", payrollHandler.GrantRecalculation)
					r.Post("/{id}/recalculate", payrollHandler.RecalculateBatch)
				})
			})
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok\n"))
	})

	return r
}

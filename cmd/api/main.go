package main

import (
	"fmt"
	"net/http"

	"github.com/talentpay/payroll-backend-go/internal/config"
	appHTTP "github.com/talentpay/payroll-backend-go/internal/handler/http"
	"github.com/talentpay/payroll-backend-go/internal/pkg/database"
	"github.com/talentpay/payroll-backend-go/internal/pkg/jwt"
	"github.com/talentpay/payroll-backend-go/internal/repository/postgresql"
	compensationService "github.com/talentpay/payroll-backend-go/internal/service/compensation"
	deductionService "github.com/talentpay/payroll-backend-go/internal/service/deduction"
	employeeService "github.com/talentpay/payroll-backend-go/internal/service/employee"
	loanService "github.com/talentpay/payroll-backend-go/internal/service/loan"
	"github.com/talentpay/payroll-backend-go/internal/service/master"
	payrollService "github.com/talentpay/payroll-backend-go/internal/service/payroll"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL(), cfg.Database.MaxConns)
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}

	departmentRepo := postgresql.NewDepartmentRepository(db)
	divisionRepo := postgresql.NewDivisionRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	compensationRepo := postgresql.NewCompensationRepository(db)
	deductionRepo := postgresql.NewDeductionRepository(db)
	loanRepo := postgresql.NewLoanRepository(db)
	payrollRepo := postgresql.NewPayrollRepository(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	masterSvc := master.NewMasterService(departmentRepo, divisionRepo)
	employeeSvc := employeeService.NewEmployeeService(employeeRepo, departmentRepo, divisionRepo)
	compensationSvc := compensationService.NewCompensationService(db, compensationRepo)
	deductionSvc := deductionService.NewDeductionService(db, deductionRepo, employeeRepo, attendanceRepo)
	loanSvc := loanService.NewLoanService(db, loanRepo, employeeRepo)
	payrollSvc := payrollService.NewPayrollService(
		db,
		payrollRepo,
		employeeRepo,
		attendanceRepo,
		compensationRepo,
		deductionRepo,
		loanRepo,
		departmentRepo,
		payrollService.Options{
			RecalcGrantTTL: cfg.Payroll.RecalcGrantTTL,
			Workers:        cfg.Payroll.Workers,
		},
	)

	masterHandler := appHTTP.NewMasterHandler(masterSvc)
	employeeHandler := appHTTP.NewEmployeeHandler(employeeSvc)
	compensationHandler := appHTTP.NewCompensationHandler(compensationSvc)
	deductionHandler := appHTTP.NewDeductionHandler(deductionSvc)
	loanHandler := appHTTP.NewLoanHandler(loanSvc)
	payrollHandler := appHTTP.NewPayrollHandler(payrollSvc)

	router := appHTTP.NewRouter(
		JWTService,
		cfg.App.Env,
		masterHandler,
		employeeHandler,
		compensationHandler,
		deductionHandler,
		loanHandler,
		payrollHandler,
	)

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Println("Listening on", addr)
	if err := http.ListenAndServe(addr, router); err != nil {
		fmt.Println("Server error:", err)
	}
}

package payroll

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"

	"github.com/talentpay/payroll-backend-go/internal/domain/attendance"
	"github.com/talentpay/payroll-backend-go/internal/domain/compensation"
	"github.com/talentpay/payroll-backend-go/internal/domain/deduction"
	"github.com/talentpay/payroll-backend-go/internal/domain/employee"
	"github.com/talentpay/payroll-backend-go/internal/domain/loan"
	"github.com/talentpay/payroll-backend-go/internal/domain/master/department"
	"github.com/talentpay/payroll-backend-go/internal/domain/payroll"
	"github.com/talentpay/payroll-backend-go/internal/pkg/database"
	"github.com/talentpay/payroll-backend-go/internal/repository/postgresql"
)

// Options tune batch computation.
type Options struct {
	// RecalcGrantTTL bounds how long a recalculation grant stays usable.
	RecalcGrantTTL time.Duration
	// Workers caps concurrent per-employee computations.
	Workers int
}

func (o Options) withDefaults() Options {
	if o.RecalcGrantTTL <= 0 {
		o.RecalcGrantTTL = 24 * time.Hour
	}
	if o.Workers <= 0 {
		o.Workers = 8
	}
	return o
}

type PayrollServiceImpl struct {
	db               *database.DB
	payrollRepo      payroll.Repository
	employeeRepo     employee.Repository
	attendanceRepo   attendance.Repository
	compensationRepo compensation.Repository
	deductionRepo    deduction.Repository
	loanRepo         loan.Repository
	departmentRepo   department.Repository
	builder          *RecordBuilder
	opts             Options
}

func NewPayrollService(
	db *database.DB,
	payrollRepo payroll.Repository,
	employeeRepo employee.Repository,
	attendanceRepo attendance.Repository,
	compensationRepo compensation.Repository,
	deductionRepo deduction.Repository,
	loanRepo loan.Repository,
	departmentRepo department.Repository,
	opts Options,
) payroll.Service {
	return &PayrollServiceImpl{
		db:               db,
		payrollRepo:      payrollRepo,
		employeeRepo:     employeeRepo,
		attendanceRepo:   attendanceRepo,
		compensationRepo: compensationRepo,
		deductionRepo:    deductionRepo,
		loanRepo:         loanRepo,
		departmentRepo:   departmentRepo,
		builder:          NewRecordBuilder(),
		opts:             opts.withDefaults(),
	}
}

// ========== BATCH CREATION ==========

func (s *PayrollServiceImpl) CreateBatch(ctx context.Context, req *payroll.CreateBatchRequest, createdBy string) (*payroll.BatchResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.payrollRepo.GetBatchByDepartmentMonth(ctx, req.DepartmentID, req.Month); err == nil {
		return nil, payroll.ErrBatchAlreadyExists
	} else if !errors.Is(err, payroll.ErrBatchNotFound) {
		return nil, err
	}

	dept, err := s.departmentRepo.GetByID(ctx, req.DepartmentID)
	if err != nil {
		return nil, err
	}

	employees, err := s.employeeRepo.ListActiveByDepartment(ctx, dept.ID)
	if err != nil {
		return nil, err
	}

	records, missing, err := s.computeRecords(ctx, employees, dept.ID, req.Month, adjustmentsByEmployee(req.Adjustments))
	if err != nil {
		return nil, err
	}

	seq, err := s.payrollRepo.NextBatchSequence(ctx, dept.ID, req.Month)
	if err != nil {
		return nil, err
	}

	batch := payroll.PayrollBatch{
		BatchNumber:    payroll.FormatBatchNumber(dept.Code, req.Month, seq),
		DepartmentID:   dept.ID,
		Month:          req.Month,
		Status:         payroll.BatchStatusPending,
		TotalEmployees: len(records),
		Totals:         sumTotals(records),
		ValidationStatus: payroll.ValidationStatus{
			AllEmployeesCalculated: len(missing) == 0,
			MissingEmployees:       missing,
		},
		CreatedBy: createdBy,
	}

	err = postgresql.WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
		txCtx := context.WithValue(ctx, "tx", tx)

		if err := s.payrollRepo.CreateBatch(txCtx, &batch); err != nil {
			return fmt.Errorf("failed to create batch: %w", err)
		}
		for i := range records {
			records[i].BatchID = batch.ID
		}
		if err := s.payrollRepo.CreateRecords(txCtx, records); err != nil {
			return fmt.Errorf("failed to persist records: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := mapToBatchResponse(&batch)
	return &resp, nil
}

// computeRecords builds every employee's record in parallel. Employees
// without an attendance tally are reported as missing rather than failing
// the whole run.
func adjustmentsByEmployee(adjustments []payroll.RecordAdjustment) map[string]payroll.RecordAdjustment {
	m := make(map[string]payroll.RecordAdjustment, len(adjustments))
	for _, adj := range adjustments {
		m[adj.EmployeeID] = adj
	}
	return m
}

func (s *PayrollServiceImpl) computeRecords(ctx context.Context, employees []employee.Employee, departmentID, month string, adjustments map[string]payroll.RecordAdjustment) ([]payroll.PayrollRecord, []string, error) {
	definitions, err := s.compensationRepo.ListDefinitions(ctx, nil, false)
	if err != nil {
		return nil, nil, err
	}

	tallies, err := s.attendanceRepo.ListMonthlyTallies(ctx, departmentID, month)
	if err != nil {
		return nil, nil, err
	}
	tallyByEmployee := make(map[string]*deduction.MonthlyTally, len(tallies))
	for i := range tallies {
		tallyByEmployee[tallies[i].EmployeeID] = &tallies[i]
	}

	monthStart, err := time.Parse("2006-01", month)
	if err != nil {
		return nil, nil, payroll.ErrInvalidPeriod
	}

	results := make([]*payroll.PayrollRecord, len(employees))
	var mu sync.Mutex
	var missing []string

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)
	for i := range employees {
		i := i
		g.Go(func() error {
			emp := &employees[i]

			tally, ok := tallyByEmployee[emp.ID]
			if !ok {
				mu.Lock()
				missing = append(missing, emp.ID)
				mu.Unlock()
				return nil
			}

			overrides, err := s.compensationRepo.GetEmployeeOverrides(gCtx, emp.ID, monthStart)
			if err != nil {
				return fmt.Errorf("employee %s: %w", emp.ID, err)
			}
			openLoans, err := s.loanRepo.ListOpenLoansByEmployee(gCtx, emp.ID)
			if err != nil {
				return fmt.Errorf("employee %s: %w", emp.ID, err)
			}
			attendanceCfg, permissionCfg, earlyOut, err := s.loadDeductionConfigs(gCtx, emp.DepartmentID, emp.DivisionID)
			if err != nil {
				return fmt.Errorf("employee %s: %w", emp.ID, err)
			}

			adj := adjustments[emp.ID]
			record, err := s.builder.Build(emp, &BuildInputs{
				Month:             month,
				Definitions:       definitions,
				EmployeeOverrides: overrides,
				AttendanceConfig:  attendanceCfg,
				PermissionConfig:  permissionCfg,
				EarlyOutSettings:  earlyOut,
				Tally:             tally,
				OpenLoans:         openLoans,
				Incentive:         adj.Incentive,
				Arrears:           adj.Arrears,
			})
			if err != nil {
				return fmt.Errorf("employee %s: %w", emp.ID, err)
			}
			results[i] = record
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	records := make([]payroll.PayrollRecord, 0, len(results))
	for _, r := range results {
		if r != nil {
			records = append(records, *r)
		}
	}
	return records, missing, nil
}

func (s *PayrollServiceImpl) loadDeductionConfigs(ctx context.Context, departmentID string, divisionID *string) (*deduction.RuleConfig, *deduction.RuleConfig, *deduction.EarlyOutSettings, error) {
	attendanceCfg, err := s.deductionRepo.GetRuleConfig(ctx, deduction.ScopeAttendance, &departmentID, divisionID)
	if err != nil && !errors.Is(err, deduction.ErrConfigNotFound) {
		return nil, nil, nil, err
	}
	permissionCfg, err := s.deductionRepo.GetRuleConfig(ctx, deduction.ScopePermission, &departmentID, divisionID)
	if err != nil && !errors.Is(err, deduction.ErrConfigNotFound) {
		return nil, nil, nil, err
	}
	earlyOut, err := s.deductionRepo.GetEarlyOutSettings(ctx, &departmentID, divisionID)
	if err != nil && !errors.Is(err, deduction.ErrEarlyOutSettingNotFound) {
		return nil, nil, nil, err
	}
	return attendanceCfg, permissionCfg, earlyOut, nil
}

func sumTotals(records []payroll.PayrollRecord) payroll.BatchTotals {
	var totals payroll.BatchTotals
	for i := range records {
		totals.GrossPay = totals.GrossPay.Add(records[i].GrossPay)
		totals.TotalDeductions = totals.TotalDeductions.Add(records[i].TotalDeductions)
		totals.NetPay = totals.NetPay.Add(records[i].NetPay)
		totals.RoundOff = totals.RoundOff.Add(records[i].RoundOff)
	}
	return totals
}

// ========== QUERIES ==========

func (s *PayrollServiceImpl) GetBatch(ctx context.Context, batchID string) (*payroll.BatchResponse, error) {
	batch, err := s.payrollRepo.GetBatchByID(ctx, batchID)
	if err != nil {
		return nil, err
	}

	resp := mapToBatchResponse(batch)
	return &resp, nil
}

func (s *PayrollServiceImpl) ListBatches(ctx context.Context, filter payroll.BatchFilter) ([]payroll.BatchResponse, int64, error) {
	batches, total, err := s.payrollRepo.ListBatches(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]payroll.BatchResponse, 0, len(batches))
	for i := range batches {
		responses = append(responses, mapToBatchResponse(&batches[i]))
	}
	return responses, total, nil
}

func (s *PayrollServiceImpl) ListRecords(ctx context.Context, batchID string) ([]payroll.RecordResponse, error) {
	records, err := s.payrollRepo.ListRecordsByBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}

	responses := make([]payroll.RecordResponse, 0, len(records))
	for i := range records {
		responses = append(responses, mapToRecordResponse(&records[i]))
	}
	return responses, nil
}

func (s *PayrollServiceImpl) GetRecord(ctx context.Context, recordID string) (*payroll.RecordResponse, error) {
	record, err := s.payrollRepo.GetRecordByID(ctx, recordID)
	if err != nil {
		return nil, err
	}

	resp := mapToRecordResponse(record)
	return &resp, nil
}

// ========== STATE MACHINE ==========

func (s *PayrollServiceImpl) TransitionBatch(ctx context.Context, batchID string, req *payroll.TransitionBatchRequest, actor string) (*payroll.BatchResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	batch, err := s.payrollRepo.GetBatchByID(ctx, batchID)
	if err != nil {
		return nil, err
	}

	target := payroll.BatchStatus(req.Status)
	expected := batch.Status
	if err := batch.Transition(target, actor, time.Now(), req.Note); err != nil {
		return nil, err
	}

	if err := s.payrollRepo.UpdateBatchCAS(ctx, batch, expected); err != nil {
		return nil, err
	}

	resp := mapToBatchResponse(batch)
	return &resp, nil
}

func (s *PayrollServiceImpl) RequestRecalculation(ctx context.Context, batchID string, req *payroll.RequestRecalculationRequest, requestedBy string) (*payroll.BatchResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	batch, err := s.payrollRepo.GetBatchByID(ctx, batchID)
	if err != nil {
		return nil, err
	}

	expected := batch.Status
	if err := batch.RequestRecalculation(requestedBy, req.Reason, time.Now()); err != nil {
		return nil, err
	}

	if err := s.payrollRepo.UpdateBatchCAS(ctx, batch, expected); err != nil {
		return nil, err
	}

	resp := mapToBatchResponse(batch)
	return &resp, nil
}

func (s *PayrollServiceImpl) GrantRecalculation(ctx context.Context, batchID string, grantedBy string) (*payroll.BatchResponse, error) {
	batch, err := s.payrollRepo.GetBatchByID(ctx, batchID)
	if err != nil {
		return nil, err
	}

	expected := batch.Status
	if err := batch.GrantRecalculation(grantedBy, time.Now(), s.opts.RecalcGrantTTL); err != nil {
		return nil, err
	}

	if err := s.payrollRepo.UpdateBatchCAS(ctx, batch, expected); err != nil {
		return nil, err
	}

	resp := mapToBatchResponse(batch)
	return &resp, nil
}

// RecalculateBatch re-runs the computation for a batch. A frozen batch is
// first moved back to pending, which requires and consumes a valid grant.
// The old totals are snapshotted and the differences recorded before the new
// records replace the old ones atomically.
func (s *PayrollServiceImpl) RecalculateBatch(ctx context.Context, batchID string, req *payroll.RecalculateBatchRequest, recalculatedBy string) (*payroll.BatchResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	batch, err := s.payrollRepo.GetBatchByID(ctx, batchID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	expected := batch.Status
	switch batch.Status {
	case payroll.BatchStatusFreeze:
		if err := batch.Transition(payroll.BatchStatusPending, recalculatedBy, now, req.Reason); err != nil {
			return nil, err
		}
	case payroll.BatchStatusPending:
		// already editable
	default:
		return nil, fmt.Errorf("%w: batch is %s", payroll.ErrInvalidTransition, batch.Status)
	}

	oldRecords, err := s.payrollRepo.ListRecordsByBatch(ctx, batch.ID)
	if err != nil {
		return nil, err
	}

	dept, err := s.departmentRepo.GetByID(ctx, batch.DepartmentID)
	if err != nil {
		return nil, err
	}
	employees, err := s.employeeRepo.ListActiveByDepartment(ctx, dept.ID)
	if err != nil {
		return nil, err
	}

	newRecords, missing, err := s.computeRecords(ctx, employees, dept.ID, batch.Month, adjustmentsByEmployee(req.Adjustments))
	if err != nil {
		return nil, err
	}

	entry := payroll.RecalculationEntry{
		RecalculatedBy:   recalculatedBy,
		RecalculatedAt:   now,
		Reason:           req.Reason,
		PreviousSnapshot: snapshotBatch(batch, oldRecords),
		Changes:          diffRecords(oldRecords, newRecords),
	}
	batch.RecalculationHistory = append(batch.RecalculationHistory, entry)
	batch.TotalEmployees = len(newRecords)
	batch.Totals = sumTotals(newRecords)
	batch.ValidationStatus = payroll.ValidationStatus{
		AllEmployeesCalculated: len(missing) == 0,
		MissingEmployees:       missing,
	}

	err = postgresql.WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
		txCtx := context.WithValue(ctx, "tx", tx)

		if err := s.payrollRepo.UpdateBatchCAS(txCtx, batch, expected); err != nil {
			return err
		}
		if err := s.payrollRepo.DeleteRecordsByBatch(txCtx, batch.ID); err != nil {
			return fmt.Errorf("failed to clear old records: %w", err)
		}
		for i := range newRecords {
			newRecords[i].BatchID = batch.ID
		}
		if err := s.payrollRepo.CreateRecords(txCtx, newRecords); err != nil {
			return fmt.Errorf("failed to persist recalculated records: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := mapToBatchResponse(batch)
	return &resp, nil
}

func snapshotBatch(batch *payroll.PayrollBatch, records []payroll.PayrollRecord) payroll.BatchSnapshot {
	snap := payroll.BatchSnapshot{
		Totals:           batch.Totals,
		EmployeePayrolls: make([]payroll.EmployeeSnapshot, 0, len(records)),
	}
	for i := range records {
		snap.EmployeePayrolls = append(snap.EmployeePayrolls, payroll.EmployeeSnapshot{
			EmployeeID:      records[i].EmployeeID,
			GrossPay:        records[i].GrossPay,
			TotalDeductions: records[i].TotalDeductions,
			NetPay:          records[i].NetPay,
		})
	}
	return snap
}

// diffRecords reports per-employee total changes, plus employees that only
// appear on one side.
func diffRecords(oldRecords, newRecords []payroll.PayrollRecord) []payroll.FieldChange {
	oldByEmployee := make(map[string]*payroll.PayrollRecord, len(oldRecords))
	for i := range oldRecords {
		oldByEmployee[oldRecords[i].EmployeeID] = &oldRecords[i]
	}

	var changes []payroll.FieldChange
	seen := make(map[string]bool, len(newRecords))
	for i := range newRecords {
		nr := &newRecords[i]
		seen[nr.EmployeeID] = true

		or, ok := oldByEmployee[nr.EmployeeID]
		if !ok {
			changes = append(changes, payroll.FieldChange{
				EmployeeID: nr.EmployeeID,
				Field:      "netPay",
				OldValue:   "",
				NewValue:   nr.NetPay.String(),
			})
			continue
		}
		if !or.GrossPay.Equal(nr.GrossPay) {
			changes = append(changes, payroll.FieldChange{
				EmployeeID: nr.EmployeeID,
				Field:      "grossPay",
				OldValue:   or.GrossPay.String(),
				NewValue:   nr.GrossPay.String(),
			})
		}
		if !or.TotalDeductions.Equal(nr.TotalDeductions) {
			changes = append(changes, payroll.FieldChange{
				EmployeeID: nr.EmployeeID,
				Field:      "totalDeductions",
				OldValue:   or.TotalDeductions.String(),
				NewValue:   nr.TotalDeductions.String(),
			})
		}
		if !or.NetPay.Equal(nr.NetPay) {
			changes = append(changes, payroll.FieldChange{
				EmployeeID: nr.EmployeeID,
				Field:      "netPay",
				OldValue:   or.NetPay.String(),
				NewValue:   nr.NetPay.String(),
			})
		}
	}
	for i := range oldRecords {
		or := &oldRecords[i]
		if !seen[or.EmployeeID] {
			changes = append(changes, payroll.FieldChange{
				EmployeeID: or.EmployeeID,
				Field:      "netPay",
				OldValue:   or.NetPay.String(),
				NewValue:   "",
			})
		}
	}
	return changes
}

// ========== MAPPERS ==========

func mapToBatchResponse(b *payroll.PayrollBatch) payroll.BatchResponse {
	resp := payroll.BatchResponse{
		ID:             b.ID,
		BatchNumber:    b.BatchNumber,
		DepartmentID:   b.DepartmentID,
		DepartmentName: b.DepartmentName,
		Month:          b.Month,
		Status:         string(b.Status),
		TotalEmployees: b.TotalEmployees,
		Totals: payroll.TotalsResponse{
			GrossPay:        b.Totals.GrossPay.String(),
			TotalDeductions: b.Totals.TotalDeductions.String(),
			NetPay:          b.Totals.NetPay.String(),
			RoundOff:        b.Totals.RoundOff.String(),
		},
		ValidationStatus: payroll.ValidationStatusResponse{
			AllEmployeesCalculated: b.ValidationStatus.AllEmployeesCalculated,
			MissingEmployees:       b.ValidationStatus.MissingEmployees,
		},
		CreatedBy: b.CreatedBy,
		CreatedAt: b.CreatedAt.Format("2006-01-02 15:04:05"),
	}

	for _, sc := range b.StatusHistory {
		resp.StatusHistory = append(resp.StatusHistory, payroll.StatusChangeResponse{
			From:      string(sc.From),
			To:        string(sc.To),
			ChangedBy: sc.ChangedBy,
			ChangedAt: sc.ChangedAt.Format(time.RFC3339),
			Note:      sc.Note,
		})
	}

	if p := b.RecalculationPermission; p != nil {
		pr := payroll.RecalculationPermissionResponse{
			Granted:     p.Granted,
			RequestedBy: p.RequestedBy,
			RequestedAt: p.RequestedAt.Format(time.RFC3339),
			Reason:      p.Reason,
			GrantedBy:   p.GrantedBy,
		}
		if p.GrantedAt != nil {
			v := p.GrantedAt.Format(time.RFC3339)
			pr.GrantedAt = &v
		}
		if p.ExpiresAt != nil {
			v := p.ExpiresAt.Format(time.RFC3339)
			pr.ExpiresAt = &v
		}
		resp.RecalculationPermission = &pr
	}

	for _, e := range b.RecalculationHistory {
		er := payroll.RecalculationEntryResponse{
			RecalculatedBy: e.RecalculatedBy,
			RecalculatedAt: e.RecalculatedAt.Format(time.RFC3339),
			Reason:         e.Reason,
		}
		for _, c := range e.Changes {
			er.Changes = append(er.Changes, payroll.FieldChangeResponse{
				EmployeeID: c.EmployeeID,
				Field:      c.Field,
				OldValue:   c.OldValue,
				NewValue:   c.NewValue,
			})
		}
		resp.RecalculationHistory = append(resp.RecalculationHistory, er)
	}

	return resp
}

func mapToRecordResponse(r *payroll.PayrollRecord) payroll.RecordResponse {
	resp := payroll.RecordResponse{
		ID:               r.ID,
		BatchID:          r.BatchID,
		EmployeeID:       r.EmployeeID,
		EmployeeName:     r.EmployeeName,
		EmployeeCode:     r.EmployeeCode,
		Month:            r.Month,
		BasicSalary:      r.BasicSalary.String(),
		GrossSalary:      r.GrossSalary.String(),
		PresentDays:      r.PresentDays.String(),
		TotalDaysInMonth: r.TotalDaysInMonth,
		OvertimeAmount:   r.OvertimeAmount.String(),
		LoanInstallment:  r.LoanInstallment.String(),
		GrossPay:         r.GrossPay.String(),
		TotalDeductions:  r.TotalDeductions.String(),
		NetPay:           r.NetPay.String(),
		RoundOff:         r.RoundOff.String(),
	}
	for _, line := range r.Earnings {
		resp.Earnings = append(resp.Earnings, mapToLineResponse(line))
	}
	for _, line := range r.Deductions {
		resp.Deductions = append(resp.Deductions, mapToLineResponse(line))
	}
	return resp
}

func mapToLineResponse(line payroll.ComponentLine) payroll.ComponentLineResponse {
	return payroll.ComponentLineResponse{
		DefinitionID: line.DefinitionID,
		Name:         line.Name,
		Category:     line.Category,
		Source:       string(line.Source),
		Amount:       line.Amount.String(),
	}
}

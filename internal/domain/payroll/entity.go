package payroll

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// BatchStatus enum
type BatchStatus string

const (
	BatchStatusPending  BatchStatus = "pending"
	BatchStatusApproved BatchStatus = "approved"
	BatchStatusFreeze   BatchStatus = "freeze"
	BatchStatusComplete BatchStatus = "complete"
)

// ComponentSource identifies where a record line came from.
type ComponentSource string

const (
	SourceGlobalRule       ComponentSource = "global_rule"
	SourceDepartmentRule   ComponentSource = "department_rule"
	SourceDivisionRule     ComponentSource = "division_rule"
	SourceEmployeeOverride ComponentSource = "employee_override"
	SourceBaseSalary       ComponentSource = "base_salary"
	SourceAttendance       ComponentSource = "attendance"
	SourcePermission       ComponentSource = "permission"
	SourceEarlyOut         ComponentSource = "early_out"
	SourceLeave            ComponentSource = "leave"
	SourceOvertime         ComponentSource = "overtime"
	SourceIncentive        ComponentSource = "incentive"
	SourceArrears          ComponentSource = "arrears"
	SourceLoan             ComponentSource = "loan"
)

// ComponentLine is one priced earning or deduction on a payroll record.
type ComponentLine struct {
	DefinitionID string          `json:"definitionId,omitempty"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	Source       ComponentSource `json:"source"`
	Amount       decimal.Decimal `json:"amount"`
}

// PayrollRecord is one employee's computed payroll for one month.
type PayrollRecord struct {
	ID               string
	BatchID          string
	EmployeeID       string
	Month            string // YYYY-MM
	BasicSalary      decimal.Decimal
	GrossSalary      decimal.Decimal
	PresentDays      decimal.Decimal
	TotalDaysInMonth int
	Earnings         []ComponentLine
	Deductions       []ComponentLine
	OvertimeAmount   decimal.Decimal
	LoanInstallment  decimal.Decimal
	GrossPay         decimal.Decimal
	TotalDeductions  decimal.Decimal
	// NetPayExact is the unrounded result; NetPay is what is actually
	// disbursed and RoundOff is their difference.
	NetPayExact decimal.Decimal
	NetPay      decimal.Decimal
	RoundOff    decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// DTO
	EmployeeName *string
	EmployeeCode *string
}

// BatchTotals aggregates the records of a batch.
type BatchTotals struct {
	GrossPay        decimal.Decimal `json:"grossPay"`
	TotalDeductions decimal.Decimal `json:"totalDeductions"`
	NetPay          decimal.Decimal `json:"netPay"`
	RoundOff        decimal.Decimal `json:"roundOff"`
}

// StatusChange is one append-only entry in a batch's status history.
type StatusChange struct {
	From      BatchStatus `json:"from"`
	To        BatchStatus `json:"to"`
	ChangedBy string      `json:"changedBy"`
	ChangedAt time.Time   `json:"changedAt"`
	Note      string      `json:"note,omitempty"`
}

// RecalculationPermission is a time-boxed grant allowing a frozen batch to
// return to pending. The grantor must differ from the requester.
type RecalculationPermission struct {
	Granted     bool       `json:"granted"`
	RequestedBy string     `json:"requestedBy"`
	RequestedAt time.Time  `json:"requestedAt"`
	Reason      string     `json:"reason"`
	GrantedBy   *string    `json:"grantedBy,omitempty"`
	GrantedAt   *time.Time `json:"grantedAt,omitempty"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
}

// Valid reports whether the grant is usable at the given instant. Expiry is
// lazy: nothing clears an expired grant, it simply stops validating.
func (p *RecalculationPermission) Valid(now time.Time) bool {
	if p == nil || !p.Granted || p.ExpiresAt == nil {
		return false
	}
	return now.Before(*p.ExpiresAt)
}

// EmployeeSnapshot captures one record's totals before a recalculation.
type EmployeeSnapshot struct {
	EmployeeID      string          `json:"employeeId"`
	GrossPay        decimal.Decimal `json:"grossPay"`
	TotalDeductions decimal.Decimal `json:"totalDeductions"`
	NetPay          decimal.Decimal `json:"netPay"`
}

// BatchSnapshot captures a batch's state before a recalculation.
type BatchSnapshot struct {
	Totals           BatchTotals        `json:"totals"`
	EmployeePayrolls []EmployeeSnapshot `json:"employeePayrolls"`
}

// FieldChange is one observed difference produced by a recalculation.
type FieldChange struct {
	EmployeeID string `json:"employeeId"`
	Field      string `json:"field"`
	OldValue   string `json:"oldValue"`
	NewValue   string `json:"newValue"`
}

// RecalculationEntry is one append-only audit row for a recalculation run.
type RecalculationEntry struct {
	RecalculatedBy   string        `json:"recalculatedBy"`
	RecalculatedAt   time.Time     `json:"recalculatedAt"`
	Reason           string        `json:"reason"`
	PreviousSnapshot BatchSnapshot `json:"previousSnapshot"`
	Changes          []FieldChange `json:"changes"`
}

// ValidationStatus records whether every active employee of the department
// made it into the batch.
type ValidationStatus struct {
	AllEmployeesCalculated bool     `json:"allEmployeesCalculated"`
	MissingEmployees       []string `json:"missingEmployees,omitempty"`
}

// PayrollBatch groups one department-month payroll run.
type PayrollBatch struct {
	ID                      string
	BatchNumber             string
	DepartmentID            string
	Month                   string // YYYY-MM
	Status                  BatchStatus
	TotalEmployees          int
	Totals                  BatchTotals
	ValidationStatus        ValidationStatus
	StatusHistory           []StatusChange
	RecalculationPermission *RecalculationPermission
	RecalculationHistory    []RecalculationEntry
	CreatedBy               string
	CreatedAt               time.Time
	UpdatedAt               time.Time

	// DTO
	DepartmentName *string
}

// forwardEdges is the only allowed forward path. The single backward edge,
// freeze to pending, is gated on a valid recalculation grant and handled in
// Transition.
var forwardEdges = map[BatchStatus]BatchStatus{
	BatchStatusPending:  BatchStatusApproved,
	BatchStatusApproved: BatchStatusFreeze,
	BatchStatusFreeze:   BatchStatusComplete,
}

// CanTransition reports whether from -> to is a legal forward edge.
func CanTransition(from, to BatchStatus) bool {
	return forwardEdges[from] == to
}

// Transition moves the batch along an edge and appends to the status
// history. The freeze -> pending edge additionally requires a valid grant
// from someone other than the actor consuming it, and consumes the grant.
func (b *PayrollBatch) Transition(to BatchStatus, actor string, now time.Time, note string) error {
	from := b.Status

	switch {
	case CanTransition(from, to):
		// forward edge
	case from == BatchStatusFreeze && to == BatchStatusPending:
		if !b.RecalculationPermission.Valid(now) {
			return ErrRecalculationNotAuthorized
		}
		if b.RecalculationPermission.GrantedBy != nil && *b.RecalculationPermission.GrantedBy == actor {
			return ErrRecalculationNotAuthorized
		}
		b.RecalculationPermission.Granted = false
	default:
		return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, from, to)
	}

	// Approval re-confirms that every employee made it into the batch.
	if (to == BatchStatusApproved || to == BatchStatusComplete) && !b.ValidationStatus.AllEmployeesCalculated {
		return ErrIncompleteBatch
	}

	b.Status = to
	b.StatusHistory = append(b.StatusHistory, StatusChange{
		From:      from,
		To:        to,
		ChangedBy: actor,
		ChangedAt: now,
		Note:      note,
	})
	return nil
}

// RequestRecalculation files a request on a frozen batch. Any previous
// grant, used or expired, is replaced.
func (b *PayrollBatch) RequestRecalculation(requestedBy, reason string, now time.Time) error {
	if b.Status != BatchStatusFreeze {
		return fmt.Errorf("%w: batch is %s", ErrInvalidTransition, b.Status)
	}
	b.RecalculationPermission = &RecalculationPermission{
		Granted:     false,
		RequestedBy: requestedBy,
		RequestedAt: now,
		Reason:      reason,
	}
	return nil
}

// GrantRecalculation approves a pending request. The grantor must not be
// the requester.
func (b *PayrollBatch) GrantRecalculation(grantedBy string, now time.Time, ttl time.Duration) error {
	p := b.RecalculationPermission
	if p == nil || p.RequestedBy == "" {
		return ErrNoRecalculationRequest
	}
	if p.RequestedBy == grantedBy {
		return ErrRecalculationNotAuthorized
	}
	expires := now.Add(ttl)
	p.Granted = true
	p.GrantedBy = &grantedBy
	p.GrantedAt = &now
	p.ExpiresAt = &expires
	return nil
}

// BatchNumber formats the human-readable identifier for a department-month
// run: PB-<dept code>-<year>-<month>-<sequence>.
func FormatBatchNumber(deptCode, month string, seq int) string {
	return fmt.Sprintf("PB-%s-%s-%03d", deptCode, month, seq)
}

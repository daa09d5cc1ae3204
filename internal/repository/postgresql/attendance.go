package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/talentpay/payroll-backend-go/internal/domain/attendance"
	"github.com/talentpay/payroll-backend-go/internal/domain/deduction"
	"github.com/talentpay/payroll-backend-go/internal/pkg/database"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

// monthRange converts a YYYY-MM month into its half-open date interval and
// calendar length.
func monthRange(month string) (start, end time.Time, days int, err error) {
	start, err = time.Parse("2006-01", month)
	if err != nil {
		return time.Time{}, time.Time{}, 0, fmt.Errorf("invalid month %q: %w", month, err)
	}
	end = start.AddDate(0, 1, 0)
	days = end.AddDate(0, 0, -1).Day()
	return start, end, days, nil
}

const tallyAggregate = `
	SELECT a.employee_id,
		   COALESCE(SUM(CASE WHEN a.status = 'present' THEN CASE WHEN a.is_half_day THEN 0.5 ELSE 1 END ELSE 0 END), 0),
		   COALESCE(SUM(CASE WHEN a.status = 'leave' THEN 1 ELSE 0 END), 0),
		   COALESCE(SUM(CASE WHEN a.status = 'leave' AND a.leave_type_id IS NOT NULL THEN 1 ELSE 0 END), 0),
		   COALESCE(SUM(CASE WHEN a.status = 'on_duty' THEN 1 ELSE 0 END), 0),
		   COALESCE(SUM(COALESCE(a.overtime_minutes, 0)), 0) / 60.0
	FROM attendance_records a
`

func (r *attendanceRepository) GetMonthlyTally(ctx context.Context, employeeID, month string) (*deduction.MonthlyTally, error) {
	q := GetQuerier(ctx, r.db)

	start, end, days, err := monthRange(month)
	if err != nil {
		return nil, err
	}

	query := tallyAggregate + `
		WHERE a.employee_id = $1 AND a.date >= $2 AND a.date < $3
		GROUP BY a.employee_id
	`

	tally := deduction.MonthlyTally{
		EmployeeID:       employeeID,
		Month:            month,
		TotalDaysInMonth: days,
	}

	rows, err := q.Query(ctx, query, employeeID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate monthly tally: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, attendance.ErrTallyNotFound
	}
	if err := rows.Scan(
		&tally.EmployeeID, &tally.PresentDays, &tally.LeaveDays,
		&tally.PaidLeaveDays, &tally.ODDays, &tally.OTHours,
	); err != nil {
		return nil, fmt.Errorf("failed to scan monthly tally: %w", err)
	}
	rows.Close()

	events, err := r.loadEvents(ctx, []string{employeeID}, start, end)
	if err != nil {
		return nil, err
	}
	if e, ok := events[employeeID]; ok {
		tally.LateIns = e.lateIns
		tally.EarlyOuts = e.earlyOuts
		tally.Permissions = e.permissions
	}

	return &tally, nil
}

func (r *attendanceRepository) ListMonthlyTallies(ctx context.Context, departmentID, month string) ([]deduction.MonthlyTally, error) {
	q := GetQuerier(ctx, r.db)

	start, end, days, err := monthRange(month)
	if err != nil {
		return nil, err
	}

	query := tallyAggregate + `
		JOIN employees e ON e.id = a.employee_id
		WHERE e.department_id = $1 AND a.date >= $2 AND a.date < $3
		GROUP BY a.employee_id
	`

	rows, err := q.Query(ctx, query, departmentID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate monthly tallies: %w", err)
	}
	defer rows.Close()

	var tallies []deduction.MonthlyTally
	var employeeIDs []string
	for rows.Next() {
		tally := deduction.MonthlyTally{Month: month, TotalDaysInMonth: days}
		if err := rows.Scan(
			&tally.EmployeeID, &tally.PresentDays, &tally.LeaveDays,
			&tally.PaidLeaveDays, &tally.ODDays, &tally.OTHours,
		); err != nil {
			return nil, fmt.Errorf("failed to scan monthly tally: %w", err)
		}
		tallies = append(tallies, tally)
		employeeIDs = append(employeeIDs, tally.EmployeeID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(tallies) == 0 {
		return nil, nil
	}

	events, err := r.loadEvents(ctx, employeeIDs, start, end)
	if err != nil {
		return nil, err
	}
	for i := range tallies {
		if e, ok := events[tallies[i].EmployeeID]; ok {
			tallies[i].LateIns = e.lateIns
			tallies[i].EarlyOuts = e.earlyOuts
			tallies[i].Permissions = e.permissions
		}
	}

	return tallies, nil
}

type employeeEvents struct {
	lateIns     []deduction.EventDuration
	earlyOuts   []deduction.EventDuration
	permissions []deduction.EventDuration
}

// loadEvents gathers the dated event streams for a set of employees in two
// queries, bucketed per employee.
func (r *attendanceRepository) loadEvents(ctx context.Context, employeeIDs []string, start, end time.Time) (map[string]*employeeEvents, error) {
	q := GetQuerier(ctx, r.db)

	events := make(map[string]*employeeEvents, len(employeeIDs))
	bucket := func(id string) *employeeEvents {
		if e, ok := events[id]; ok {
			return e
		}
		e := &employeeEvents{}
		events[id] = e
		return e
	}

	attnQuery := `
		SELECT employee_id, date, COALESCE(late_minutes, 0), COALESCE(early_leave_minutes, 0)
		FROM attendance_records
		WHERE employee_id = ANY($1) AND date >= $2 AND date < $3
		  AND (COALESCE(late_minutes, 0) > 0 OR COALESCE(early_leave_minutes, 0) > 0)
		ORDER BY date
	`

	rows, err := q.Query(ctx, attnQuery, employeeIDs, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance events: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var employeeID string
		var date time.Time
		var lateMinutes, earlyLeaveMinutes int
		if err := rows.Scan(&employeeID, &date, &lateMinutes, &earlyLeaveMinutes); err != nil {
			return nil, fmt.Errorf("failed to scan attendance event: %w", err)
		}
		e := bucket(employeeID)
		if lateMinutes > 0 {
			e.lateIns = append(e.lateIns, deduction.EventDuration{Date: date, DurationMinutes: lateMinutes})
		}
		if earlyLeaveMinutes > 0 {
			e.earlyOuts = append(e.earlyOuts, deduction.EventDuration{Date: date, DurationMinutes: earlyLeaveMinutes})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	permQuery := `
		SELECT employee_id, date, duration_minutes
		FROM permission_slips
		WHERE employee_id = ANY($1) AND date >= $2 AND date < $3
		  AND approved_by IS NOT NULL
		ORDER BY date
	`

	permRows, err := q.Query(ctx, permQuery, employeeIDs, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list permission slips: %w", err)
	}
	defer permRows.Close()

	for permRows.Next() {
		var employeeID string
		var date time.Time
		var durationMinutes int
		if err := permRows.Scan(&employeeID, &date, &durationMinutes); err != nil {
			return nil, fmt.Errorf("failed to scan permission slip: %w", err)
		}
		e := bucket(employeeID)
		e.permissions = append(e.permissions, deduction.EventDuration{Date: date, DurationMinutes: durationMinutes})
	}
	if err := permRows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

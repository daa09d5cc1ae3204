package attendance

import (
	"time"
)

type Attendance struct {
	ID                string
	EmployeeID        string
	Date              time.Time
	ClockIn           *time.Time
	ClockOut          *time.Time
	Status            string
	LateMinutes       *int
	EarlyLeaveMinutes *int
	OvertimeMinutes   *int
	IsHalfDay         bool
	LeaveTypeID       *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type PermissionSlip struct {
	ID              string
	EmployeeID      string
	Date            time.Time
	DurationMinutes int
	Reason          string
	ApprovedBy      *string
	CreatedAt       time.Time
}

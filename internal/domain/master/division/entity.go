package division

import "time"

type Division struct {
	ID           string
	DepartmentID string
	Name         string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

package payroll

import "errors"

var (
	ErrBatchNotFound              = errors.New("payroll batch not found")
	ErrBatchAlreadyExists         = errors.New("payroll batch already exists for this department and month")
	ErrRecordNotFound             = errors.New("payroll record not found")
	ErrInvalidPeriod              = errors.New("invalid payroll period")
	ErrInvalidTransition          = errors.New("invalid batch status transition")
	ErrIncompleteBatch            = errors.New("batch is missing employee calculations")
	ErrNoRecalculationRequest     = errors.New("no recalculation request on this batch")
	ErrRecalculationNotAuthorized = errors.New("recalculation is not authorized")
	ErrConcurrentModification     = errors.New("batch was modified concurrently")
)

package compensation

import "errors"

var (
	ErrDefinitionNotFound       = errors.New("compensation definition not found")
	ErrDefinitionNameExists     = errors.New("compensation definition name already exists")
	ErrOverrideNotFound         = errors.New("override rule not found")
	ErrEmployeeOverrideNotFound = errors.New("employee override not found")

	// ErrRuleNotResolvable means an active definition carries a malformed
	// global rule. Write-time validation prevents this; seeing it at resolve
	// time indicates corrupted master data.
	ErrRuleNotResolvable = errors.New("compensation rule not resolvable")

	// ErrInvalidPeriod means the caller did not supply the calendar length of
	// the month being computed.
	ErrInvalidPeriod = errors.New("invalid period: total days in month must be positive")
)

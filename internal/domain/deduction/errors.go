package deduction

import "errors"

var (
	ErrConfigNotFound          = errors.New("deduction rule config not found")
	ErrEarlyOutSettingNotFound = errors.New("early-out settings not found")
	ErrInvalidRange            = errors.New("early-out range is invalid")
	ErrOverlappingRanges       = errors.New("early-out ranges overlap")
)

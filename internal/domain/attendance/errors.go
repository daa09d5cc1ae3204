package attendance

import "errors"

var (
	ErrTallyNotFound = errors.New("attendance tally not found")
)

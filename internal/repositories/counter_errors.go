package repositories

import "errors"

// ErrCounterInvalidID is returned when a sequence is requested without a counter id.
var ErrCounterInvalidID = errors.New("counter id is required")

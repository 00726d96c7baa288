package scheduler

import "errors"

var (
	// ErrSchedulerNotRunning is returned when stopping a scheduler that never started
	ErrSchedulerNotRunning = errors.New("scheduler is not running")

	// ErrRunInProgress is returned when a billing run is already executing
	ErrRunInProgress = errors.New("billing run already in progress")

	// ErrInvalidConfig is returned when configuration is invalid
	ErrInvalidConfig = errors.New("invalid scheduler configuration")
)

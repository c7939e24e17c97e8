package service

import "errors"

// Precondition violations rejected synchronously with no state change.
var (
	// ErrTaskCompleted is returned when mutating a completed task.
	ErrTaskCompleted = errors.New("task is completed")

	// ErrTaskLocked is returned when submitting to an overdue task. An
	// overdue, non-completed task accepts no further updates or proofs.
	ErrTaskLocked = errors.New("task deadline has passed")

	// ErrNotSupervisor is returned when a supervisor-only operation is
	// invoked by anyone else.
	ErrNotSupervisor = errors.New("caller is not the task's supervisor")

	// ErrNotCoordinator is returned when the reassignment target is not a
	// staff coordinator.
	ErrNotCoordinator = errors.New("target user is not staff")

	// ErrProofRequired is returned when a supervisor completion carries
	// neither text nor images.
	ErrProofRequired = errors.New("completion text or proof images required")

	// ErrDuplicateSupervisor is returned when assigning a second supervisor
	// to an issue.
	ErrDuplicateSupervisor = errors.New("issue already has a supervisor")

	// ErrIssueResolved is returned when operating on an already-resolved issue.
	ErrIssueResolved = errors.New("issue is already resolved")
)

package interfaces

import "errors"

// Sentinel errors shared by every repository implementation so services can
// map storage outcomes onto the dispatch error taxonomy.
var (
	ErrOrderNotFound  = errors.New("order not found")
	ErrDriverNotFound = errors.New("driver not found")

	// ErrOrderAlreadyAssigned: the FCFS compare-and-swap lost because another
	// driver's acceptance committed first.
	ErrOrderAlreadyAssigned = errors.New("order already assigned")

	// ErrOrderNotPending: the order left "Driver Pending" before the
	// acceptance could commit.
	ErrOrderNotPending = errors.New("order not in driver pending status")

	// ErrPreconditionFailed: a transactional re-check observed a state change
	// between validation and commit.
	ErrPreconditionFailed = errors.New("order state changed during transaction")
)

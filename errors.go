package brokerage

import (
	"fmt"
)

// ValidationError reports a malformed or referentially-invalid transaction.
// The transaction was rejected before entering the ledger.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "invalid transaction: " + e.Reason }

func validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// InsufficientLotError reports a closing transaction that requested more
// quantity than is currently open. Nothing was applied.
type InsufficientLotError struct {
	Account    string
	Instrument string
	Requested  Quantity
	Open       Quantity
}

func (e *InsufficientLotError) Error() string {
	return fmt.Sprintf("insufficient open lots for %s in account %s: requested %s, open %s",
		e.Instrument, e.Account, e.Requested, e.Open)
}

// UnmatchedTransferError reports a transfer leg whose pair has not arrived
// within the grace window. It is a warning: the pending leg stays pending and
// keeps position totals untouched.
type UnmatchedTransferError struct {
	Group      string
	Account    string
	Instrument string
	Since      Date
}

func (e *UnmatchedTransferError) Error() string {
	return fmt.Sprintf("transfer group %q (%s in account %s) unmatched since %s",
		e.Group, e.Instrument, e.Account, e.Since)
}

// PriceUnavailableError reports that the price provider had no price for an
// instrument at the requested date. The position is still reported, with an
// unknown market value; the snapshot as a whole never fails for this.
type PriceUnavailableError struct {
	Instrument string
	On         Date
}

func (e *PriceUnavailableError) Error() string {
	return fmt.Sprintf("no price available for %s on %s", e.Instrument, e.On)
}

// NonConvergenceError reports that the performance solver exhausted its
// iteration budget without finding a root. It fails that query only.
type NonConvergenceError struct {
	Iterations int
}

func (e *NonConvergenceError) Error() string {
	return fmt.Sprintf("rate solver did not converge after %d iterations", e.Iterations)
}

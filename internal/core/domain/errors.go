package domain

import (
	"errors"
	"fmt"
)

var (
	ErrAccountNotOwned     = errors.New("account does not belong to user")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrSameAccount         = errors.New("cannot transfer to the same account")
)

// Leg names which remote balance mutation failed, so a partial transfer can
// be diagnosed from logs alone.
type Leg string

const (
	LegAccount Leg = "account"
	LegFrom    Leg = "from account"
	LegTo      Leg = "to account"
)

// BalanceUpdateError reports that a remote balance write was rejected or
// failed in transit. By the time the caller sees it, a FAILED audit row has
// already been persisted.
type BalanceUpdateError struct {
	Leg Leg
	Err error // transport cause, nil when the remote simply reported failure
}

func (e *BalanceUpdateError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to update %s balance: %v", e.Leg, e.Err)
	}
	return fmt.Sprintf("failed to update %s balance", e.Leg)
}

func (e *BalanceUpdateError) Unwrap() error { return e.Err }

// PersistenceError means the audit row itself could not be written. It is
// fatal for the operation and never retried here.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failed during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

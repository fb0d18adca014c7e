package service

import (
	"errors"
	"fmt"
)

// The four failure classes every operation can surface. Messages carry the
// relevant numbers so callers can explain a rejection without a second query.

type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

type InvalidStateError struct {
	Operation string
	Status    string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s an invoice in status %q", e.Operation, e.Status)
}

type PolicyViolationError struct {
	Reason string
}

func (e *PolicyViolationError) Error() string {
	return e.Reason
}

var ErrNumberGenerationExhausted = errors.New("invoice number generation exhausted retry attempts")

package service

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownParty      = errors.New("unknown party")
	ErrInvalidSlot       = errors.New("slot is not available")
	ErrInvalidState      = errors.New("action not allowed in the current state")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidAmount     = errors.New("amount must be greater than zero")
	ErrNoPendingRequest  = errors.New("no pending replenishment request")
	ErrUnknownMedication = errors.New("unknown medication")
	ErrMedicationExists  = errors.New("medication already exists")

	ErrAppointmentNotFound  = fmt.Errorf("%w: appointment not found", ErrUnknownParty)
	ErrPrescriptionNotFound = fmt.Errorf("%w: prescription not found", ErrUnknownParty)
)

var (
	ErrUserExists   = errors.New("user already exists")
	ErrInvalidInput = errors.New("invalid input")
)

package services

import "errors"

var (
	ErrInvalidInput           = errors.New("invalid input")
	ErrForbidden              = errors.New("forbidden")
	ErrEnrollmentInactive     = errors.New("enrollment is not active")
	ErrCreditExhausted        = errors.New("no session credits remaining")
	ErrSlotUnavailable        = errors.New("slot is no longer available")
	ErrConflict               = errors.New("conflict")
	ErrInvalidStateTransition = errors.New("invalid state transition")
)

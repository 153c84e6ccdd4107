package service

import (
	"errors"
	"fmt"
)

// 校验类错误（400）
var (
	ErrInvalidQuantity  = errors.New("cartons must be greater than zero")
	ErrInvalidBatches   = errors.New("batches must be at least 1")
	ErrEmptyAllocation  = errors.New("allocation list is empty")
	ErrInvalidStatus    = errors.New("unknown status")
	ErrInvalidDateRange = errors.New("start and end dates are required and start must not be after end")
	ErrInvalidPhone     = errors.New("invalid phone number")
	ErrInvalidInput     = errors.New("invalid input")
	ErrUnknownDataset   = errors.New("unknown export dataset")
	ErrUnknownFormat    = errors.New("unsupported export format")
)

// 冲突类错误（409）
var (
	ErrInsufficientRemaining = errors.New("allocation exceeds remaining cartons of the purchase order")
	ErrInsufficientStock     = errors.New("cartons exceed coordinator stock")
	ErrKitchenNotServed      = errors.New("sppg is not served by the coordinator")
	ErrInvalidTransition     = errors.New("invalid status transition")
	ErrInvoiceNotAllowed     = errors.New("only delivered distributions can be invoiced")
	ErrAlreadyInvoiced       = errors.New("distribution already has an invoice")
	ErrEmailTaken            = errors.New("email already registered")
	ErrArchiveUnavailable    = errors.New("document archive is not configured")
)

// 认证类错误（401/403）
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSignupDisabled     = errors.New("sign-up is disabled")
	ErrTokenRevoked       = errors.New("token has been revoked")
)

// TransitionError 非法状态流转
type TransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: cannot change status from %s to %s", e.Entity, e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// IsValidation 是否为参数校验错误
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrInvalidQuantity, ErrInvalidBatches, ErrEmptyAllocation, ErrInvalidStatus,
		ErrInvalidDateRange, ErrInvalidPhone, ErrInvalidInput, ErrUnknownDataset, ErrUnknownFormat,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsConflict 是否为业务冲突错误
func IsConflict(err error) bool {
	for _, target := range []error{
		ErrInsufficientRemaining, ErrInsufficientStock, ErrKitchenNotServed, ErrInvalidTransition,
		ErrInvoiceNotAllowed, ErrAlreadyInvoiced, ErrEmailTaken, ErrArchiveUnavailable,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

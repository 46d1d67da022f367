package utils

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var ErrorRecordNotFound = errors.New("record not found")

// ValidationError is returned for malformed or out-of-range input.
type ValidationError struct {
	Field   string
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func NewValidationError(field string, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// InsufficientStockError is returned when a decrease would take stock below zero.
// Available is the stock size at the time of the check.
type InsufficientStockError struct {
	Available decimal.Decimal
	Unit      string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Not enough products in stock. Available stock: %s %s(s).", e.Available.StringFixed(2), e.Unit)
}

// DuplicateStatusError is returned when an order already carries the requested status.
type DuplicateStatusError struct {
	Status string
}

func (e *DuplicateStatusError) Error() string {
	return fmt.Sprintf("Order already has status %s", e.Status)
}

// TerminalStateError is returned when an order is closed or cancelled.
type TerminalStateError struct {
	Status string
}

func (e *TerminalStateError) Error() string {
	return fmt.Sprintf("%s order can not obtain a new status", e.Status)
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

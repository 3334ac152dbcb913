package domain

import (
	"errors"
	"fmt"
)

var (
	ErrOrderNotFound           = errors.New("order not found")
	ErrGameStateNotFound       = errors.New("game state not found")
	ErrInsufficientTickets     = errors.New("insufficient tickets")
	ErrCollectionComplete      = errors.New("card collection already complete")
	ErrTicketConflict          = errors.New("concurrent ticket update")
	ErrGatewayUnavailable      = errors.New("payment gateway unavailable")
	ErrUnauthorized            = errors.New("unauthorized")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

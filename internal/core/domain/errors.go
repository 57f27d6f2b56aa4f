package domain

import "errors"

// Rejection errors. Callers match these with errors.Is; anything else coming
// out of the engine is an infrastructure fault and may be retried whole.
var (
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrProductNotFound   = errors.New("product not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrDuplicateRequest  = errors.New("duplicate request")
	ErrInvalidRange      = errors.New("start date is after end date")
)

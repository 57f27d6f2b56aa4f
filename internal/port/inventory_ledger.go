package port

import (
	"context"

	"github.com/rl1809/retail-store/internal/core/domain"
)

type InventoryLedger interface {
	// GetStock retrieves the stock record for a product, or
	// domain.ErrProductNotFound.
	GetStock(ctx context.Context, productID int) (*domain.StockRecord, error)

	// TryDecrement atomically decreases stock, re-checking the quantity and
	// applying the decrement as a single conditional update. Returns the new
	// quantity, or domain.ErrInsufficientStock / domain.ErrProductNotFound.
	// Concurrent callers on the same product never both succeed when only
	// one has sufficient stock.
	TryDecrement(ctx context.Context, productID, quantity int) (int, error)

	// Increment restores stock (compensation after a failed journal append,
	// or administrative restock). Returns the new quantity.
	Increment(ctx context.Context, productID, quantity int) (int, error)
}

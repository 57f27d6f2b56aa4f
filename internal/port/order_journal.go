package port

import (
	"context"
	"time"

	"github.com/rl1809/retail-store/internal/core/domain"
)

type OrderJournal interface {
	// Append persists a new order record. All-or-nothing: a record is never
	// partially written from the caller's view.
	Append(ctx context.Context, order domain.OrderRecord) error

	// FindByID looks up an order by its generated id, or
	// domain.ErrOrderNotFound.
	FindByID(ctx context.Context, orderID string) (*domain.OrderRecord, error)

	// FindByUser returns a user's orders, newest first.
	FindByUser(ctx context.Context, userID int) ([]domain.OrderRecord, error)

	// SumQuantityByProduct aggregates ordered quantities per product over the
	// closed day-granular range [from, to].
	SumQuantityByProduct(ctx context.Context, from, to time.Time) ([]domain.ProductSalesTotal, error)

	// RecordRefill journals an administrative restock so every stock
	// movement outside placement leaves an audit trail.
	RecordRefill(ctx context.Context, productID, quantity int) error
}

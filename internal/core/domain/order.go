package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusFulfilled OrderStatus = "Fulfilled"
	OrderStatusCancelled OrderStatus = "Cancelled"
)

// OrderRecord is an immutable order fact. UnitPrice is the catalog price
// captured at placement time; later price changes do not touch it.
// The placement path only ever produces OrderStatusPending; the other
// statuses belong to fulfillment workflows outside this engine.
type OrderRecord struct {
	OrderID   string
	UserID    int
	ProductID int
	Quantity  int
	UnitPrice decimal.Decimal
	PlacedAt  time.Time
	Status    OrderStatus
}

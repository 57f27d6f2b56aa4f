package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockRecord is a row of the catalog with its live stock counter.
// Quantity is only mutated through the ledger's conditional operations.
type StockRecord struct {
	ProductID   int
	Name        string
	Description string
	Price       decimal.Decimal
	Quantity    int
	UpdatedAt   time.Time
}

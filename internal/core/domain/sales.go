package domain

import "github.com/shopspring/decimal"

// ProductSalesTotal is a per-product quantity sum over a date range,
// as produced by the journal's aggregation.
type ProductSalesTotal struct {
	ProductID     int
	TotalQuantity int
}

// SalesAggregate is a derived reporting row. Revenue is computed from the
// current catalog price, not the per-order snapshot.
type SalesAggregate struct {
	ProductID     int
	ProductName   string
	TotalQuantity int
	TotalRevenue  decimal.Decimal
}

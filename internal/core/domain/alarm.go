package domain

// IntegrityAlarm reports a lasting ledger/journal inconsistency: an order
// failed to journal and the compensating re-increment also failed, so the
// ledger is short by Quantity units until an operator reconciles it.
type IntegrityAlarm struct {
	OrderID   string
	ProductID int
	Quantity  int
	Cause     error
}

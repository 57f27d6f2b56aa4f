package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rl1809/retail-store/internal/core/domain"
	"github.com/rl1809/retail-store/internal/port"
	"github.com/rl1809/retail-store/pkg/logger"
)

const (
	compensationAttempts = 3
	compensationBackoff  = 100 * time.Millisecond
	compensationTimeout  = 5 * time.Second
	resolveTimeout       = 2 * time.Second
)

// OrderService coordinates order placement across the inventory ledger and
// the order journal: conditional decrement first, journal append second,
// compensating re-increment when the append fails. It holds no locks of its
// own; serialization per product happens inside the ledger's conditional
// update, so calls for different products proceed fully in parallel.
type OrderService struct {
	ledger  port.InventoryLedger
	journal port.OrderJournal
	guard   port.IdempotencyGuard // nil disables duplicate-request checks
	alarms  port.AlarmSink
	log     *logger.Logger
}

type PlaceOrderRequest struct {
	RequestID string // optional client-supplied idempotency key
	UserID    int
	ProductID int
	Quantity  int
}

func NewOrderService(ledger port.InventoryLedger, journal port.OrderJournal, guard port.IdempotencyGuard, alarms port.AlarmSink, log *logger.Logger) *OrderService {
	return &OrderService{
		ledger:  ledger,
		journal: journal,
		guard:   guard,
		alarms:  alarms,
		log:     log,
	}
}

// PlaceOrder reserves stock and journals the sale. Rejections
// (domain.ErrInvalidQuantity, domain.ErrProductNotFound,
// domain.ErrInsufficientStock, domain.ErrDuplicateRequest) are caller
// errors; any other error is an infrastructure fault and the whole call may
// be retried, since every attempt re-validates stock atomically.
func (s *OrderService) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (string, error) {
	if req.Quantity <= 0 {
		return "", domain.ErrInvalidQuantity
	}

	reserved, err := s.reserveRequest(ctx, req)
	if err != nil {
		return "", err
	}

	// Snapshot read: supplies the price to embed in the order record and
	// detail for rejections. Availability is decided by the conditional
	// decrement below, not here.
	stock, err := s.ledger.GetStock(ctx, req.ProductID)
	if err != nil {
		s.releaseRequest(req, reserved)
		if errors.Is(err, domain.ErrProductNotFound) {
			return "", err
		}
		return "", fmt.Errorf("read stock: %w", err)
	}

	remaining, err := s.ledger.TryDecrement(ctx, req.ProductID, req.Quantity)
	if err != nil {
		s.releaseRequest(req, reserved)
		if errors.Is(err, domain.ErrInsufficientStock) || errors.Is(err, domain.ErrProductNotFound) {
			s.log.Info().
				Int("product_id", req.ProductID).
				Int("quantity", req.Quantity).
				Int("available", stock.Quantity).
				Msg("order rejected")
			return "", err
		}
		if isTimeout(err) {
			// The decrement's outcome is unknown. Never compensate on an
			// unknown outcome: re-read the ledger and leave a trail instead,
			// so stock can only err toward under-selling.
			s.logUnresolvedDecrement(req, err)
		}
		return "", fmt.Errorf("decrement stock: %w", err)
	}

	orderID := NextOrderID()
	record := domain.OrderRecord{
		OrderID:   orderID,
		UserID:    req.UserID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		UnitPrice: stock.Price,
		PlacedAt:  time.Now().UTC(),
		Status:    domain.OrderStatusPending,
	}

	if err := s.journal.Append(ctx, record); err != nil {
		if isTimeout(err) {
			// The append's outcome is unknown: the insert may have landed.
			// Confirm before compensating, or a journaled order would get
			// its reserved stock handed back.
			switch s.confirmAppend(orderID) {
			case appendLanded:
				s.log.Warn().
					Str("order_id", orderID).
					AnErr("cause", err).
					Msg("journal append timed out but landed")
				return orderID, nil
			case appendUnknown:
				s.releaseRequest(req, reserved)
				return "", fmt.Errorf("journal append: %w", err)
			case appendAbsent:
				// safe to compensate
			}
		}
		// The decrement applied but the order is not durable. The caller
		// must see failure; stock goes back via compensation.
		s.compensate(orderID, req, err)
		s.releaseRequest(req, reserved)
		return "", fmt.Errorf("journal append: %w", err)
	}

	s.log.Info().
		Str("order_id", orderID).
		Int("user_id", req.UserID).
		Int("product_id", req.ProductID).
		Int("quantity", req.Quantity).
		Int("remaining_stock", remaining).
		Msg("order placed")

	return orderID, nil
}

// Restock adds administrative stock and journals a refill record for the
// audit trail. The refill record is best-effort: the stock is already
// applied when it fails, so the miss is logged rather than unwound.
func (s *OrderService) Restock(ctx context.Context, productID, quantity int) (int, error) {
	if quantity <= 0 {
		return 0, domain.ErrInvalidQuantity
	}

	newStock, err := s.ledger.Increment(ctx, productID, quantity)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return 0, err
		}
		return 0, fmt.Errorf("restock: %w", err)
	}

	if err := s.journal.RecordRefill(ctx, productID, quantity); err != nil {
		s.log.Warn().
			Err(err).
			Int("product_id", productID).
			Int("quantity", quantity).
			Msg("failed to record refill")
	}

	s.log.Info().
		Int("product_id", productID).
		Int("quantity", quantity).
		Int("new_stock", newStock).
		Msg("stock refilled")

	return newStock, nil
}

// reserveRequest claims the client-supplied request id, when both a guard
// and an id are present. The claim outlives only successful placements;
// rejections and failures release it so the client may retry with the same
// id.
func (s *OrderService) reserveRequest(ctx context.Context, req PlaceOrderRequest) (bool, error) {
	if s.guard == nil || req.RequestID == "" {
		return false, nil
	}
	ok, err := s.guard.Reserve(ctx, req.RequestID)
	if err != nil {
		return false, fmt.Errorf("idempotency check: %w", err)
	}
	if !ok {
		return false, domain.ErrDuplicateRequest
	}
	return true, nil
}

func (s *OrderService) releaseRequest(req PlaceOrderRequest, reserved bool) {
	if !reserved {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), resolveTimeout)
	defer cancel()
	if err := s.guard.Release(ctx, req.RequestID); err != nil {
		s.log.Warn().Err(err).Str("request_id", req.RequestID).Msg("failed to release idempotency key")
	}
}

// compensate restores the reserved stock after a failed journal append,
// retrying with backoff. Exhaustion raises an integrity alarm: the ledger is
// short by req.Quantity until an operator reconciles it, which must be
// observable rather than a silent no-op.
func (s *OrderService) compensate(orderID string, req PlaceOrderRequest, cause error) {
	backoff := compensationBackoff
	var lastErr error

	for attempt := 1; attempt <= compensationAttempts; attempt++ {
		// Fresh context: the request context may already be canceled.
		ctx, cancel := context.WithTimeout(context.Background(), compensationTimeout)
		restored, err := s.ledger.Increment(ctx, req.ProductID, req.Quantity)
		cancel()

		if err == nil {
			s.log.Warn().
				Str("order_id", orderID).
				Int("product_id", req.ProductID).
				Int("quantity", req.Quantity).
				Int("restored_stock", restored).
				AnErr("cause", cause).
				Msg("journal append failed, stock restored")
			return
		}

		lastErr = err
		if errors.Is(err, domain.ErrProductNotFound) {
			break // permanent, retrying will not help
		}
		if attempt < compensationAttempts {
			time.Sleep(backoff)
			backoff *= 2
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), resolveTimeout)
	defer cancel()
	s.alarms.Raise(ctx, domain.IntegrityAlarm{
		OrderID:   orderID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Cause:     lastErr,
	})
}

type appendOutcome int

const (
	appendAbsent appendOutcome = iota
	appendLanded
	appendUnknown
)

// confirmAppend resolves a timed-out append by looking the order up on a
// fresh context. Unknown means the journal could not be consulted either;
// compensation must not run then, since a landed order would be restored
// against.
func (s *OrderService) confirmAppend(orderID string) appendOutcome {
	ctx, cancel := context.WithTimeout(context.Background(), resolveTimeout)
	defer cancel()

	_, err := s.journal.FindByID(ctx, orderID)
	switch {
	case err == nil:
		return appendLanded
	case errors.Is(err, domain.ErrOrderNotFound):
		return appendAbsent
	default:
		s.log.Warn().
			Str("order_id", orderID).
			AnErr("requery_error", err).
			Msg("append outcome unknown, skipping compensation")
		return appendUnknown
	}
}

// logUnresolvedDecrement re-reads the ledger on a fresh context after a
// timed-out decrement and records the observed quantity, giving operators
// enough to reconcile if the decrement did apply.
func (s *OrderService) logUnresolvedDecrement(req PlaceOrderRequest, cause error) {
	ctx, cancel := context.WithTimeout(context.Background(), resolveTimeout)
	defer cancel()

	ev := s.log.Warn().
		AnErr("cause", cause).
		Int("product_id", req.ProductID).
		Int("quantity", req.Quantity)

	stock, err := s.ledger.GetStock(ctx, req.ProductID)
	if err != nil {
		ev.AnErr("requery_error", err).Msg("decrement outcome unknown, requery failed")
		return
	}
	ev.Int("observed_stock", stock.Quantity).Msg("decrement outcome unknown")
}

func isTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rl1809/retail-store/internal/core/domain"
	"github.com/rl1809/retail-store/internal/port"
	"github.com/rl1809/retail-store/pkg/logger"
)

// ReportService derives sales aggregates by joining journal quantity sums
// with the ledger's catalog data. Read-only; independent of the placement
// path. Revenue uses the current catalog price, not the per-order snapshot,
// so reports over the same range shift when prices change.
type ReportService struct {
	ledger  port.InventoryLedger
	journal port.OrderJournal
	log     *logger.Logger
}

func NewReportService(ledger port.InventoryLedger, journal port.OrderJournal, log *logger.Logger) *ReportService {
	return &ReportService{
		ledger:  ledger,
		journal: journal,
		log:     log,
	}
}

// Report sums sales per product over the closed day-granular range
// [from, to]. An empty range yields an empty slice, not an error.
func (s *ReportService) Report(ctx context.Context, from, to time.Time) ([]domain.SalesAggregate, error) {
	from = startOfDay(from)
	to = startOfDay(to)
	if from.After(to) {
		return nil, domain.ErrInvalidRange
	}

	totals, err := s.journal.SumQuantityByProduct(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("aggregate orders: %w", err)
	}

	report := make([]domain.SalesAggregate, 0, len(totals))
	for _, total := range totals {
		stock, err := s.ledger.GetStock(ctx, total.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrProductNotFound) {
				// Sold before the product left the catalog; nothing to price
				// it against anymore.
				s.log.Warn().Int("product_id", total.ProductID).Msg("skipping sales for product missing from catalog")
				continue
			}
			return nil, fmt.Errorf("read product %d: %w", total.ProductID, err)
		}

		report = append(report, domain.SalesAggregate{
			ProductID:     total.ProductID,
			ProductName:   stock.Name,
			TotalQuantity: total.TotalQuantity,
			TotalRevenue:  stock.Price.Mul(decimal.NewFromInt(int64(total.TotalQuantity))),
		})
	}

	sort.Slice(report, func(i, j int) bool {
		return report[i].ProductID < report[j].ProductID
	})

	return report, nil
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

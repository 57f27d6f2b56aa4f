package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/retail-store/internal/core/domain"
	"github.com/rl1809/retail-store/pkg/logger"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func placeAt(t *testing.T, journal *mockJournal, productID, quantity int, placedAt time.Time) {
	t.Helper()
	err := journal.Append(context.Background(), domain.OrderRecord{
		OrderID:   NextOrderID(),
		UserID:    1,
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: decimal.RequireFromString("1.00"),
		PlacedAt:  placedAt,
		Status:    domain.OrderStatusPending,
	})
	require.NoError(t, err)
}

func TestReport_InvalidRange(t *testing.T) {
	svc := NewReportService(newMockLedger(), &mockJournal{}, logger.Nop())

	_, err := svc.Report(context.Background(), day("2026-02-10"), day("2026-02-09"))
	assert.ErrorIs(t, err, domain.ErrInvalidRange)
}

func TestReport_EmptyRange(t *testing.T) {
	svc := NewReportService(newMockLedger(), &mockJournal{}, logger.Nop())

	report, err := svc.Report(context.Background(), day("2026-02-01"), day("2026-02-28"))
	require.NoError(t, err)
	assert.Empty(t, report)
}

func TestReport_RevenueFromCurrentPrice(t *testing.T) {
	ledger := newMockLedger(testProduct(1, 2, "10.00"))
	journal := &mockJournal{}
	today := day("2026-02-10")
	placeAt(t, journal, 1, 3, today.Add(9*time.Hour))

	svc := NewReportService(ledger, journal, logger.Nop())

	report, err := svc.Report(context.Background(), today, today)
	require.NoError(t, err)
	require.Len(t, report, 1)

	assert.Equal(t, 1, report[0].ProductID)
	assert.Equal(t, "widget", report[0].ProductName)
	assert.Equal(t, 3, report[0].TotalQuantity)
	assert.True(t, report[0].TotalRevenue.Equal(decimal.RequireFromString("30.00")),
		"expected revenue 30.00, got %s", report[0].TotalRevenue)
}

func TestReport_ClosedRangeBoundaries(t *testing.T) {
	ledger := newMockLedger(testProduct(1, 100, "2.00"))
	journal := &mockJournal{}

	d1 := day("2026-02-10")
	d2 := day("2026-02-12")
	placeAt(t, journal, 1, 1, d1)                                  // on the start day
	placeAt(t, journal, 1, 1, d1.AddDate(0, 0, 1))                 // inside
	placeAt(t, journal, 1, 1, d2.Add(23*time.Hour+59*time.Minute)) // late on the end day
	placeAt(t, journal, 1, 1, d1.AddDate(0, 0, -1))                // before range
	placeAt(t, journal, 1, 1, d2.AddDate(0, 0, 1))                 // after range

	svc := NewReportService(ledger, journal, logger.Nop())

	report, err := svc.Report(context.Background(), d1, d2)
	require.NoError(t, err)
	require.Len(t, report, 1)
	assert.Equal(t, 3, report[0].TotalQuantity)
}

func TestReport_SkipsProductsMissingFromCatalog(t *testing.T) {
	ledger := newMockLedger(testProduct(1, 10, "5.00"))
	journal := &mockJournal{}
	today := day("2026-02-10")
	placeAt(t, journal, 1, 2, today)
	placeAt(t, journal, 42, 9, today) // no catalog entry anymore

	svc := NewReportService(ledger, journal, logger.Nop())

	report, err := svc.Report(context.Background(), today, today)
	require.NoError(t, err)
	require.Len(t, report, 1)
	assert.Equal(t, 1, report[0].ProductID)
}

func TestReport_SortedByProductID(t *testing.T) {
	ledger := newMockLedger(
		testProduct(3, 10, "1.00"),
		testProduct(1, 10, "1.00"),
		testProduct(2, 10, "1.00"),
	)
	journal := &mockJournal{}
	today := day("2026-02-10")
	placeAt(t, journal, 3, 1, today)
	placeAt(t, journal, 1, 1, today)
	placeAt(t, journal, 2, 1, today)

	svc := NewReportService(ledger, journal, logger.Nop())

	report, err := svc.Report(context.Background(), today, today)
	require.NoError(t, err)
	require.Len(t, report, 3)
	for i, agg := range report {
		assert.Equal(t, i+1, agg.ProductID)
	}
}

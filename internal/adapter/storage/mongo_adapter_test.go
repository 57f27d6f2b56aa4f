package storage

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rl1809/retail-store/internal/core/domain"
)

func getMongoDatabase(t *testing.T) *mongo.Database {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Skipf("MongoDB not available: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		t.Skipf("MongoDB not available: %v", err)
	}

	t.Cleanup(func() {
		client.Disconnect(context.Background())
	})

	return client.Database("retail_store_test")
}

func clearOrders(t *testing.T, db *mongo.Database) {
	t.Helper()
	if _, err := db.Collection(ordersCollection).DeleteMany(context.Background(), bson.M{}); err != nil {
		t.Fatalf("clear orders: %v", err)
	}
}

func testOrder(orderID string, userID, productID, quantity int, placedAt time.Time) domain.OrderRecord {
	return domain.OrderRecord{
		OrderID:   orderID,
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: decimal.RequireFromString("10.00"),
		PlacedAt:  placedAt,
		Status:    domain.OrderStatusPending,
	}
}

func TestAppendAndFindByID(t *testing.T) {
	db := getMongoDatabase(t)
	clearOrders(t, db)

	ctx := context.Background()
	adapter := NewMongoAdapter(db)

	placedAt := time.Date(2026, 2, 10, 14, 30, 0, 0, time.UTC)
	order := testOrder("ORD-test-append", 7, 1, 3, placedAt)

	if err := adapter.Append(ctx, order); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	found, err := adapter.FindByID(ctx, "ORD-test-append")
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if found.UserID != 7 || found.ProductID != 1 || found.Quantity != 3 {
		t.Errorf("unexpected record: %+v", found)
	}
	if !found.UnitPrice.Equal(order.UnitPrice) {
		t.Errorf("expected price %s, got %s", order.UnitPrice, found.UnitPrice)
	}
	if found.Status != domain.OrderStatusPending {
		t.Errorf("expected Pending, got %s", found.Status)
	}
	if !found.PlacedAt.Equal(placedAt) {
		t.Errorf("expected placed at %v, got %v", placedAt, found.PlacedAt)
	}
}

func TestFindByID_NotFound(t *testing.T) {
	db := getMongoDatabase(t)
	clearOrders(t, db)

	adapter := NewMongoAdapter(db)

	_, err := adapter.FindByID(context.Background(), "ORD-missing")
	if !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got: %v", err)
	}
}

func TestFindByUser_NewestFirst(t *testing.T) {
	db := getMongoDatabase(t)
	clearOrders(t, db)

	ctx := context.Background()
	adapter := NewMongoAdapter(db)

	base := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	adapter.Append(ctx, testOrder("ORD-old", 7, 1, 1, base))
	adapter.Append(ctx, testOrder("ORD-new", 7, 1, 1, base.Add(2*time.Hour)))
	adapter.Append(ctx, testOrder("ORD-other-user", 8, 1, 1, base.Add(time.Hour)))

	orders, err := adapter.FindByUser(ctx, 7)
	if err != nil {
		t.Fatalf("FindByUser failed: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(orders))
	}
	if orders[0].OrderID != "ORD-new" || orders[1].OrderID != "ORD-old" {
		t.Errorf("expected newest first, got %s then %s", orders[0].OrderID, orders[1].OrderID)
	}
}

func TestSumQuantityByProduct_ClosedRange(t *testing.T) {
	db := getMongoDatabase(t)
	clearOrders(t, db)

	ctx := context.Background()
	adapter := NewMongoAdapter(db)

	d1 := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2026, 2, 12, 0, 0, 0, 0, time.UTC)

	adapter.Append(ctx, testOrder("ORD-start", 1, 1, 2, d1))
	adapter.Append(ctx, testOrder("ORD-mid", 1, 1, 3, d1.AddDate(0, 0, 1)))
	adapter.Append(ctx, testOrder("ORD-end-late", 1, 1, 5, d2.Add(23*time.Hour)))
	adapter.Append(ctx, testOrder("ORD-before", 1, 1, 7, d1.AddDate(0, 0, -1)))
	adapter.Append(ctx, testOrder("ORD-after", 1, 1, 11, d2.AddDate(0, 0, 1)))
	adapter.Append(ctx, testOrder("ORD-other-product", 1, 2, 4, d1))

	totals, err := adapter.SumQuantityByProduct(ctx, d1, d2)
	if err != nil {
		t.Fatalf("SumQuantityByProduct failed: %v", err)
	}

	byProduct := make(map[int]int)
	for _, total := range totals {
		byProduct[total.ProductID] = total.TotalQuantity
	}

	// Both boundary days count, the days outside do not.
	if byProduct[1] != 10 {
		t.Errorf("expected quantity 10 for product 1, got %d", byProduct[1])
	}
	if byProduct[2] != 4 {
		t.Errorf("expected quantity 4 for product 2, got %d", byProduct[2])
	}
}

func TestRecordRefill(t *testing.T) {
	db := getMongoDatabase(t)
	if _, err := db.Collection(refillsCollection).DeleteMany(context.Background(), bson.M{}); err != nil {
		t.Fatalf("clear refills: %v", err)
	}

	ctx := context.Background()
	adapter := NewMongoAdapter(db)

	if err := adapter.RecordRefill(ctx, 42, 100); err != nil {
		t.Fatalf("RecordRefill failed: %v", err)
	}

	var doc bson.M
	err := db.Collection(refillsCollection).FindOne(ctx, bson.M{"product_id": 42}).Decode(&doc)
	if err != nil {
		t.Fatalf("refill document not found: %v", err)
	}
	if qty, _ := doc["quantity"].(int32); qty != 100 {
		t.Errorf("expected quantity 100, got %v", doc["quantity"])
	}
	if _, ok := doc["order_date"]; !ok {
		t.Error("refill document missing order_date")
	}
}

func TestSumQuantityByProduct_Empty(t *testing.T) {
	db := getMongoDatabase(t)
	clearOrders(t, db)

	adapter := NewMongoAdapter(db)

	from := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	totals, err := adapter.SumQuantityByProduct(context.Background(), from, from)
	if err != nil {
		t.Fatalf("SumQuantityByProduct failed: %v", err)
	}
	if len(totals) != 0 {
		t.Errorf("expected no totals, got %d", len(totals))
	}
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rl1809/retail-store/internal/core/domain"
)

const (
	ordersCollection  = "orders"
	refillsCollection = "refill_orders"
)

// MongoAdapter is the order journal on MongoDB. Appends are single
// InsertOne calls, so a record is either fully written or not at all.
type MongoAdapter struct {
	orders  *mongo.Collection
	refills *mongo.Collection
}

func NewMongoAdapter(db *mongo.Database) *MongoAdapter {
	return &MongoAdapter{
		orders:  db.Collection(ordersCollection),
		refills: db.Collection(refillsCollection),
	}
}

// orderDoc is the persisted shape. The price snapshot is stored as a string
// to keep decimal exactness through BSON.
type orderDoc struct {
	OrderID   string    `bson:"order_id"`
	UserID    int       `bson:"user_id"`
	ProductID int       `bson:"product_id"`
	Quantity  int       `bson:"quantity"`
	UnitPrice string    `bson:"unit_price"`
	OrderDate time.Time `bson:"order_date"`
	Status    string    `bson:"status"`
}

func (m *MongoAdapter) Append(ctx context.Context, order domain.OrderRecord) error {
	doc := orderDoc{
		OrderID:   order.OrderID,
		UserID:    order.UserID,
		ProductID: order.ProductID,
		Quantity:  order.Quantity,
		UnitPrice: order.UnitPrice.String(),
		OrderDate: order.PlacedAt,
		Status:    string(order.Status),
	}
	if _, err := m.orders.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (m *MongoAdapter) FindByID(ctx context.Context, orderID string) (*domain.OrderRecord, error) {
	var doc orderDoc
	err := m.orders.FindOne(ctx, bson.M{"order_id": orderID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}
	return docToRecord(doc)
}

func (m *MongoAdapter) FindByUser(ctx context.Context, userID int) ([]domain.OrderRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "order_date", Value: -1}})
	cursor, err := m.orders.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find orders: %w", err)
	}

	var docs []orderDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}

	records := make([]domain.OrderRecord, 0, len(docs))
	for _, doc := range docs {
		rec, err := docToRecord(doc)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, nil
}

// SumQuantityByProduct groups ordered quantities per product over the closed
// day-granular range [from, to]. The upper bound is widened to the start of
// the next day and matched exclusively, so every order timestamped on `to`
// counts.
func (m *MongoAdapter) SumQuantityByProduct(ctx context.Context, from, to time.Time) ([]domain.ProductSalesTotal, error) {
	end := to.AddDate(0, 0, 1)

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"order_date": bson.M{"$gte": from, "$lt": end},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":            "$product_id",
			"total_quantity": bson.M{"$sum": "$quantity"},
		}}},
	}

	cursor, err := m.orders.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate orders: %w", err)
	}

	var rows []struct {
		ProductID     int `bson:"_id"`
		TotalQuantity int `bson:"total_quantity"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode aggregation: %w", err)
	}

	totals := make([]domain.ProductSalesTotal, 0, len(rows))
	for _, row := range rows {
		totals = append(totals, domain.ProductSalesTotal{
			ProductID:     row.ProductID,
			TotalQuantity: row.TotalQuantity,
		})
	}
	return totals, nil
}

func (m *MongoAdapter) RecordRefill(ctx context.Context, productID, quantity int) error {
	doc := bson.M{
		"product_id": productID,
		"quantity":   quantity,
		"order_date": time.Now().UTC(),
		"status":     string(domain.OrderStatusPending),
	}
	if _, err := m.refills.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert refill order: %w", err)
	}
	return nil
}

func docToRecord(doc orderDoc) (*domain.OrderRecord, error) {
	price, err := decimal.NewFromString(doc.UnitPrice)
	if err != nil {
		return nil, fmt.Errorf("corrupt unit price on order %s: %w", doc.OrderID, err)
	}
	return &domain.OrderRecord{
		OrderID:   doc.OrderID,
		UserID:    doc.UserID,
		ProductID: doc.ProductID,
		Quantity:  doc.Quantity,
		UnitPrice: price,
		PlacedAt:  doc.OrderDate,
		Status:    domain.OrderStatus(doc.Status),
	}, nil
}

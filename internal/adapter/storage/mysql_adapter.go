package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rl1809/retail-store/internal/core/domain"
)

// MySQLAdapter is the inventory ledger on MySQL. The stock counter is only
// touched through single conditional UPDATEs, so the row-level check and the
// mutation are one atomic statement.
type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

func (m *MySQLAdapter) GetStock(ctx context.Context, productID int) (*domain.StockRecord, error) {
	var rec domain.StockRecord
	err := m.db.QueryRowContext(ctx, `
		SELECT product_id, name, description, price, stock, updated_at
		FROM products WHERE product_id = ?`, productID,
	).Scan(&rec.ProductID, &rec.Name, &rec.Description, &rec.Price, &rec.Quantity, &rec.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query product: %w", err)
	}
	return &rec, nil
}

// TryDecrement applies the check-and-decrement as one conditional UPDATE.
// LAST_INSERT_ID(expr) echoes the new counter back in the statement's own
// result, so callers never see an error once the decrement has applied: an
// error from here always means the stock is untouched.
func (m *MySQLAdapter) TryDecrement(ctx context.Context, productID, quantity int) (int, error) {
	result, err := m.db.ExecContext(ctx, `
		UPDATE products
		SET stock = LAST_INSERT_ID(stock - ?), updated_at = NOW()
		WHERE product_id = ? AND stock >= ?`,
		quantity, productID, quantity,
	)
	if err != nil {
		return 0, fmt.Errorf("decrement stock: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		// Either the product is gone or the stock check failed; a follow-up
		// existence check tells the two apart.
		return 0, m.classifyMiss(ctx, productID)
	}

	newStock, _ := result.LastInsertId()
	return int(newStock), nil
}

func (m *MySQLAdapter) Increment(ctx context.Context, productID, quantity int) (int, error) {
	result, err := m.db.ExecContext(ctx, `
		UPDATE products
		SET stock = LAST_INSERT_ID(stock + ?), updated_at = NOW()
		WHERE product_id = ?`,
		quantity, productID,
	)
	if err != nil {
		return 0, fmt.Errorf("increment stock: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return 0, domain.ErrProductNotFound
	}

	newStock, _ := result.LastInsertId()
	return int(newStock), nil
}

func (m *MySQLAdapter) classifyMiss(ctx context.Context, productID int) error {
	var exists int
	err := m.db.QueryRowContext(ctx, `
		SELECT 1 FROM products WHERE product_id = ?`, productID,
	).Scan(&exists)

	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrProductNotFound
	}
	if err != nil {
		return fmt.Errorf("check product: %w", err)
	}
	return domain.ErrInsufficientStock
}

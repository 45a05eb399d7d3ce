package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/stockbook/internal/inventory/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, level *domain.StockLevel) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO stock_levels (product_id, available_qty, min_qty, updated_at)
		 VALUES (?, ?, ?, ?)`,
		level.ProductID,
		level.AvailableQty,
		level.MinQty,
		level.UpdatedAt,
	).Error
}

func (r *repo) FindByProductID(ctx context.Context, db *gorm.DB, productID snowflake.ID) (*domain.StockLevel, error) {
	return findLevel(ctx, db, productID, false)
}

func (r *repo) FindForUpdate(ctx context.Context, db *gorm.DB, productID snowflake.ID) (*domain.StockLevel, error) {
	return findLevel(ctx, db, productID, true)
}

func findLevel(ctx context.Context, db *gorm.DB, productID snowflake.ID, forUpdate bool) (*domain.StockLevel, error) {
	var level domain.StockLevel
	query := `SELECT product_id, available_qty, min_qty, updated_at
	 FROM stock_levels
	 WHERE product_id = ?
	 LIMIT 1`
	if forUpdate && db.Dialector.Name() != "sqlite" {
		query += " FOR UPDATE"
	}
	err := db.WithContext(ctx).Raw(query, productID).Scan(&level).Error
	if err != nil {
		return nil, err
	}
	if level.ProductID == 0 {
		return nil, nil
	}
	return &level, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, level *domain.StockLevel) error {
	if level == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE stock_levels
		 SET available_qty = ?, min_qty = ?, updated_at = ?
		 WHERE product_id = ?`,
		level.AvailableQty,
		level.MinQty,
		level.UpdatedAt,
		level.ProductID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, productID snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM stock_levels WHERE product_id = ?`, productID).Error
}

func (r *repo) ListWithProducts(ctx context.Context, db *gorm.DB, lowOnly bool) ([]domain.ProductStock, error) {
	query := `SELECT p.id AS product_id, p.sku, p.name, p.category, s.available_qty, s.min_qty
	 FROM stock_levels s
	 JOIN products p ON p.id = s.product_id`
	if lowOnly {
		query += ` WHERE s.available_qty <= s.min_qty`
	}
	query += ` ORDER BY p.name ASC, p.id ASC`

	var rows []domain.ProductStock
	if err := db.WithContext(ctx).Raw(query).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) Summary(ctx context.Context, db *gorm.DB) (domain.Summary, error) {
	var summary domain.Summary
	err := db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(available_qty), 0) AS total_stock,
		        COALESCE(SUM(CASE WHEN available_qty <= min_qty THEN 1 ELSE 0 END), 0) AS low_stock_count
		 FROM stock_levels`,
	).Scan(&summary).Error
	return summary, err
}

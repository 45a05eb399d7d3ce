package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/stockbook/internal/product/domain"
	"github.com/smallbiznis/stockbook/pkg/db/option"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const listingColumns = `p.id, p.sku, p.name, p.description, p.category, p.category_key, p.hsn_code,
	p.unit_price, p.cost_price, p.gst_rate, p.metadata, p.created_at, p.updated_at,
	COALESCE(s.available_qty, 0) AS available_qty, COALESCE(s.min_qty, 0) AS min_qty`

func (r *repo) Create(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO products (id, sku, name, description, category, category_key, hsn_code,
			unit_price, cost_price, gst_rate, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		product.ID,
		product.SKU,
		product.Name,
		product.Description,
		product.Category,
		product.CategoryKey,
		product.HSNCode,
		product.UnitPrice,
		product.CostPrice,
		product.GSTRate,
		product.Metadata,
		product.CreatedAt,
		product.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Product, error) {
	var p domain.Product
	err := db.WithContext(ctx).Raw(
		`SELECT id, sku, name, description, category, category_key, hsn_code,
			unit_price, cost_price, gst_rate, metadata, created_at, updated_at
		 FROM products WHERE id = ?`,
		id,
	).Scan(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}

func (r *repo) FindByIDs(ctx context.Context, db *gorm.DB, ids []snowflake.ID) ([]domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []domain.Product
	err := db.WithContext(ctx).Raw(
		`SELECT id, sku, name, description, category, category_key, hsn_code,
			unit_price, cost_price, gst_rate, metadata, created_at, updated_at
		 FROM products WHERE id IN ?`,
		ids,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) FindListingByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Listing, error) {
	var item domain.Listing
	err := db.WithContext(ctx).Raw(
		`SELECT `+listingColumns+`
		 FROM products p LEFT JOIN stock_levels s ON s.product_id = p.id
		 WHERE p.id = ?`,
		id,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.Listing, error) {
	var items []domain.Listing
	stmt := db.WithContext(ctx).
		Table("products AS p").
		Select(listingColumns).
		Joins("LEFT JOIN stock_levels s ON s.product_id = p.id")

	if filter.Name != "" {
		stmt = stmt.Where("LOWER(p.name) LIKE ?", "%"+filter.Name+"%")
	}
	if filter.CategoryKey != "" {
		stmt = stmt.Where("p.category_key = ?", filter.CategoryKey)
	}

	stmt = option.WithSortBy(option.WithQuerySortBy(filter.SortBy, filter.OrderBy, map[string]bool{
		"created_at": true,
		"name":       true,
		"sku":        true,
		"unit_price": true,
	})).Apply(stmt)

	if err := stmt.Scan(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	if product == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE products
		 SET sku = ?, name = ?, description = ?, category = ?, category_key = ?, hsn_code = ?,
		     unit_price = ?, cost_price = ?, gst_rate = ?, metadata = ?, updated_at = ?
		 WHERE id = ?`,
		product.SKU,
		product.Name,
		product.Description,
		product.Category,
		product.CategoryKey,
		product.HSNCode,
		product.UnitPrice,
		product.CostPrice,
		product.GSTRate,
		product.Metadata,
		product.UpdatedAt,
		product.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM products WHERE id = ?`, id).Error
}

func (r *repo) CountByCategory(ctx context.Context, db *gorm.DB) ([]domain.CategoryCount, error) {
	var rows []domain.CategoryCount
	err := db.WithContext(ctx).Raw(
		`SELECT MIN(category) AS category, category_key, COUNT(*) AS count
		 FROM products
		 GROUP BY category_key
		 ORDER BY count DESC, category_key ASC`,
	).Scan(&rows).Error
	return rows, err
}

func (r *repo) Count(ctx context.Context, db *gorm.DB) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(`SELECT COUNT(*) FROM products`).Scan(&count).Error
	return count, err
}

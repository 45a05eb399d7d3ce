package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/stockbook/internal/order/domain"
	"github.com/smallbiznis/stockbook/pkg/db/option"
	"github.com/smallbiznis/stockbook/pkg/db/pagination"
	"gorm.io/gorm"
)

const orderColumns = `id, order_number, order_day, sequence, order_type, status, payment_status, payment_method,
	customer_id, supplier_id, party_name, party_email, party_phone, party_address, party_gstin, party_state_code,
	seller_state_code, supply_type, subtotal, tax_amount, cgst, sgst, igst, grand_total, item_count,
	order_date, created_at, updated_at`

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) NextSequence(ctx context.Context, db *gorm.DB, day string) (int64, error) {
	var next int64
	err := db.WithContext(ctx).Raw(
		`SELECT COALESCE(MAX(sequence), 0) + 1 FROM orders WHERE order_day = ?`,
		day,
	).Scan(&next).Error
	if err != nil {
		return 0, err
	}
	return next, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, order *domain.Order) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO orders (`+orderColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID,
		order.OrderNumber,
		order.OrderDay,
		order.Sequence,
		order.Type,
		order.Status,
		order.PaymentStatus,
		order.PaymentMethod,
		order.CustomerID,
		order.SupplierID,
		order.PartyName,
		order.PartyEmail,
		order.PartyPhone,
		order.PartyAddress,
		order.PartyGSTIN,
		order.PartyStateCode,
		order.SellerStateCode,
		order.SupplyType,
		order.Subtotal,
		order.TaxAmount,
		order.CGST,
		order.SGST,
		order.IGST,
		order.GrandTotal,
		order.ItemCount,
		order.OrderDate,
		order.CreatedAt,
		order.UpdatedAt,
	).Error
}

func (r *repo) InsertItem(ctx context.Context, db *gorm.DB, item *domain.OrderItem) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO order_items (
			id, order_id, product_id, sku, name, hsn_code, quantity, unit_price, gst_rate,
			base_amount, tax_amount, total_amount, stock_debited, stock_credited, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID,
		item.OrderID,
		item.ProductID,
		item.SKU,
		item.Name,
		item.HSNCode,
		item.Quantity,
		item.UnitPrice,
		item.GSTRate,
		item.BaseAmount,
		item.TaxAmount,
		item.TotalAmount,
		item.StockDebited,
		item.StockCredited,
		item.CreatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID, forUpdate bool) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = ?`
	if forUpdate && db.Dialector.Name() != "sqlite" {
		query += " FOR UPDATE"
	}

	var order domain.Order
	if err := db.WithContext(ctx).Raw(query, id).Scan(&order).Error; err != nil {
		return nil, err
	}
	if order.ID == 0 {
		return nil, nil
	}
	return &order, nil
}

func (r *repo) FindItems(ctx context.Context, db *gorm.DB, orderID snowflake.ID) ([]domain.OrderItem, error) {
	var items []domain.OrderItem
	err := db.WithContext(ctx).Raw(
		`SELECT id, order_id, product_id, sku, name, hsn_code, quantity, unit_price, gst_rate,
			base_amount, tax_amount, total_amount, stock_debited, stock_credited, created_at
		 FROM order_items
		 WHERE order_id = ?
		 ORDER BY id ASC`,
		orderID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status domain.Status, updatedAt time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE orders SET status = ?, updated_at = ? WHERE id = ?`,
		status, updatedAt, id,
	).Error
}

func (r *repo) UpdatePayment(ctx context.Context, db *gorm.DB, id snowflake.ID, status domain.PaymentStatus, method *string, updatedAt time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE orders SET payment_status = ?, payment_method = ?, updated_at = ? WHERE id = ?`,
		status, method, updatedAt, id,
	).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter, page pagination.Pagination) ([]*domain.Order, error) {
	var orders []*domain.Order
	stmt := db.WithContext(ctx).Model(&domain.Order{})
	if filter.Type != "" {
		stmt = stmt.Where("order_type = ?", filter.Type)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	if err := stmt.Order("created_at desc, id desc").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

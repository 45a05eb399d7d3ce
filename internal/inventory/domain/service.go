package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type StockResponse struct {
	ProductID    string    `json:"product_id"`
	AvailableQty int64     `json:"available_qty"`
	MinQty       int64     `json:"min_qty"`
	IsLow        bool      `json:"is_low"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type SetLevelsRequest struct {
	ProductID    string `json:"-"`
	AvailableQty *int64 `json:"available_qty"`
	MinQty       *int64 `json:"min_qty"`
}

// AdjustRequest moves stock by Delta. Positive values credit, negative
// values debit and never go below zero.
type AdjustRequest struct {
	ProductID string `json:"-"`
	Delta     int64  `json:"delta"`
	Reason    string `json:"reason"`
}

type LowStockAlert struct {
	ProductID    string `json:"product_id"`
	SKU          string `json:"sku"`
	Name         string `json:"name"`
	Category     string `json:"category"`
	AvailableQty int64  `json:"available_qty"`
	MinQty       int64  `json:"min_qty"`
	Shortage     int64  `json:"shortage"`
}

type Summary struct {
	TotalStock    int64 `json:"total_stock"`
	LowStockCount int64 `json:"low_stock_count"`
}

type Service interface {
	Get(ctx context.Context, productID string) (*StockResponse, error)
	SetLevels(ctx context.Context, req SetLevelsRequest) (*StockResponse, error)
	Adjust(ctx context.Context, req AdjustRequest) (*StockResponse, error)
	LowStockAlerts(ctx context.Context) ([]LowStockAlert, error)
	Optimization(ctx context.Context) (Optimization, error)
	Summary(ctx context.Context) (Summary, error)
}

// Ledger applies stock movements inside a caller owned transaction.
type Ledger interface {
	Open(ctx context.Context, tx *gorm.DB, productID snowflake.ID, available, minQty int64) error
	Remove(ctx context.Context, tx *gorm.DB, productID snowflake.ID) error
	Debit(ctx context.Context, tx *gorm.DB, productID snowflake.ID, qty int64) (Movement, error)
	Credit(ctx context.Context, tx *gorm.DB, productID snowflake.ID, qty int64) (Movement, error)
	// NotifyLow publishes stock.low for movements that crossed the minimum.
	// Call it after the transaction commits.
	NotifyLow(ctx context.Context, movements []Movement)
}

var (
	ErrInvalidProductID = errors.New("invalid_product_id")
	ErrInvalidQuantity  = errors.New("invalid_quantity")
	ErrInvalidMinQty    = errors.New("invalid_min_qty")
	ErrInvalidDelta     = errors.New("invalid_delta")
	ErrNotFound         = errors.New("not_found")
)

package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	Delete(ctx context.Context, id string) error
	CategoryChart(ctx context.Context) ([]CategoryCount, error)
	Count(ctx context.Context) (int64, error)
}

type ListRequest struct {
	Name     string
	Category string
	SortBy   string
	OrderBy  string
}

type CreateRequest struct {
	SKU          string           `json:"sku"`
	Name         string           `json:"name"`
	Description  *string          `json:"description"`
	Category     string           `json:"category"`
	HSNCode      string           `json:"hsn_code"`
	UnitPrice    decimal.Decimal  `json:"unit_price"`
	CostPrice    *decimal.Decimal `json:"cost_price"`
	GSTRate      *decimal.Decimal `json:"gst_rate"`
	AvailableQty int64            `json:"available_qty"`
	MinQty       *int64           `json:"min_qty"`
	Metadata     map[string]any   `json:"metadata"`
}

type UpdateRequest struct {
	ID          string           `json:"-"`
	SKU         *string          `json:"sku"`
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Category    *string          `json:"category"`
	HSNCode     *string          `json:"hsn_code"`
	UnitPrice   *decimal.Decimal `json:"unit_price"`
	CostPrice   *decimal.Decimal `json:"cost_price"`
	GSTRate     *decimal.Decimal `json:"gst_rate"`
	Metadata    map[string]any   `json:"metadata"`
}

type Response struct {
	ID           string          `json:"id"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	Description  *string         `json:"description,omitempty"`
	Category     string          `json:"category"`
	CategoryKey  string          `json:"category_key"`
	HSNCode      string          `json:"hsn_code"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	GSTRate      decimal.Decimal `json:"gst_rate"`
	AvailableQty int64           `json:"available_qty"`
	MinQty       int64           `json:"min_qty"`
	IsLowStock   bool            `json:"is_low_stock"`
	Metadata     map[string]any  `json:"metadata,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// DefaultGSTRate applies when a product is created without a rate.
var DefaultGSTRate = decimal.NewFromInt(18)

var (
	ErrInvalidSKU       = errors.New("invalid_sku")
	ErrInvalidName      = errors.New("invalid_name")
	ErrInvalidCategory  = errors.New("invalid_category")
	ErrInvalidUnitPrice = errors.New("invalid_unit_price")
	ErrInvalidCostPrice = errors.New("invalid_cost_price")
	ErrInvalidGSTRate   = errors.New("invalid_gst_rate")
	ErrInvalidQuantity  = errors.New("invalid_available_qty")
	ErrInvalidMinQty    = errors.New("invalid_min_qty")
	ErrDuplicateSKU     = errors.New("duplicate_sku")
	ErrNotFound         = errors.New("not_found")
	ErrInvalidID        = errors.New("invalid_id")
)

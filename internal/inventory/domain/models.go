package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// StockLevel is the stock ledger row of one product.
type StockLevel struct {
	ProductID    snowflake.ID `gorm:"primaryKey;autoIncrement:false" json:"product_id"`
	AvailableQty int64        `gorm:"not null;default:0" json:"available_qty"`
	MinQty       int64        `gorm:"not null;default:0" json:"min_qty"`
	UpdatedAt    time.Time    `gorm:"not null" json:"updated_at"`
}

func (StockLevel) TableName() string { return "stock_levels" }

// IsLow reports whether the level is at or below its minimum.
func (s StockLevel) IsLow() bool {
	return s.AvailableQty <= s.MinQty
}

// ProductStock joins a stock level with the product it belongs to.
type ProductStock struct {
	ProductID    snowflake.ID
	SKU          string
	Name         string
	Category     string
	AvailableQty int64
	MinQty       int64
}

// Movement describes one change applied to a stock level.
type Movement struct {
	ProductID snowflake.ID
	Before    int64
	After     int64
	Applied   int64
	MinQty    int64
	WasLow    bool
}

// CrossedLow reports whether the movement left the level at or below its
// minimum while it was above it before.
func (m Movement) CrossedLow() bool {
	return !m.WasLow && m.After <= m.MinQty
}

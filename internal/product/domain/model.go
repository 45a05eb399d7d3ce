package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Product struct {
	ID          snowflake.ID      `json:"id" gorm:"primaryKey;autoIncrement:false"`
	SKU         string            `json:"sku" gorm:"type:varchar(64);not null;uniqueIndex:ux_products_sku"`
	Name        string            `json:"name" gorm:"type:text;not null"`
	Description *string           `json:"description,omitempty" gorm:"type:text"`
	Category    string            `json:"category" gorm:"type:text;not null"`
	CategoryKey string            `json:"category_key" gorm:"type:varchar(128);not null;index"`
	HSNCode     string            `json:"hsn_code" gorm:"type:text"`
	UnitPrice   decimal.Decimal   `json:"unit_price" gorm:"type:numeric(14,2);not null"`
	CostPrice   decimal.Decimal   `json:"cost_price" gorm:"type:numeric(14,2);not null"`
	GSTRate     decimal.Decimal   `json:"gst_rate" gorm:"type:numeric(5,2);not null"`
	Metadata    datatypes.JSONMap `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"created_at" gorm:"not null"`
	UpdatedAt   time.Time         `json:"updated_at" gorm:"not null"`
}

func (Product) TableName() string { return "products" }

// Listing is a product joined with its stock level.
type Listing struct {
	Product
	AvailableQty int64
	MinQty       int64
}

type CategoryCount struct {
	Category    string `json:"category"`
	CategoryKey string `json:"category_key"`
	Count       int64  `json:"count"`
}

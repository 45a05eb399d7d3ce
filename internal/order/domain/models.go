package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Type string

const (
	TypeSale     Type = "sale"
	TypePurchase Type = "purchase"
)

// ParseType accepts the legacy "sales" spelling.
func ParseType(raw string) (Type, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "sale", "sales":
		return TypeSale, true
	case "purchase":
		return TypePurchase, true
	}
	return "", false
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func ParseStatus(raw string) (Status, bool) {
	switch s := Status(strings.ToLower(strings.TrimSpace(raw))); s {
	case StatusPending, StatusCompleted, StatusCancelled:
		return s, true
	}
	return "", false
}

// CanTransition reports whether an order may move from s to next. Only
// pending orders change status.
func (s Status) CanTransition(next Status) bool {
	return s == StatusPending && (next == StatusCompleted || next == StatusCancelled)
}

type PaymentStatus string

const (
	PaymentUnpaid  PaymentStatus = "unpaid"
	PaymentPartial PaymentStatus = "partial"
	PaymentPaid    PaymentStatus = "paid"
)

func ParsePaymentStatus(raw string) (PaymentStatus, bool) {
	switch s := PaymentStatus(strings.ToLower(strings.TrimSpace(raw))); s {
	case PaymentUnpaid, PaymentPartial, PaymentPaid:
		return s, true
	}
	return "", false
}

type Order struct {
	ID              snowflake.ID    `json:"id" gorm:"primaryKey;autoIncrement:false"`
	OrderNumber     string          `json:"order_number" gorm:"type:varchar(32);not null;uniqueIndex:ux_orders_number"`
	OrderDay        string          `json:"-" gorm:"type:varchar(8);not null;index"`
	Sequence        int64           `json:"-" gorm:"not null"`
	Type            Type            `json:"order_type" gorm:"column:order_type;type:varchar(16);not null;index"`
	Status          Status          `json:"status" gorm:"type:varchar(16);not null;index"`
	PaymentStatus   PaymentStatus   `json:"payment_status" gorm:"type:varchar(16);not null"`
	PaymentMethod   *string         `json:"payment_method,omitempty" gorm:"type:text"`
	CustomerID      *snowflake.ID   `json:"customer_id,omitempty" gorm:"index"`
	SupplierID      *snowflake.ID   `json:"supplier_id,omitempty" gorm:"index"`
	PartyName       string          `json:"party_name,omitempty" gorm:"type:text"`
	PartyEmail      string          `json:"party_email,omitempty" gorm:"type:text"`
	PartyPhone      string          `json:"party_phone,omitempty" gorm:"type:text"`
	PartyAddress    string          `json:"party_address,omitempty" gorm:"type:text"`
	PartyGSTIN      string          `json:"party_gstin,omitempty" gorm:"column:party_gstin;type:text"`
	PartyStateCode  string          `json:"party_state_code,omitempty" gorm:"type:varchar(2)"`
	SellerStateCode string          `json:"seller_state_code" gorm:"type:varchar(2);not null"`
	SupplyType      string          `json:"supply_type" gorm:"type:varchar(16);not null"`
	Subtotal        decimal.Decimal `json:"subtotal" gorm:"type:numeric(18,6);not null"`
	TaxAmount       decimal.Decimal `json:"gst_amount" gorm:"type:numeric(18,6);not null"`
	CGST            decimal.Decimal `json:"cgst" gorm:"column:cgst;type:numeric(18,6);not null"`
	SGST            decimal.Decimal `json:"sgst" gorm:"column:sgst;type:numeric(18,6);not null"`
	IGST            decimal.Decimal `json:"igst" gorm:"column:igst;type:numeric(18,6);not null"`
	GrandTotal      decimal.Decimal `json:"total_amount" gorm:"type:numeric(18,6);not null"`
	ItemCount       int             `json:"item_count" gorm:"not null"`
	OrderDate       time.Time       `json:"order_date" gorm:"not null"`
	CreatedAt       time.Time       `json:"created_at" gorm:"not null;index"`
	UpdatedAt       time.Time       `json:"updated_at" gorm:"not null"`

	Items []OrderItem `json:"items,omitempty" gorm:"-"`
}

func (Order) TableName() string { return "orders" }

type OrderItem struct {
	ID          snowflake.ID    `json:"id" gorm:"primaryKey;autoIncrement:false"`
	OrderID     snowflake.ID    `json:"order_id" gorm:"not null;index"`
	ProductID   snowflake.ID    `json:"product_id" gorm:"not null;index"`
	SKU         string          `json:"sku" gorm:"type:text;not null"`
	Name        string          `json:"name" gorm:"type:text;not null"`
	HSNCode     string          `json:"hsn_code,omitempty" gorm:"type:text"`
	Quantity    int64           `json:"quantity" gorm:"not null"`
	UnitPrice   decimal.Decimal `json:"unit_price" gorm:"type:numeric(18,6);not null"`
	GSTRate     decimal.Decimal `json:"gst_rate" gorm:"type:numeric(5,2);not null"`
	BaseAmount  decimal.Decimal `json:"base_amount" gorm:"type:numeric(18,6);not null"`
	TaxAmount   decimal.Decimal `json:"gst_amount" gorm:"type:numeric(18,6);not null"`
	TotalAmount decimal.Decimal `json:"total_amount" gorm:"type:numeric(18,6);not null"`
	// StockDebited is what a sale actually removed after flooring at zero.
	StockDebited  int64     `json:"stock_debited" gorm:"not null"`
	StockCredited int64     `json:"stock_credited" gorm:"not null"`
	CreatedAt     time.Time `json:"created_at" gorm:"not null"`
}

func (OrderItem) TableName() string { return "order_items" }

package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/stockbook/pkg/db/pagination"
)

type CreateOrderItem struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
	// UnitPrice overrides the catalog price when set.
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
}

type CreateOrderRequest struct {
	OrderType     string            `json:"order_type"`
	CustomerID    string            `json:"customer_id"`
	SupplierID    string            `json:"supplier_id"`
	PartyName     string            `json:"customer_name"`
	PartyEmail    string            `json:"customer_email"`
	PartyPhone    string            `json:"customer_phone"`
	PartyAddress  string            `json:"customer_address"`
	PartyGSTIN    string            `json:"customer_gstin"`
	PaymentMethod string            `json:"payment_method"`
	Items         []CreateOrderItem `json:"items"`

	IdempotencyKey string `json:"-"`
}

type UpdateStatusRequest struct {
	ID     string `json:"-"`
	Status string `json:"status"`
}

type UpdatePaymentRequest struct {
	ID            string  `json:"-"`
	PaymentStatus string  `json:"payment_status"`
	PaymentMethod *string `json:"payment_method"`
}

type ListOrderRequest struct {
	pagination.Pagination
	Type   string
	Status string
}

type ListOrderResponse struct {
	pagination.PageInfo
	Orders []Order `json:"orders"`
}

type Service interface {
	Create(ctx context.Context, req CreateOrderRequest) (Order, error)
	Get(ctx context.Context, id string) (Order, error)
	List(ctx context.Context, req ListOrderRequest) (ListOrderResponse, error)
	UpdateStatus(ctx context.Context, req UpdateStatusRequest) (Order, error)
	UpdatePayment(ctx context.Context, req UpdatePaymentRequest) (Order, error)
}

var (
	ErrInvalidID               = errors.New("invalid_id")
	ErrInvalidType             = errors.New("invalid_order_type")
	ErrInvalidStatus           = errors.New("invalid_status")
	ErrInvalidPaymentStatus    = errors.New("invalid_payment_status")
	ErrInvalidStatusTransition = errors.New("invalid_status_transition")
	ErrEmptyItems              = errors.New("empty_items")
	ErrInvalidProductID        = errors.New("invalid_product_id")
	ErrProductNotFound         = errors.New("product_not_found")
	ErrInvalidParty            = errors.New("invalid_party")
	ErrPartyNotFound           = errors.New("party_not_found")
	ErrInvalidGSTIN            = errors.New("invalid_gstin")
	ErrInvalidPageToken        = errors.New("invalid_page_token")
	ErrRequestInFlight         = errors.New("request_in_flight")
	ErrNotFound                = errors.New("not_found")
)

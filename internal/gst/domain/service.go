package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/stockbook/internal/gst/engine"
)

type Service interface {
	ListStates(ctx context.Context) ([]engine.Jurisdiction, error)
	Split(ctx context.Context, req SplitRequest) (*engine.TaxSplit, error)
	Quote(ctx context.Context, req QuoteRequest) (*QuoteResponse, error)
}

type SplitRequest struct {
	Amount          decimal.Decimal
	Rate            decimal.Decimal
	SellerStateCode string
	BuyerGSTIN      string
}

type QuoteLine struct {
	Rate      decimal.Decimal
	Quantity  int64
	UnitPrice decimal.Decimal
}

type QuoteRequest struct {
	Items      []QuoteLine
	BuyerGSTIN string
}

type QuoteResponse struct {
	Items  []engine.LineItem  `json:"items"`
	Totals engine.OrderTotals `json:"totals"`
	Split  engine.TaxSplit    `json:"gst_split"`
}

var ErrEmptyQuote = errors.New("invalid_items")

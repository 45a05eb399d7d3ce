// Package engine computes GST tax breakdowns and order totals.
//
// Everything in this package is pure: inputs are validated up front,
// results are exact decimals and no shared state is mutated. Callers own
// persistence and stock movements.
package engine

import (
	"strings"

	"github.com/shopspring/decimal"
)

type SupplyType string

const (
	SupplyIntraState SupplyType = "intra_state"
	SupplyInterState SupplyType = "inter_state"
)

var half = decimal.New(5, -1)

// TaxSplit is the breakdown of a tax amount into its GST components.
// Either CGST and SGST carry the tax (same state) or IGST does.
type TaxSplit struct {
	CGST            decimal.Decimal `json:"cgst"`
	SGST            decimal.Decimal `json:"sgst"`
	IGST            decimal.Decimal `json:"igst"`
	Total           decimal.Decimal `json:"total_gst"`
	SupplyType      SupplyType      `json:"supply_type"`
	SellerStateCode string          `json:"seller_state_code"`
	BuyerStateCode  string          `json:"buyer_state_code"`
}

// Components returns CGST + SGST + IGST.
func (s TaxSplit) Components() decimal.Decimal {
	return s.CGST.Add(s.SGST).Add(s.IGST)
}

type Option func(*Calculator)

// WithRegistry replaces the jurisdiction table used for validation.
func WithRegistry(r *Registry) Option {
	return func(c *Calculator) {
		if r != nil {
			c.registry = r
		}
	}
}

// WithStrictBuyer rejects buyer state codes that are not in the registry.
func WithStrictBuyer() Option {
	return func(c *Calculator) {
		c.strictBuyer = true
	}
}

// Calculator splits tax between CGST/SGST and IGST.
type Calculator struct {
	registry    *Registry
	strictBuyer bool
}

func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{registry: DefaultRegistry()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var defaultCalculator = NewCalculator()

// ComputeTaxSplit computes tax = amount * rate / 100 and splits it using
// the default calculator.
func ComputeTaxSplit(amount, rate decimal.Decimal, sellerCode, buyerIdentifier string) (TaxSplit, error) {
	return defaultCalculator.Split(amount, rate, sellerCode, buyerIdentifier)
}

// Split computes the tax on amount at rate percent and splits it between
// the seller and buyer jurisdictions.
func (c *Calculator) Split(amount, rate decimal.Decimal, sellerCode, buyerIdentifier string) (TaxSplit, error) {
	if amount.IsNegative() {
		return TaxSplit{}, ErrInvalidAmount
	}
	if rate.IsNegative() {
		return TaxSplit{}, ErrInvalidRate
	}
	return c.SplitTax(TaxOn(amount, rate), sellerCode, buyerIdentifier)
}

// SplitTax splits an already computed tax amount.
func (c *Calculator) SplitTax(tax decimal.Decimal, sellerCode, buyerIdentifier string) (TaxSplit, error) {
	if tax.IsNegative() {
		return TaxSplit{}, ErrInvalidAmount
	}

	seller := strings.TrimSpace(sellerCode)
	if !c.registry.Valid(seller) {
		return TaxSplit{}, ErrInvalidJurisdiction
	}

	buyer, ok := StateCodeFromIdentifier(buyerIdentifier)
	if !ok {
		buyer = seller
	} else if c.strictBuyer && !c.registry.Valid(buyer) {
		return TaxSplit{}, ErrInvalidBuyer
	}

	split := TaxSplit{
		CGST:            decimal.Zero,
		SGST:            decimal.Zero,
		IGST:            decimal.Zero,
		Total:           tax,
		SellerStateCode: seller,
		BuyerStateCode:  buyer,
	}
	if buyer == seller {
		split.SupplyType = SupplyIntraState
		split.CGST = tax.Mul(half)
		split.SGST = tax.Mul(half)
	} else {
		split.SupplyType = SupplyInterState
		split.IGST = tax
	}
	return split, nil
}

// Registry exposes the jurisdiction table the calculator validates against.
func (c *Calculator) Registry() *Registry {
	return c.registry
}

// TaxOn returns amount * rate / 100 without rounding.
func TaxOn(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Shift(-2)
}

package engine

import "github.com/shopspring/decimal"

// LineItem is one priced quantity on an order. The derived amounts are
// fixed at construction.
type LineItem struct {
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Rate      decimal.Decimal `json:"gst_rate"`
	Base      decimal.Decimal `json:"base_amount"`
	Tax       decimal.Decimal `json:"gst_amount"`
	Total     decimal.Decimal `json:"total_amount"`
}

// NewLineItem validates the inputs and derives base, tax and total.
func NewLineItem(rate decimal.Decimal, quantity int64, unitPrice decimal.Decimal) (LineItem, error) {
	if quantity <= 0 {
		return LineItem{}, ErrInvalidQuantity
	}
	if unitPrice.IsNegative() {
		return LineItem{}, ErrInvalidUnitPrice
	}
	if rate.IsNegative() {
		return LineItem{}, ErrInvalidRate
	}

	base := unitPrice.Mul(decimal.NewFromInt(quantity))
	tax := TaxOn(base, rate)
	return LineItem{
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Rate:      rate,
		Base:      base,
		Tax:       tax,
		Total:     base.Add(tax),
	}, nil
}

// StockDelta is the change to available stock a sale of this item implies.
func (l LineItem) StockDelta() int64 {
	return -l.Quantity
}

// OrderTotals aggregates the line items of an order.
type OrderTotals struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	Tax        decimal.Decimal `json:"gst_amount"`
	GrandTotal decimal.Decimal `json:"total_amount"`
	ItemCount  int             `json:"item_count"`
}

// Totals recomputes the aggregate from scratch.
func Totals(items []LineItem) OrderTotals {
	subtotal := decimal.Zero
	tax := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Base)
		tax = tax.Add(item.Tax)
	}
	return OrderTotals{
		Subtotal:   subtotal,
		Tax:        tax,
		GrandTotal: subtotal.Add(tax),
		ItemCount:  len(items),
	}
}

// Split divides the order level tax between the seller and buyer
// jurisdictions.
func (t OrderTotals) Split(calc *Calculator, sellerCode, buyerIdentifier string) (TaxSplit, error) {
	if calc == nil {
		calc = defaultCalculator
	}
	return calc.SplitTax(t.Tax, sellerCode, buyerIdentifier)
}

// Aggregator accumulates line items for a single order under construction.
// It is not safe for concurrent use.
type Aggregator struct {
	items []LineItem
}

func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// AddLineItem appends a validated item. A rejected item leaves the
// aggregate untouched.
func (a *Aggregator) AddLineItem(rate decimal.Decimal, quantity int64, unitPrice decimal.Decimal) (LineItem, error) {
	item, err := NewLineItem(rate, quantity, unitPrice)
	if err != nil {
		return LineItem{}, err
	}
	a.items = append(a.items, item)
	return item, nil
}

func (a *Aggregator) Items() []LineItem {
	out := make([]LineItem, len(a.items))
	copy(out, a.items)
	return out
}

func (a *Aggregator) Len() int {
	return len(a.items)
}

func (a *Aggregator) Totals() OrderTotals {
	return Totals(a.items)
}

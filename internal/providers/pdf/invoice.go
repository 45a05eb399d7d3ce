package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// Party is one side of a tax invoice.
type Party struct {
	Name      string
	Address   string
	Phone     string
	Email     string
	GSTIN     string
	StateCode string
	StateName string
}

type InvoiceData struct {
	Title         string
	InvoiceNumber string
	InvoiceDate   string
	PaymentStatus string

	Seller Party
	Buyer  Party

	Items []InvoiceItem

	Subtotal   string
	CGST       string
	SGST       string
	IGST       string
	InterState bool
	TotalTax   string
	GrandTotal string

	// UPIPayload is rendered as a scannable QR when set.
	UPIPayload string
}

type InvoiceItem struct {
	Description string
	HSNCode     string
	Qty         int64
	UnitPrice   string
	GSTRate     string
	TaxAmount   string
	Amount      string
}

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

var (
	small  = props.Text{Size: 8}
	header = props.Text{Size: 8, Style: fontstyle.Bold}
	right  = props.Text{Size: 8, Align: align.Right}
	rightB = props.Text{Size: 8, Align: align.Right, Style: fontstyle.Bold}
)

func (p *PDFProvider) GenerateInvoice(ctx context.Context, invoice InvoiceData) (io.Reader, error) {
	if strings.TrimSpace(invoice.InvoiceNumber) == "" {
		return nil, fmt.Errorf("invoice number is required")
	}
	title := invoice.Title
	if title == "" {
		title = "Tax Invoice"
	}

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(8, title, props.Text{Size: 18, Style: fontstyle.Bold, Align: align.Left}),
		text.NewCol(4, strings.ToUpper(invoice.PaymentStatus), props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right, Top: 3}),
	)

	m.AddRow(12,
		col.New(6).Add(
			text.New("Invoice number: "+invoice.InvoiceNumber, props.Text{Size: 9}),
			text.New("Invoice date: "+invoice.InvoiceDate, props.Text{Size: 9, Top: 5}),
		),
		col.New(6).Add(
			text.New("Place of supply: "+placeOfSupply(invoice.Buyer, invoice.Seller), props.Text{Size: 9, Align: align.Right}),
		),
	)

	m.AddRow(34,
		partyCol(6, "Sold by", invoice.Seller),
		partyCol(6, "Bill to", invoice.Buyer),
	)

	m.AddRow(8,
		text.NewCol(4, "Item", header),
		text.NewCol(1, "HSN", header),
		text.NewCol(1, "Qty", rightB),
		text.NewCol(2, "Rate", rightB),
		text.NewCol(1, "GST %", rightB),
		text.NewCol(1, "GST", rightB),
		text.NewCol(2, "Amount", rightB),
	)

	for _, item := range invoice.Items {
		m.AddRow(7,
			text.NewCol(4, item.Description, small),
			text.NewCol(1, item.HSNCode, small),
			text.NewCol(1, fmt.Sprintf("%d", item.Qty), right),
			text.NewCol(2, item.UnitPrice, right),
			text.NewCol(1, item.GSTRate, right),
			text.NewCol(1, item.TaxAmount, right),
			text.NewCol(2, item.Amount, right),
		)
	}

	m.AddRow(4)
	totalRow(m, "Taxable value", invoice.Subtotal, false)
	if invoice.InterState {
		totalRow(m, "IGST", invoice.IGST, false)
	} else {
		totalRow(m, "CGST", invoice.CGST, false)
		totalRow(m, "SGST", invoice.SGST, false)
	}
	totalRow(m, "Total GST", invoice.TotalTax, false)
	totalRow(m, "Grand total", invoice.GrandTotal, true)

	if invoice.UPIPayload != "" {
		m.AddRow(6, text.NewCol(12, "Scan to pay with any UPI app", props.Text{Size: 9, Top: 2}))
		m.AddRow(40,
			code.NewQrCol(3, invoice.UPIPayload, props.Rect{Center: true, Percent: 90}),
			col.New(9),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(doc.GetBytes()), nil
}

func partyCol(size int, label string, party Party) core.Col {
	c := col.New(size).Add(
		text.New(label, header),
		text.New(party.Name, props.Text{Size: 9, Style: fontstyle.Bold, Top: 4}),
	)
	top := 9.0
	for _, line := range []string{
		party.Address,
		party.Phone,
		party.Email,
		labelled("GSTIN", party.GSTIN),
		stateLine(party),
	} {
		if line == "" {
			continue
		}
		c.Add(text.New(line, props.Text{Size: 8, Top: top}))
		top += 4
	}
	return c
}

func totalRow(m core.Maroto, label, value string, bold bool) {
	labelProps, valueProps := small, right
	if bold {
		labelProps, valueProps = header, rightB
	}
	m.AddRow(6,
		col.New(7),
		text.NewCol(3, label, labelProps),
		text.NewCol(2, value, valueProps),
	)
}

func labelled(label, value string) string {
	if value == "" {
		return ""
	}
	return label + ": " + value
}

func stateLine(p Party) string {
	switch {
	case p.StateCode == "":
		return ""
	case p.StateName == "":
		return "State code: " + p.StateCode
	default:
		return fmt.Sprintf("State: %s (%s)", p.StateName, p.StateCode)
	}
}

func placeOfSupply(buyer, seller Party) string {
	if line := stateLine(buyer); line != "" {
		return strings.TrimPrefix(strings.TrimPrefix(line, "State: "), "State code: ")
	}
	return strings.TrimPrefix(strings.TrimPrefix(stateLine(seller), "State: "), "State code: ")
}

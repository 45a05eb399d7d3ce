package service

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/smallbiznis/stockbook/internal/config"
	"github.com/smallbiznis/stockbook/internal/gst/engine"
	"github.com/smallbiznis/stockbook/internal/invoice/domain"
	"github.com/smallbiznis/stockbook/internal/invoice/upi"
	orderdomain "github.com/smallbiznis/stockbook/internal/order/domain"
	"github.com/smallbiznis/stockbook/internal/providers/pdf"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Orders   orderdomain.Service
	Business *config.BusinessSettingsHolder
	Calc     *engine.Calculator
	PDF      pdf.Provider
}

type Service struct {
	log      *zap.Logger
	orders   orderdomain.Service
	business *config.BusinessSettingsHolder
	registry *engine.Registry
	pdf      pdf.Provider
}

func New(p Params) domain.Service {
	return &Service{
		log:      p.Log.Named("invoice.service"),
		orders:   p.Orders,
		business: p.Business,
		registry: p.Calc.Registry(),
		pdf:      p.PDF,
	}
}

func (s *Service) UPIQR(ctx context.Context, orderID string) (domain.UPIQRResponse, error) {
	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return domain.UPIQRResponse{}, err
	}

	payload, err := s.payload(order)
	if err != nil {
		return domain.UPIQRResponse{}, err
	}
	image, err := upi.QRCodePNG(payload, upi.DefaultQRSize)
	if err != nil {
		return domain.UPIQRResponse{}, fmt.Errorf("encode upi qr: %w", err)
	}

	return domain.UPIQRResponse{
		OrderID:     order.ID.String(),
		OrderNumber: order.OrderNumber,
		Amount:      order.GrandTotal.StringFixed(2),
		Payload:     payload,
		QRCode:      base64.StdEncoding.EncodeToString(image),
	}, nil
}

func (s *Service) RenderInvoicePDF(ctx context.Context, orderID string) (domain.Document, error) {
	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return domain.Document{}, err
	}

	business := s.business.Get()
	data := pdf.InvoiceData{
		InvoiceNumber: order.OrderNumber,
		InvoiceDate:   order.OrderDate.Format("02/01/2006"),
		PaymentStatus: string(order.PaymentStatus),
		Seller: pdf.Party{
			Name:      business.Name,
			Address:   business.Address,
			Phone:     business.Phone,
			Email:     business.Email,
			GSTIN:     business.GSTIN,
			StateCode: order.SellerStateCode,
			StateName: s.stateName(order.SellerStateCode),
		},
		Buyer: pdf.Party{
			Name:      order.PartyName,
			Address:   order.PartyAddress,
			Phone:     order.PartyPhone,
			Email:     order.PartyEmail,
			GSTIN:     order.PartyGSTIN,
			StateCode: order.PartyStateCode,
			StateName: s.stateName(order.PartyStateCode),
		},
		Subtotal:   order.Subtotal.StringFixed(2),
		CGST:       order.CGST.StringFixed(2),
		SGST:       order.SGST.StringFixed(2),
		IGST:       order.IGST.StringFixed(2),
		InterState: order.SupplyType == string(engine.SupplyInterState),
		TotalTax:   order.TaxAmount.StringFixed(2),
		GrandTotal: order.GrandTotal.StringFixed(2),
	}
	if order.Type == orderdomain.TypePurchase {
		data.Title = "Purchase Order"
		data.Seller, data.Buyer = data.Buyer, data.Seller
	}
	for _, item := range order.Items {
		data.Items = append(data.Items, pdf.InvoiceItem{
			Description: item.Name,
			HSNCode:     item.HSNCode,
			Qty:         item.Quantity,
			UnitPrice:   item.UnitPrice.StringFixed(2),
			GSTRate:     item.GSTRate.String(),
			TaxAmount:   item.TaxAmount.StringFixed(2),
			Amount:      item.TotalAmount.StringFixed(2),
		})
	}

	if order.Type == orderdomain.TypeSale && order.PaymentStatus != orderdomain.PaymentPaid {
		if payload, err := s.payload(order); err == nil {
			data.UPIPayload = payload
		} else {
			s.log.Debug("invoice rendered without upi qr", zap.String("order_id", order.ID.String()), zap.Error(err))
		}
	}

	content, err := s.pdf.GenerateInvoice(ctx, data)
	if err != nil {
		return domain.Document{}, fmt.Errorf("render invoice pdf: %w", err)
	}
	return domain.Document{
		Filename: fmt.Sprintf("invoice-%s.pdf", order.OrderNumber),
		Content:  content,
	}, nil
}

func (s *Service) payload(order orderdomain.Order) (string, error) {
	business := s.business.Get()
	return upi.Payload(upi.Payment{
		VPA:    business.UPIVPA,
		Payee:  business.Name,
		Amount: order.GrandTotal,
		Note:   "Invoice " + order.OrderNumber,
	})
}

func (s *Service) stateName(code string) string {
	if j, ok := s.registry.Lookup(code); ok {
		return j.Name
	}
	return ""
}

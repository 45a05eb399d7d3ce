package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/stockbook/internal/audit/domain"
	"github.com/smallbiznis/stockbook/internal/cache"
	"github.com/smallbiznis/stockbook/internal/clock"
	"github.com/smallbiznis/stockbook/internal/config"
	customerdomain "github.com/smallbiznis/stockbook/internal/customer/domain"
	"github.com/smallbiznis/stockbook/internal/events"
	"github.com/smallbiznis/stockbook/internal/gst/engine"
	inventorydomain "github.com/smallbiznis/stockbook/internal/inventory/domain"
	"github.com/smallbiznis/stockbook/internal/observability/metrics"
	"github.com/smallbiznis/stockbook/internal/order/domain"
	"github.com/smallbiznis/stockbook/internal/order/format"
	productdomain "github.com/smallbiznis/stockbook/internal/product/domain"
	supplierdomain "github.com/smallbiznis/stockbook/internal/supplier/domain"
	"github.com/smallbiznis/stockbook/pkg/db"
	"github.com/smallbiznis/stockbook/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	idempotencyScope  = "orders.create"
	maxNumberAttempts = 3
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Repo      domain.Repository
	Products  productdomain.Repository
	Customers customerdomain.Repository
	Suppliers supplierdomain.Repository
	Ledger    inventorydomain.Ledger
	Calc      *engine.Calculator
	Business  *config.BusinessSettingsHolder
	Publisher events.Publisher

	Idempotency cache.IdempotencyStore `optional:"true"`
	Audit       auditdomain.Service    `optional:"true"`
	Metrics     *metrics.Metrics       `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        domain.Repository
	products    productdomain.Repository
	customers   customerdomain.Repository
	suppliers   supplierdomain.Repository
	ledger      inventorydomain.Ledger
	calc        *engine.Calculator
	business    *config.BusinessSettingsHolder
	publisher   events.Publisher
	idempotency cache.IdempotencyStore
	audit       auditdomain.Service
	metrics     *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("order.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		products:    p.Products,
		customers:   p.Customers,
		suppliers:   p.Suppliers,
		ledger:      p.Ledger,
		calc:        p.Calc,
		business:    p.Business,
		publisher:   p.Publisher,
		idempotency: p.Idempotency,
		audit:       p.Audit,
		metrics:     p.Metrics,
	}
}

// Create places an order. With an idempotency key, retries return the
// order created by the first attempt.
func (s *Service) Create(ctx context.Context, req domain.CreateOrderRequest) (domain.Order, error) {
	key := strings.TrimSpace(req.IdempotencyKey)
	if key == "" || s.idempotency == nil {
		return s.create(ctx, req)
	}

	if order, ok, err := s.replay(ctx, key); err != nil || ok {
		return order, err
	}

	token, ok, err := s.idempotency.Reserve(ctx, idempotencyScope, key)
	if err != nil {
		return domain.Order{}, err
	}
	if !ok {
		return domain.Order{}, domain.ErrRequestInFlight
	}
	defer func() {
		if err := s.idempotency.Release(context.WithoutCancel(ctx), idempotencyScope, key, token); err != nil {
			s.log.Warn("failed to release idempotency key", zap.String("key", key), zap.Error(err))
		}
	}()

	// A previous holder may have finished between Recall and Reserve.
	if order, ok, err := s.replay(ctx, key); err != nil || ok {
		return order, err
	}

	order, err := s.create(ctx, req)
	if err != nil {
		return domain.Order{}, err
	}
	if err := s.idempotency.Remember(ctx, idempotencyScope, key, order.ID.String()); err != nil {
		s.log.Warn("failed to remember idempotency key", zap.String("key", key), zap.Error(err))
	}
	return order, nil
}

func (s *Service) replay(ctx context.Context, key string) (domain.Order, bool, error) {
	orderID, ok, err := s.idempotency.Recall(ctx, idempotencyScope, key)
	if err != nil || !ok {
		return domain.Order{}, false, err
	}
	order, err := s.Get(ctx, orderID)
	if err != nil {
		return domain.Order{}, false, err
	}
	s.metrics.RecordIdempotentReplay(ctx, idempotencyScope)
	return order, true, nil
}

type pricedLine struct {
	product productdomain.Product
	line    engine.LineItem
}

func (s *Service) create(ctx context.Context, req domain.CreateOrderRequest) (domain.Order, error) {
	orderType, ok := domain.ParseType(req.OrderType)
	if !ok {
		return domain.Order{}, domain.ErrInvalidType
	}
	if len(req.Items) == 0 {
		return domain.Order{}, domain.ErrEmptyItems
	}

	order := domain.Order{
		Type:          orderType,
		Status:        domain.StatusPending,
		PaymentStatus: domain.PaymentUnpaid,
	}
	if method := strings.TrimSpace(req.PaymentMethod); method != "" {
		order.PaymentMethod = &method
	}
	if err := s.resolveParty(ctx, &order, req); err != nil {
		return domain.Order{}, err
	}

	aggregate := engine.NewAggregator()
	lines, err := s.priceLines(ctx, aggregate, req.Items)
	if err != nil {
		return domain.Order{}, err
	}
	totals := aggregate.Totals()

	seller, buyer := s.jurisdictions(order)
	split, err := totals.Split(s.calc, seller, buyer)
	if err != nil {
		return domain.Order{}, err
	}

	order.SellerStateCode = s.business.Get().SellerStateCode()
	order.SupplyType = string(split.SupplyType)
	order.Subtotal = totals.Subtotal
	order.TaxAmount = totals.Tax
	order.CGST = split.CGST
	order.SGST = split.SGST
	order.IGST = split.IGST
	order.GrandTotal = totals.GrandTotal
	order.ItemCount = totals.ItemCount

	var movements []inventorydomain.Movement
	for attempt := 1; ; attempt++ {
		movements, err = s.persist(ctx, &order, lines)
		if err == nil {
			break
		}
		if !db.IsDuplicateKeyErr(err) || attempt >= maxNumberAttempts {
			return domain.Order{}, err
		}
		s.log.Warn("order number taken, retrying", zap.String("order_number", order.OrderNumber), zap.Int("attempt", attempt))
	}

	s.ledger.NotifyLow(ctx, movements)
	s.metrics.RecordTaxSplit(ctx, string(split.SupplyType))
	s.metrics.RecordOrderCreated(ctx, string(order.Type), order.GrandTotal.InexactFloat64())
	s.publish(ctx, events.EventTypeOrderCreated, order, events.OrderCreated{
		OrderID:     order.ID.String(),
		OrderNumber: order.OrderNumber,
		OrderType:   string(order.Type),
		GrandTotal:  order.GrandTotal.StringFixed(2),
		SupplyType:  order.SupplyType,
		ItemCount:   order.ItemCount,
	})
	s.writeAudit(ctx, auditdomain.ActionOrderCreated, order.ID, map[string]any{
		"order_number":   order.OrderNumber,
		"order_type":     string(order.Type),
		"grand_total":    order.GrandTotal.StringFixed(2),
		"customer_phone": order.PartyPhone,
		"customer_gstin": order.PartyGSTIN,
	})

	return order, nil
}

func (s *Service) persist(ctx context.Context, order *domain.Order, lines []pricedLine) ([]inventorydomain.Movement, error) {
	var movements []inventorydomain.Movement
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := s.clock.Now()
		day := format.DayKey(now)
		seq, err := s.repo.NextSequence(ctx, tx, day)
		if err != nil {
			return err
		}
		number, err := format.FormatOrderNumber(format.DefaultOrderNumberTemplate, now, seq)
		if err != nil {
			return err
		}

		order.ID = s.genID.Generate()
		order.OrderNumber = number
		order.OrderDay = day
		order.Sequence = seq
		order.OrderDate = now
		order.CreatedAt = now
		order.UpdatedAt = now
		if err := s.repo.Insert(ctx, tx, order); err != nil {
			return err
		}

		movements = movements[:0]
		items := make([]domain.OrderItem, 0, len(lines))
		for _, l := range lines {
			item := domain.OrderItem{
				ID:          s.genID.Generate(),
				OrderID:     order.ID,
				ProductID:   l.product.ID,
				SKU:         l.product.SKU,
				Name:        l.product.Name,
				HSNCode:     l.product.HSNCode,
				Quantity:    l.line.Quantity,
				UnitPrice:   l.line.UnitPrice,
				GSTRate:     l.line.Rate,
				BaseAmount:  l.line.Base,
				TaxAmount:   l.line.Tax,
				TotalAmount: l.line.Total,
				CreatedAt:   now,
			}

			var movement inventorydomain.Movement
			if order.Type == domain.TypeSale {
				movement, err = s.ledger.Debit(ctx, tx, l.product.ID, l.line.Quantity)
				item.StockDebited = movement.Applied
			} else {
				movement, err = s.ledger.Credit(ctx, tx, l.product.ID, l.line.Quantity)
				item.StockCredited = movement.Applied
			}
			if err != nil {
				return fmt.Errorf("stock movement for %s: %w", l.product.SKU, err)
			}
			movements = append(movements, movement)

			if err := s.repo.InsertItem(ctx, tx, &item); err != nil {
				return err
			}
			items = append(items, item)
		}
		order.Items = items
		return nil
	})
	if err != nil {
		return nil, err
	}
	return movements, nil
}

// priceLines loads the products and adds each line to aggregate. The first
// invalid line rejects the whole order.
func (s *Service) priceLines(ctx context.Context, aggregate *engine.Aggregator, reqItems []domain.CreateOrderItem) ([]pricedLine, error) {
	ids := make([]snowflake.ID, 0, len(reqItems))
	for _, item := range reqItems {
		id, err := snowflake.ParseString(strings.TrimSpace(item.ProductID))
		if err != nil || id == 0 {
			return nil, domain.ErrInvalidProductID
		}
		ids = append(ids, id)
	}

	products, err := s.products.FindByIDs(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[snowflake.ID]productdomain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	lines := make([]pricedLine, 0, len(reqItems))
	for i, item := range reqItems {
		product, ok := byID[ids[i]]
		if !ok {
			return nil, domain.ErrProductNotFound
		}
		price := product.UnitPrice
		if item.UnitPrice != nil {
			price = *item.UnitPrice
		}
		line, err := aggregate.AddLineItem(product.GSTRate, item.Quantity, price)
		if err != nil {
			return nil, fmt.Errorf("items[%d]: %w", i, err)
		}
		lines = append(lines, pricedLine{product: product, line: line})
	}
	return lines, nil
}

func (s *Service) resolveParty(ctx context.Context, order *domain.Order, req domain.CreateOrderRequest) error {
	customerRaw := strings.TrimSpace(req.CustomerID)
	supplierRaw := strings.TrimSpace(req.SupplierID)
	if customerRaw != "" && supplierRaw != "" {
		return domain.ErrInvalidParty
	}

	order.PartyName = strings.TrimSpace(req.PartyName)
	order.PartyEmail = strings.TrimSpace(req.PartyEmail)
	order.PartyPhone = strings.TrimSpace(req.PartyPhone)
	order.PartyAddress = strings.TrimSpace(req.PartyAddress)
	gstin, err := engine.NormalizeGSTIN(req.PartyGSTIN)
	if err != nil {
		return domain.ErrInvalidGSTIN
	}
	order.PartyGSTIN = gstin

	switch {
	case customerRaw != "":
		id, err := snowflake.ParseString(customerRaw)
		if err != nil || id == 0 {
			return domain.ErrInvalidParty
		}
		customer, err := s.customers.FindByID(ctx, s.db, id)
		if err != nil {
			return err
		}
		if customer == nil {
			return domain.ErrPartyNotFound
		}
		order.CustomerID = &customer.ID
		order.PartyName = customer.Name
		order.PartyEmail = customer.Email
		order.PartyPhone = customer.Phone
		order.PartyAddress = customer.Address
		order.PartyGSTIN = customer.GSTIN
		order.PartyStateCode = customer.StateCode
	case supplierRaw != "":
		id, err := snowflake.ParseString(supplierRaw)
		if err != nil || id == 0 {
			return domain.ErrInvalidParty
		}
		supplier, err := s.suppliers.FindByID(ctx, s.db, id)
		if err != nil {
			return err
		}
		if supplier == nil {
			return domain.ErrPartyNotFound
		}
		order.SupplierID = &supplier.ID
		order.PartyName = supplier.Name
		order.PartyEmail = supplier.Email
		order.PartyPhone = supplier.Phone
		order.PartyAddress = supplier.Address
		order.PartyGSTIN = supplier.GSTIN
	}

	if order.PartyStateCode == "" {
		if code, ok := engine.StateCodeFromIdentifier(order.PartyGSTIN); ok {
			order.PartyStateCode = code
		}
	}
	return nil
}

// jurisdictions returns the seller and buyer for the order level split. On
// a purchase the business is the buyer.
func (s *Service) jurisdictions(order domain.Order) (string, string) {
	business := s.business.Get().SellerStateCode()
	party := order.PartyGSTIN
	if party == "" {
		party = order.PartyStateCode
	}
	if order.Type == domain.TypePurchase {
		if code, ok := engine.StateCodeFromIdentifier(party); ok && s.calc.Registry().Valid(code) {
			return code, business
		}
		return business, business
	}
	return business, party
}

func (s *Service) Get(ctx context.Context, id string) (domain.Order, error) {
	orderID, err := parseID(id)
	if err != nil {
		return domain.Order{}, err
	}

	order, err := s.repo.FindByID(ctx, s.db, orderID, false)
	if err != nil {
		return domain.Order{}, err
	}
	if order == nil {
		return domain.Order{}, domain.ErrNotFound
	}
	items, err := s.repo.FindItems(ctx, s.db, order.ID)
	if err != nil {
		return domain.Order{}, err
	}
	order.Items = items
	return *order, nil
}

func (s *Service) List(ctx context.Context, req domain.ListOrderRequest) (domain.ListOrderResponse, error) {
	if err := pagination.ValidateToken(req.PageToken); err != nil {
		return domain.ListOrderResponse{}, domain.ErrInvalidPageToken
	}

	var filter domain.ListFilter
	if raw := strings.TrimSpace(req.Type); raw != "" {
		orderType, ok := domain.ParseType(raw)
		if !ok {
			return domain.ListOrderResponse{}, domain.ErrInvalidType
		}
		filter.Type = orderType
	}
	if raw := strings.TrimSpace(req.Status); raw != "" {
		status, ok := domain.ParseStatus(raw)
		if !ok {
			return domain.ListOrderResponse{}, domain.ErrInvalidStatus
		}
		filter.Status = status
	}

	pageSize := req.Size()
	items, err := s.repo.List(ctx, s.db, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  pageSize,
	})
	if err != nil {
		return domain.ListOrderResponse{}, err
	}

	items, pageInfo := pagination.Trim(items, pageSize, func(o *domain.Order) string {
		return pagination.TokenFor(o.ID.Int64(), o.CreatedAt)
	})

	orders := make([]domain.Order, 0, len(items))
	for _, o := range items {
		orders = append(orders, *o)
	}
	return domain.ListOrderResponse{PageInfo: pageInfo, Orders: orders}, nil
}

// UpdateStatus moves a pending order to completed or cancelled. Cancelling
// gives back exactly the stock the order moved.
func (s *Service) UpdateStatus(ctx context.Context, req domain.UpdateStatusRequest) (domain.Order, error) {
	orderID, err := parseID(req.ID)
	if err != nil {
		return domain.Order{}, err
	}
	next, ok := domain.ParseStatus(req.Status)
	if !ok {
		return domain.Order{}, domain.ErrInvalidStatus
	}

	var (
		previous  domain.Status
		order     *domain.Order
		movements []inventorydomain.Movement
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err = s.repo.FindByID(ctx, tx, orderID, true)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		previous = order.Status
		if previous == next {
			return nil
		}
		if !previous.CanTransition(next) {
			return domain.ErrInvalidStatusTransition
		}

		if next == domain.StatusCancelled {
			items, err := s.repo.FindItems(ctx, tx, order.ID)
			if err != nil {
				return err
			}
			movements, err = s.reverseStock(ctx, tx, order.Type, items)
			if err != nil {
				return err
			}
		}

		order.Status = next
		order.UpdatedAt = s.clock.Now()
		return s.repo.UpdateStatus(ctx, tx, order.ID, next, order.UpdatedAt)
	})
	if err != nil {
		return domain.Order{}, err
	}
	if previous == next {
		return s.Get(ctx, req.ID)
	}

	s.ledger.NotifyLow(ctx, movements)
	s.publish(ctx, events.EventTypeOrderStatusChanged, *order, events.OrderStatusChanged{
		OrderID:        order.ID.String(),
		OrderNumber:    order.OrderNumber,
		PreviousStatus: string(previous),
		NewStatus:      string(next),
	})
	s.writeAudit(ctx, auditdomain.ActionOrderStatusChanged, order.ID, map[string]any{
		"order_number":    order.OrderNumber,
		"previous_status": string(previous),
		"status":          string(next),
	})

	return s.Get(ctx, req.ID)
}

func (s *Service) reverseStock(ctx context.Context, tx *gorm.DB, orderType domain.Type, items []domain.OrderItem) ([]inventorydomain.Movement, error) {
	var movements []inventorydomain.Movement
	for _, item := range items {
		var (
			movement inventorydomain.Movement
			err      error
		)
		switch {
		case orderType == domain.TypeSale && item.StockDebited > 0:
			movement, err = s.ledger.Credit(ctx, tx, item.ProductID, item.StockDebited)
		case orderType == domain.TypePurchase && item.StockCredited > 0:
			movement, err = s.ledger.Debit(ctx, tx, item.ProductID, item.StockCredited)
		default:
			continue
		}
		if errors.Is(err, inventorydomain.ErrNotFound) {
			// product deleted since the order was placed
			s.log.Warn("stock row missing on cancel", zap.String("product_id", item.ProductID.String()))
			continue
		}
		if err != nil {
			return nil, err
		}
		movements = append(movements, movement)
	}
	return movements, nil
}

func (s *Service) UpdatePayment(ctx context.Context, req domain.UpdatePaymentRequest) (domain.Order, error) {
	orderID, err := parseID(req.ID)
	if err != nil {
		return domain.Order{}, err
	}
	status, ok := domain.ParsePaymentStatus(req.PaymentStatus)
	if !ok {
		return domain.Order{}, domain.ErrInvalidPaymentStatus
	}

	var order *domain.Order
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err = s.repo.FindByID(ctx, tx, orderID, true)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		method := order.PaymentMethod
		if req.PaymentMethod != nil {
			trimmed := strings.TrimSpace(*req.PaymentMethod)
			method = &trimmed
			if trimmed == "" {
				method = nil
			}
		}
		return s.repo.UpdatePayment(ctx, tx, order.ID, status, method, s.clock.Now())
	})
	if err != nil {
		return domain.Order{}, err
	}

	s.writeAudit(ctx, auditdomain.ActionOrderPaymentUpdate, order.ID, map[string]any{
		"order_number":   order.OrderNumber,
		"payment_status": string(status),
	})
	return s.Get(ctx, req.ID)
}

func (s *Service) publish(ctx context.Context, eventType events.EventType, order domain.Order, payload any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, eventType, order.ID.String(), payload); err != nil {
		s.log.Warn("failed to publish order event",
			zap.String("event_type", string(eventType)),
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
	}
}

func (s *Service) writeAudit(ctx context.Context, action string, orderID snowflake.ID, metadata map[string]any) {
	if s.audit == nil {
		return
	}
	target := orderID.String()
	if err := s.audit.AuditLog(ctx, action, "order", &target, metadata); err != nil {
		s.log.Warn("failed to write audit log", zap.String("action", action), zap.Error(err))
	}
}

func parseID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

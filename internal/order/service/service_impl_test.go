package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/stockbook/internal/cache"
	"github.com/smallbiznis/stockbook/internal/clock"
	"github.com/smallbiznis/stockbook/internal/config"
	customerdomain "github.com/smallbiznis/stockbook/internal/customer/domain"
	customerrepo "github.com/smallbiznis/stockbook/internal/customer/repository"
	"github.com/smallbiznis/stockbook/internal/events"
	"github.com/smallbiznis/stockbook/internal/gst/engine"
	inventorydomain "github.com/smallbiznis/stockbook/internal/inventory/domain"
	inventoryrepo "github.com/smallbiznis/stockbook/internal/inventory/repository"
	inventoryservice "github.com/smallbiznis/stockbook/internal/inventory/service"
	"github.com/smallbiznis/stockbook/internal/order/domain"
	"github.com/smallbiznis/stockbook/internal/order/repository"
	productdomain "github.com/smallbiznis/stockbook/internal/product/domain"
	productrepo "github.com/smallbiznis/stockbook/internal/product/repository"
	supplierdomain "github.com/smallbiznis/stockbook/internal/supplier/domain"
	supplierrepo "github.com/smallbiznis/stockbook/internal/supplier/repository"
	"github.com/smallbiznis/stockbook/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	svc      domain.Service
	db       *gorm.DB
	node     *snowflake.Node
	clock    *clock.FakeClock
	recorder *events.Recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn := db.NewTest(t,
		&productdomain.Product{},
		&inventorydomain.StockLevel{},
		&customerdomain.Customer{},
		&supplierdomain.Supplier{},
		&domain.Order{},
		&domain.OrderItem{},
	)
	node, err := snowflake.NewNode(3)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC))
	recorder := events.NewRecorder()

	ledger := inventoryservice.NewLedger(inventoryservice.Params{
		DB:        conn,
		Log:       zap.NewNop(),
		Clock:     clk,
		Repo:      inventoryrepo.Provide(),
		Publisher: recorder,
	})

	svc := New(Params{
		DB:          conn,
		Log:         zap.NewNop(),
		GenID:       node,
		Clock:       clk,
		Repo:        repository.Provide(),
		Products:    productrepo.Provide(),
		Customers:   customerrepo.Provide(),
		Suppliers:   supplierrepo.Provide(),
		Ledger:      ledger,
		Calc:        engine.NewCalculator(),
		Business:    config.NewStaticBusinessSettings(config.DefaultBusinessSettings()),
		Publisher:   recorder,
		Idempotency: cache.NewMemoryIdempotencyStore(),
	})

	return &fixture{svc: svc, db: conn, node: node, clock: clk, recorder: recorder}
}

func (f *fixture) seedProduct(t *testing.T, sku, price, rate string, available, minQty int64) snowflake.ID {
	t.Helper()
	now := f.clock.Now()
	product := productdomain.Product{
		ID:          f.node.Generate(),
		SKU:         sku,
		Name:        "Item " + sku,
		Category:    "General",
		CategoryKey: "general",
		UnitPrice:   decimal.RequireFromString(price),
		CostPrice:   decimal.Zero,
		GSTRate:     decimal.RequireFromString(rate),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, f.db.Create(&product).Error)
	require.NoError(t, f.db.Create(&inventorydomain.StockLevel{
		ProductID:    product.ID,
		AvailableQty: available,
		MinQty:       minQty,
		UpdatedAt:    now,
	}).Error)
	return product.ID
}

func (f *fixture) available(t *testing.T, productID snowflake.ID) int64 {
	t.Helper()
	var level inventorydomain.StockLevel
	require.NoError(t, f.db.First(&level, "product_id = ?", productID).Error)
	return level.AvailableQty
}

func TestCreateSaleOrderIntraState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p1 := f.seedProduct(t, "SKU-1", "100", "18", 10, 3)
	p2 := f.seedProduct(t, "SKU-2", "50", "5", 2, 1)

	customer := customerdomain.Customer{
		ID:        f.node.Generate(),
		Name:      "Patil Stores",
		GSTIN:     "27AAACP1234C1Z5",
		StateCode: "27",
		CreatedAt: f.clock.Now(),
		UpdatedAt: f.clock.Now(),
	}
	require.NoError(t, f.db.Create(&customer).Error)

	order, err := f.svc.Create(ctx, domain.CreateOrderRequest{
		OrderType:  "sales",
		CustomerID: customer.ID.String(),
		Items: []domain.CreateOrderItem{
			{ProductID: p1.String(), Quantity: 2},
			{ProductID: p2.String(), Quantity: 3},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "ORD-20240601-0001", order.OrderNumber)
	assert.Equal(t, domain.TypeSale, order.Type)
	assert.Equal(t, domain.StatusPending, order.Status)
	assert.Equal(t, domain.PaymentUnpaid, order.PaymentStatus)
	assert.Equal(t, "Patil Stores", order.PartyName)
	assert.True(t, order.Subtotal.Equal(decimal.RequireFromString("350")))
	assert.True(t, order.TaxAmount.Equal(decimal.RequireFromString("43.5")))
	assert.True(t, order.GrandTotal.Equal(decimal.RequireFromString("393.5")))
	assert.True(t, order.CGST.Equal(decimal.RequireFromString("21.75")))
	assert.True(t, order.SGST.Equal(decimal.RequireFromString("21.75")))
	assert.True(t, order.IGST.IsZero())
	assert.Equal(t, string(engine.SupplyIntraState), order.SupplyType)

	assert.Equal(t, int64(8), f.available(t, p1))
	assert.Equal(t, int64(0), f.available(t, p2))

	got, err := f.svc.Get(ctx, order.ID.String())
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	assert.Equal(t, int64(2), got.Items[0].StockDebited)
	assert.Equal(t, int64(2), got.Items[1].StockDebited)
	assert.Equal(t, "SKU-2", got.Items[1].SKU)

	assert.Len(t, f.recorder.Events(events.EventTypeOrderCreated), 1)
	assert.Len(t, f.recorder.Events(events.EventTypeStockLow), 1)

	second, err := f.svc.Create(ctx, domain.CreateOrderRequest{
		OrderType: "sale",
		Items:     []domain.CreateOrderItem{{ProductID: p1.String(), Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, "ORD-20240601-0002", second.OrderNumber)

	f.clock.Advance(24 * time.Hour)
	third, err := f.svc.Create(ctx, domain.CreateOrderRequest{
		OrderType: "sale",
		Items:     []domain.CreateOrderItem{{ProductID: p1.String(), Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, "ORD-20240602-0001", third.OrderNumber)
}

func TestCreateSaleOrderInterStateWithPriceOverride(t *testing.T) {
	f := newFixture(t)
	p1 := f.seedProduct(t, "SKU-1", "100", "18", 10, 3)
	price := decimal.RequireFromString("80")

	order, err := f.svc.Create(context.Background(), domain.CreateOrderRequest{
		OrderType:  "sale",
		PartyName:  "Delhi Traders",
		PartyGSTIN: "07aaacb1234c1z5",
		Items:      []domain.CreateOrderItem{{ProductID: p1.String(), Quantity: 5, UnitPrice: &price}},
	})
	require.NoError(t, err)

	assert.Equal(t, "07AAACB1234C1Z5", order.PartyGSTIN)
	assert.Equal(t, "07", order.PartyStateCode)
	assert.Equal(t, string(engine.SupplyInterState), order.SupplyType)
	assert.True(t, order.Subtotal.Equal(decimal.RequireFromString("400")))
	assert.True(t, order.IGST.Equal(decimal.RequireFromString("72")))
	assert.True(t, order.CGST.IsZero())
}

func TestCreateOrderRejectsWholeOrderOnInvalidLine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p1 := f.seedProduct(t, "SKU-1", "100", "18", 10, 3)

	_, err := f.svc.Create(ctx, domain.CreateOrderRequest{
		OrderType: "sale",
		Items: []domain.CreateOrderItem{
			{ProductID: p1.String(), Quantity: 2},
			{ProductID: p1.String(), Quantity: 0},
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrInvalidQuantity)
	assert.ErrorIs(t, err, engine.ErrInvalidArgument)

	var count int64
	require.NoError(t, f.db.Model(&domain.Order{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Equal(t, int64(10), f.available(t, p1))

	_, err = f.svc.Create(ctx, domain.CreateOrderRequest{
		OrderType: "sale",
		Items:     []domain.CreateOrderItem{{ProductID: "12345", Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	_, err = f.svc.Create(ctx, domain.CreateOrderRequest{OrderType: "refund", Items: []domain.CreateOrderItem{{ProductID: p1.String(), Quantity: 1}}})
	assert.ErrorIs(t, err, domain.ErrInvalidType)

	_, err = f.svc.Create(ctx, domain.CreateOrderRequest{OrderType: "sale"})
	assert.ErrorIs(t, err, domain.ErrEmptyItems)

	_, err = f.svc.Create(ctx, domain.CreateOrderRequest{
		OrderType:  "sale",
		PartyGSTIN: "not-a-gstin",
		Items:      []domain.CreateOrderItem{{ProductID: p1.String(), Quantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidGSTIN)
}

func TestCancelSaleRestoresDebitedStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p1 := f.seedProduct(t, "SKU-1", "10", "12", 2, 0)

	order, err := f.svc.Create(ctx, domain.CreateOrderRequest{
		OrderType: "sale",
		Items:     []domain.CreateOrderItem{{ProductID: p1.String(), Quantity: 5}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), f.available(t, p1))

	cancelled, err := f.svc.UpdateStatus(ctx, domain.UpdateStatusRequest{ID: order.ID.String(), Status: "cancelled"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, cancelled.Status)
	assert.Equal(t, int64(2), f.available(t, p1))

	changed := f.recorder.Events(events.EventTypeOrderStatusChanged)
	require.Len(t, changed, 1)
	assert.Equal(t, order.ID.String(), changed[0].Key)

	_, err = f.svc.UpdateStatus(ctx, domain.UpdateStatusRequest{ID: order.ID.String(), Status: "completed"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition)
}

func TestPurchaseCreditsAndCancelReverses(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p1 := f.seedProduct(t, "SKU-1", "40", "18", 1, 5)

	supplier := supplierdomain.Supplier{
		ID:        f.node.Generate(),
		Name:      "Karnataka Mills",
		GSTIN:     "29AAACK1234C1Z5",
		CreatedAt: f.clock.Now(),
		UpdatedAt: f.clock.Now(),
	}
	require.NoError(t, f.db.Create(&supplier).Error)

	order, err := f.svc.Create(ctx, domain.CreateOrderRequest{
		OrderType:  "purchase",
		SupplierID: supplier.ID.String(),
		Items:      []domain.CreateOrderItem{{ProductID: p1.String(), Quantity: 10}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(11), f.available(t, p1))
	assert.Equal(t, string(engine.SupplyInterState), order.SupplyType)
	assert.Equal(t, "27", order.SellerStateCode)
	require.NotNil(t, order.SupplierID)

	// sell most of it so the reversal floors at zero
	_, err = f.svc.Create(ctx, domain.CreateOrderRequest{
		OrderType: "sale",
		Items:     []domain.CreateOrderItem{{ProductID: p1.String(), Quantity: 8}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), f.available(t, p1))

	_, err = f.svc.UpdateStatus(ctx, domain.UpdateStatusRequest{ID: order.ID.String(), Status: "cancelled"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), f.available(t, p1))
}

func TestCreateIsIdempotentByKey(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p1 := f.seedProduct(t, "SKU-1", "100", "18", 10, 3)

	req := domain.CreateOrderRequest{
		OrderType:      "sale",
		Items:          []domain.CreateOrderItem{{ProductID: p1.String(), Quantity: 2}},
		IdempotencyKey: "retry-1",
	}
	first, err := f.svc.Create(ctx, req)
	require.NoError(t, err)
	second, err := f.svc.Create(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, int64(8), f.available(t, p1))
	assert.Len(t, f.recorder.Events(events.EventTypeOrderCreated), 1)
}

func TestUpdatePaymentAndList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p1 := f.seedProduct(t, "SKU-1", "100", "18", 50, 3)

	var ids []snowflake.ID
	for i := 0; i < 3; i++ {
		order, err := f.svc.Create(ctx, domain.CreateOrderRequest{
			OrderType: "sale",
			Items:     []domain.CreateOrderItem{{ProductID: p1.String(), Quantity: 1}},
		})
		require.NoError(t, err)
		ids = append(ids, order.ID)
		f.clock.Advance(time.Minute)
	}
	_, err := f.svc.Create(ctx, domain.CreateOrderRequest{
		OrderType: "purchase",
		Items:     []domain.CreateOrderItem{{ProductID: p1.String(), Quantity: 1}},
	})
	require.NoError(t, err)

	method := "upi"
	paid, err := f.svc.UpdatePayment(ctx, domain.UpdatePaymentRequest{ID: ids[0].String(), PaymentStatus: "paid", PaymentMethod: &method})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, paid.PaymentStatus)
	require.NotNil(t, paid.PaymentMethod)
	assert.Equal(t, "upi", *paid.PaymentMethod)

	_, err = f.svc.UpdatePayment(ctx, domain.UpdatePaymentRequest{ID: ids[0].String(), PaymentStatus: "refunded"})
	assert.ErrorIs(t, err, domain.ErrInvalidPaymentStatus)

	page, err := f.svc.List(ctx, domain.ListOrderRequest{Type: "sales"})
	require.NoError(t, err)
	require.Len(t, page.Orders, 3)
	assert.Equal(t, ids[2], page.Orders[0].ID)
	assert.Equal(t, ids[0], page.Orders[2].ID)

	_, err = f.svc.List(ctx, domain.ListOrderRequest{Status: "shipped"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	_, err = f.svc.Get(ctx, "999")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/stockbook/internal/config"
	gstdomain "github.com/smallbiznis/stockbook/internal/gst/domain"
	"github.com/smallbiznis/stockbook/internal/gst/engine"
	invoicedomain "github.com/smallbiznis/stockbook/internal/invoice/domain"
	"github.com/smallbiznis/stockbook/internal/observability"
	obsmetrics "github.com/smallbiznis/stockbook/internal/observability/metrics"
	orderdomain "github.com/smallbiznis/stockbook/internal/order/domain"
	productdomain "github.com/smallbiznis/stockbook/internal/product/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOrderService struct {
	orderdomain.Service

	createReq orderdomain.CreateOrderRequest
	createErr error
	getErr    error
	statusErr error
}

func (f *fakeOrderService) Create(_ context.Context, req orderdomain.CreateOrderRequest) (orderdomain.Order, error) {
	f.createReq = req
	if f.createErr != nil {
		return orderdomain.Order{}, f.createErr
	}
	return orderdomain.Order{
		OrderNumber: "ORD-20240601-0001",
		Type:        orderdomain.TypeSale,
		Status:      orderdomain.StatusPending,
		GrandTotal:  decimal.RequireFromString("393.5"),
	}, nil
}

func (f *fakeOrderService) Get(context.Context, string) (orderdomain.Order, error) {
	return orderdomain.Order{}, f.getErr
}

func (f *fakeOrderService) UpdateStatus(context.Context, orderdomain.UpdateStatusRequest) (orderdomain.Order, error) {
	return orderdomain.Order{}, f.statusErr
}

type fakeProductService struct {
	productdomain.Service

	createErr error
}

func (f *fakeProductService) Create(_ context.Context, req productdomain.CreateRequest) (*productdomain.Response, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &productdomain.Response{ID: "1", SKU: req.SKU, Name: req.Name}, nil
}

type fakeInvoiceService struct {
	invoicedomain.Service
}

func (fakeInvoiceService) RenderInvoicePDF(_ context.Context, orderID string) (invoicedomain.Document, error) {
	return invoicedomain.Document{
		Filename: fmt.Sprintf("invoice-%s.pdf", orderID),
		Content:  strings.NewReader("%PDF-1.4 test"),
	}, nil
}

type fakeGSTService struct {
	gstdomain.Service

	splitReq gstdomain.SplitRequest
}

func (f *fakeGSTService) ListStates(context.Context) ([]engine.Jurisdiction, error) {
	return engine.DefaultRegistry().All(), nil
}

func (f *fakeGSTService) Split(_ context.Context, req gstdomain.SplitRequest) (*engine.TaxSplit, error) {
	f.splitReq = req
	split, err := engine.ComputeTaxSplit(req.Amount, req.Rate, req.SellerStateCode, req.BuyerGSTIN)
	if err != nil {
		return nil, err
	}
	return &split, nil
}

type testServer struct {
	srv      *Server
	orders   *fakeOrderService
	products *fakeProductService
	gst      *fakeGSTService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	engineHTTP := NewEngine(observability.Config{}, obsmetrics.NewHTTPMetrics(prometheus.NewRegistry()))
	ts := &testServer{
		orders:   &fakeOrderService{},
		products: &fakeProductService{},
		gst:      &fakeGSTService{},
	}
	ts.srv = NewServer(ServerParams{
		Gin: engineHTTP,
		Business: config.NewStaticBusinessSettings(config.BusinessSettings{
			Name:      "Sharma Traders",
			StateCode: "27",
			UPIVPA:    "sharma@okbank",
		}),
		ProductSvc: ts.products,
		OrderSvc:   ts.orders,
		InvoiceSvc: fakeInvoiceService{},
		GSTSvc:     ts.gst,
	})
	return ts
}

func (ts *testServer) do(method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	ts.srv.Engine().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorPayload {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestCreateOrderPassesIdempotencyKey(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/api/orders",
		`{"order_type":"sale","customer_gstin":"29ABCDE1234F1Z5","items":[{"product_id":"10","quantity":2}]}`,
		map[string]string{HeaderIdempotencyKey: "retry-1"},
	)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	assert.Equal(t, "retry-1", ts.orders.createReq.IdempotencyKey)
	assert.Equal(t, "29ABCDE1234F1Z5", ts.orders.createReq.PartyGSTIN)
	require.Len(t, ts.orders.createReq.Items, 1)
	assert.Equal(t, int64(2), ts.orders.createReq.Items[0].Quantity)

	var body struct {
		Data struct {
			OrderNumber string `json:"order_number"`
			Total       string `json:"total_amount"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ORD-20240601-0001", body.Data.OrderNumber)
	assert.Equal(t, "393.5", body.Data.Total)
}

func TestCreateOrderRejectsLongIdempotencyKey(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(http.MethodPost, "/api/orders", `{"order_type":"sale","items":[]}`,
		map[string]string{HeaderIdempotencyKey: strings.Repeat("k", maxIdempotencyKeyLen+1)})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_idempotency_key", decodeError(t, rec).Errors[0].Code)
}

func TestCreateOrderLineErrorNamesTheLine(t *testing.T) {
	ts := newTestServer(t)
	ts.orders.createErr = fmt.Errorf("items[%d]: %w", 1, engine.ErrInvalidQuantity)

	rec := ts.do(http.MethodPost, "/api/orders", `{"order_type":"sale","items":[{"product_id":"1","quantity":1},{"product_id":"2","quantity":0}]}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	payload := decodeError(t, rec)
	assert.Equal(t, "validation_error", payload.Type)
	require.Len(t, payload.Errors, 1)
	assert.Equal(t, "invalid_quantity", payload.Errors[0].Code)
	assert.Equal(t, "items[1].quantity", payload.Errors[0].Field)
}

func TestOrderErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		kind   string
	}{
		{name: "in flight", err: orderdomain.ErrRequestInFlight, status: http.StatusConflict, kind: "conflict"},
		{name: "empty items", err: orderdomain.ErrEmptyItems, status: http.StatusBadRequest, kind: "validation_error"},
		{name: "missing product", err: orderdomain.ErrProductNotFound, status: http.StatusNotFound, kind: "not_found"},
		{name: "bad type", err: orderdomain.ErrInvalidType, status: http.StatusBadRequest, kind: "validation_error"},
		{name: "unexpected", err: fmt.Errorf("boom"), status: http.StatusInternalServerError, kind: "internal_error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ts := newTestServer(t)
			ts.orders.createErr = tc.err

			rec := ts.do(http.MethodPost, "/api/orders", `{"order_type":"sale","items":[{"product_id":"1","quantity":1}]}`, nil)
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.kind, decodeError(t, rec).Type)
		})
	}
}

func TestGetOrderNotFound(t *testing.T) {
	ts := newTestServer(t)
	ts.orders.getErr = orderdomain.ErrNotFound

	rec := ts.do(http.MethodGet, "/api/orders/42", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateOrderStatusRejectsTransition(t *testing.T) {
	ts := newTestServer(t)
	ts.orders.statusErr = orderdomain.ErrInvalidStatusTransition

	rec := ts.do(http.MethodPut, "/api/orders/42/status", `{"status":"pending"}`, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "invalid_status_transition", decodeError(t, rec).Type)
}

func TestCreateProductDuplicateSKU(t *testing.T) {
	ts := newTestServer(t)
	ts.products.createErr = productdomain.ErrDuplicateSKU

	rec := ts.do(http.MethodPost, "/api/products", `{"sku":"RICE-5KG","name":"Rice","category":"Grocery","unit_price":"250"}`, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreateProductMalformedBody(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/api/products", `{"sku":`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_request", decodeError(t, rec).Errors[0].Code)
}

func TestRenderOrderInvoiceStreamsPDF(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/api/orders/42/invoice.pdf", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "invoice-42.pdf")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF"))
}

func TestSplitGST(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/api/gst/split", `{"amount":"1000","gst_rate":"18","seller_state_code":"27","customer_gstin":"29abcde1234f1z5"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "27", ts.gst.splitReq.SellerStateCode)

	var body struct {
		Data engine.TaxSplit `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Data.IGST.Equal(decimal.NewFromInt(180)))
	assert.True(t, body.Data.CGST.IsZero())
}

func TestSplitGSTNegativeAmount(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodPost, "/api/gst/split", `{"amount":"-1","gst_rate":"18","seller_state_code":"27"}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_amount", decodeError(t, rec).Errors[0].Code)
}

func TestGetBusinessSettings(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/api/settings/business", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data businessSettingsResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Sharma Traders", body.Data.Name)
	assert.Equal(t, "27", body.Data.StateCode)
	assert.Equal(t, "Maharashtra", body.Data.StateName)
}

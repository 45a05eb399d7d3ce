package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	analyticsdomain "github.com/smallbiznis/stockbook/internal/analytics/domain"
	auditdomain "github.com/smallbiznis/stockbook/internal/audit/domain"
	"github.com/smallbiznis/stockbook/internal/config"
	customerdomain "github.com/smallbiznis/stockbook/internal/customer/domain"
	gstdomain "github.com/smallbiznis/stockbook/internal/gst/domain"
	inventorydomain "github.com/smallbiznis/stockbook/internal/inventory/domain"
	invoicedomain "github.com/smallbiznis/stockbook/internal/invoice/domain"
	"github.com/smallbiznis/stockbook/internal/observability"
	obsmiddleware "github.com/smallbiznis/stockbook/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/stockbook/internal/observability/metrics"
	obstracing "github.com/smallbiznis/stockbook/internal/observability/tracing"
	orderdomain "github.com/smallbiznis/stockbook/internal/order/domain"
	productdomain "github.com/smallbiznis/stockbook/internal/product/domain"
	supplierdomain "github.com/smallbiznis/stockbook/internal/supplier/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(func(*Server) {}),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if !obsCfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine       *gin.Engine
	business     *config.BusinessSettingsHolder
	auditSvc     auditdomain.Service
	productSvc   productdomain.Service
	inventorySvc inventorydomain.Service
	customerSvc  customerdomain.Service
	supplierSvc  supplierdomain.Service
	orderSvc     orderdomain.Service
	invoiceSvc   invoicedomain.Service
	gstSvc       gstdomain.Service
	analyticsSvc analyticsdomain.Service
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Business     *config.BusinessSettingsHolder
	AuditSvc     auditdomain.Service
	ProductSvc   productdomain.Service
	InventorySvc inventorydomain.Service
	CustomerSvc  customerdomain.Service
	SupplierSvc  supplierdomain.Service
	OrderSvc     orderdomain.Service
	InvoiceSvc   invoicedomain.Service
	GSTSvc       gstdomain.Service
	AnalyticsSvc analyticsdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:       p.Gin,
		business:     p.Business,
		auditSvc:     p.AuditSvc,
		productSvc:   p.ProductSvc,
		inventorySvc: p.InventorySvc,
		customerSvc:  p.CustomerSvc,
		supplierSvc:  p.SupplierSvc,
		orderSvc:     p.OrderSvc,
		invoiceSvc:   p.InvoiceSvc,
		gstSvc:       p.GSTSvc,
		analyticsSvc: p.AnalyticsSvc,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	api.GET("/dashboard-stats", s.GetDashboardStats)

	// -------- Products --------
	api.GET("/products", s.ListProducts)
	api.POST("/products", s.CreateProduct)
	api.GET("/products/:id", s.GetProductByID)
	api.PATCH("/products/:id", s.UpdateProduct)
	api.PUT("/products/:id", s.UpdateProduct)
	api.DELETE("/products/:id", s.DeleteProduct)

	// -------- Stock --------
	api.GET("/products/:id/stock", s.GetStock)
	api.PUT("/products/:id/stock", s.SetStockLevels)
	api.POST("/products/:id/stock/adjust", s.AdjustStock)
	api.GET("/stock/low-stock-alerts", s.ListLowStockAlerts)

	// -------- Customers --------
	api.GET("/customers", s.ListCustomers)
	api.POST("/customers", s.CreateCustomer)
	api.GET("/customers/:id", s.GetCustomerByID)
	api.PATCH("/customers/:id", s.UpdateCustomer)

	// -------- Suppliers --------
	api.GET("/suppliers", s.ListSuppliers)
	api.POST("/suppliers", s.CreateSupplier)
	api.GET("/suppliers/:id", s.GetSupplierByID)

	// -------- Orders --------
	api.GET("/orders", s.ListOrders)
	api.POST("/orders", s.CreateOrder)
	api.GET("/orders/:id", s.GetOrderByID)
	api.PUT("/orders/:id/status", s.UpdateOrderStatus)
	api.PUT("/orders/:id/payment", s.UpdateOrderPayment)
	api.GET("/orders/:id/invoice.pdf", s.RenderOrderInvoice)
	api.GET("/orders/:id/upi-qr", s.GetOrderUPIQR)

	// -------- GST --------
	api.GET("/gst/states", s.ListGSTStates)
	api.POST("/gst/split", s.SplitGST)
	api.POST("/gst/quote", s.QuoteGST)

	// -------- Analytics --------
	analytics := api.Group("/analytics")
	{
		analytics.GET("/sales-chart", s.GetSalesChart)
		analytics.GET("/category-chart", s.GetCategoryChart)
		analytics.GET("/sales-forecast", s.GetSalesForecast)
		analytics.GET("/abc-analysis", s.GetABCAnalysis)
		analytics.GET("/seasonal-trends", s.GetSeasonalTrends)
		analytics.GET("/inventory-optimization", s.GetInventoryOptimization)
		analytics.GET("/profit", s.GetProfitAnalytics)
	}

	api.GET("/audit-logs", s.ListAuditLogs)
	api.GET("/settings/business", s.GetBusinessSettings)
}

package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/stockbook/internal/analytics"
	"github.com/smallbiznis/stockbook/internal/audit"
	"github.com/smallbiznis/stockbook/internal/cache"
	"github.com/smallbiznis/stockbook/internal/clock"
	"github.com/smallbiznis/stockbook/internal/config"
	"github.com/smallbiznis/stockbook/internal/customer"
	"github.com/smallbiznis/stockbook/internal/events"
	"github.com/smallbiznis/stockbook/internal/gst"
	"github.com/smallbiznis/stockbook/internal/inventory"
	"github.com/smallbiznis/stockbook/internal/invoice"
	"github.com/smallbiznis/stockbook/internal/migration"
	"github.com/smallbiznis/stockbook/internal/observability"
	"github.com/smallbiznis/stockbook/internal/order"
	"github.com/smallbiznis/stockbook/internal/product"
	"github.com/smallbiznis/stockbook/internal/providers/pdf"
	"github.com/smallbiznis/stockbook/internal/server"
	"github.com/smallbiznis/stockbook/internal/supplier"
	"github.com/smallbiznis/stockbook/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		cache.Module,
		events.Module,

		// Domains
		gst.Module,
		migration.Module,
		audit.Module,
		product.Module,
		inventory.Module,
		customer.Module,
		supplier.Module,
		order.Module,
		pdf.Module,
		invoice.Module,
		analytics.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.NodeID)
}

package gst

import (
	"github.com/smallbiznis/stockbook/internal/gst/repository"
	"github.com/smallbiznis/stockbook/internal/gst/service"
	"go.uber.org/fx"
)

var Module = fx.Module("gst.service",
	fx.Provide(service.NewCalculator),
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)

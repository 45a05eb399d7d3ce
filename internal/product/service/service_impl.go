package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	auditdomain "github.com/smallbiznis/stockbook/internal/audit/domain"
	"github.com/smallbiznis/stockbook/internal/clock"
	"github.com/smallbiznis/stockbook/internal/config"
	inventorydomain "github.com/smallbiznis/stockbook/internal/inventory/domain"
	"github.com/smallbiznis/stockbook/internal/product/domain"
	"github.com/smallbiznis/stockbook/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var maxGSTRate = decimal.NewFromInt(100)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     domain.Repository
	Ledger   inventorydomain.Ledger
	Business *config.BusinessSettingsHolder
	Audit    auditdomain.Service `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	repo     domain.Repository
	genID    *snowflake.Node
	clock    clock.Clock
	ledger   inventorydomain.Ledger
	business *config.BusinessSettingsHolder
	audit    auditdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("product.service"),
		repo:     p.Repo,
		genID:    p.GenID,
		clock:    p.Clock,
		ledger:   p.Ledger,
		business: p.Business,
		audit:    p.Audit,
	}
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, error) {
	filter := domain.ListFilter{
		Name:    strings.ToLower(strings.TrimSpace(req.Name)),
		SortBy:  strings.TrimSpace(req.SortBy),
		OrderBy: strings.TrimSpace(req.OrderBy),
	}
	if category := strings.TrimSpace(req.Category); category != "" {
		filter.CategoryKey = slug.Make(category)
	}

	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, toResponse(&items[i]))
	}
	return resp, nil
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	sku := strings.TrimSpace(req.SKU)
	if sku == "" {
		return nil, domain.ErrInvalidSKU
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	category := strings.TrimSpace(req.Category)
	if category == "" || slug.Make(category) == "" {
		return nil, domain.ErrInvalidCategory
	}
	if req.UnitPrice.IsNegative() {
		return nil, domain.ErrInvalidUnitPrice
	}

	costPrice := decimal.Zero
	if req.CostPrice != nil {
		costPrice = *req.CostPrice
	}
	if costPrice.IsNegative() {
		return nil, domain.ErrInvalidCostPrice
	}

	rate := domain.DefaultGSTRate
	if req.GSTRate != nil {
		rate = *req.GSTRate
	}
	if !validRate(rate) {
		return nil, domain.ErrInvalidGSTRate
	}

	if req.AvailableQty < 0 {
		return nil, domain.ErrInvalidQuantity
	}
	minQty := s.business.Get().DefaultMinQty
	if req.MinQty != nil {
		minQty = *req.MinQty
	}
	if minQty < 0 {
		return nil, domain.ErrInvalidMinQty
	}

	now := s.clock.Now()
	p := &domain.Product{
		ID:          s.genID.Generate(),
		SKU:         sku,
		Name:        name,
		Description: trimmedPtr(req.Description),
		Category:    category,
		CategoryKey: slug.Make(category),
		HSNCode:     strings.TrimSpace(req.HSNCode),
		UnitPrice:   req.UnitPrice,
		CostPrice:   costPrice,
		GSTRate:     rate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.Metadata != nil {
		p.Metadata = datatypes.JSONMap(req.Metadata)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Create(ctx, tx, p); err != nil {
			return err
		}
		return s.ledger.Open(ctx, tx, p.ID, req.AvailableQty, minQty)
	})
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrDuplicateSKU
		}
		return nil, err
	}

	s.writeAudit(ctx, auditdomain.ActionProductCreated, p.ID, map[string]any{
		"sku":           p.SKU,
		"available_qty": req.AvailableQty,
		"min_qty":       minQty,
	})

	resp := toResponse(&domain.Listing{Product: *p, AvailableQty: req.AvailableQty, MinQty: minQty})
	return &resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	productID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	item, err := s.repo.FindListingByID(ctx, s.db, productID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	resp := toResponse(item)
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Response, error) {
	productID, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}

	item, err := s.repo.FindByID(ctx, s.db, productID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	if req.SKU != nil {
		sku := strings.TrimSpace(*req.SKU)
		if sku == "" {
			return nil, domain.ErrInvalidSKU
		}
		item.SKU = sku
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		item.Name = name
	}
	if req.Description != nil {
		item.Description = trimmedPtr(req.Description)
	}
	if req.Category != nil {
		category := strings.TrimSpace(*req.Category)
		if category == "" || slug.Make(category) == "" {
			return nil, domain.ErrInvalidCategory
		}
		item.Category = category
		item.CategoryKey = slug.Make(category)
	}
	if req.HSNCode != nil {
		item.HSNCode = strings.TrimSpace(*req.HSNCode)
	}
	if req.UnitPrice != nil {
		if req.UnitPrice.IsNegative() {
			return nil, domain.ErrInvalidUnitPrice
		}
		item.UnitPrice = *req.UnitPrice
	}
	if req.CostPrice != nil {
		if req.CostPrice.IsNegative() {
			return nil, domain.ErrInvalidCostPrice
		}
		item.CostPrice = *req.CostPrice
	}
	if req.GSTRate != nil {
		if !validRate(*req.GSTRate) {
			return nil, domain.ErrInvalidGSTRate
		}
		item.GSTRate = *req.GSTRate
	}
	if req.Metadata != nil {
		item.Metadata = datatypes.JSONMap(req.Metadata)
	}

	item.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrDuplicateSKU
		}
		return nil, err
	}

	s.writeAudit(ctx, auditdomain.ActionProductUpdated, item.ID, map[string]any{"sku": item.SKU})
	return s.Get(ctx, item.ID.String())
}

func (s *Service) Delete(ctx context.Context, id string) error {
	productID, err := parseID(id)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := s.repo.FindByID(ctx, tx, productID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		if err := s.ledger.Remove(ctx, tx, productID); err != nil {
			return err
		}
		return s.repo.Delete(ctx, tx, productID)
	})
	if err != nil {
		return err
	}

	s.writeAudit(ctx, auditdomain.ActionProductDeleted, productID, nil)
	return nil
}

func (s *Service) CategoryChart(ctx context.Context) ([]domain.CategoryCount, error) {
	return s.repo.CountByCategory(ctx, s.db)
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx, s.db)
}

func (s *Service) writeAudit(ctx context.Context, action string, id snowflake.ID, metadata map[string]any) {
	if s.audit == nil {
		return
	}
	target := id.String()
	_ = s.audit.AuditLog(ctx, action, "product", &target, metadata)
}

func validRate(rate decimal.Decimal) bool {
	return !rate.IsNegative() && rate.LessThanOrEqual(maxGSTRate)
}

func parseID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func trimmedPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func toResponse(p *domain.Listing) domain.Response {
	resp := domain.Response{
		ID:           p.ID.String(),
		SKU:          p.SKU,
		Name:         p.Name,
		Description:  p.Description,
		Category:     p.Category,
		CategoryKey:  p.CategoryKey,
		HSNCode:      p.HSNCode,
		UnitPrice:    p.UnitPrice,
		CostPrice:    p.CostPrice,
		GSTRate:      p.GSTRate,
		AvailableQty: p.AvailableQty,
		MinQty:       p.MinQty,
		IsLowStock:   p.AvailableQty <= p.MinQty,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
	if len(p.Metadata) > 0 {
		resp.Metadata = map[string]any(p.Metadata)
	}
	return resp
}

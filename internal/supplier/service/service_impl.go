package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/stockbook/internal/clock"
	"github.com/smallbiznis/stockbook/internal/gst/engine"
	"github.com/smallbiznis/stockbook/internal/supplier/domain"
	"github.com/smallbiznis/stockbook/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("supplier.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateSupplierRequest) (domain.Supplier, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Supplier{}, domain.ErrInvalidName
	}
	gstin, err := engine.NormalizeGSTIN(req.GSTIN)
	if err != nil {
		return domain.Supplier{}, domain.ErrInvalidGSTIN
	}

	now := s.clock.Now()
	supplier := domain.Supplier{
		ID:            s.genID.Generate(),
		Name:          name,
		ContactPerson: strings.TrimSpace(req.ContactPerson),
		Email:         strings.TrimSpace(req.Email),
		Phone:         strings.TrimSpace(req.Phone),
		GSTIN:         gstin,
		Address:       strings.TrimSpace(req.Address),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Insert(ctx, s.db, &supplier); err != nil {
		return domain.Supplier{}, err
	}
	return supplier, nil
}

func (s *Service) List(ctx context.Context, req domain.ListSupplierRequest) (domain.ListSupplierResponse, error) {
	if err := pagination.ValidateToken(req.PageToken); err != nil {
		return domain.ListSupplierResponse{}, domain.ErrInvalidPageToken
	}

	pageSize := req.Size()
	items, err := s.repo.List(ctx, s.db, strings.ToLower(strings.TrimSpace(req.Name)), pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  pageSize,
	})
	if err != nil {
		return domain.ListSupplierResponse{}, err
	}

	items, pageInfo := pagination.Trim(items, pageSize, func(item *domain.Supplier) string {
		return pagination.TokenFor(item.ID.Int64(), item.CreatedAt)
	})

	suppliers := make([]domain.Supplier, 0, len(items))
	for _, item := range items {
		suppliers = append(suppliers, *item)
	}
	return domain.ListSupplierResponse{PageInfo: pageInfo, Suppliers: suppliers}, nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.Supplier, error) {
	supplierID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || supplierID == 0 {
		return domain.Supplier{}, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, supplierID)
	if err != nil {
		return domain.Supplier{}, err
	}
	if item == nil {
		return domain.Supplier{}, domain.ErrNotFound
	}
	return *item, nil
}

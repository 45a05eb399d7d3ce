package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/stockbook/internal/clock"
	"github.com/smallbiznis/stockbook/internal/customer/domain"
	"github.com/smallbiznis/stockbook/internal/gst/engine"
	"github.com/smallbiznis/stockbook/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
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
		log:   p.Log.Named("customer.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateCustomerRequest) (domain.Customer, error) {
	now := s.clock.Now()
	customer := domain.Customer{
		ID:        s.genID.Generate(),
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.TrimSpace(req.Email),
		Phone:     strings.TrimSpace(req.Phone),
		Address:   strings.TrimSpace(req.Address),
		Metadata:  datatypes.JSONMap{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Metadata != nil {
		customer.Metadata = datatypes.JSONMap(req.Metadata)
	}
	if err := applyTaxIdentity(&customer, req.GSTIN, req.StateCode); err != nil {
		return domain.Customer{}, err
	}
	if err := validate(customer); err != nil {
		return domain.Customer{}, err
	}

	if err := s.repo.Insert(ctx, s.db, &customer); err != nil {
		return domain.Customer{}, err
	}
	return customer, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateCustomerRequest) (domain.Customer, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Customer{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Customer{}, err
	}
	if item == nil {
		return domain.Customer{}, domain.ErrNotFound
	}

	if req.Name != nil {
		item.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		item.Email = strings.TrimSpace(*req.Email)
	}
	if req.Phone != nil {
		item.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Address != nil {
		item.Address = strings.TrimSpace(*req.Address)
	}
	if req.GSTIN != nil || req.StateCode != nil {
		gstin := item.GSTIN
		if req.GSTIN != nil {
			gstin = *req.GSTIN
		}
		stateCode := ""
		if req.StateCode != nil {
			stateCode = *req.StateCode
		} else if strings.TrimSpace(gstin) == "" {
			stateCode = item.StateCode
		}
		if err := applyTaxIdentity(item, gstin, stateCode); err != nil {
			return domain.Customer{}, err
		}
	}
	if req.Metadata != nil {
		item.Metadata = datatypes.JSONMap(req.Metadata)
	}
	if err := validate(*item); err != nil {
		return domain.Customer{}, err
	}

	item.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return domain.Customer{}, err
	}
	return *item, nil
}

func (s *Service) List(ctx context.Context, req domain.ListCustomerRequest) (domain.ListCustomerResponse, error) {
	if err := pagination.ValidateToken(req.PageToken); err != nil {
		return domain.ListCustomerResponse{}, domain.ErrInvalidPageToken
	}

	filter := domain.ListCustomerFilter{
		Name:        strings.ToLower(strings.TrimSpace(req.Name)),
		Phone:       strings.TrimSpace(req.Phone),
		GSTIN:       strings.ToUpper(strings.TrimSpace(req.GSTIN)),
		CreatedFrom: req.CreatedFrom,
		CreatedTo:   req.CreatedTo,
	}

	pageSize := req.Size()
	items, err := s.repo.List(ctx, s.db, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  pageSize,
	})
	if err != nil {
		return domain.ListCustomerResponse{}, err
	}

	items, pageInfo := pagination.Trim(items, pageSize, func(customer *domain.Customer) string {
		return pagination.TokenFor(customer.ID.Int64(), customer.CreatedAt)
	})

	customers := make([]domain.Customer, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		customers = append(customers, *item)
	}

	return domain.ListCustomerResponse{PageInfo: pageInfo, Customers: customers}, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetCustomerRequest) (domain.Customer, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Customer{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Customer{}, err
	}
	if item == nil {
		return domain.Customer{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

// applyTaxIdentity sets GSTIN and the state code derived from it. An
// explicit state code must agree with the GSTIN prefix.
func applyTaxIdentity(customer *domain.Customer, rawGSTIN, rawStateCode string) error {
	gstin, err := engine.NormalizeGSTIN(rawGSTIN)
	if err != nil {
		if errors.Is(err, engine.ErrInvalidArgument) {
			return domain.ErrInvalidGSTIN
		}
		return err
	}

	stateCode := strings.TrimSpace(rawStateCode)
	if gstin != "" {
		if stateCode != "" && stateCode != gstin[:2] {
			return domain.ErrInvalidStateCode
		}
		stateCode = gstin[:2]
	}
	if stateCode != "" && !engine.DefaultRegistry().Valid(stateCode) {
		return domain.ErrInvalidStateCode
	}

	customer.GSTIN = gstin
	customer.StateCode = stateCode
	return nil
}

func validate(customer domain.Customer) error {
	if customer.Name == "" {
		return domain.ErrInvalidName
	}
	if customer.Email != "" {
		if _, err := mail.ParseAddress(customer.Email); err != nil {
			return domain.ErrInvalidEmail
		}
	}
	return nil
}

package domain

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/stockbook/pkg/db/pagination"
)

type ListCustomerRequest struct {
	pagination.Pagination
	Name        string
	Phone       string
	GSTIN       string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type ListCustomerFilter struct {
	Name        string
	Phone       string
	GSTIN       string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type ListCustomerResponse struct {
	pagination.PageInfo
	Customers []Customer `json:"customers"`
}

type CreateCustomerRequest struct {
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	Phone     string         `json:"phone"`
	GSTIN     string         `json:"gstin"`
	Address   string         `json:"address"`
	StateCode string         `json:"state_code"`
	Metadata  map[string]any `json:"metadata"`
}

type UpdateCustomerRequest struct {
	ID        string         `json:"-"`
	Name      *string        `json:"name"`
	Email     *string        `json:"email"`
	Phone     *string        `json:"phone"`
	GSTIN     *string        `json:"gstin"`
	Address   *string        `json:"address"`
	StateCode *string        `json:"state_code"`
	Metadata  map[string]any `json:"metadata"`
}

type GetCustomerRequest struct {
	ID string
}

type Service interface {
	Create(context.Context, CreateCustomerRequest) (Customer, error)
	Update(context.Context, UpdateCustomerRequest) (Customer, error)
	List(context.Context, ListCustomerRequest) (ListCustomerResponse, error)
	GetByID(context.Context, GetCustomerRequest) (Customer, error)
}

var (
	ErrInvalidName      = errors.New("invalid_name")
	ErrInvalidEmail     = errors.New("invalid_email")
	ErrInvalidGSTIN     = errors.New("invalid_gstin")
	ErrInvalidStateCode = errors.New("invalid_state_code")
	ErrInvalidID        = errors.New("invalid_id")
	ErrInvalidPageToken = errors.New("invalid_page_token")
	ErrNotFound         = errors.New("not_found")
)

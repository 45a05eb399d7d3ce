package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/stockbook/pkg/db/pagination"
)

type CreateSupplierRequest struct {
	Name          string `json:"name"`
	ContactPerson string `json:"contact_person"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	GSTIN         string `json:"gstin"`
	Address       string `json:"address"`
}

type ListSupplierRequest struct {
	pagination.Pagination
	Name string
}

type ListSupplierResponse struct {
	pagination.PageInfo
	Suppliers []Supplier `json:"suppliers"`
}

type Service interface {
	Create(ctx context.Context, req CreateSupplierRequest) (Supplier, error)
	List(ctx context.Context, req ListSupplierRequest) (ListSupplierResponse, error)
	Get(ctx context.Context, id string) (Supplier, error)
}

var (
	ErrInvalidName      = errors.New("invalid_name")
	ErrInvalidGSTIN     = errors.New("invalid_gstin")
	ErrInvalidID        = errors.New("invalid_id")
	ErrInvalidPageToken = errors.New("invalid_page_token")
	ErrNotFound         = errors.New("not_found")
)

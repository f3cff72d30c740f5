package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"lavanderia_backend/internal/customers/repository"
	"lavanderia_backend/internal/customers/transport"
	"lavanderia_backend/platform/logger"
	"lavanderia_backend/platform/phone"
)

// Service provides business logic for customers.
type Service struct {
	repo            repository.Repository
	defaultLanguage string
	log             *logger.Logger
}

// New creates a new customers service.
func New(repo repository.Repository, defaultLanguage string, log *logger.Logger) *Service {
	return &Service{repo: repo, defaultLanguage: defaultLanguage, log: log}
}

// GetByID retrieves a customer by ID.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.CustomerResponse, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.CustomerResponse{}, err
	}
	return toResponse(c), nil
}

// ResolveByPhone resolves or creates the customer behind an inbound phone
// number. New customers default to the configured language.
func (s *Service) ResolveByPhone(ctx context.Context, rawPhone string) (transport.CustomerResponse, error) {
	normalized := phone.NormalizeE164(rawPhone)
	c, err := s.repo.GetOrCreateByPhone(ctx, normalized, s.defaultLanguage)
	if err != nil {
		return transport.CustomerResponse{}, err
	}
	return toResponse(c), nil
}

// List retrieves customers with search and pagination.
func (s *Service) List(ctx context.Context, req transport.ListCustomersRequest) (transport.CustomerListResponse, error) {
	page := req.Page
	pageSize := req.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	items, total, err := s.repo.List(ctx, repository.ListParams{
		Search: req.Search,
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	})
	if err != nil {
		return transport.CustomerListResponse{}, err
	}

	responses := make([]transport.CustomerResponse, 0, len(items))
	for _, c := range items {
		responses = append(responses, toResponse(c))
	}

	return transport.CustomerListResponse{
		Items:    responses,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// Update mutates a customer's profile.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateCustomerRequest) (transport.CustomerResponse, error) {
	c, err := s.repo.Update(ctx, repository.UpdateParams{
		ID:       id,
		Name:     req.Name,
		Language: req.Language,
		Notes:    req.Notes,
	})
	if err != nil {
		return transport.CustomerResponse{}, err
	}

	s.log.Info("customer updated", "id", c.ID)
	return toResponse(c), nil
}

// RecordOrder bumps lifetime aggregates after an order is created.
func (s *Service) RecordOrder(ctx context.Context, id uuid.UUID, amount float64, at time.Time) error {
	return s.repo.RecordOrder(ctx, id, amount, at)
}

func toResponse(c repository.Customer) transport.CustomerResponse {
	return transport.CustomerResponse{
		ID:          c.ID,
		Phone:       c.Phone,
		Name:        c.Name,
		Language:    c.Language,
		Notes:       c.Notes,
		TotalOrders: c.TotalOrders,
		TotalSpent:  c.TotalSpent,
		LastOrderAt: c.LastOrderAt,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

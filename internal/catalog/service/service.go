package service

import (
	"context"

	"github.com/google/uuid"

	"lavanderia_backend/internal/catalog/repository"
	"lavanderia_backend/internal/catalog/transport"
	"lavanderia_backend/platform/apperr"
	"lavanderia_backend/platform/logger"
)

// Service provides business logic for the laundry service catalog.
type Service struct {
	repo repository.Repository
	log  *logger.Logger
}

// New creates a new catalog service.
func New(repo repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// GetByID retrieves a laundry service by ID.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.ServiceResponse, error) {
	svc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.ServiceResponse{}, err
	}
	return toResponse(svc), nil
}

// List retrieves all laundry services.
func (s *Service) List(ctx context.Context) (transport.ServiceListResponse, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return transport.ServiceListResponse{}, err
	}
	return toListResponse(items), nil
}

// ListActive retrieves only active laundry services.
func (s *Service) ListActive(ctx context.Context) (transport.ServiceListResponse, error) {
	items, err := s.repo.ListActive(ctx)
	if err != nil {
		return transport.ServiceListResponse{}, err
	}
	return toListResponse(items), nil
}

// Create creates a new laundry service. At least one price tier is required
// so the service can be sold.
func (s *Service) Create(ctx context.Context, req transport.CreateServiceRequest) (transport.ServiceResponse, error) {
	if req.PriceWashDry == nil && req.PriceWashOnly == nil && req.PriceDryOnly == nil {
		return transport.ServiceResponse{}, apperr.Validation("at least one price tier is required")
	}

	svc, err := s.repo.Create(ctx, repository.CreateParams{
		Name:          req.Name,
		Description:   req.Description,
		PriceWashDry:  req.PriceWashDry,
		PriceWashOnly: req.PriceWashOnly,
		PriceDryOnly:  req.PriceDryOnly,
	})
	if err != nil {
		return transport.ServiceResponse{}, err
	}

	s.log.Info("laundry service created", "id", svc.ID, "name", svc.Name)
	return toResponse(svc), nil
}

// Update updates an existing laundry service.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateServiceRequest) (transport.ServiceResponse, error) {
	svc, err := s.repo.Update(ctx, repository.UpdateParams{
		ID:            id,
		Name:          req.Name,
		Description:   req.Description,
		PriceWashDry:  req.PriceWashDry,
		PriceWashOnly: req.PriceWashOnly,
		PriceDryOnly:  req.PriceDryOnly,
	})
	if err != nil {
		return transport.ServiceResponse{}, err
	}

	s.log.Info("laundry service updated", "id", svc.ID)
	return toResponse(svc), nil
}

// SetActive toggles whether a service is offered.
func (s *Service) SetActive(ctx context.Context, id uuid.UUID, isActive bool) error {
	return s.repo.SetActive(ctx, id, isActive)
}

func toResponse(svc repository.LaundryService) transport.ServiceResponse {
	resp := transport.ServiceResponse{
		ID:            svc.ID,
		Name:          svc.Name,
		Description:   svc.Description,
		PriceWashDry:  svc.PriceWashDry,
		PriceWashOnly: svc.PriceWashOnly,
		PriceDryOnly:  svc.PriceDryOnly,
		IsActive:      svc.IsActive,
		CreatedAt:     svc.CreatedAt,
		UpdatedAt:     svc.UpdatedAt,
	}
	if price, ok := svc.EffectivePrice(); ok {
		resp.DisplayPrice = &price
	}
	return resp
}

func toListResponse(items []repository.LaundryService) transport.ServiceListResponse {
	responses := make([]transport.ServiceResponse, 0, len(items))
	for _, svc := range items {
		responses = append(responses, toResponse(svc))
	}
	return transport.ServiceListResponse{Items: responses, Total: len(responses)}
}

package service

import (
	"context"

	"github.com/google/uuid"

	"lavanderia_backend/internal/conversations/repository"
	"lavanderia_backend/internal/conversations/transport"
)

// ListKnowledge returns all knowledge base entries.
func (s *Service) ListKnowledge(ctx context.Context) ([]transport.KnowledgeEntryResponse, error) {
	items, err := s.knowledge.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]transport.KnowledgeEntryResponse, 0, len(items))
	for _, e := range items {
		responses = append(responses, toKnowledgeResponse(e))
	}
	return responses, nil
}

// CreateKnowledge inserts a new knowledge base entry.
func (s *Service) CreateKnowledge(ctx context.Context, req transport.KnowledgeEntryRequest) (transport.KnowledgeEntryResponse, error) {
	created, err := s.knowledge.Create(ctx, repository.KnowledgeEntry{
		Category: req.Category,
		Title:    req.Title,
		Content:  req.Content,
		Language: req.Language,
		IsActive: req.IsActive,
	})
	if err != nil {
		return transport.KnowledgeEntryResponse{}, err
	}

	s.log.Info("knowledge entry created", "id", created.ID, "category", created.Category)
	return toKnowledgeResponse(created), nil
}

// UpdateKnowledge replaces a knowledge base entry.
func (s *Service) UpdateKnowledge(ctx context.Context, id uuid.UUID, req transport.KnowledgeEntryRequest) (transport.KnowledgeEntryResponse, error) {
	updated, err := s.knowledge.Update(ctx, repository.KnowledgeEntry{
		ID:       id,
		Category: req.Category,
		Title:    req.Title,
		Content:  req.Content,
		Language: req.Language,
		IsActive: req.IsActive,
	})
	if err != nil {
		return transport.KnowledgeEntryResponse{}, err
	}

	return toKnowledgeResponse(updated), nil
}

// DeleteKnowledge removes a knowledge base entry.
func (s *Service) DeleteKnowledge(ctx context.Context, id uuid.UUID) error {
	return s.knowledge.Delete(ctx, id)
}

func toKnowledgeResponse(e repository.KnowledgeEntry) transport.KnowledgeEntryResponse {
	return transport.KnowledgeEntryResponse{
		ID:       e.ID,
		Category: e.Category,
		Title:    e.Title,
		Content:  e.Content,
		Language: e.Language,
		IsActive: e.IsActive,
	}
}

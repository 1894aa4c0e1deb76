package service

import (
	"context"
	"errors"
	"strings"

	"naskahpad/internal/document/model"
	"naskahpad/internal/document/repository"

	"github.com/google/uuid"
)

var ErrEmptyTitle = errors.New("title cannot be empty")

// Cache is the optional read-through layer in front of the repository.
type Cache interface {
	Get(ctx context.Context, id string) (*model.Document, bool)
	Set(ctx context.Context, doc *model.Document)
	Invalidate(ctx context.Context, id string)
}

type DocumentService struct {
	Repo  *repository.DocumentRepository
	Cache Cache
}

func NewDocumentService(repo *repository.DocumentRepository, cache Cache) *DocumentService {
	return &DocumentService{Repo: repo, Cache: cache}
}

func (s *DocumentService) CreateDocument(ctx context.Context, title string) (*model.Document, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = model.DefaultTitle
	}
	return s.Repo.Create(ctx, uuid.NewString(), title)
}

// GetDocument returns (nil, nil) for an unknown id.
func (s *DocumentService) GetDocument(ctx context.Context, id string) (*model.Document, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	if s.Cache != nil {
		if doc, ok := s.Cache.Get(ctx, id); ok {
			return doc, nil
		}
	}
	doc, err := s.Repo.Get(ctx, id)
	if err != nil || doc == nil {
		return doc, err
	}
	if s.Cache != nil {
		s.Cache.Set(ctx, doc)
	}
	return doc, nil
}

func (s *DocumentService) UpdateContent(ctx context.Context, id, content string) error {
	if _, err := uuid.Parse(id); err != nil {
		return repository.ErrNotFound
	}
	if err := s.Repo.UpdateContent(ctx, id, content); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *DocumentService) UpdateTitle(ctx context.Context, id, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyTitle
	}
	if _, err := uuid.Parse(id); err != nil {
		return repository.ErrNotFound
	}
	if err := s.Repo.UpdateTitle(ctx, id, title); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

// Invalidate drops the cached copy of a row; the change feed calls it for writes made elsewhere.
func (s *DocumentService) Invalidate(ctx context.Context, id string) {
	s.invalidate(ctx, id)
}

func (s *DocumentService) invalidate(ctx context.Context, id string) {
	if s.Cache != nil {
		s.Cache.Invalidate(ctx, id)
	}
}

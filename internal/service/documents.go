package service

import (
	"context"
	"fmt"

	"github.com/xiaot623/ledcontent/internal/domain"
	"github.com/xiaot623/ledcontent/internal/store"
	"github.com/xiaot623/ledcontent/policy"
)

// ValidateDocument checks doc against the content policy and the image registry.
func (s *Service) ValidateDocument(ctx context.Context, doc *domain.Document) error {
	images, err := s.store.ListImages(ctx)
	if err != nil {
		return fmt.Errorf("failed to list images: %w", err)
	}
	names := make([]string, 0, len(images))
	for _, img := range images {
		names = append(names, img.Name)
	}

	violations, err := s.policyEngine.Evaluate(ctx, policy.NewDocumentInput(doc, names))
	if err != nil {
		return err
	}
	if len(violations) > 0 {
		return &domain.ValidationError{Violations: violations}
	}
	return nil
}

// SaveDocument validates and stores doc. Saving with a flag set clears that
// flag on every other document.
func (s *Service) SaveDocument(ctx context.Context, doc *domain.Document) error {
	if err := s.ValidateDocument(ctx, doc); err != nil {
		return err
	}
	if err := s.store.SaveDocument(ctx, doc); err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}
	s.logger.Info("document saved",
		"document_id", doc.DocumentID,
		"sessions", len(doc.Sessions),
		"active", doc.IsActive,
		"test", doc.IsTest,
	)
	return nil
}

func (s *Service) GetDocument(ctx context.Context, documentID string) (*domain.Document, error) {
	doc, err := s.store.GetDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return doc, nil
}

func (s *Service) ListDocuments(ctx context.Context) ([]domain.DocumentSummary, error) {
	docs, err := s.store.ListDocuments(ctx, store.DocumentFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return docs, nil
}

func (s *Service) DeleteDocument(ctx context.Context, documentID string) error {
	if err := s.store.DeleteDocument(ctx, documentID); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	s.logger.Info("document deleted", "document_id", documentID)
	return nil
}

// Activate makes documentID the live document.
func (s *Service) Activate(ctx context.Context, documentID string) error {
	if err := s.store.SetActive(ctx, documentID); err != nil {
		return fmt.Errorf("failed to activate document: %w", err)
	}
	s.logger.Info("document activated", "document_id", documentID)
	return nil
}

// MarkTest makes documentID the test document.
func (s *Service) MarkTest(ctx context.Context, documentID string) error {
	if err := s.store.SetTest(ctx, documentID); err != nil {
		return fmt.Errorf("failed to mark test document: %w", err)
	}
	s.logger.Info("document marked as test", "document_id", documentID)
	return nil
}

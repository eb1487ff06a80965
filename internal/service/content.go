package service

import (
	"context"
	"fmt"

	"github.com/xiaot623/ledcontent/internal/domain"
	"github.com/xiaot623/ledcontent/internal/render"
)

// Document returns the document currently served on ch, or nil.
func (s *Service) Document(ctx context.Context, ch domain.Channel) (*domain.Document, error) {
	var (
		doc *domain.Document
		err error
	)
	switch ch {
	case domain.ChannelTest:
		doc, err = s.store.GetTestDocument(ctx)
	default:
		doc, err = s.store.GetActiveDocument(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s document: %w", ch, err)
	}
	return doc, nil
}

// Definition compiles the document served on ch. No document compiles to "".
func (s *Service) Definition(ctx context.Context, ch domain.Channel) (string, error) {
	doc, err := s.Document(ctx, ch)
	if err != nil {
		return "", err
	}
	return render.Definition(doc), nil
}

// Projection renders the JSON view of the document served on ch.
func (s *Service) Projection(ctx context.Context, ch domain.Channel) (render.Projection, error) {
	doc, err := s.Document(ctx, ch)
	if err != nil {
		return render.Projection{}, err
	}
	return render.Project(doc), nil
}

// Ping reports whether the store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

package service

import (
	"context"
	"fmt"

	"github.com/xiaot623/ledcontent/internal/domain"
	"github.com/xiaot623/ledcontent/policy"
)

// RegisterImage adds name to the image registry or updates its description.
func (s *Service) RegisterImage(ctx context.Context, name, description string) (*domain.Image, error) {
	violations, err := s.policyEngine.Evaluate(ctx, policy.NewImageInput(name))
	if err != nil {
		return nil, err
	}
	if len(violations) > 0 {
		return nil, &domain.ValidationError{Violations: violations}
	}

	img := &domain.Image{Name: name, Description: description}
	if err := s.store.UpsertImage(ctx, img); err != nil {
		return nil, fmt.Errorf("failed to register image: %w", err)
	}
	return img, nil
}

func (s *Service) ListImages(ctx context.Context) ([]domain.Image, error) {
	images, err := s.store.ListImages(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	return images, nil
}

func (s *Service) RemoveImage(ctx context.Context, name string) error {
	if err := s.store.DeleteImage(ctx, name); err != nil {
		return fmt.Errorf("failed to remove image: %w", err)
	}
	return nil
}

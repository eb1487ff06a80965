// Package store defines the content storage interface and its SQL implementation.
package store

import (
	"context"

	"github.com/xiaot623/ledcontent/internal/domain"
)

// Reader is the read side the renderers need.
type Reader interface {
	// GetActiveDocument returns the hydrated live document or nil.
	GetActiveDocument(ctx context.Context) (*domain.Document, error)
	// GetTestDocument returns the hydrated test document or nil.
	GetTestDocument(ctx context.Context) (*domain.Document, error)
}

// Store defines the interface for content persistence.
type Store interface {
	Reader

	// Document operations
	SaveDocument(ctx context.Context, doc *domain.Document) error
	GetDocument(ctx context.Context, documentID string) (*domain.Document, error)
	ListDocuments(ctx context.Context, filter DocumentFilter) ([]domain.DocumentSummary, error)
	DeleteDocument(ctx context.Context, documentID string) error

	// Flag operations. Each clears the flag on every other document.
	SetActive(ctx context.Context, documentID string) error
	SetTest(ctx context.Context, documentID string) error

	// Image registry operations
	UpsertImage(ctx context.Context, image *domain.Image) error
	GetImage(ctx context.Context, name string) (*domain.Image, error)
	ListImages(ctx context.Context) ([]domain.Image, error)
	DeleteImage(ctx context.Context, name string) error

	// Lifecycle
	Ping(ctx context.Context) error
	Close() error
}

// DocumentFilter narrows ListDocuments.
type DocumentFilter struct {
	ActiveOnly bool
	TestOnly   bool
}

package domain

import (
	"errors"
	"strings"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrImageNotFound    = errors.New("image not found")
	ErrImageInUse       = errors.New("image is referenced by an animation")
)

// ValidationError lists every rule a draft breaks.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "invalid content: " + strings.Join(e.Violations, "; ")
}

// Package extractor turns documents (PDFs, scanned images, plain text and
// markdown files) into raw text. Backends are selected by name through a
// registry: local Tesseract OCR, Azure Document Intelligence, or direct
// reading for already-digital text.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// ErrUnsupportedFormat is returned when a backend is asked to handle a file
// extension it does not support.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Extractor is the extraction provider contract. ExtractText returns the
// document's text content; failures are wrapped errors (unreadable file,
// unsupported format, backend rejection).
type Extractor interface {
	Name() string
	ExtractText(ctx context.Context, path string) (string, error)
	SupportsFormat(ext string) bool
}

// Factory builds an extractor, failing when required configuration (e.g.
// cloud credentials) is missing.
type Factory func() (Extractor, error)

// Registry maps extractor names to factories.
type Registry struct {
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

func (r *Registry) Register(name string, f Factory) {
	r.factories[name] = f
}

// Names returns the registered extractor names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Create instantiates the named extractor.
func (r *Registry) Create(name string) (Extractor, error) {
	f, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown extractor: %s (available: %v)", name, r.Names())
	}
	return f()
}

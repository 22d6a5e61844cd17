package service

import (
	"context"
	"fmt"

	"github.com/impactreport/impact/backend/go-services/internal/content"
	"github.com/impactreport/impact/backend/go-services/internal/content/repository"
	"github.com/impactreport/impact/backend/go-services/pkg/logger"
)

// Service runs the read and write pipelines for every section.
type Service struct {
	registry    *content.Registry
	store       repository.Store
	defaultSlug string
}

// New returns a Service over the given registry and store. An empty
// defaultSlug falls back to content.DefaultSlug.
func New(registry *content.Registry, store repository.Store, defaultSlug string) *Service {
	if defaultSlug == "" {
		defaultSlug = content.DefaultSlug
	}
	return &Service{registry: registry, store: store, defaultSlug: defaultSlug}
}

// NewMemoryService returns a Service over the default sections backed by memory.
func NewMemoryService() *Service {
	return New(content.DefaultRegistry(), repository.NewMemoryStore(), "")
}

// Registry exposes the section table.
func (s *Service) Registry() *content.Registry { return s.registry }

// Slug applies the default when the caller didn't name a report instance.
func (s *Service) Slug(slug string) string {
	if slug == "" {
		return s.defaultSlug
	}
	return slug
}

// StorageError marks a failure of the backing store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("content store %s: %v", e.Op, e.Err) }
func (e *StorageError) Unwrap() error { return e.Err }

// Get returns the API view of one section document.
func (s *Service) Get(ctx context.Context, section, slug string) (content.Fields, error) {
	schema, err := s.registry.Lookup(section)
	if err != nil {
		return nil, err
	}
	slug = s.Slug(slug)
	doc, err := s.store.FindBySlug(ctx, schema.Collection, slug)
	if err != nil {
		return nil, &StorageError{Op: "find", Err: err}
	}
	if doc == nil {
		return nil, content.ErrNotFound
	}
	return content.ToAPIShape(schema, content.StripInternal(doc)), nil
}

// Put sanitizes body against the section schema, writes it through in both
// shapes and returns the API view of the stored document. A body with no
// allowed keys changes nothing and behaves like Get.
func (s *Service) Put(ctx context.Context, section, slug string, body map[string]any) (content.Fields, error) {
	schema, err := s.registry.Lookup(section)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, content.ErrEmptyBody
	}
	slug = s.Slug(slug)
	fields := content.Sanitize(schema, body)
	if len(fields) == 0 {
		logger.Debugf("put %s/%s: no allowed fields in body, nothing to write", section, slug)
		return s.Get(ctx, section, slug)
	}
	doc, err := s.store.UpsertBySlug(ctx, schema.Collection, slug, content.ToDBShape(schema, fields))
	if err != nil {
		return nil, &StorageError{Op: "upsert", Err: err}
	}
	return content.ToAPIShape(schema, content.StripInternal(doc)), nil
}

// GetAll returns every section that has a document for slug, keyed by path.
func (s *Service) GetAll(ctx context.Context, slug string) (map[string]content.Fields, error) {
	slug = s.Slug(slug)
	out := map[string]content.Fields{}
	for _, schema := range s.registry.Sections() {
		doc, err := s.store.FindBySlug(ctx, schema.Collection, slug)
		if err != nil {
			return nil, &StorageError{Op: "find", Err: err}
		}
		if doc == nil {
			continue
		}
		out[schema.Path] = content.ToAPIShape(schema, content.StripInternal(doc))
	}
	return out, nil
}

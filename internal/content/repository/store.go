package repository

import (
	"context"

	"github.com/impactreport/impact/backend/go-services/internal/content"
)

// Store is a slug-keyed document store over named collections.
type Store interface {
	// FindBySlug returns (nil, nil) when no document matches.
	FindBySlug(ctx context.Context, collection, slug string) (content.Fields, error)
	// UpsertBySlug sets every key of fields at the top level, forces slug,
	// stamps updatedAt and creates the document if needed. It returns the
	// full document as read back after the write.
	UpsertBySlug(ctx context.Context, collection, slug string, fields content.Fields) (content.Fields, error)
}

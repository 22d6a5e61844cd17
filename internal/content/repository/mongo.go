package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/impactreport/impact/backend/go-services/internal/content"
	"github.com/impactreport/impact/backend/go-services/internal/database"
	"github.com/impactreport/impact/backend/go-services/pkg/logger"
)

// CollectionSource hands out collections of one database. *database.Handle
// implements it with a lazy connection; DatabaseSource wraps a connected one.
type CollectionSource interface {
	Collection(ctx context.Context, name string) (*mongo.Collection, error)
}

// DatabaseSource adapts an already connected *mongo.Database.
type DatabaseSource struct{ DB *mongo.Database }

func (d DatabaseSource) Collection(ctx context.Context, name string) (*mongo.Collection, error) {
	return d.DB.Collection(name), nil
}

var _ CollectionSource = (*database.Handle)(nil)

// MongoStore implements Store on top of one Mongo database; each section
// lives in its own collection with a unique index on slug.
type MongoStore struct {
	source  CollectionSource
	indexed sync.Map // collection name -> struct{}
}

func NewMongoStore(src CollectionSource) *MongoStore {
	return &MongoStore{source: src}
}

func (m *MongoStore) collection(ctx context.Context, name string) (*mongo.Collection, error) {
	col, err := m.source.Collection(ctx, name)
	if err != nil {
		return nil, err
	}
	if _, done := m.indexed.Load(name); !done {
		idxModel := mongo.IndexModel{Keys: bson.D{{Key: content.FieldSlug, Value: 1}}, Options: options.Index().SetUnique(true)}
		if _, err := col.Indexes().CreateOne(ctx, idxModel); err != nil {
			logger.Warnf("ensure slug index on %s: %v", name, err)
		} else {
			m.indexed.Store(name, struct{}{})
		}
	}
	return col, nil
}

func (m *MongoStore) FindBySlug(ctx context.Context, collection, slug string) (content.Fields, error) {
	col, err := m.collection(ctx, collection)
	if err != nil {
		return nil, err
	}
	var raw bson.M
	if err := col.FindOne(ctx, bson.M{content.FieldSlug: slug}).Decode(&raw); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find %s/%s: %w", collection, slug, err)
	}
	return normalizeDoc(raw), nil
}

func (m *MongoStore) UpsertBySlug(ctx context.Context, collection, slug string, fields content.Fields) (content.Fields, error) {
	col, err := m.collection(ctx, collection)
	if err != nil {
		return nil, err
	}
	set := bson.M{}
	for k, v := range fields {
		if k == content.FieldID {
			continue
		}
		set[k] = v
	}
	set[content.FieldSlug] = slug
	set[content.FieldUpdatedAt] = time.Now().UTC()

	filter := bson.M{content.FieldSlug: slug}
	opts := options.Update().SetUpsert(true)
	if _, err := col.UpdateOne(ctx, filter, bson.M{"$set": set}, opts); err != nil {
		return nil, fmt.Errorf("upsert %s/%s: %w", collection, slug, err)
	}

	var raw bson.M
	if err := col.FindOne(ctx, filter).Decode(&raw); err != nil {
		return nil, fmt.Errorf("read back %s/%s: %w", collection, slug, err)
	}
	return normalizeDoc(raw), nil
}

// normalizeDoc converts driver types into the JSON-shaped values the rest of
// the service works with.
func normalizeDoc(raw bson.M) content.Fields {
	out := make(content.Fields, len(raw))
	for k, v := range raw {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case bson.M:
		m := make(map[string]any, len(t))
		for k, vv := range t {
			m[k] = normalizeValue(vv)
		}
		return m
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, vv := range t {
			m[k] = normalizeValue(vv)
		}
		return m
	case bson.D:
		m := make(map[string]any, len(t))
		for _, e := range t {
			m[e.Key] = normalizeValue(e.Value)
		}
		return m
	case bson.A:
		a := make([]any, len(t))
		for i, vv := range t {
			a[i] = normalizeValue(vv)
		}
		return a
	case []any:
		a := make([]any, len(t))
		for i, vv := range t {
			a[i] = normalizeValue(vv)
		}
		return a
	case primitive.DateTime:
		return t.Time().UTC()
	case primitive.ObjectID:
		return t.Hex()
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	}
	return v
}

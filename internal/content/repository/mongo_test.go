package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/impactreport/impact/backend/go-services/internal/content"
	"github.com/impactreport/impact/backend/go-services/internal/database"
)

func TestNormalizeDoc_DriverTypes(t *testing.T) {
	stamp := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	oid := primitive.NewObjectID()
	raw, err := bson.Marshal(bson.D{
		{Key: "_id", Value: oid},
		{Key: "slug", Value: "demo"},
		{Key: "updatedAt", Value: stamp},
		{Key: "headline", Value: "Changing lives"},
		{Key: "count", Value: int32(7)},
		{Key: "total", Value: int64(1200)},
		{Key: "ratio", Value: 0.5},
		{Key: "colorSwatches", Value: bson.A{"#fff", "#000"}},
		{Key: "header", Value: bson.D{{Key: "label", Value: "L"}, {Key: "title", Value: "T"}}},
		{Key: "links", Value: bson.A{bson.D{{Key: "href", Value: "/a"}, {Key: "order", Value: int32(1)}}}},
	})
	require.NoError(t, err)

	var decoded bson.M
	require.NoError(t, bson.Unmarshal(raw, &decoded))
	doc := normalizeDoc(decoded)

	require.Equal(t, oid.Hex(), doc["_id"])
	require.Equal(t, stamp, doc["updatedAt"])
	require.IsType(t, time.Time{}, doc["updatedAt"])
	require.Equal(t, float64(7), doc["count"])
	require.Equal(t, float64(1200), doc["total"])
	require.Equal(t, 0.5, doc["ratio"])
	require.Equal(t, []any{"#fff", "#000"}, doc["colorSwatches"])
	require.Equal(t, map[string]any{"label": "L", "title": "T"}, doc["header"])
	require.Equal(t, []any{map[string]any{"href": "/a", "order": float64(1)}}, doc["links"])

	schema, err := content.DefaultRegistry().Lookup("flex-a")
	require.NoError(t, err)
	api := content.ToAPIShape(schema, content.StripInternal(doc))
	require.Equal(t, map[string]any{"label": "L", "title": "T"}, api["header"])
	require.Equal(t, []any{"#fff", "#000"}, api["colorSwatches"])
	require.NotContains(t, api, "_id")
}

func TestNormalizeValue_OrderedDocument(t *testing.T) {
	got := normalizeValue(bson.D{
		{Key: "a", Value: bson.A{int64(1), bson.M{"b": int32(2)}}},
		{Key: "when", Value: primitive.NewDateTimeFromTime(time.Unix(0, 0))},
	})
	require.Equal(t, map[string]any{
		"a":    []any{float64(1), map[string]any{"b": float64(2)}},
		"when": time.Unix(0, 0).UTC(),
	}, got)
}

func TestMongoStore_Mock(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("upsert sets top-level fields and reads back", func(mt *mtest.T) {
		store := NewMongoStore(DatabaseSource{DB: mt.DB})
		ns := mt.DB.Name() + ".flex_a"
		stamp := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
				{Key: "_id", Value: primitive.NewObjectID()},
				{Key: "slug", Value: "demo"},
				{Key: "headline", Value: "H"},
				{Key: "updatedAt", Value: primitive.NewDateTimeFromTime(stamp)},
			}),
		)

		doc, err := store.UpsertBySlug(ctx, "flex_a", "demo", content.Fields{"headline": "H", "_id": "client-chosen"})
		require.NoError(mt, err)
		require.Equal(mt, "demo", doc["slug"])
		require.Equal(mt, "H", doc["headline"])
		require.Equal(mt, stamp, doc["updatedAt"])

		var update bson.Raw
		for evt := mt.GetStartedEvent(); evt != nil; evt = mt.GetStartedEvent() {
			if evt.CommandName == "update" {
				update = evt.Command
			}
		}
		require.NotNil(mt, update, "expected an update command")
		upsert, err := update.LookupErr("updates", "0", "upsert")
		require.NoError(mt, err)
		require.True(mt, upsert.Boolean())

		setVal, err := update.LookupErr("updates", "0", "u", "$set")
		require.NoError(mt, err)
		set := setVal.Document()
		require.Equal(mt, "demo", set.Lookup("slug").StringValue())
		require.Equal(mt, "H", set.Lookup("headline").StringValue())
		_, err = set.LookupErr("updatedAt")
		require.NoError(mt, err)
		_, err = set.LookupErr("_id")
		require.Error(mt, err, "_id must never be written")
	})

	mt.Run("find missing returns nil and index is created once", func(mt *mtest.T) {
		store := NewMongoStore(DatabaseSource{DB: mt.DB})
		ns := mt.DB.Name() + ".hero"
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch),
		)

		doc, err := store.FindBySlug(ctx, "hero", "nope")
		require.NoError(mt, err)
		require.Nil(mt, doc)

		doc, err = store.FindBySlug(ctx, "hero", "nope")
		require.NoError(mt, err)
		require.Nil(mt, doc)
	})

	mt.Run("find surfaces server errors", func(mt *mtest.T) {
		store := NewMongoStore(DatabaseSource{DB: mt.DB})
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(),
			mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 11600, Name: "InterruptedAtShutdown", Message: "interrupted"}),
		)
		_, err := store.FindBySlug(ctx, "hero", "demo")
		require.Error(mt, err)
	})
}

// Runs against a real server when MONGODB_URI is set.
func TestMongoStore_UpsertThenFind(t *testing.T) {
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		t.Skip("MONGODB_URI not set")
	}
	h, err := database.NewHandle(uri, "impact_test_"+primitive.NewObjectID().Hex(), 10*time.Second)
	require.NoError(t, err)
	ctx := context.Background()
	t.Cleanup(func() {
		if db, err := h.Database(ctx); err == nil {
			_ = db.Drop(ctx)
		}
		_ = h.Close(ctx)
	})

	store := NewMongoStore(h)
	before := time.Now().UTC().Add(-time.Second)
	_, err = store.UpsertBySlug(ctx, "flex_a", "demo", content.Fields{
		"headline": "H",
		"header":   map[string]any{"title": "H", "label": "L"},
	})
	require.NoError(t, err)

	doc, err := store.FindBySlug(ctx, "flex_a", "demo")
	require.NoError(t, err)
	require.Equal(t, "demo", doc["slug"])
	require.Equal(t, "H", doc["headline"])
	require.Equal(t, map[string]any{"title": "H", "label": "L"}, doc["header"])
	updated, ok := doc["updatedAt"].(time.Time)
	require.True(t, ok)
	require.True(t, updated.After(before))

	// top-level $set replaces the nested object as a whole
	_, err = store.UpsertBySlug(ctx, "flex_a", "demo", content.Fields{"header": map[string]any{"title": "T2"}})
	require.NoError(t, err)
	doc, err = store.FindBySlug(ctx, "flex_a", "demo")
	require.NoError(t, err)
	require.Equal(t, map[string]any{"title": "T2"}, doc["header"])
	require.Equal(t, "H", doc["headline"])

	other, err := store.FindBySlug(ctx, "flex_a", "other")
	require.NoError(t, err)
	require.Nil(t, other)
}

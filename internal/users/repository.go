package users

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/impactreport/impact/backend/go-services/internal/database"
	"github.com/impactreport/impact/backend/go-services/internal/models"
)

// UserRepository defines persistence operations for users
type UserRepository interface {
	UpsertByEmail(ctx context.Context, u *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// MongoUserRepository implements UserRepository using MongoDB
type MongoUserRepository struct {
	handle     *database.Handle
	collection string
}

// NewMongoUserRepository stores users in the named collection of the handle's database
func NewMongoUserRepository(h *database.Handle, collection string) *MongoUserRepository {
	if collection == "" {
		collection = "users"
	}
	return &MongoUserRepository{handle: h, collection: collection}
}

func (r *MongoUserRepository) UpsertByEmail(ctx context.Context, u *models.User) (*models.User, error) {
	col, err := r.handle.Collection(ctx, r.collection)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	u.Email = normalizeEmail(u.Email)
	u.UpdatedAt = now

	filter := bson.M{"email": u.Email}
	repl := bson.M{
		"$set": bson.M{
			"email":        u.Email,
			"firstName":    u.FirstName,
			"lastName":     u.LastName,
			"admin":        u.Admin,
			"passwordHash": u.PasswordHash,
			"updatedAt":    u.UpdatedAt,
		},
		"$setOnInsert": bson.M{"createdAt": now},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var updated models.User
	if err := col.FindOneAndUpdate(ctx, filter, repl, opts).Decode(&updated); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Shouldn't happen because of upsert, but handle gracefully
			return u, nil
		}
		return nil, err
	}
	return &updated, nil
}

func (r *MongoUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	col, err := r.handle.Collection(ctx, r.collection)
	if err != nil {
		return nil, err
	}
	var u models.User
	if err := col.FindOne(ctx, bson.M{"email": normalizeEmail(email)}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// MemoryUserRepository keeps users in memory; used when no database is configured.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: map[string]models.User{}}
}

func (r *MemoryUserRepository) UpsertByEmail(ctx context.Context, u *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	key := normalizeEmail(u.Email)
	stored := *u
	stored.Email = key
	stored.UpdatedAt = now
	if prev, ok := r.users[key]; ok {
		stored.CreatedAt = prev.CreatedAt
	} else {
		stored.CreatedAt = now
	}
	r.users[key] = stored
	out := stored
	return &out, nil
}

func (r *MemoryUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[normalizeEmail(email)]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

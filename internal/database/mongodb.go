package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectMongo opens a connection and returns the client. Caller should call client.Disconnect(ctx).
func ConnectMongo(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	clientOpts := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

// Handle is the process-wide database handle. It is created once at startup
// and connects on first use; concurrent first callers share one connection
// attempt. A failed attempt is not cached, the next caller retries.
type Handle struct {
	uri     string
	name    string
	timeout time.Duration

	mu     sync.Mutex
	client *mongo.Client
	db     *mongo.Database
}

// NewHandle validates settings without touching the network.
func NewHandle(uri, database string, timeout time.Duration) (*Handle, error) {
	if uri == "" {
		return nil, errors.New("mongo uri is empty")
	}
	if database == "" {
		return nil, errors.New("mongo database name is empty")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Handle{uri: uri, name: database, timeout: timeout}, nil
}

// Database returns the connected database, connecting on first call.
func (h *Handle) Database(ctx context.Context) (*mongo.Database, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.db != nil {
		return h.db, nil
	}
	client, err := ConnectMongo(ctx, h.uri, h.timeout)
	if err != nil {
		return nil, err
	}
	h.client = client
	h.db = client.Database(h.name)
	return h.db, nil
}

// Collection is shorthand for Database(ctx).Collection(name).
func (h *Handle) Collection(ctx context.Context, name string) (*mongo.Collection, error) {
	db, err := h.Database(ctx)
	if err != nil {
		return nil, err
	}
	return db.Collection(name), nil
}

// Ping connects if needed and checks the server is reachable.
func (h *Handle) Ping(ctx context.Context) error {
	db, err := h.Database(ctx)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	return db.Client().Ping(ctx, nil)
}

// Connected reports whether a connection has been established.
func (h *Handle) Connected() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.db != nil
}

// Name returns the configured database name.
func (h *Handle) Name() string { return h.name }

// Close disconnects the client if one was opened. The handle may reconnect later.
func (h *Handle) Close(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.client == nil {
		return nil
	}
	err := h.client.Disconnect(ctx)
	h.client, h.db = nil, nil
	return err
}

package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Mongo owns the document-store client. It is constructed once at startup,
// passed to the repositories, and torn down at shutdown; there is no
// package-level handle.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect dials the document store and verifies the connection with a ping.
func Connect(ctx context.Context, uri, dbName string) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return &Mongo{
		client: client,
		db:     client.Database(dbName),
	}, nil
}

// Database returns the handle the repositories operate on. Safe for
// concurrent use by many in-flight requests.
func (m *Mongo) Database() *mongo.Database {
	return m.db
}

// Close releases the connection to the document store.
func (m *Mongo) Close(ctx context.Context) error {
	if err := m.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from MongoDB: %w", err)
	}
	return nil
}

// Package mongo implements the observation and blob stores on MongoDB, the
// store the trading agent writes to. Model blobs live in GridFS.
package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// priceCollection is the collection the trading agent records observations in.
const priceCollection = "price"

// Conn wraps a connected client and the target database for dependency
// injection.
type Conn struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewConn connects to MongoDB and verifies the connection.
func NewConn(ctx context.Context, uri, dbName string) (*Conn, error) {
	if uri == "" || dbName == "" {
		return nil, fmt.Errorf("mongo uri and database name are required")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return &Conn{client: client, db: client.Database(dbName)}, nil
}

// Close disconnects the client.
func (c *Conn) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

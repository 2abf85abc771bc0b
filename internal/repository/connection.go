package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoSettings configures the cart store connection.
type MongoSettings struct {
	URI                    string
	Database               string
	ConnectTimeout         time.Duration
	ServerSelectionTimeout time.Duration
	MaxPoolSize            uint64
	MinPoolSize            uint64
}

func (s MongoSettings) clientOptions() *options.ClientOptions {
	opts := options.Client().ApplyURI(s.URI).SetAppName("storefront-bff")
	if s.ConnectTimeout > 0 {
		opts.SetConnectTimeout(s.ConnectTimeout)
	}
	if s.ServerSelectionTimeout > 0 {
		opts.SetServerSelectionTimeout(s.ServerSelectionTimeout)
	}
	if s.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(s.MaxPoolSize)
	}
	// a minimum above the maximum is ignored
	if s.MinPoolSize > 0 && (s.MaxPoolSize == 0 || s.MinPoolSize <= s.MaxPoolSize) {
		opts.SetMinPoolSize(s.MinPoolSize)
	}
	return opts
}

// ConnectMongoDB opens a client, verifies it with a ping and returns the
// cart database. The client is disconnected again when the ping fails.
func ConnectMongoDB(ctx context.Context, settings MongoSettings) (*mongo.Database, error) {
	client, err := mongo.Connect(ctx, settings.clientOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return client.Database(settings.Database), nil
}

package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// NewMongo connects to uri and verifies the connection with a ping. The
// connect and ping share one 10-second budget derived from ctx.
//
//	client, err := database.NewMongo(ctx, cfg.MongoURI)
//	if err != nil { … }
//	defer client.Disconnect(context.Background())
func NewMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	clientOpts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(5 * time.Second)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		// Disconnect so a failed ping does not leak sockets.
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return client, nil
}

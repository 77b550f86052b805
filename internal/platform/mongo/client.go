// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package mongo connects the document store behind the Mongo account store
// (STORAGE_DRIVER=mongo).
package mongo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	connectTimeout  = 5 * time.Second
	pingTimeout     = 2 * time.Second
	maxPoolSize     = 15
	serverSelection = 5 * time.Second
)

// Connect dials uri, pings the primary and returns the named database.
//
// The caller owns the client and must Disconnect it on shutdown.
func Connect(ctx context.Context, uri, database, appName string, logger *slog.Logger) (*mongo.Client, *mongo.Database, error) {
	clientOptions := options.Client().
		ApplyURI(uri).
		SetAppName(appName).
		SetMaxPoolSize(maxPoolSize).
		SetConnectTimeout(connectTimeout).
		SetServerSelectionTimeout(serverSelection)

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return nil, nil, fmt.Errorf("mongo: failed to connect: %w", err)
	}

	if err := Ping(ctx, client); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}

	logger.Info("mongo_client_connected", slog.String("database", database))

	return client, client.Database(database), nil
}

// Ping checks the primary within a short deadline. It backs /ready.
func Ping(ctx context.Context, client *mongo.Client) error {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongo: ping failed: %w", err)
	}
	return nil
}

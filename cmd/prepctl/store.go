package main

import (
	"context"
	"fmt"
	"time"

	"prepwise/interview/internal/repositories/mongo"
	"prepwise/interview/internal/utils"

	"go.uber.org/zap"
)

func newLogger() *zap.Logger {
	if verbose {
		return utils.NewLogger("development")
	}
	return utils.NewLogger("production")
}

// connect opens the store and returns a cleanup func
func connect(ctx context.Context) (*mongo.Client, func(), error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.NewClient(connectCtx, mongoURI, mongoDBName)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to %s: %w", mongoDBName, err)
	}
	return client, func() { _ = client.Disconnect(context.Background()) }, nil
}

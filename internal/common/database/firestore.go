// internal/common/database/firestore.go
package database

import (
	"context"
	"fmt"

	"weekend-planner/internal/common/config"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
)

// FirestoreClient wraps the document store connection.
type FirestoreClient struct {
	Client *firestore.Client
}

// NewFirestore opens a client for the configured project. Without a
// credentials file the SDK falls back to application default credentials.
func NewFirestore(ctx context.Context, cfg config.FirestoreConfig) (*FirestoreClient, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	var (
		client *firestore.Client
		err    error
	)
	if cfg.DatabaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, cfg.ProjectID, cfg.DatabaseID, opts...)
	} else {
		client, err = firestore.NewClient(ctx, cfg.ProjectID, opts...)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open firestore: %w", err)
	}
	return &FirestoreClient{Client: client}, nil
}

// Close closes the firestore connection
func (c *FirestoreClient) Close() error {
	if c.Client != nil {
		return c.Client.Close()
	}
	return nil
}

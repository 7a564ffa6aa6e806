// Package firestore is the hosted snapshot source: it pulls every row of the
// products collection on each refresh. No filtering or paging is pushed down.
package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/medeinalab/stock-query-service/internal/config"
	"github.com/medeinalab/stock-query-service/internal/models"
	"github.com/medeinalab/stock-query-service/internal/observability"
)

type Client struct {
	client     *firestore.Client
	collection string
	cfg        config.FirestoreConfig
	logger     *zap.Logger
}

func NewClient(ctx context.Context, cfg config.FirestoreConfig, logger *zap.Logger) (*Client, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := firestore.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	logger.Info("firestore client connected",
		zap.String("project", cfg.ProjectID),
		zap.String("collection", cfg.Collection),
	)

	return &Client{
		client:     client,
		collection: cfg.Collection,
		cfg:        cfg,
		logger:     logger,
	}, nil
}

// FetchAll pulls the entire stock table. The caller owns retry policy; a
// failed fetch is returned as-is so the request fails fast instead of
// serving a silently stale snapshot.
func (c *Client) FetchAll(ctx context.Context) ([]models.RawRow, error) {
	ctx, span := observability.StartSpan(ctx, "firestore.fetch_all",
		attribute.String("collection", c.collection),
	)
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	iter := c.client.Collection(c.collection).Documents(ctx)
	defer iter.Stop()

	var rows []models.RawRow
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("firestore fetch %s: %w", c.collection, err)
		}
		rows = append(rows, doc.Data())
	}

	return rows, nil
}

func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	iter := c.client.Collection(c.collection).Limit(1).Documents(ctx)
	defer iter.Stop()

	_, err := iter.Next()
	// iterator.Done means the collection is empty — Firestore is reachable.
	if err != nil && err != iterator.Done {
		return fmt.Errorf("firestore health check: %w", err)
	}
	return nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

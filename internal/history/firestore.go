package history

import (
	"context"
	"fmt"
	"time"

	"weekend-planner/internal/models"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

// FirestoreBackend keeps one document per record, keyed by record id.
type FirestoreBackend struct {
	client     *firestore.Client
	collection string
}

func NewFirestoreBackend(client *firestore.Client, collection string) *FirestoreBackend {
	return &FirestoreBackend{client: client, collection: collection}
}

func (b *FirestoreBackend) Name() string { return "firestore" }

func (b *FirestoreBackend) Add(ctx context.Context, record *models.RecommendationRecord) (string, error) {
	if _, err := b.client.Collection(b.collection).Doc(record.ID).Set(ctx, record); err != nil {
		return "", fmt.Errorf("set %s/%s: %w", b.collection, record.ID, err)
	}
	return record.ID, nil
}

func (b *FirestoreBackend) Since(ctx context.Context, cutoff time.Time) ([]*models.RecommendationRecord, error) {
	iter := b.client.Collection(b.collection).
		Where("timestamp", ">=", cutoff).
		OrderBy("timestamp", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	var records []*models.RecommendationRecord
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", b.collection, err)
		}

		var record models.RecommendationRecord
		if err := doc.DataTo(&record); err != nil {
			return nil, fmt.Errorf("decode %s: %w", doc.Ref.ID, err)
		}
		record.ID = doc.Ref.ID
		records = append(records, &record)
	}
	return records, nil
}

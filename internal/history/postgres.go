package history

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"weekend-planner/internal/common/database"
	"weekend-planner/internal/models"
)

var tableNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// PostgresBackend keeps records in one table. Venue and event sets are JSON text.
type PostgresBackend struct {
	db    *database.PostgresClient
	table string
}

func NewPostgresBackend(db *database.PostgresClient, table string) (*PostgresBackend, error) {
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &PostgresBackend{db: db, table: table}, nil
}

func (b *PostgresBackend) Name() string { return "postgres" }

// EnsureSchema creates the table and its timestamp index when missing.
func (b *PostgresBackend) EnsureSchema(ctx context.Context) error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %[1]s (
	id TEXT PRIMARY KEY,
	timestamp TIMESTAMPTZ NOT NULL,
	date TEXT NOT NULL,
	venues_mentioned TEXT NOT NULL,
	events_mentioned TEXT NOT NULL,
	weather_conditions TEXT NOT NULL,
	raw_text TEXT NOT NULL,
	schema_version TEXT NOT NULL,
	created_by TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS %[1]s_timestamp_idx ON %[1]s (timestamp DESC)`, b.table)

	if _, err := b.db.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("ensure %s schema: %w", b.table, err)
	}
	return nil
}

func (b *PostgresBackend) Add(ctx context.Context, record *models.RecommendationRecord) (string, error) {
	venues, err := json.Marshal(record.VenuesMentioned)
	if err != nil {
		return "", fmt.Errorf("encode venues: %w", err)
	}
	events, err := json.Marshal(record.EventsMentioned)
	if err != nil {
		return "", fmt.Errorf("encode events: %w", err)
	}

	query := fmt.Sprintf(`INSERT INTO %s
	(id, timestamp, date, venues_mentioned, events_mentioned, weather_conditions, raw_text, schema_version, created_by)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`, b.table)

	_, err = b.db.Exec(ctx, query,
		record.ID, record.Timestamp, record.Date, string(venues), string(events),
		record.WeatherConditions, record.RawText, record.SchemaVersion, record.CreatedBy,
	)
	if err != nil {
		return "", fmt.Errorf("insert into %s: %w", b.table, err)
	}
	return record.ID, nil
}

func (b *PostgresBackend) Since(ctx context.Context, cutoff time.Time) ([]*models.RecommendationRecord, error) {
	query := fmt.Sprintf(`SELECT id, timestamp, date, venues_mentioned, events_mentioned,
	weather_conditions, raw_text, schema_version, created_by
	FROM %s WHERE timestamp >= $1 ORDER BY timestamp DESC`, b.table)

	rows, err := b.db.Query(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", b.table, err)
	}
	defer rows.Close()

	var records []*models.RecommendationRecord
	for rows.Next() {
		var (
			record         models.RecommendationRecord
			venues, events string
		)
		if err := rows.Scan(&record.ID, &record.Timestamp, &record.Date, &venues, &events,
			&record.WeatherConditions, &record.RawText, &record.SchemaVersion, &record.CreatedBy); err != nil {
			return nil, fmt.Errorf("scan %s: %w", b.table, err)
		}
		if err := json.Unmarshal([]byte(venues), &record.VenuesMentioned); err != nil {
			return nil, fmt.Errorf("decode venues for %s: %w", record.ID, err)
		}
		if err := json.Unmarshal([]byte(events), &record.EventsMentioned); err != nil {
			return nil, fmt.Errorf("decode events for %s: %w", record.ID, err)
		}
		records = append(records, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", b.table, err)
	}
	return records, nil
}

package repository

import (
	"context"
	"database/sql"

	"evcharge/backend/services/catalog-service/internal/models"
)

// SyncLogRepository appends and reads the immutable sync audit log.
//
// Expected schema:
//
//	sync_log(id bigserial primary key, source_id text, inserted int,
//	    updated int, errored int, fetch_failed boolean, error_message text,
//	    duration_ms bigint, started_at timestamptz)
type SyncLogRepository struct {
	db *sql.DB
}

// NewSyncLogRepository returns repository.
func NewSyncLogRepository(db *sql.DB) *SyncLogRepository {
	return &SyncLogRepository{db: db}
}

// Append writes one sync pass result. Rows are never updated afterwards.
func (r *SyncLogRepository) Append(ctx context.Context, result models.SyncResult) error {
	const query = `
		INSERT INTO sync_log (source_id, inserted, updated, errored, fetch_failed, error_message, duration_ms, started_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		result.SourceID,
		result.Inserted,
		result.Updated,
		result.Errored,
		result.FetchFailed,
		result.ErrorMessage,
		result.DurationMS,
		result.StartedAt,
	)
	return err
}

// RecentBySource returns the last perSource results for every source,
// newest first, keyed by source id.
func (r *SyncLogRepository) RecentBySource(ctx context.Context, perSource int) (map[string][]models.SyncResult, error) {
	if perSource <= 0 {
		perSource = 10
	}
	const query = `
		SELECT source_id, inserted, updated, errored, fetch_failed, error_message, duration_ms, started_at
		FROM (
			SELECT *, ROW_NUMBER() OVER (PARTITION BY source_id ORDER BY started_at DESC) AS rn
			FROM sync_log
		) ranked
		WHERE rn <= $1
		ORDER BY source_id, started_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, perSource)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make(map[string][]models.SyncResult)
	for rows.Next() {
		var res models.SyncResult
		if err := rows.Scan(
			&res.SourceID,
			&res.Inserted,
			&res.Updated,
			&res.Errored,
			&res.FetchFailed,
			&res.ErrorMessage,
			&res.DurationMS,
			&res.StartedAt,
		); err != nil {
			return nil, err
		}
		results[res.SourceID] = append(results[res.SourceID], res)
	}
	return results, rows.Err()
}

package store

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type SyncHistoryStore struct {
	db *sqlx.DB
}

func (sh *SyncHistoryStore) Insert(ctx context.Context, entry *SyncHistory) error {
	query := `INSERT INTO sync_history (
		company_id,
		api_type,
		status,
		detail,
		started_at,
		duration_ms
	) VALUES (
		:company_id,
		:api_type,
		:status,
		:detail,
		:started_at,
		:duration_ms
	) RETURNING id`

	rows, err := sh.db.NamedQueryContext(ctx, query, entry)
	if err != nil {
		return err
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&entry.ID); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (sh *SyncHistoryStore) Latest(ctx context.Context, limit int) ([]SyncHistory, error) {
	entries := []SyncHistory{}
	err := sh.db.SelectContext(ctx, &entries,
		`SELECT id, company_id, api_type, status, detail, started_at, duration_ms
		FROM sync_history ORDER BY started_at DESC LIMIT $1`, limit)
	return entries, err
}

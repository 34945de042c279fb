package store

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type PeriodStore struct {
	db *sqlx.DB
}

func (ps *PeriodStore) BulkInsert(ctx context.Context, periods []TimeDimension) error {
	if len(periods) == 0 {
		return nil
	}

	query := `INSERT INTO time_dimensions (key, start_date, end_date, months)
	VALUES (:key, :start_date, :end_date, :months)
	ON CONFLICT (key) DO NOTHING`

	_, err := ps.db.NamedExecContext(ctx, query, periods)
	return err
}

// KeyMap returns period key -> time dimension id for every known period.
func (ps *PeriodStore) KeyMap(ctx context.Context) (map[string]int64, error) {
	rows, err := ps.db.QueryxContext(ctx, `SELECT id, key FROM time_dimensions`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]int64)
	for rows.Next() {
		var id int64
		var key string
		if err := rows.Scan(&id, &key); err != nil {
			return nil, err
		}
		result[key] = id
	}
	return result, rows.Err()
}

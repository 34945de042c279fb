package store

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type ConceptStore struct {
	db *sqlx.DB
}

// Insert creates one concept. A unique violation on the tag is surfaced as
// ErrConflict so the caller can retry with fallback values.
func (cs *ConceptStore) Insert(ctx context.Context, concept *FinancialConcept) error {
	query := `INSERT INTO financial_concepts (tag, name, description, unit, type)
	VALUES (:tag, :name, :description, :unit, :type)`

	_, err := cs.db.NamedExecContext(ctx, query, concept)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return err
	}
	return nil
}

// TagMap returns tag -> concept id for every known concept.
func (cs *ConceptStore) TagMap(ctx context.Context) (map[string]int64, error) {
	rows, err := cs.db.QueryxContext(ctx, `SELECT id, tag FROM financial_concepts`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]int64)
	for rows.Next() {
		var id int64
		var tag string
		if err := rows.Scan(&id, &tag); err != nil {
			return nil, err
		}
		result[tag] = id
	}
	return result, rows.Err()
}

func (cs *ConceptStore) SetAlias(ctx context.Context, tag string, aliasID int64) error {
	res, err := cs.db.ExecContext(ctx,
		`UPDATE financial_concepts SET alias_id = $1 WHERE tag = $2`, aliasID, tag)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

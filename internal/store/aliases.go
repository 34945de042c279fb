package store

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type AliasStore struct {
	db *sqlx.DB
}

func (as *AliasStore) Insert(ctx context.Context, alias *ConceptAlias) error {
	err := as.db.QueryRowxContext(ctx,
		`INSERT INTO concept_aliases (name) VALUES ($1) RETURNING id`, alias.Name).
		Scan(&alias.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return err
	}
	return nil
}

func (as *AliasStore) List(ctx context.Context) ([]ConceptAlias, error) {
	aliases := []ConceptAlias{}
	err := as.db.SelectContext(ctx, &aliases,
		`SELECT id, name FROM concept_aliases ORDER BY name`)
	return aliases, err
}

// Delete removes an alias. Aliases still referenced by a concept are
// protected by the database RESTRICT constraint and yield ErrAliasInUse.
func (as *AliasStore) Delete(ctx context.Context, id int64) error {
	res, err := as.db.ExecContext(ctx, `DELETE FROM concept_aliases WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrAliasInUse
		}
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

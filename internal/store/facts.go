package store

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type FactStore struct {
	db *sqlx.DB
}

// BulkInsert inserts facts, ignoring rows that collide with the
// (company, concept, filing, period, value) uniqueness constraint.
// Re-ingesting identical data is a no-op.
func (fs *FactStore) BulkInsert(ctx context.Context, facts []FinancialFact) error {
	if len(facts) == 0 {
		return nil
	}

	query := `INSERT INTO financial_facts (company_id, filing_id, concept_id, period_id, value, is_annual, is_framed)
	VALUES (:company_id, :filing_id, :concept_id, :period_id, :value, :is_annual, :is_framed)
	ON CONFLICT ON CONSTRAINT unique_financial_fact DO NOTHING`

	_, err := fs.db.NamedExecContext(ctx, query, facts)
	return err
}

func (fs *FactStore) CountForCompany(ctx context.Context, companyID int64) (int64, error) {
	var count int64
	err := fs.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM financial_facts WHERE company_id = $1`, companyID)
	return count, err
}

package store

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type CompanyStore struct {
	db *sqlx.DB
}

// BulkInsert inserts companies, silently ignoring rows whose CIK already
// exists. First-seen wins.
func (cs *CompanyStore) BulkInsert(ctx context.Context, companies []Company) error {
	if len(companies) == 0 {
		return nil
	}

	query := `INSERT INTO companies (cik, name, istracked)
	VALUES (:cik, :name, :istracked)
	ON CONFLICT (cik) DO NOTHING`

	_, err := cs.db.NamedExecContext(ctx, query, companies)
	return err
}

func (cs *CompanyStore) GetByCIK(ctx context.Context, cik int64) (*Company, error) {
	var company Company
	err := cs.db.GetContext(ctx, &company,
		`SELECT id, cik, name, fiscal_year_end, istracked FROM companies WHERE cik = $1`, cik)
	if err != nil {
		return nil, translateGetErr(err)
	}
	return &company, nil
}

func (cs *CompanyStore) GetByID(ctx context.Context, id int64) (*Company, error) {
	var company Company
	err := cs.db.GetContext(ctx, &company,
		`SELECT id, cik, name, fiscal_year_end, istracked FROM companies WHERE id = $1`, id)
	if err != nil {
		return nil, translateGetErr(err)
	}
	return &company, nil
}

// CIKMap resolves a batch of CIKs to company ids.
func (cs *CompanyStore) CIKMap(ctx context.Context, ciks []int64) (map[int64]int64, error) {
	rows, err := cs.db.QueryxContext(ctx,
		`SELECT id, cik FROM companies WHERE cik = ANY($1)`, pq.Array(ciks))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[int64]int64, len(ciks))
	for rows.Next() {
		var id, cik int64
		if err := rows.Scan(&id, &cik); err != nil {
			return nil, err
		}
		result[cik] = id
	}
	return result, rows.Err()
}

func (cs *CompanyStore) ListTracked(ctx context.Context) ([]Company, error) {
	companies := []Company{}
	err := cs.db.SelectContext(ctx, &companies,
		`SELECT id, cik, name, fiscal_year_end, istracked FROM companies WHERE istracked = TRUE ORDER BY cik`)
	return companies, err
}

func (cs *CompanyStore) UntrackAll(ctx context.Context) error {
	_, err := cs.db.ExecContext(ctx, `UPDATE companies SET istracked = FALSE WHERE istracked = TRUE`)
	return err
}

func (cs *CompanyStore) TrackByIDs(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := cs.db.ExecContext(ctx,
		`UPDATE companies SET istracked = TRUE WHERE id = ANY($1)`, pq.Array(ids))
	return err
}

func (cs *CompanyStore) UpdateFiscalYearEnd(ctx context.Context, id int64, yearEnd string) error {
	_, err := cs.db.ExecContext(ctx,
		`UPDATE companies SET fiscal_year_end = $1 WHERE id = $2`, yearEnd, id)
	return err
}

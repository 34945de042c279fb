package store

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

type FilingStore struct {
	db *sqlx.DB
}

// FilingWithFactCount is a filing row joined with its company name and the
// number of facts attributed to it, for the filings listing.
type FilingWithFactCount struct {
	ID          int64     `db:"id" json:"id"`
	CompanyName string    `db:"company_name" json:"company_name"`
	Type        string    `db:"type" json:"type"`
	AccnNum     string    `db:"accn_num" json:"accn_num"`
	ReportDate  time.Time `db:"report_date" json:"report_date"`
	DateFiled   time.Time `db:"date_filed" json:"date_filed"`
	FactCount   int64     `db:"fact_count" json:"fact_count"`
}

// BulkInsert inserts filings, relying on the accession number uniqueness to
// silently absorb re-ingested documents.
func (fs *FilingStore) BulkInsert(ctx context.Context, filings []Filing) error {
	if len(filings) == 0 {
		return nil
	}

	query := `INSERT INTO filings (company_id, type, accn_num, report_date, date_filed)
	VALUES (:company_id, :type, :accn_num, :report_date, :date_filed)
	ON CONFLICT (accn_num) DO NOTHING`

	_, err := fs.db.NamedExecContext(ctx, query, filings)
	return err
}

// AccessionMap returns accession number -> filing id for one company.
func (fs *FilingStore) AccessionMap(ctx context.Context, companyID int64) (map[string]int64, error) {
	rows, err := fs.db.QueryxContext(ctx,
		`SELECT id, accn_num FROM filings WHERE company_id = $1`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]int64)
	for rows.Next() {
		var id int64
		var accn string
		if err := rows.Scan(&id, &accn); err != nil {
			return nil, err
		}
		result[accn] = id
	}
	return result, rows.Err()
}

func (fs *FilingStore) ListWithFactCounts(ctx context.Context, limit, offset int) ([]FilingWithFactCount, error) {
	query := `
	SELECT
		f.id,
		c.name AS company_name,
		f.type,
		f.accn_num,
		f.report_date,
		f.date_filed,
		COUNT(ff.id) AS fact_count
	FROM filings f
	JOIN companies c ON c.id = f.company_id
	LEFT JOIN financial_facts ff ON ff.filing_id = f.id
	GROUP BY f.id, c.name
	ORDER BY f.date_filed DESC
	LIMIT $1 OFFSET $2`

	filings := []FilingWithFactCount{}
	err := fs.db.SelectContext(ctx, &filings, query, limit, offset)
	return filings, err
}

// DeleteAll removes every filing; facts cascade at the database level.
func (fs *FilingStore) DeleteAll(ctx context.Context) error {
	_, err := fs.db.ExecContext(ctx, `DELETE FROM filings`)
	return err
}

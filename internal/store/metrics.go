package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

type MetricsStore struct {
	db *sqlx.DB
}

// CompanyResult is one row of the paginated company listing.
type CompanyResult struct {
	ID        int64  `db:"id" json:"id"`
	CIK       int64  `db:"cik" json:"cik"`
	Name      string `db:"name" json:"name"`
	IsTracked bool   `db:"istracked" json:"istracked"`
}

// annualFactRow is the flat shape fetched for the year-over-year pipeline.
type annualFactRow struct {
	Value     int64          `db:"value"`
	Tag       string         `db:"tag"`
	Concept   string         `db:"concept_name"`
	ConceptID int64          `db:"concept_id"`
	AliasID   sql.NullInt64  `db:"alias_id"`
	AliasName sql.NullString `db:"alias_name"`
	EndDate   time.Time      `db:"end_date"`
	AccnNum   string         `db:"accn_num"`
}

// AnnualFactDelta is an annual fact joined in application code with the
// matching fact one year earlier.
type AnnualFactDelta struct {
	Tag          string  `json:"tag"`
	Concept      string  `json:"concept"`
	Alias        string  `json:"alias,omitempty"`
	EndDate      string  `json:"end_date"`
	AccnNum      string  `json:"accn_num"`
	Value        int64   `json:"value"`
	PriorValue   *int64  `json:"prior_value,omitempty"`
	Delta        *int64  `json:"delta,omitempty"`
	DeltaPercent *string `json:"delta_percent,omitempty"`
}

func (ms *MetricsStore) SearchCompanies(ctx context.Context, search string, limit, offset int) ([]CompanyResult, int, error) {
	pattern := "%" + search + "%"

	var total int
	err := ms.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM companies c
		WHERE c.name ILIKE $1
		OR c.id IN (SELECT company_id FROM tickers WHERE ticker ILIKE $1)`,
		pattern)
	if err != nil {
		return nil, 0, err
	}

	companies := []CompanyResult{}
	err = ms.db.SelectContext(ctx, &companies,
		`SELECT c.id, c.cik, c.name, c.istracked FROM companies c
		WHERE c.name ILIKE $1
		OR c.id IN (SELECT company_id FROM tickers WHERE ticker ILIKE $1)
		ORDER BY c.name
		LIMIT $2 OFFSET $3`,
		pattern, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return companies, total, nil
}

// AnnualFactsWithDelta fetches the company's annual facts and computes the
// year-over-year delta in application code: prior-year facts are matched on
// the same alias (falling back to the raw concept) and the same end month.
func (ms *MetricsStore) AnnualFactsWithDelta(ctx context.Context, companyID int64) ([]AnnualFactDelta, error) {
	query := `
	SELECT
		f.value,
		fc.tag,
		fc.name AS concept_name,
		fc.id AS concept_id,
		fc.alias_id,
		ca.name AS alias_name,
		t.end_date,
		fi.accn_num
	FROM financial_facts f
	JOIN financial_concepts fc ON fc.id = f.concept_id
	LEFT JOIN concept_aliases ca ON ca.id = fc.alias_id
	JOIN time_dimensions t ON t.id = f.period_id
	JOIN filings fi ON fi.id = f.filing_id
	WHERE f.company_id = $1 AND f.is_annual = TRUE AND f.is_framed = FALSE
	ORDER BY t.end_date DESC, fc.tag`

	rows := []annualFactRow{}
	if err := ms.db.SelectContext(ctx, &rows, query, companyID); err != nil {
		return nil, fmt.Errorf("failed to query annual facts: %w", err)
	}

	return computeYoYDeltas(rows), nil
}

// groupKey identifies the series a fact belongs to: the alias when one is
// assigned, otherwise the raw concept.
func (r annualFactRow) groupKey() string {
	if r.AliasID.Valid {
		return fmt.Sprintf("a:%d", r.AliasID.Int64)
	}
	return fmt.Sprintf("c:%d", r.ConceptID)
}

func computeYoYDeltas(rows []annualFactRow) []AnnualFactDelta {
	type periodKey struct {
		group string
		year  int
		month time.Month
	}

	priorIndex := make(map[periodKey]int64, len(rows))
	for _, r := range rows {
		k := periodKey{r.groupKey(), r.EndDate.Year(), r.EndDate.Month()}
		if _, ok := priorIndex[k]; !ok {
			priorIndex[k] = r.Value
		}
	}

	result := make([]AnnualFactDelta, 0, len(rows))
	for _, r := range rows {
		d := AnnualFactDelta{
			Tag:     r.Tag,
			Concept: r.Concept,
			EndDate: r.EndDate.Format("2006-01-02"),
			AccnNum: r.AccnNum,
			Value:   r.Value,
		}
		if r.AliasName.Valid {
			d.Alias = r.AliasName.String
		}

		k := periodKey{r.groupKey(), r.EndDate.Year() - 1, r.EndDate.Month()}
		if prior, ok := priorIndex[k]; ok {
			priorValue := prior
			delta := r.Value - prior
			d.PriorValue = &priorValue
			d.Delta = &delta
			if prior != 0 {
				pct := fmt.Sprintf("%.1f", float64(delta)/float64(prior)*100)
				d.DeltaPercent = &pct
			}
		}
		result = append(result, d)
	}
	return result
}

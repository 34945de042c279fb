package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when an insert violates a unique constraint
	// and the caller asked for the violation to be surfaced.
	ErrConflict = errors.New("unique constraint violation")
	// ErrAliasInUse is returned when deleting an alias still referenced by
	// at least one concept.
	ErrAliasInUse = errors.New("alias is referenced by concepts")
)

type Storage struct {
	Companies interface {
		BulkInsert(ctx context.Context, companies []Company) error
		GetByCIK(ctx context.Context, cik int64) (*Company, error)
		GetByID(ctx context.Context, id int64) (*Company, error)
		CIKMap(ctx context.Context, ciks []int64) (map[int64]int64, error)
		ListTracked(ctx context.Context) ([]Company, error)
		UntrackAll(ctx context.Context) error
		TrackByIDs(ctx context.Context, ids []int64) error
		UpdateFiscalYearEnd(ctx context.Context, id int64, yearEnd string) error
	}

	Tickers interface {
		BulkInsert(ctx context.Context, tickers []Ticker) error
		GetBySymbol(ctx context.Context, symbol string) (*Ticker, error)
	}

	Filings interface {
		BulkInsert(ctx context.Context, filings []Filing) error
		AccessionMap(ctx context.Context, companyID int64) (map[string]int64, error)
		ListWithFactCounts(ctx context.Context, limit, offset int) ([]FilingWithFactCount, error)
		DeleteAll(ctx context.Context) error
	}

	Concepts interface {
		Insert(ctx context.Context, concept *FinancialConcept) error
		TagMap(ctx context.Context) (map[string]int64, error)
		SetAlias(ctx context.Context, tag string, aliasID int64) error
	}

	Aliases interface {
		Insert(ctx context.Context, alias *ConceptAlias) error
		List(ctx context.Context) ([]ConceptAlias, error)
		Delete(ctx context.Context, id int64) error
	}

	Periods interface {
		BulkInsert(ctx context.Context, periods []TimeDimension) error
		KeyMap(ctx context.Context) (map[string]int64, error)
	}

	Facts interface {
		BulkInsert(ctx context.Context, facts []FinancialFact) error
		CountForCompany(ctx context.Context, companyID int64) (int64, error)
	}

	Checksums interface {
		CheckAndUpdate(ctx context.Context, checksum string, companyID int64, apiType string) (bool, error)
		DeleteAll(ctx context.Context) error
	}

	SyncHistory interface {
		Insert(ctx context.Context, entry *SyncHistory) error
		Latest(ctx context.Context, limit int) ([]SyncHistory, error)
	}

	Metrics interface {
		SearchCompanies(ctx context.Context, search string, limit, offset int) ([]CompanyResult, int, error)
		AnnualFactsWithDelta(ctx context.Context, companyID int64) ([]AnnualFactDelta, error)
	}
}

func NewStorage(db *sqlx.DB) *Storage {
	return &Storage{
		Companies:   &CompanyStore{db: db},
		Tickers:     &TickerStore{db: db},
		Filings:     &FilingStore{db: db},
		Concepts:    &ConceptStore{db: db},
		Aliases:     &AliasStore{db: db},
		Periods:     &PeriodStore{db: db},
		Facts:       &FactStore{db: db},
		Checksums:   &ChecksumStore{db: db},
		SyncHistory: &SyncHistoryStore{db: db},
		Metrics:     &MetricsStore{db: db},
	}
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

// isForeignKeyViolation reports whether err is a Postgres restrict/foreign
// key violation (SQLSTATE 23503).
func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23503"
	}
	return false
}

func translateGetErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

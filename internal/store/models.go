package store

import (
	"database/sql"
	"time"
)

// Filing types tracked by the ingestion pipeline. Amended variants are
// distinct filings, not replacements of the originals.
const (
	FilingType10Q  = "10-Q"
	FilingType10K  = "10-K"
	FilingType10QA = "10-Q/A"
	FilingType10KA = "10-K/A"
)

// Concept types: point-in-time ("as of") vs range ("period ended").
const (
	ConceptTypeAsOf        = "ao"
	ConceptTypePeriodEnded = "pe"
)

// Checksum API types, one stored fingerprint per (company, api type).
const (
	ChecksumTypeSubmissions = "S"
	ChecksumTypeFacts       = "F"
)

const (
	SyncStatusApplied   = "applied"
	SyncStatusUnchanged = "unchanged"
	SyncStatusFailed    = "failed"
)

// Company represents the 'companies' table.
type Company struct {
	ID            int64          `db:"id" json:"id"`
	CIK           int64          `db:"cik" json:"cik"`
	Name          string         `db:"name" json:"name"`
	FiscalYearEnd sql.NullString `db:"fiscal_year_end" json:"fiscal_year_end,omitempty"`
	IsTracked     bool           `db:"istracked" json:"istracked"`
}

// Ticker represents the 'tickers' table. Ticker symbols are unique globally
// and act as the external lookup key for companies.
type Ticker struct {
	ID        int64  `db:"id" json:"id"`
	Ticker    string `db:"ticker" json:"ticker"`
	CompanyID int64  `db:"company_id" json:"company_id"`
}

// Filing represents the 'filings' table. Identity is the accession number.
type Filing struct {
	ID         int64     `db:"id" json:"id"`
	CompanyID  int64     `db:"company_id" json:"company_id"`
	Type       string    `db:"type" json:"type"`
	AccnNum    string    `db:"accn_num" json:"accn_num"`
	ReportDate time.Time `db:"report_date" json:"report_date"`
	DateFiled  time.Time `db:"date_filed" json:"date_filed"`
}

// ConceptAlias represents the 'concept_aliases' table, a canonical grouping
// over raw XBRL tags.
type ConceptAlias struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// FinancialConcept represents the 'financial_concepts' table.
type FinancialConcept struct {
	ID          int64         `db:"id" json:"id"`
	Tag         string        `db:"tag" json:"tag"`
	Name        string        `db:"name" json:"name"`
	Description string        `db:"description" json:"description"`
	Unit        string        `db:"unit" json:"unit"`
	Type        string        `db:"type" json:"type"`
	AliasID     sql.NullInt64 `db:"alias_id" json:"alias_id,omitempty"`
}

// TimeDimension represents the 'time_dimensions' table. The key is the sole
// deduplication mechanism for periods.
type TimeDimension struct {
	ID        int64         `db:"id" json:"id"`
	Key       string        `db:"key" json:"key"`
	StartDate sql.NullTime  `db:"start_date" json:"start_date,omitempty"`
	EndDate   time.Time     `db:"end_date" json:"end_date"`
	Months    sql.NullInt32 `db:"months" json:"months,omitempty"`
}

// FinancialFact represents the 'financial_facts' table.
type FinancialFact struct {
	ID        int64 `db:"id" json:"id"`
	CompanyID int64 `db:"company_id" json:"company_id"`
	FilingID  int64 `db:"filing_id" json:"filing_id"`
	ConceptID int64 `db:"concept_id" json:"concept_id"`
	PeriodID  int64 `db:"period_id" json:"period_id"`
	Value     int64 `db:"value" json:"value"`
	IsAnnual  bool  `db:"is_annual" json:"is_annual"`
	IsFramed  bool  `db:"is_framed" json:"is_framed"`
}

// Checksum represents the 'checksums' table, the last-seen content
// fingerprint per (company, api type).
type Checksum struct {
	ID        int64  `db:"id" json:"id"`
	CompanyID int64  `db:"company_id" json:"company_id"`
	APIType   string `db:"api_type" json:"api_type"`
	Checksum  string `db:"checksum" json:"checksum"`
}

// SyncHistory represents the 'sync_history' table, one row per company per
// reconciliation run.
type SyncHistory struct {
	ID         int64     `db:"id" json:"id"`
	CompanyID  int64     `db:"company_id" json:"company_id"`
	APIType    string    `db:"api_type" json:"api_type"`
	Status     string    `db:"status" json:"status"`
	Detail     string    `db:"detail" json:"detail"`
	StartedAt  time.Time `db:"started_at" json:"started_at"`
	DurationMS int64     `db:"duration_ms" json:"duration_ms"`
}

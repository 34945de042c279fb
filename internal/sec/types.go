// Package sec holds the SEC EDGAR payload shapes and the rate-limited
// client used to fetch them.
package sec

import (
	"encoding/json"
	"fmt"
)

const (
	CompanyTickersURL  = "https://www.sec.gov/files/company_tickers.json"
	submissionsBaseURL = "https://data.sec.gov/submissions/"
	factsBaseURL       = "https://data.sec.gov/api/xbrl/companyfacts/"
)

// ZeroPadCIK renders a CIK as the 10-digit form the EDGAR URLs expect.
func ZeroPadCIK(cik int64) string {
	return fmt.Sprintf("%010d", cik)
}

func SubmissionsURL(cik int64) string {
	return submissionsBaseURL + "CIK" + ZeroPadCIK(cik) + ".json"
}

func FactsURL(cik int64) string {
	return factsBaseURL + "CIK" + ZeroPadCIK(cik) + ".json"
}

// SubmissionsFileURL builds the URL of an older-history pagination file
// listed under filings.files.
func SubmissionsFileURL(name string) string {
	return submissionsBaseURL + name
}

// RegistryEntry is one record of the global company-ticker registry.
// Keys of the top-level mapping are arbitrary.
type RegistryEntry struct {
	CIK    int64  `json:"cik_str"`
	Ticker string `json:"ticker"`
	Title  string `json:"title"`
}

// SubmissionsPayload is the per-company submissions response.
type SubmissionsPayload struct {
	CIK           json.Number `json:"cik"`
	FiscalYearEnd string      `json:"fiscalYearEnd"`
	Filings       struct {
		Recent RecentFilings    `json:"recent"`
		Files  []SubmissionFile `json:"files"`
	} `json:"filings"`
}

// RecentFilings holds the filing attributes as parallel arrays indexed
// consistently. Older-history pagination files carry this shape at their
// top level.
type RecentFilings struct {
	Form            []string `json:"form"`
	ReportDate      []string `json:"reportDate"`
	FilingDate      []string `json:"filingDate"`
	AccessionNumber []string `json:"accessionNumber"`
}

// SubmissionFile references one older-history pagination file.
type SubmissionFile struct {
	Name string `json:"name"`
}

// FactsPayload is the per-company XBRL facts response. Only the us-gaap
// namespace is processed.
type FactsPayload struct {
	CIK   json.Number `json:"cik"`
	Facts struct {
		USGAAP map[string]ConceptFacts `json:"us-gaap"`
	} `json:"facts"`
}

// ConceptFacts is the raw data for one XBRL tag: label, description and the
// disclosed entries grouped by unit of measure.
type ConceptFacts struct {
	Label       string                 `json:"label"`
	Description string                 `json:"description"`
	Units       map[string][]FactEntry `json:"units"`
}

// FactEntry is one disclosed value. Start is empty for point-in-time facts.
// Frame is non-empty when the entry belongs to a standardized aggregation
// window.
type FactEntry struct {
	Start string  `json:"start"`
	End   string  `json:"end"`
	Val   float64 `json:"val"`
	Accn  string  `json:"accn"`
	Form  string  `json:"form"`
	Frame string  `json:"frame"`
}

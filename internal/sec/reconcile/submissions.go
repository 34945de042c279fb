package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/keymetrics/keymetrics/internal/sec"
	"github.com/keymetrics/keymetrics/internal/store"
)

// trackedFilingTypes are the only forms persisted as Filing rows.
var trackedFilingTypes = map[string]bool{
	store.FilingType10K:  true,
	store.FilingType10Q:  true,
	store.FilingType10KA: true,
	store.FilingType10QA: true,
}

// syncCompanySubmissions runs the submissions apply-procedure for one
// company: fetch, fingerprint gate, filter filings to the tracked forms,
// bulk insert with conflict-ignore, then walk the older-history pagination
// files under the same top-level fingerprint.
func (r *Reconciler) syncCompanySubmissions(ctx context.Context, company *store.Company) (string, error) {
	var payload sec.SubmissionsPayload
	checksum, err := fetchJSON(ctx, r.fetcher, sec.SubmissionsURL(company.CIK), &payload)
	if err != nil {
		return "", err
	}

	match, err := r.storage.Checksums.CheckAndUpdate(ctx, checksum, company.ID, store.ChecksumTypeSubmissions)
	if err != nil {
		return "", fmt.Errorf("checksum check failed: %w", err)
	}
	if match {
		return store.SyncStatusUnchanged, nil
	}

	if err := r.applyFilings(ctx, company, payload.Filings.Recent); err != nil {
		return "", err
	}

	if payload.FiscalYearEnd != "" && payload.FiscalYearEnd != company.FiscalYearEnd.String {
		if err := r.storage.Companies.UpdateFiscalYearEnd(ctx, company.ID, payload.FiscalYearEnd); err != nil {
			return "", fmt.Errorf("failed to update fiscal year end: %w", err)
		}
		company.FiscalYearEnd.String = payload.FiscalYearEnd
		company.FiscalYearEnd.Valid = true
	}

	// The submissions API only returns the most recent 1000 filings; older
	// companies carry the rest in extra files covered by the same
	// top-level fingerprint.
	for _, file := range payload.Filings.Files {
		var older sec.RecentFilings
		if _, err := fetchJSON(ctx, r.fetcher, sec.SubmissionsFileURL(file.Name), &older); err != nil {
			return "", err
		}
		if err := r.applyFilings(ctx, company, older); err != nil {
			return "", err
		}
	}

	return store.SyncStatusApplied, nil
}

func (r *Reconciler) applyFilings(ctx context.Context, company *store.Company, recent sec.RecentFilings) error {
	const component = "Submissions"

	filings := make([]store.Filing, 0)
	for i, form := range recent.Form {
		if !trackedFilingTypes[form] {
			continue
		}
		if i >= len(recent.AccessionNumber) || i >= len(recent.ReportDate) || i >= len(recent.FilingDate) {
			return fmt.Errorf("inconsistent filing arrays for cik=%d at index %d", company.CIK, i)
		}

		reportDate, err := time.Parse(time.DateOnly, recent.ReportDate[i])
		if err != nil {
			r.appLogger.Error(component, "Malformed report date, skipping filing: cik=%d accn=%s date=%q", company.CIK, recent.AccessionNumber[i], recent.ReportDate[i])
			continue
		}
		dateFiled, err := time.Parse(time.DateOnly, recent.FilingDate[i])
		if err != nil {
			r.appLogger.Error(component, "Malformed filing date, skipping filing: cik=%d accn=%s date=%q", company.CIK, recent.AccessionNumber[i], recent.FilingDate[i])
			continue
		}

		filings = append(filings, store.Filing{
			CompanyID:  company.ID,
			Type:       form,
			AccnNum:    recent.AccessionNumber[i],
			ReportDate: reportDate,
			DateFiled:  dateFiled,
		})
	}

	if err := r.storage.Filings.BulkInsert(ctx, filings); err != nil {
		return fmt.Errorf("failed to insert filings: %w", err)
	}
	r.appLogger.Debug(component, "Applied filings: cik=%d candidates=%d", company.CIK, len(filings))
	return nil
}

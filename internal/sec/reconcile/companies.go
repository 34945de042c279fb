package reconcile

import (
	"context"
	"fmt"
	"sort"

	"github.com/keymetrics/keymetrics/internal/sec"
	"github.com/keymetrics/keymetrics/internal/store"
)

// LoadCompanies bootstraps the company universe from the global
// company-ticker registry: one Company per distinct CIK (first seen wins),
// then one Ticker per symbol. A registry entry without a title uses its
// ticker symbol as the company name.
func (r *Reconciler) LoadCompanies(ctx context.Context) error {
	const component = "Bootstrap"

	var registry map[string]sec.RegistryEntry
	if _, err := fetchJSON(ctx, r.fetcher, sec.CompanyTickersURL, &registry); err != nil {
		return err
	}

	keys := make([]string, 0, len(registry))
	for key := range registry {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	companies := make([]store.Company, 0, len(registry))
	ciks := make([]int64, 0, len(registry))
	seen := make(map[int64]bool, len(registry))
	for _, key := range keys {
		entry := registry[key]
		name := entry.Title
		if name == "" {
			name = entry.Ticker
		}
		if !seen[entry.CIK] {
			seen[entry.CIK] = true
			companies = append(companies, store.Company{CIK: entry.CIK, Name: name})
			ciks = append(ciks, entry.CIK)
		}
	}

	if err := r.storage.Companies.BulkInsert(ctx, companies); err != nil {
		return fmt.Errorf("failed to insert companies: %w", err)
	}

	cikMap, err := r.storage.Companies.CIKMap(ctx, ciks)
	if err != nil {
		return fmt.Errorf("failed to resolve company ids: %w", err)
	}

	tickers := make([]store.Ticker, 0, len(registry))
	for _, key := range keys {
		entry := registry[key]
		companyID, ok := cikMap[entry.CIK]
		if !ok {
			r.appLogger.Error(component, "Registry CIK missing after insert: cik=%d ticker=%s", entry.CIK, entry.Ticker)
			continue
		}
		tickers = append(tickers, store.Ticker{Ticker: entry.Ticker, CompanyID: companyID})
	}

	if err := r.storage.Tickers.BulkInsert(ctx, tickers); err != nil {
		return fmt.Errorf("failed to insert tickers: %w", err)
	}

	r.appLogger.Info(component, "Company registry loaded: companies=%d tickers=%d", len(companies), len(tickers))
	return nil
}

// ResetTracked sets every company untracked.
func (r *Reconciler) ResetTracked(ctx context.Context) error {
	return r.storage.Companies.UntrackAll(ctx)
}

// SetTracked resolves each ticker symbol to its company and marks it
// tracked. An unknown symbol fails the whole call with ErrNotFound before
// any update is applied. Duplicate symbols are idempotent.
func (r *Reconciler) SetTracked(ctx context.Context, symbols []string) error {
	ids := make([]int64, 0, len(symbols))
	seen := make(map[int64]bool, len(symbols))
	for _, symbol := range symbols {
		ticker, err := r.storage.Tickers.GetBySymbol(ctx, symbol)
		if err != nil {
			return fmt.Errorf("ticker %q: %w", symbol, err)
		}
		if !seen[ticker.CompanyID] {
			seen[ticker.CompanyID] = true
			ids = append(ids, ticker.CompanyID)
		}
	}
	return r.storage.Companies.TrackByIDs(ctx, ids)
}

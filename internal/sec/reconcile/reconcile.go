// Package reconcile implements the incremental ingestion pipeline: it
// fetches per-company SEC payloads, gates work on content fingerprints and
// persists the delta through the store's conflict-ignoring bulk writers.
package reconcile

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/keymetrics/keymetrics/internal/logger"
	"github.com/keymetrics/keymetrics/internal/sec"
	"github.com/keymetrics/keymetrics/internal/store"
)

// Fetcher is the outbound collaborator. *sec.Client satisfies it; tests
// substitute canned payloads.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*sec.Result, error)
}

type Reconciler struct {
	storage   *store.Storage
	fetcher   Fetcher
	appLogger *logger.Logger
}

func New(storage *store.Storage, fetcher Fetcher, appLogger *logger.Logger) *Reconciler {
	return &Reconciler{
		storage:   storage,
		fetcher:   fetcher,
		appLogger: appLogger,
	}
}

// SyncSubmissions reconciles the filing history of every tracked company,
// one company at a time. A failure on one company is recorded and the batch
// continues.
func (r *Reconciler) SyncSubmissions(ctx context.Context) error {
	return r.syncTracked(ctx, store.ChecksumTypeSubmissions, r.syncCompanySubmissions)
}

// SyncFacts reconciles the XBRL facts of every tracked company.
func (r *Reconciler) SyncFacts(ctx context.Context) error {
	return r.syncTracked(ctx, store.ChecksumTypeFacts, r.syncCompanyFacts)
}

func (r *Reconciler) syncTracked(ctx context.Context, apiType string, sync func(context.Context, *store.Company) (string, error)) error {
	const component = "Reconciler"

	companies, err := r.storage.Companies.ListTracked(ctx)
	if err != nil {
		return fmt.Errorf("failed to list tracked companies: %w", err)
	}
	r.appLogger.Info(component, "Starting sync: apiType=%s companies=%d", apiType, len(companies))

	for i := range companies {
		company := &companies[i]
		started := time.Now()

		status, err := sync(ctx, company)
		detail := ""
		if err != nil {
			status = store.SyncStatusFailed
			detail = err.Error()
			r.appLogger.Error(component, "Company sync failed: cik=%d apiType=%s error=%v", company.CIK, apiType, err)
		}

		entry := &store.SyncHistory{
			CompanyID:  company.ID,
			APIType:    apiType,
			Status:     status,
			Detail:     detail,
			StartedAt:  started,
			DurationMS: time.Since(started).Milliseconds(),
		}
		if err := r.storage.SyncHistory.Insert(ctx, entry); err != nil {
			r.appLogger.Error(component, "Failed to record sync history: cik=%d error=%v", company.CIK, err)
		}
	}

	r.appLogger.Info(component, "Sync completed: apiType=%s", apiType)
	return nil
}

// DeleteFacts removes every filing (facts cascade) and every stored
// fingerprint, forcing the next sync to reingest from scratch.
func (r *Reconciler) DeleteFacts(ctx context.Context) error {
	if err := r.storage.Filings.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to delete filings: %w", err)
	}
	if err := r.storage.Checksums.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to delete checksums: %w", err)
	}
	return nil
}

// fetchJSON retrieves one URL and decodes its body, returning the raw
// checksum alongside. A decode failure means upstream schema drift and is
// surfaced loudly rather than swallowed.
func fetchJSON(ctx context.Context, fetcher Fetcher, url string, v any) (string, error) {
	res, err := fetcher.Fetch(ctx, url)
	if err != nil {
		return "", err
	}
	if err := json.Unmarshal(res.Body, v); err != nil {
		return "", fmt.Errorf("malformed payload from %s: %w", url, err)
	}
	return res.Checksum, nil
}

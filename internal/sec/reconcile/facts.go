package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/keymetrics/keymetrics/internal/sec"
	"github.com/keymetrics/keymetrics/internal/sec/period"
	"github.com/keymetrics/keymetrics/internal/store"
)

// excludedFactForms carry facts but no matching Filing row is ever created
// for them, so their entries are skipped outright.
var excludedFactForms = map[string]bool{
	"8-K":   true,
	"8-K/A": true,
	"6-K":   true,
	"6-K/A": true,
}

// syncCompanyFacts runs the facts apply-procedure for one company. The
// three materialization steps run in order because fact rows look up the
// concept and period rows committed by the first two.
func (r *Reconciler) syncCompanyFacts(ctx context.Context, company *store.Company) (string, error) {
	var payload sec.FactsPayload
	checksum, err := fetchJSON(ctx, r.fetcher, sec.FactsURL(company.CIK), &payload)
	if err != nil {
		return "", err
	}

	match, err := r.storage.Checksums.CheckAndUpdate(ctx, checksum, company.ID, store.ChecksumTypeFacts)
	if err != nil {
		return "", fmt.Errorf("checksum check failed: %w", err)
	}
	if match {
		return store.SyncStatusUnchanged, nil
	}

	gaap := payload.Facts.USGAAP

	if err := r.materializeConcepts(ctx, gaap); err != nil {
		return "", err
	}
	if err := r.materializePeriods(ctx, gaap); err != nil {
		return "", err
	}
	if err := r.materializeFacts(ctx, company, gaap); err != nil {
		return "", err
	}

	return store.SyncStatusApplied, nil
}

// materializeConcepts inserts one concept per tag not already known. The
// concept is period-ended if any entry carries a start date, as-of
// otherwise. A uniqueness conflict (race on the tag, or an upstream label
// collision) is retried once with the tag itself as name and description.
func (r *Reconciler) materializeConcepts(ctx context.Context, gaap map[string]sec.ConceptFacts) error {
	tagMap, err := r.storage.Concepts.TagMap(ctx)
	if err != nil {
		return fmt.Errorf("failed to load known concepts: %w", err)
	}

	for _, tag := range sortedTags(gaap) {
		if _, known := tagMap[tag]; known {
			continue
		}
		data := gaap[tag]

		conceptType := store.ConceptTypeAsOf
		for _, entries := range data.Units {
			for _, entry := range entries {
				if entry.Start != "" {
					conceptType = store.ConceptTypePeriodEnded
				}
			}
		}

		concept := &store.FinancialConcept{
			Tag:         tag,
			Name:        data.Label,
			Description: data.Description,
			Unit:        firstUnit(data.Units),
			Type:        conceptType,
		}

		err := r.storage.Concepts.Insert(ctx, concept)
		if errors.Is(err, store.ErrConflict) {
			concept.Name = tag
			concept.Description = tag
			err = r.storage.Concepts.Insert(ctx, concept)
		}
		if err != nil && !errors.Is(err, store.ErrConflict) {
			return fmt.Errorf("failed to insert concept %s: %w", tag, err)
		}
	}
	return nil
}

// materializePeriods normalizes every entry's period and bulk inserts the
// keys not already present.
func (r *Reconciler) materializePeriods(ctx context.Context, gaap map[string]sec.ConceptFacts) error {
	const component = "Facts"

	keyMap, err := r.storage.Periods.KeyMap(ctx)
	if err != nil {
		return fmt.Errorf("failed to load known periods: %w", err)
	}

	seen := make(map[string]bool)
	dimensions := make([]store.TimeDimension, 0)
	for _, tag := range sortedTags(gaap) {
		for _, entries := range gaap[tag].Units {
			for _, entry := range entries {
				p, err := period.Normalize(period.Ref{Start: entry.Start, End: entry.End})
				if err != nil {
					r.appLogger.Error(component, "Malformed period, skipping entry: tag=%s accn=%s error=%v", tag, entry.Accn, err)
					continue
				}
				if _, known := keyMap[p.Key]; known || seen[p.Key] {
					continue
				}

				endDate, err := time.Parse(time.DateOnly, p.End)
				if err != nil {
					r.appLogger.Error(component, "Malformed end date, skipping entry: tag=%s end=%q", tag, p.End)
					continue
				}

				dimension := store.TimeDimension{Key: p.Key, EndDate: endDate}
				if p.Start != "" {
					startDate, err := time.Parse(time.DateOnly, p.Start)
					if err != nil {
						r.appLogger.Error(component, "Malformed start date, skipping entry: tag=%s start=%q", tag, p.Start)
						continue
					}
					dimension.StartDate.Time = startDate
					dimension.StartDate.Valid = true
				}
				if p.Months != nil {
					dimension.Months.Int32 = int32(*p.Months)
					dimension.Months.Valid = true
				}

				seen[p.Key] = true
				dimensions = append(dimensions, dimension)
			}
		}
	}

	if err := r.storage.Periods.BulkInsert(ctx, dimensions); err != nil {
		return fmt.Errorf("failed to insert time dimensions: %w", err)
	}
	return nil
}

// materializeFacts resolves each entry's filing, concept and period,
// classifies it and bulk inserts the candidates. An entry whose accession
// has no Filing row is logged and skipped; it never aborts the batch.
func (r *Reconciler) materializeFacts(ctx context.Context, company *store.Company, gaap map[string]sec.ConceptFacts) error {
	const component = "Facts"

	accnMap, err := r.storage.Filings.AccessionMap(ctx, company.ID)
	if err != nil {
		return fmt.Errorf("failed to load filings: %w", err)
	}
	tagMap, err := r.storage.Concepts.TagMap(ctx)
	if err != nil {
		return fmt.Errorf("failed to load concepts: %w", err)
	}
	keyMap, err := r.storage.Periods.KeyMap(ctx)
	if err != nil {
		return fmt.Errorf("failed to load periods: %w", err)
	}

	facts := make([]store.FinancialFact, 0)
	for _, tag := range sortedTags(gaap) {
		conceptID, ok := tagMap[tag]
		if !ok {
			r.appLogger.Error(component, "Concept missing after materialization: tag=%s", tag)
			continue
		}

		for _, entries := range gaap[tag].Units {
			for _, entry := range entries {
				if excludedFactForms[entry.Form] {
					continue
				}
				if entry.End == "" || entry.Accn == "" {
					r.appLogger.Error(component, "Entry missing end date or accession, skipping: tag=%s form=%s", tag, entry.Form)
					continue
				}

				filingID, ok := accnMap[entry.Accn]
				if !ok {
					r.appLogger.Warn(component, "No filing for accession, skipping entry: cik=%d accn=%s tag=%s", company.CIK, entry.Accn, tag)
					continue
				}

				p, err := period.Normalize(period.Ref{Start: entry.Start, End: entry.End})
				if err != nil {
					r.appLogger.Error(component, "Malformed period, skipping entry: tag=%s accn=%s error=%v", tag, entry.Accn, err)
					continue
				}
				periodID, ok := keyMap[p.Key]
				if !ok {
					r.appLogger.Error(component, "Period missing after materialization: key=%s tag=%s", p.Key, tag)
					continue
				}

				endDate, err := time.Parse(time.DateOnly, entry.End)
				if err != nil {
					r.appLogger.Error(component, "Malformed end date, skipping entry: tag=%s end=%q", tag, entry.End)
					continue
				}

				facts = append(facts, store.FinancialFact{
					CompanyID: company.ID,
					FilingID:  filingID,
					ConceptID: conceptID,
					PeriodID:  periodID,
					Value:     int64(entry.Val),
					IsAnnual:  classifyAnnual(p.Months, endDate, company.FiscalYearEnd.String),
					IsFramed:  isFramed(entry),
				})
			}
		}
	}

	if err := r.storage.Facts.BulkInsert(ctx, facts); err != nil {
		return fmt.Errorf("failed to insert facts: %w", err)
	}
	r.appLogger.Debug(component, "Applied facts: cik=%d candidates=%d", company.CIK, len(facts))
	return nil
}

func sortedTags(gaap map[string]sec.ConceptFacts) []string {
	tags := make([]string, 0, len(gaap))
	for tag := range gaap {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

func firstUnit(units map[string][]sec.FactEntry) string {
	names := make([]string, 0, len(units))
	for name := range units {
		names = append(names, name)
	}
	sort.Strings(names)
	if len(names) == 0 {
		return ""
	}
	return names[0]
}

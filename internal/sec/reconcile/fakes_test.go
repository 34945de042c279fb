package reconcile

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/keymetrics/keymetrics/internal/logger"
	"github.com/keymetrics/keymetrics/internal/sec"
	"github.com/keymetrics/keymetrics/internal/store"
)

// memDB backs the in-memory store fakes. Each fake enforces the same
// uniqueness rules as the schema so conflict-ignore behavior is observable.
type memDB struct {
	companies []store.Company
	tickers   []store.Ticker
	filings   []store.Filing
	concepts  []store.FinancialConcept
	periods   []store.TimeDimension
	facts     []store.FinancialFact
	checksums map[string]string
	history   []store.SyncHistory
	nextID    int64
}

func (d *memDB) id() int64 {
	d.nextID++
	return d.nextID
}

func checksumKey(companyID int64, apiType string) string {
	return fmt.Sprintf("%d:%s", companyID, apiType)
}

func newMemStorage() (*store.Storage, *memDB) {
	db := &memDB{checksums: make(map[string]string)}
	return &store.Storage{
		Companies:   &memCompanies{db},
		Tickers:     &memTickers{db},
		Filings:     &memFilings{db},
		Concepts:    &memConcepts{db},
		Periods:     &memPeriods{db},
		Facts:       &memFacts{db},
		Checksums:   &memChecksums{db},
		SyncHistory: &memHistory{db},
	}, db
}

type memCompanies struct{ db *memDB }

func (m *memCompanies) BulkInsert(ctx context.Context, companies []store.Company) error {
	for _, c := range companies {
		if m.byCIK(c.CIK) != nil {
			continue
		}
		c.ID = m.db.id()
		m.db.companies = append(m.db.companies, c)
	}
	return nil
}

func (m *memCompanies) byCIK(cik int64) *store.Company {
	for i := range m.db.companies {
		if m.db.companies[i].CIK == cik {
			return &m.db.companies[i]
		}
	}
	return nil
}

func (m *memCompanies) GetByCIK(ctx context.Context, cik int64) (*store.Company, error) {
	if c := m.byCIK(cik); c != nil {
		copied := *c
		return &copied, nil
	}
	return nil, store.ErrNotFound
}

func (m *memCompanies) GetByID(ctx context.Context, id int64) (*store.Company, error) {
	for i := range m.db.companies {
		if m.db.companies[i].ID == id {
			copied := m.db.companies[i]
			return &copied, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memCompanies) CIKMap(ctx context.Context, ciks []int64) (map[int64]int64, error) {
	result := make(map[int64]int64, len(ciks))
	for _, cik := range ciks {
		if c := m.byCIK(cik); c != nil {
			result[cik] = c.ID
		}
	}
	return result, nil
}

func (m *memCompanies) ListTracked(ctx context.Context) ([]store.Company, error) {
	tracked := []store.Company{}
	for _, c := range m.db.companies {
		if c.IsTracked {
			tracked = append(tracked, c)
		}
	}
	return tracked, nil
}

func (m *memCompanies) UntrackAll(ctx context.Context) error {
	for i := range m.db.companies {
		m.db.companies[i].IsTracked = false
	}
	return nil
}

func (m *memCompanies) TrackByIDs(ctx context.Context, ids []int64) error {
	for _, id := range ids {
		for i := range m.db.companies {
			if m.db.companies[i].ID == id {
				m.db.companies[i].IsTracked = true
			}
		}
	}
	return nil
}

func (m *memCompanies) UpdateFiscalYearEnd(ctx context.Context, id int64, yearEnd string) error {
	for i := range m.db.companies {
		if m.db.companies[i].ID == id {
			m.db.companies[i].FiscalYearEnd.String = yearEnd
			m.db.companies[i].FiscalYearEnd.Valid = true
		}
	}
	return nil
}

type memTickers struct{ db *memDB }

func (m *memTickers) BulkInsert(ctx context.Context, tickers []store.Ticker) error {
	for _, t := range tickers {
		if m.bySymbol(t.Ticker) != nil {
			continue
		}
		t.ID = m.db.id()
		m.db.tickers = append(m.db.tickers, t)
	}
	return nil
}

func (m *memTickers) bySymbol(symbol string) *store.Ticker {
	for i := range m.db.tickers {
		if m.db.tickers[i].Ticker == symbol {
			return &m.db.tickers[i]
		}
	}
	return nil
}

func (m *memTickers) GetBySymbol(ctx context.Context, symbol string) (*store.Ticker, error) {
	if t := m.bySymbol(symbol); t != nil {
		copied := *t
		return &copied, nil
	}
	return nil, store.ErrNotFound
}

type memFilings struct{ db *memDB }

func (m *memFilings) BulkInsert(ctx context.Context, filings []store.Filing) error {
	for _, f := range filings {
		exists := false
		for i := range m.db.filings {
			if m.db.filings[i].AccnNum == f.AccnNum {
				exists = true
				break
			}
		}
		if exists {
			continue
		}
		f.ID = m.db.id()
		m.db.filings = append(m.db.filings, f)
	}
	return nil
}

func (m *memFilings) AccessionMap(ctx context.Context, companyID int64) (map[string]int64, error) {
	result := make(map[string]int64)
	for _, f := range m.db.filings {
		if f.CompanyID == companyID {
			result[f.AccnNum] = f.ID
		}
	}
	return result, nil
}

func (m *memFilings) ListWithFactCounts(ctx context.Context, limit, offset int) ([]store.FilingWithFactCount, error) {
	return nil, nil
}

func (m *memFilings) DeleteAll(ctx context.Context) error {
	m.db.filings = nil
	m.db.facts = nil
	return nil
}

type memConcepts struct{ db *memDB }

func (m *memConcepts) Insert(ctx context.Context, concept *store.FinancialConcept) error {
	for i := range m.db.concepts {
		if m.db.concepts[i].Tag == concept.Tag {
			return store.ErrConflict
		}
	}
	concept.ID = m.db.id()
	m.db.concepts = append(m.db.concepts, *concept)
	return nil
}

func (m *memConcepts) TagMap(ctx context.Context) (map[string]int64, error) {
	result := make(map[string]int64, len(m.db.concepts))
	for _, c := range m.db.concepts {
		result[c.Tag] = c.ID
	}
	return result, nil
}

func (m *memConcepts) SetAlias(ctx context.Context, tag string, aliasID int64) error {
	for i := range m.db.concepts {
		if m.db.concepts[i].Tag == tag {
			m.db.concepts[i].AliasID.Int64 = aliasID
			m.db.concepts[i].AliasID.Valid = true
			return nil
		}
	}
	return store.ErrNotFound
}

type memPeriods struct{ db *memDB }

func (m *memPeriods) BulkInsert(ctx context.Context, periods []store.TimeDimension) error {
	for _, p := range periods {
		exists := false
		for i := range m.db.periods {
			if m.db.periods[i].Key == p.Key {
				exists = true
				break
			}
		}
		if exists {
			continue
		}
		p.ID = m.db.id()
		m.db.periods = append(m.db.periods, p)
	}
	return nil
}

func (m *memPeriods) KeyMap(ctx context.Context) (map[string]int64, error) {
	result := make(map[string]int64, len(m.db.periods))
	for _, p := range m.db.periods {
		result[p.Key] = p.ID
	}
	return result, nil
}

type memFacts struct{ db *memDB }

func (m *memFacts) BulkInsert(ctx context.Context, facts []store.FinancialFact) error {
	for _, f := range facts {
		exists := false
		for i := range m.db.facts {
			g := m.db.facts[i]
			if g.CompanyID == f.CompanyID && g.ConceptID == f.ConceptID &&
				g.FilingID == f.FilingID && g.PeriodID == f.PeriodID && g.Value == f.Value {
				exists = true
				break
			}
		}
		if exists {
			continue
		}
		f.ID = m.db.id()
		m.db.facts = append(m.db.facts, f)
	}
	return nil
}

func (m *memFacts) CountForCompany(ctx context.Context, companyID int64) (int64, error) {
	var count int64
	for _, f := range m.db.facts {
		if f.CompanyID == companyID {
			count++
		}
	}
	return count, nil
}

type memChecksums struct{ db *memDB }

func (m *memChecksums) CheckAndUpdate(ctx context.Context, checksum string, companyID int64, apiType string) (bool, error) {
	key := checksumKey(companyID, apiType)
	if m.db.checksums[key] == checksum {
		return true, nil
	}
	m.db.checksums[key] = checksum
	return false, nil
}

func (m *memChecksums) DeleteAll(ctx context.Context) error {
	m.db.checksums = make(map[string]string)
	return nil
}

type memHistory struct{ db *memDB }

func (m *memHistory) Insert(ctx context.Context, entry *store.SyncHistory) error {
	entry.ID = m.db.id()
	m.db.history = append(m.db.history, *entry)
	return nil
}

func (m *memHistory) Latest(ctx context.Context, limit int) ([]store.SyncHistory, error) {
	result := []store.SyncHistory{}
	for i := len(m.db.history) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, m.db.history[i])
	}
	return result, nil
}

// conflictingConcepts returns ErrConflict on the first insert attempt of the
// given tag, mimicking a uniqueness race against a concurrent writer.
type conflictingConcepts struct {
	*memConcepts
	tag     string
	tripped bool
}

func (c *conflictingConcepts) Insert(ctx context.Context, concept *store.FinancialConcept) error {
	if concept.Tag == c.tag && !c.tripped {
		c.tripped = true
		return store.ErrConflict
	}
	return c.memConcepts.Insert(ctx, concept)
}

// fakeFetcher serves canned payloads keyed by URL and records every call.
type fakeFetcher struct {
	payloads map[string][]byte
	errs     map[string]error
	calls    []string
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		payloads: make(map[string][]byte),
		errs:     make(map[string]error),
	}
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (*sec.Result, error) {
	f.calls = append(f.calls, url)
	if err, ok := f.errs[url]; ok {
		return nil, err
	}
	body, ok := f.payloads[url]
	if !ok {
		return nil, &sec.FetchError{Kind: sec.FailureHTTPStatus, URL: url, Err: errors.New("unexpected status 404")}
	}
	sum := md5.Sum(body)
	return &sec.Result{Body: body, Checksum: hex.EncodeToString(sum[:])}, nil
}

func testLogger() *logger.Logger {
	return &logger.Logger{MinLevel: logger.LevelCritical + 1}
}

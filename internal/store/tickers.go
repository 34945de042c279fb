package store

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type TickerStore struct {
	db *sqlx.DB
}

func (ts *TickerStore) BulkInsert(ctx context.Context, tickers []Ticker) error {
	if len(tickers) == 0 {
		return nil
	}

	query := `INSERT INTO tickers (ticker, company_id)
	VALUES (:ticker, :company_id)
	ON CONFLICT (ticker) DO NOTHING`

	_, err := ts.db.NamedExecContext(ctx, query, tickers)
	return err
}

func (ts *TickerStore) GetBySymbol(ctx context.Context, symbol string) (*Ticker, error) {
	var ticker Ticker
	err := ts.db.GetContext(ctx, &ticker,
		`SELECT id, ticker, company_id FROM tickers WHERE ticker = $1`, symbol)
	if err != nil {
		return nil, translateGetErr(err)
	}
	return &ticker, nil
}

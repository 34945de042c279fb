package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

type ChecksumStore struct {
	db *sqlx.DB
}

// CheckAndUpdate compares checksum against the stored fingerprint for
// (company, apiType). A missing row reads as the empty string. When the
// values differ the stored fingerprint is upserted to the new value before
// returning, so a crash mid-apply leaves the fingerprint ahead of the data.
// Returns true when the fingerprints match and no further work is needed.
func (cs *ChecksumStore) CheckAndUpdate(ctx context.Context, checksum string, companyID int64, apiType string) (bool, error) {
	var stored string
	err := cs.db.GetContext(ctx, &stored,
		`SELECT checksum FROM checksums WHERE company_id = $1 AND api_type = $2`,
		companyID, apiType)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return false, err
	}

	if checksum == stored {
		return true, nil
	}

	_, err = cs.db.ExecContext(ctx,
		`INSERT INTO checksums (company_id, api_type, checksum)
		VALUES ($1, $2, $3)
		ON CONFLICT ON CONSTRAINT unique_company_api_checksum
		DO UPDATE SET checksum = EXCLUDED.checksum`,
		companyID, apiType, checksum)
	if err != nil {
		return false, err
	}
	return false, nil
}

func (cs *ChecksumStore) DeleteAll(ctx context.Context) error {
	_, err := cs.db.ExecContext(ctx, `DELETE FROM checksums`)
	return err
}

package license

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/gridline-data/locator-cli/internal/db"
	"github.com/gridline-data/locator-cli/internal/model"
)

// licenseesTable is keyed on (license_number, source_state, source_tier);
// license numbers are never unique across states.
const licenseesTable = "licensing.licensees"

var licenseeColumns = []string{
	"license_number", "source_state", "source_tier",
	"licensee_name", "business_name", "license_type", "license_status",
	"street", "city", "state", "zip", "county",
	"issue_date", "expiration_date", "original_issue_date",
	"phone", "email", "website",
}

var licenseeConflictKeys = []string{"license_number", "source_state", "source_tier"}

// Store persists licensees in Postgres.
type Store struct {
	pool db.Pool
}

// NewStore creates a licensee store over the given pool.
func NewStore(pool db.Pool) *Store {
	return &Store{pool: pool}
}

// Upsert bulk-loads licensees, replacing prior rows for the same key.
func (s *Store) Upsert(ctx context.Context, lics []model.Licensee) (int64, error) {
	rows := make([][]any, 0, len(lics))
	for _, l := range lics {
		rows = append(rows, []any{
			l.LicenseNumber, l.SourceState, string(l.SourceTier),
			l.LicenseeName, l.BusinessName, string(l.LicenseType), l.LicenseStatus,
			l.Street, l.City, l.State, l.Zip, l.County,
			l.IssueDate, l.ExpirationDate, l.OriginalIssueDate,
			l.Phone, l.Email, l.Website,
		})
	}

	n, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        licenseesTable,
		Columns:      licenseeColumns,
		ConflictKeys: licenseeConflictKeys,
	}, rows)
	if err != nil {
		return 0, eris.Wrap(err, "license: upsert licensees")
	}
	return n, nil
}

// ListByState returns every licensee ingested for a state, in license
// number order.
func (s *Store) ListByState(ctx context.Context, state string) ([]model.Licensee, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT license_number, source_state, source_tier,
		       licensee_name, business_name, license_type, license_status,
		       street, city, state, zip, county,
		       issue_date, expiration_date, original_issue_date,
		       phone, email, website
		FROM licensing.licensees
		WHERE source_state = $1
		ORDER BY license_number`, state)
	if err != nil {
		return nil, eris.Wrapf(err, "license: list licensees for %s", state)
	}
	defer rows.Close()

	var out []model.Licensee
	for rows.Next() {
		var l model.Licensee
		var tier, ltype string
		if err := rows.Scan(
			&l.LicenseNumber, &l.SourceState, &tier,
			&l.LicenseeName, &l.BusinessName, &ltype, &l.LicenseStatus,
			&l.Street, &l.City, &l.State, &l.Zip, &l.County,
			&l.IssueDate, &l.ExpirationDate, &l.OriginalIssueDate,
			&l.Phone, &l.Email, &l.Website,
		); err != nil {
			return nil, eris.Wrap(err, "license: scan licensee")
		}
		l.SourceTier = model.SourceTier(tier)
		l.LicenseType = model.LicenseType(ltype)
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "license: iterate licensees")
	}

	zap.L().Debug("loaded licensees",
		zap.String("component", "license.store"),
		zap.String("state", state),
		zap.Int("count", len(out)),
	)
	return out, nil
}

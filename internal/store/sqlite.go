package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/gridline-data/locator-cli/internal/model"
	"github.com/gridline-data/locator-cli/internal/scorer"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS sweeps (
	id           TEXT PRIMARY KEY,
	oem          TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'running',
	total_zips   INTEGER NOT NULL DEFAULT 0,
	raw_count    INTEGER NOT NULL DEFAULT 0,
	unique_count INTEGER NOT NULL DEFAULT 0,
	failed_zips  INTEGER NOT NULL DEFAULT 0,
	started_at   DATETIME NOT NULL DEFAULT (datetime('now')),
	completed_at DATETIME
);

CREATE TABLE IF NOT EXISTS dealers (
	id       TEXT PRIMARY KEY,
	sweep_id TEXT NOT NULL REFERENCES sweeps(id),
	oem      TEXT NOT NULL,
	name     TEXT NOT NULL,
	phone    TEXT,
	state    TEXT,
	record   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS leads (
	key       TEXT PRIMARY KEY,
	tier      TEXT NOT NULL,
	score     REAL NOT NULL,
	record    TEXT NOT NULL,
	scored_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_sweeps_oem ON sweeps(oem);
CREATE INDEX IF NOT EXISTS idx_sweeps_status ON sweeps(status);
CREATE INDEX IF NOT EXISTS idx_dealers_sweep_id ON dealers(sweep_id);
CREATE INDEX IF NOT EXISTS idx_dealers_oem ON dealers(oem);
CREATE INDEX IF NOT EXISTS idx_dealers_state ON dealers(state);
CREATE INDEX IF NOT EXISTS idx_leads_tier ON leads(tier);
CREATE INDEX IF NOT EXISTS idx_leads_score ON leads(score);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateSweep(ctx context.Context, oem string, totalZips int) (*model.Sweep, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sweeps (id, oem, status, total_zips, started_at) VALUES (?, ?, ?, ?, ?)`,
		id, oem, string(model.SweepRunning), totalZips, now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: insert sweep for %s", oem)
	}

	return &model.Sweep{
		ID:        id,
		OEM:       oem,
		Status:    model.SweepRunning,
		TotalZips: totalZips,
		StartedAt: now,
	}, nil
}

func (s *SQLiteStore) CompleteSweep(ctx context.Context, sweepID string, status model.SweepStatus, raw, unique, failedZips int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sweeps SET status = ?, raw_count = ?, unique_count = ?, failed_zips = ?, completed_at = ? WHERE id = ?`,
		string(status), raw, unique, failedZips, time.Now().UTC(), sweepID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete sweep %s", sweepID)
	}
	return checkRowsAffected(res, "sweep", sweepID)
}

func (s *SQLiteStore) GetSweep(ctx context.Context, sweepID string) (*model.Sweep, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, oem, status, total_zips, raw_count, unique_count, failed_zips, started_at, completed_at
		 FROM sweeps WHERE id = ?`,
		sweepID,
	)
	return scanSweep(row)
}

func (s *SQLiteStore) ListSweeps(ctx context.Context, filter SweepFilter) ([]model.Sweep, error) {
	query := `SELECT id, oem, status, total_zips, raw_count, unique_count, failed_zips, started_at, completed_at
		 FROM sweeps WHERE 1=1`
	var args []any

	if filter.OEM != "" {
		query += ` AND oem = ?`
		args = append(args, filter.OEM)
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY started_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list sweeps")
	}
	defer rows.Close()

	var sweeps []model.Sweep
	for rows.Next() {
		sw, err := scanSweep(rows)
		if err != nil {
			return nil, err
		}
		sweeps = append(sweeps, *sw)
	}
	return sweeps, eris.Wrap(rows.Err(), "sqlite: list sweeps iterate")
}

func (s *SQLiteStore) InsertDealers(ctx context.Context, sweepID string, dealers []model.Dealer) (int, error) {
	if len(dealers) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin insert dealers")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO dealers (id, sweep_id, oem, name, phone, state, record) VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare insert dealer")
	}
	defer stmt.Close()

	for _, d := range dealers {
		recordJSON, err := json.Marshal(d)
		if err != nil {
			return 0, eris.Wrap(err, "sqlite: marshal dealer")
		}
		if _, err := stmt.ExecContext(ctx,
			uuid.New().String(), sweepID, d.OEMSource, d.Name, d.Phone, d.State, string(recordJSON),
		); err != nil {
			return 0, eris.Wrapf(err, "sqlite: insert dealer %s", d.Name)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit insert dealers")
	}
	return len(dealers), nil
}

func (s *SQLiteStore) ListDealers(ctx context.Context, filter DealerFilter) ([]model.Dealer, error) {
	query := `SELECT record FROM dealers WHERE 1=1`
	var args []any

	if filter.OEM != "" {
		query += ` AND oem = ?`
		args = append(args, filter.OEM)
	}
	if filter.State != "" {
		query += ` AND state = ?`
		args = append(args, filter.State)
	}
	query += ` ORDER BY name`

	limit := filter.Limit
	if limit <= 0 {
		limit = 10000
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list dealers")
	}
	defer rows.Close()

	var dealers []model.Dealer
	for rows.Next() {
		var recordJSON string
		if err := rows.Scan(&recordJSON); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan dealer")
		}
		var d model.Dealer
		if err := json.Unmarshal([]byte(recordJSON), &d); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal dealer")
		}
		dealers = append(dealers, d)
	}
	return dealers, eris.Wrap(rows.Err(), "sqlite: list dealers iterate")
}

func (s *SQLiteStore) SaveLeads(ctx context.Context, leads []scorer.Lead) (int, error) {
	if len(leads) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin save leads")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO leads (key, tier, score, record, scored_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET tier = excluded.tier, score = excluded.score,
		 record = excluded.record, scored_at = excluded.scored_at`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare save lead")
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, l := range leads {
		recordJSON, err := json.Marshal(l)
		if err != nil {
			return 0, eris.Wrap(err, "sqlite: marshal lead")
		}
		if _, err := stmt.ExecContext(ctx,
			l.Profile.Key, l.Tier, l.Score, string(recordJSON), now,
		); err != nil {
			return 0, eris.Wrapf(err, "sqlite: save lead %s", l.Profile.Key)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit save leads")
	}
	return len(leads), nil
}

func (s *SQLiteStore) ListLeads(ctx context.Context, filter LeadFilter) ([]scorer.Lead, error) {
	query := `SELECT record FROM leads WHERE 1=1`
	var args []any

	if filter.Tier != "" {
		query += ` AND tier = ?`
		args = append(args, filter.Tier)
	}
	if filter.MinScore > 0 {
		query += ` AND score >= ?`
		args = append(args, filter.MinScore)
	}
	query += ` ORDER BY score DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 10000
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list leads")
	}
	defer rows.Close()

	var leads []scorer.Lead
	for rows.Next() {
		var recordJSON string
		if err := rows.Scan(&recordJSON); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan lead")
		}
		var l scorer.Lead
		if err := json.Unmarshal([]byte(recordJSON), &l); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal lead")
		}
		leads = append(leads, l)
	}
	return leads, eris.Wrap(rows.Err(), "sqlite: list leads iterate")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanSweep(row scannable) (*model.Sweep, error) {
	var sw model.Sweep
	var completedAt sql.NullTime

	err := row.Scan(&sw.ID, &sw.OEM, &sw.Status, &sw.TotalZips, &sw.RawCount,
		&sw.UniqueCount, &sw.FailedZips, &sw.StartedAt, &completedAt)
	if err == sql.ErrNoRows {
		return nil, eris.New("sweep not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan sweep")
	}

	if completedAt.Valid {
		t := completedAt.Time
		sw.CompletedAt = &t
	}
	return &sw, nil
}

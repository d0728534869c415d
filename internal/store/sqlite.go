package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/trip-planner/internal/model"
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
CREATE TABLE IF NOT EXISTS plan_runs (
	id          TEXT PRIMARY KEY,
	constraints TEXT NOT NULL,
	status      TEXT NOT NULL DEFAULT 'queued',
	itinerary   TEXT,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_plan_runs_status ON plan_runs(status);
CREATE INDEX IF NOT EXISTS idx_plan_runs_destination
	ON plan_runs(json_extract(constraints, '$.destination'));
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, constraints model.TripConstraints) (*model.PlanRun, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	consJSON, err := json.Marshal(constraints)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal constraints")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO plan_runs (id, constraints, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, string(consJSON), string(model.RunStatusQueued), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}

	return &model.PlanRun{
		ID:          id,
		Constraints: constraints,
		Status:      model.RunStatusQueued,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (s *SQLiteStore) UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE plan_runs SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update run status %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) SaveItinerary(ctx context.Context, runID string, status model.RunStatus, it *model.Itinerary) error {
	var itJSON any
	if it != nil {
		data, err := json.Marshal(it)
		if err != nil {
			return eris.Wrap(err, "sqlite: marshal itinerary")
		}
		itJSON = string(data)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE plan_runs SET itinerary = ?, status = ?, updated_at = ? WHERE id = ?`,
		itJSON, string(status), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: save itinerary %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.PlanRun, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, constraints, status, itinerary, created_at, updated_at FROM plan_runs WHERE id = ?`,
		runID,
	)
	return scanRun(row)
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.PlanRun, error) {
	query := `SELECT id, constraints, status, itinerary, created_at, updated_at FROM plan_runs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.Destination != "" {
		query += ` AND json_extract(constraints, '$.destination') = ?`
		args = append(args, filter.Destination)
	}
	query += ` ORDER BY created_at DESC`

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
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.PlanRun
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
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

func scanRun(row scannable) (*model.PlanRun, error) {
	var r model.PlanRun
	var consJSON string
	var itJSON sql.NullString

	err := row.Scan(&r.ID, &consJSON, &r.Status, &itJSON, &r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.New("run not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan run")
	}

	if err := json.Unmarshal([]byte(consJSON), &r.Constraints); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal constraints")
	}
	if itJSON.Valid {
		r.Itinerary = &model.Itinerary{}
		if err := json.Unmarshal([]byte(itJSON.String), r.Itinerary); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal itinerary")
		}
	}
	return &r, nil
}

// Package store persists validation runs in SQLite: one row per run, the
// accepted records after repair and the report messages.
package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teranos/gaffer/annotation"
	"github.com/teranos/gaffer/errors"
	"github.com/teranos/gaffer/logger"
	"github.com/teranos/gaffer/report"
)

// Run is one validated or converted file.
type Run struct {
	ID         string     `json:"id"`
	Source     string     `json:"source"`
	Format     string     `json:"format"`
	Version    string     `json:"version"`
	Group      string     `json:"group"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Lines      int        `json:"lines"`
	Skipped    int        `json:"skipped"`
	Accepted   int        `json:"accepted"`
	Dropped    int        `json:"dropped"`
}

// Record is an accepted annotation together with where it came from.
type Record struct {
	LineNo      int
	Association *annotation.Association
	// Line is the record as written to the output file.
	Line string
}

// StoredAssociation is the row form of a Record.
type StoredAssociation struct {
	ID         int64  `json:"id"`
	RunID      string `json:"run_id"`
	LineNo     int    `json:"line_no"`
	Subject    string `json:"subject"`
	Relation   string `json:"relation"`
	Object     string `json:"object"`
	Negated    bool   `json:"negated"`
	Evidence   string `json:"evidence"`
	Taxon      string `json:"taxon"`
	ProvidedBy string `json:"provided_by"`
	Line       string `json:"line"`
}

// Query constants
const (
	RunInsertQuery = `
		INSERT INTO runs (id, source, format, version, grp, started_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	RunFinishQuery = `
		UPDATE runs SET format = ?, version = ?, finished_at = ?, lines = ?, skipped = ?, accepted = ?, dropped = ?
		WHERE id = ?`

	RunSelectQuery = `
		SELECT id, source, format, version, grp, started_at, finished_at, lines, skipped, accepted, dropped
		FROM runs`

	AssociationInsertQuery = `
		INSERT INTO associations (run_id, line_no, subject, relation, object, negated, evidence, taxon, provided_by, line)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	AssociationSelectQuery = `
		SELECT id, run_id, line_no, subject, relation, object, negated, evidence, taxon, provided_by, line
		FROM associations WHERE run_id = ? ORDER BY id`

	MessageInsertQuery = `
		INSERT INTO messages (run_id, level, type, rule, line_no, line, obj, taxon, message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	MessageCountQuery = `
		SELECT level, COUNT(*) FROM messages WHERE run_id = ? GROUP BY level`
)

// SQLStore keeps runs in a migrated SQLite database (see package db).
type SQLStore struct {
	db     *sql.DB
	logger *zap.SugaredLogger
	now    func() time.Time
}

// NewSQLStore wraps an open, migrated database.
func NewSQLStore(db *sql.DB, log *zap.SugaredLogger) *SQLStore {
	return &SQLStore{
		db:     db,
		logger: logger.OrNop(log).Named("store"),
		now:    time.Now,
	}
}

// CreateRun inserts run, assigning an ID and start time when unset.
func (s *SQLStore) CreateRun(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = s.now().UTC()
	}
	_, err := s.db.ExecContext(ctx, RunInsertQuery,
		run.ID, run.Source, run.Format, run.Version, run.Group, run.StartedAt)
	if err != nil {
		return errors.Wrapf(err, "failed to insert run %s", run.ID)
	}
	s.logger.Debugw("Run created", logger.FieldRunID, run.ID, logger.FieldFile, run.Source)
	return nil
}

// FinishRun stores the run's final counts and marks it finished.
func (s *SQLStore) FinishRun(ctx context.Context, run *Run) error {
	finished := s.now().UTC()
	res, err := s.db.ExecContext(ctx, RunFinishQuery,
		run.Format, run.Version, finished, run.Lines, run.Skipped, run.Accepted, run.Dropped, run.ID)
	if err != nil {
		return errors.Wrapf(err, "failed to finish run %s", run.ID)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.Wrapf(errors.ErrNotFound, "run %s", run.ID)
	}
	run.FinishedAt = &finished
	return nil
}

// SaveRecords inserts accepted records in one transaction.
func (s *SQLStore) SaveRecords(ctx context.Context, runID string, records []Record) error {
	if len(records) == 0 {
		return nil
	}
	return s.inTx(ctx, AssociationInsertQuery, func(stmt *sql.Stmt) error {
		for _, r := range records {
			a := r.Association
			if _, err := stmt.ExecContext(ctx,
				runID, r.LineNo, a.Subject.ID.String(), a.Relation.String(), a.Object.ID.String(),
				a.Negated, a.Evidence.Type.String(), a.Subject.Taxon.String(), a.ProvidedBy, r.Line,
			); err != nil {
				return errors.Wrapf(err, "failed to insert record from line %d", r.LineNo)
			}
		}
		return nil
	})
}

// SaveMessages inserts report messages in one transaction.
func (s *SQLStore) SaveMessages(ctx context.Context, runID string, msgs []report.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	return s.inTx(ctx, MessageInsertQuery, func(stmt *sql.Stmt) error {
		for _, m := range msgs {
			if _, err := stmt.ExecContext(ctx,
				runID, string(m.Level), m.Type, m.Rule, m.LineNo, m.Line, m.Obj, m.Taxon, m.Message,
			); err != nil {
				return errors.Wrap(err, "failed to insert message")
			}
		}
		return nil
	})
}

func (s *SQLStore) inTx(ctx context.Context, query string, fn func(*sql.Stmt) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		tx.Rollback()
		return errors.Wrap(err, "failed to prepare statement")
	}
	defer stmt.Close()

	if err := fn(stmt); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit")
	}
	return nil
}

// GetRun returns one run or ErrNotFound.
func (s *SQLStore) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, RunSelectQuery+" WHERE id = ?", id)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, errors.Wrapf(errors.ErrNotFound, "run %s", id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read run %s", id)
	}
	return run, nil
}

// ListRuns returns the most recent runs first. limit <= 0 returns all.
func (s *SQLStore) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	query := RunSelectQuery + " ORDER BY started_at DESC"
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list runs")
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan run")
		}
		runs = append(runs, run)
	}
	return runs, errors.Wrap(rows.Err(), "failed to list runs")
}

// Associations returns a run's accepted records in insertion order.
func (s *SQLStore) Associations(ctx context.Context, runID string) ([]StoredAssociation, error) {
	rows, err := s.db.QueryContext(ctx, AssociationSelectQuery, runID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read associations of run %s", runID)
	}
	defer rows.Close()

	var out []StoredAssociation
	for rows.Next() {
		var a StoredAssociation
		if err := rows.Scan(&a.ID, &a.RunID, &a.LineNo, &a.Subject, &a.Relation, &a.Object,
			&a.Negated, &a.Evidence, &a.Taxon, &a.ProvidedBy, &a.Line); err != nil {
			return nil, errors.Wrap(err, "failed to scan association")
		}
		out = append(out, a)
	}
	return out, errors.Wrap(rows.Err(), "failed to read associations")
}

// MessageCounts returns a run's message count per level.
func (s *SQLStore) MessageCounts(ctx context.Context, runID string) (map[report.Level]int, error) {
	rows, err := s.db.QueryContext(ctx, MessageCountQuery, runID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to count messages of run %s", runID)
	}
	defer rows.Close()

	counts := make(map[report.Level]int)
	for rows.Next() {
		var level string
		var n int
		if err := rows.Scan(&level, &n); err != nil {
			return nil, errors.Wrap(err, "failed to scan message count")
		}
		counts[report.Level(level)] = n
	}
	return counts, errors.Wrap(rows.Err(), "failed to count messages")
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (*Run, error) {
	var run Run
	var finished sql.NullTime
	if err := row.Scan(&run.ID, &run.Source, &run.Format, &run.Version, &run.Group,
		&run.StartedAt, &finished, &run.Lines, &run.Skipped, &run.Accepted, &run.Dropped); err != nil {
		return nil, err
	}
	if finished.Valid {
		t := finished.Time
		run.FinishedAt = &t
	}
	return &run, nil
}

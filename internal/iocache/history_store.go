package iocache

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/rubric/internal/contract"
	"github.com/huangsam/rubric/schema"
)

// Table names for score history.
const (
	runsTable            = "rubric_runs"
	criterionScoresTable = "rubric_criterion_scores"
	migrationsTable      = "schema_migrations" // golang-migrate default
)

// HistoryStoreImpl implements the HistoryStore interface on top of database/sql.
// The none backend yields a store without a database where every write is a no-op.
type HistoryStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.HistoryStore = &HistoryStoreImpl{} // Compile-time check

// NewHistoryStore opens the history store for backend and creates its tables.
func NewHistoryStore(backend schema.DatabaseBackend, connStr string) (contract.HistoryStore, error) {
	if backend == schema.NoneBackend {
		return &HistoryStoreImpl{backend: backend}, nil
	}
	db, err := openDB(backend, connStr)
	if err != nil {
		return nil, err
	}
	if err := createHistoryTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history tables: %w", err)
	}
	return &HistoryStoreImpl{db: db, backend: backend}, nil
}

func (hs *HistoryStoreImpl) disabled() bool {
	return hs.backend == schema.NoneBackend || hs.db == nil
}

func createHistoryTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{runsTable, getCreateRunsQuery(backend)},
		{criterionScoresTable, getCreateCriterionScoresQuery(backend)},
	}
	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}
	return nil
}

// getCreateRunsQuery returns the CREATE TABLE query for rubric_runs.
func getCreateRunsQuery(backend schema.DatabaseBackend) string {
	quoted := quoteTableName(runsTable, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id CHAR(36) PRIMARY KEY,
				form_id VARCHAR(255) NOT NULL,
				form_title VARCHAR(512) NOT NULL,
				policy VARCHAR(32) NOT NULL,
				source VARCHAR(1024) NOT NULL,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				total DOUBLE,
				criteria_count INT NOT NULL,
				answered_count INT NOT NULL DEFAULT 0,
				skipped_count INT NOT NULL DEFAULT 0
			);
		`, quoted)
	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id TEXT PRIMARY KEY,
				form_id TEXT NOT NULL,
				form_title TEXT NOT NULL,
				policy TEXT NOT NULL,
				source TEXT NOT NULL,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				total DOUBLE PRECISION,
				criteria_count INT NOT NULL,
				answered_count INT NOT NULL DEFAULT 0,
				skipped_count INT NOT NULL DEFAULT 0
			);
		`, quoted)
	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id TEXT PRIMARY KEY,
				form_id TEXT NOT NULL,
				form_title TEXT NOT NULL,
				policy TEXT NOT NULL,
				source TEXT NOT NULL,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				total REAL,
				criteria_count INTEGER NOT NULL,
				answered_count INTEGER NOT NULL DEFAULT 0,
				skipped_count INTEGER NOT NULL DEFAULT 0
			);
		`, quoted)
	}
}

// getCreateCriterionScoresQuery returns the CREATE TABLE query for rubric_criterion_scores.
func getCreateCriterionScoresQuery(backend schema.DatabaseBackend) string {
	quoted := quoteTableName(criterionScoresTable, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id CHAR(36) NOT NULL,
				criterion_key CHAR(36) NOT NULL,
				source_id VARCHAR(255) NOT NULL,
				title VARCHAR(512) NOT NULL,
				path VARCHAR(1024) NOT NULL,
				skipped BOOLEAN NOT NULL,
				score DOUBLE,
				comment TEXT,
				recorded_at DATETIME(6) NOT NULL,
				PRIMARY KEY (run_id, criterion_key)
			);
		`, quoted)
	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id TEXT NOT NULL,
				criterion_key TEXT NOT NULL,
				source_id TEXT NOT NULL,
				title TEXT NOT NULL,
				path TEXT NOT NULL,
				skipped BOOLEAN NOT NULL,
				score DOUBLE PRECISION,
				comment TEXT,
				recorded_at TIMESTAMPTZ NOT NULL,
				PRIMARY KEY (run_id, criterion_key)
			);
		`, quoted)
	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id TEXT NOT NULL,
				criterion_key TEXT NOT NULL,
				source_id TEXT NOT NULL,
				title TEXT NOT NULL,
				path TEXT NOT NULL,
				skipped INTEGER NOT NULL,
				score REAL,
				comment TEXT,
				recorded_at TEXT NOT NULL,
				PRIMARY KEY (run_id, criterion_key)
			);
		`, quoted)
	}
}

// BeginRun inserts a run that has not been ended yet.
func (hs *HistoryStoreImpl) BeginRun(run schema.RunRecord) error {
	if hs.disabled() {
		return nil
	}
	if run.RunID == "" {
		return errors.New("run id is required")
	}
	query := fmt.Sprintf(`INSERT INTO %s (run_id, form_id, form_title, policy, source, start_time, criteria_count) VALUES (%s)`,
		quoteTableName(runsTable, hs.backend), placeholders(hs.backend, 1, 7))
	_, err := hs.db.Exec(query, run.RunID, run.FormID, run.FormTitle, run.Policy, run.Source,
		formatTime(run.StartTime, hs.backend), run.CriteriaCount)
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", run.RunID, err)
	}
	return nil
}

// RecordCriterionScores stores the per-criterion rows of a run in one transaction.
func (hs *HistoryStoreImpl) RecordCriterionScores(runID string, records []schema.CriterionScoreRecord) error {
	if hs.disabled() || len(records) == 0 {
		return nil
	}

	tx, err := hs.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := fmt.Sprintf(`INSERT INTO %s (run_id, criterion_key, source_id, title, path, skipped, score, comment, recorded_at) VALUES (%s)`,
		quoteTableName(criterionScoresTable, hs.backend), placeholders(hs.backend, 1, 9))
	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare criterion score insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range records {
		if _, err := stmt.Exec(runID, r.CriterionKey, r.SourceID, r.Title, r.Path, r.Skipped,
			r.Score, r.Comment, formatTime(r.RecordedAt, hs.backend)); err != nil {
			return fmt.Errorf("failed to insert score for criterion %q: %w", r.Title, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit criterion scores: %w", err)
	}
	return nil
}

// EndRun completes a run with its total and progress counts.
func (hs *HistoryStoreImpl) EndRun(runID string, endTime time.Time, total float64, progress schema.Progress) error {
	if hs.disabled() {
		return nil
	}
	quoted := quoteTableName(runsTable, hs.backend)

	start := &timeScanner{backend: hs.backend}
	selectQuery := fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`, quoted, placeholders(hs.backend, 1, 1))
	if err := hs.db.QueryRow(selectQuery, runID).Scan(start.dest()); err != nil {
		return fmt.Errorf("failed to get start_time for run %s: %w", runID, err)
	}
	startTime, err := start.value()
	if err != nil {
		return err
	}
	var durationMs int64
	if startTime != nil {
		durationMs = endTime.Sub(*startTime).Milliseconds()
	}

	var updateQuery string
	if hs.backend == schema.PostgreSQLBackend {
		updateQuery = fmt.Sprintf(`UPDATE %s SET end_time = $1, run_duration_ms = $2, total = $3, answered_count = $4, skipped_count = $5 WHERE run_id = $6`, quoted)
	} else {
		updateQuery = fmt.Sprintf(`UPDATE %s SET end_time = ?, run_duration_ms = ?, total = ?, answered_count = ?, skipped_count = ? WHERE run_id = ?`, quoted)
	}
	if _, err := hs.db.Exec(updateQuery, formatTime(endTime, hs.backend), durationMs, total,
		progress.Answered, progress.Skipped, runID); err != nil {
		return fmt.Errorf("failed to update run %s: %w", runID, err)
	}
	return nil
}

// Close closes the underlying connection.
func (hs *HistoryStoreImpl) Close() error {
	if hs.db != nil {
		return hs.db.Close()
	}
	return nil
}

// GetStatus returns counts and timestamps describing the history store.
func (hs *HistoryStoreImpl) GetStatus() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:    string(hs.backend),
		Connected:  hs.db != nil,
		TableSizes: make(map[string]int64),
	}
	if hs.disabled() {
		return status, nil
	}
	quoted := quoteTableName(runsTable, hs.backend)

	if err := hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoted)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		last := &timeScanner{backend: hs.backend}
		row := hs.db.QueryRow(fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY start_time DESC, run_id DESC LIMIT 1", quoted))
		if err := row.Scan(&status.LastRunID, last.dest()); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		if t, err := last.value(); err != nil {
			return status, err
		} else if t != nil {
			status.LastRunTime = *t
		}

		oldest := &timeScanner{backend: hs.backend}
		row = hs.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY start_time ASC LIMIT 1", quoted))
		if err := row.Scan(oldest.dest()); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		if t, err := oldest.value(); err != nil {
			return status, err
		} else if t != nil {
			status.OldestRunTime = *t
		}
	}

	for _, table := range []string{runsTable, criterionScoresTable} {
		var count int64
		if err := hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, hs.backend))).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	status.TotalScoreRows = int(status.TableSizes[criterionScoresTable])
	return status, nil
}

// GetAllRuns returns every stored run, oldest first.
func (hs *HistoryStoreImpl) GetAllRuns() ([]schema.RunRecord, error) {
	if hs.disabled() {
		return nil, nil
	}
	query := fmt.Sprintf(`SELECT run_id, form_id, form_title, policy, source, start_time, end_time,
		run_duration_ms, total, criteria_count, answered_count, skipped_count
		FROM %s ORDER BY start_time, run_id`, quoteTableName(runsTable, hs.backend))

	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord
	for rows.Next() {
		var (
			r          schema.RunRecord
			start, end = &timeScanner{backend: hs.backend}, &timeScanner{backend: hs.backend}
			duration   sql.NullInt32
			total      sql.NullFloat64
		)
		if err := rows.Scan(&r.RunID, &r.FormID, &r.FormTitle, &r.Policy, &r.Source, start.dest(), end.dest(),
			&duration, &total, &r.CriteriaCount, &r.AnsweredCount, &r.SkippedCount); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		startTime, err := start.value()
		if err != nil {
			return nil, err
		}
		if startTime != nil {
			r.StartTime = *startTime
		}
		if r.EndTime, err = end.value(); err != nil {
			return nil, err
		}
		if duration.Valid {
			r.RunDurationMs = &duration.Int32
		}
		if total.Valid {
			r.Total = &total.Float64
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return results, nil
}

// GetAllCriterionScores returns every stored criterion score ordered by run.
func (hs *HistoryStoreImpl) GetAllCriterionScores() ([]schema.CriterionScoreRecord, error) {
	if hs.disabled() {
		return nil, nil
	}
	query := fmt.Sprintf(`SELECT run_id, criterion_key, source_id, title, path, skipped, score, comment, recorded_at
		FROM %s ORDER BY run_id, recorded_at, criterion_key`, quoteTableName(criterionScoresTable, hs.backend))

	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query criterion scores: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.CriterionScoreRecord
	for rows.Next() {
		var (
			r        schema.CriterionScoreRecord
			score    sql.NullFloat64
			comment  sql.NullString
			recorded = &timeScanner{backend: hs.backend}
		)
		if err := rows.Scan(&r.RunID, &r.CriterionKey, &r.SourceID, &r.Title, &r.Path, &r.Skipped,
			&score, &comment, recorded.dest()); err != nil {
			return nil, fmt.Errorf("failed to scan criterion score: %w", err)
		}
		if score.Valid {
			r.Score = &score.Float64
		}
		if comment.Valid {
			r.Comment = &comment.String
		}
		t, err := recorded.value()
		if err != nil {
			return nil, err
		}
		if t != nil {
			r.RecordedAt = *t
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating criterion scores: %w", err)
	}
	return results, nil
}

// Package repository provides data access implementations
package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/abelzeko/transit-board/internal/entities"
	_ "github.com/mattn/go-sqlite3"
)

// Pipeline names used as keys for the last update time
const (
	PipelineBus        = "bus"
	PipelineDisruption = "disruption"
)

// Report views stored by SaveDisruptionCycle
const (
	ViewReport   = "report"
	ViewCorridor = "corridor"
)

// DisruptionSnapshot is everything one disruption cycle produced
type DisruptionSnapshot struct {
	Report   []entities.LineStatus
	Corridor []entities.LineStatus
	Outcomes []entities.LineOutcome
	At       time.Time
}

// SnapshotRepository keeps the latest cycle's outputs. Each save replaces the previous snapshot.
type SnapshotRepository interface {
	SaveDepartures(records []entities.DepartureRecord, at time.Time) error
	SaveDisruptionCycle(snapshot DisruptionSnapshot) error
	GetDepartures() ([]entities.DepartureRecord, error)
	GetReport(view string) ([]entities.LineStatus, error)
	GetFailedLines() ([]entities.LineStatus, error)
	GetLastUpdateTime(pipeline string) (time.Time, error)
	Close() error
}

// SQLiteSnapshotRepository implements SnapshotRepository using SQLite
type SQLiteSnapshotRepository struct {
	db     *sql.DB
	DBPath string
}

// NewSQLiteSnapshotRepository creates and initializes a new SQLite repository
func NewSQLiteSnapshotRepository(dbPath string) (*SQLiteSnapshotRepository, error) {
	if dbPath == "" {
		// Set default path if not specified
		dbDir := "data"
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %v", err)
		}
		dbPath = filepath.Join(dbDir, "snapshot.db")
	} else if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %v", err)
	}

	log.Printf("Opening database at %s", dbPath)
	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS departures (
		position INTEGER NOT NULL,
		leave_time TEXT NOT NULL,
		delay_time TEXT NOT NULL,
		minutes_info TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS report_entries (
		view TEXT NOT NULL,
		position INTEGER NOT NULL,
		line_name TEXT NOT NULL,
		info_text TEXT NOT NULL,
		status_kind TEXT NOT NULL,
		PRIMARY KEY(view, position)
	);
	CREATE TABLE IF NOT EXISTS line_outcomes (
		position INTEGER PRIMARY KEY,
		line_name TEXT NOT NULL,
		tier TEXT NOT NULL,
		status_kind TEXT NOT NULL,
		info_text TEXT NOT NULL,
		error TEXT
	);
	CREATE TABLE IF NOT EXISTS cycles (
		pipeline TEXT PRIMARY KEY,
		updated_at TEXT NOT NULL
	);`

	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %v", err)
	}

	return &SQLiteSnapshotRepository{
		db:     db,
		DBPath: dbPath,
	}, nil
}

// Close closes the database connection
func (r *SQLiteSnapshotRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// SaveDepartures replaces the stored bus schedule
func (r *SQLiteSnapshotRepository) SaveDepartures(records []entities.DepartureRecord, at time.Time) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM departures`); err != nil {
		return fmt.Errorf("failed to clear departures: %v", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO departures(position, leave_time, delay_time, minutes_info) VALUES(?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %v", err)
	}
	defer stmt.Close()

	for i, d := range records {
		if _, err := stmt.Exec(i, d.LeaveTime, d.DelayMinutes, d.MinutesUntilArrival); err != nil {
			return fmt.Errorf("failed to insert departure %d: %v", i, err)
		}
	}

	if err := touchCycle(tx, PipelineBus, at); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}

	log.Printf("Successfully saved %d departure records", len(records))
	return nil
}

// SaveDisruptionCycle replaces the stored report, corridor view and per-line outcomes together
func (r *SQLiteSnapshotRepository) SaveDisruptionCycle(snapshot DisruptionSnapshot) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM report_entries; DELETE FROM line_outcomes;`); err != nil {
		return fmt.Errorf("failed to clear previous snapshot: %v", err)
	}

	entryStmt, err := tx.Prepare(`
		INSERT INTO report_entries(view, position, line_name, info_text, status_kind)
		VALUES(?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %v", err)
	}
	defer entryStmt.Close()

	views := []struct {
		name    string
		entries []entities.LineStatus
	}{
		{ViewReport, snapshot.Report},
		{ViewCorridor, snapshot.Corridor},
	}
	for _, v := range views {
		for i, s := range v.entries {
			if _, err := entryStmt.Exec(v.name, i, s.LineName, s.InfoText, string(s.StatusKind)); err != nil {
				return fmt.Errorf("failed to insert %s entry for %s: %v", v.name, s.LineName, err)
			}
		}
	}

	outcomeStmt, err := tx.Prepare(`
		INSERT INTO line_outcomes(position, line_name, tier, status_kind, info_text, error)
		VALUES(?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %v", err)
	}
	defer outcomeStmt.Close()

	for i, o := range snapshot.Outcomes {
		var errText sql.NullString
		if o.Err != nil {
			errText = sql.NullString{String: o.Err.Error(), Valid: true}
		}
		if _, err := outcomeStmt.Exec(i, o.Route.LineName, o.Route.TierOf(), string(o.Status.StatusKind), o.Status.InfoText, errText); err != nil {
			return fmt.Errorf("failed to insert outcome for %s: %v", o.Route.LineName, err)
		}
	}

	if err := touchCycle(tx, PipelineDisruption, snapshot.At); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}

	log.Printf("Successfully saved disruption snapshot: %d report entries, %d corridor entries, %d line outcomes",
		len(snapshot.Report), len(snapshot.Corridor), len(snapshot.Outcomes))
	return nil
}

func touchCycle(tx *sql.Tx, pipeline string, at time.Time) error {
	_, err := tx.Exec(`
		INSERT INTO cycles(pipeline, updated_at) VALUES(?, ?)
		ON CONFLICT(pipeline) DO UPDATE SET updated_at=excluded.updated_at`,
		pipeline, at.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to record %s cycle time: %v", pipeline, err)
	}
	return nil
}

// GetDepartures returns the stored bus schedule in table order
func (r *SQLiteSnapshotRepository) GetDepartures() ([]entities.DepartureRecord, error) {
	rows, err := r.db.Query(`SELECT leave_time, delay_time, minutes_info FROM departures ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query departures: %v", err)
	}
	defer rows.Close()

	var result []entities.DepartureRecord
	for rows.Next() {
		var d entities.DepartureRecord
		if err := rows.Scan(&d.LeaveTime, &d.DelayMinutes, &d.MinutesUntilArrival); err != nil {
			return nil, fmt.Errorf("failed to scan row: %v", err)
		}
		result = append(result, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %v", err)
	}
	return result, nil
}

// GetReport returns the stored entries of one view in table order
func (r *SQLiteSnapshotRepository) GetReport(view string) ([]entities.LineStatus, error) {
	rows, err := r.db.Query(`
		SELECT line_name, info_text, status_kind
		FROM report_entries
		WHERE view = ?
		ORDER BY position`, view)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s entries: %v", view, err)
	}
	return scanStatuses(rows)
}

// GetFailedLines returns the lines whose pages could not be fetched in the last cycle
func (r *SQLiteSnapshotRepository) GetFailedLines() ([]entities.LineStatus, error) {
	rows, err := r.db.Query(`
		SELECT line_name, info_text, status_kind
		FROM line_outcomes
		WHERE status_kind = ?
		ORDER BY position`, string(entities.StatusFetchFailed))
	if err != nil {
		return nil, fmt.Errorf("failed to query line outcomes: %v", err)
	}
	return scanStatuses(rows)
}

func scanStatuses(rows *sql.Rows) ([]entities.LineStatus, error) {
	defer rows.Close()

	var result []entities.LineStatus
	for rows.Next() {
		var (
			s    entities.LineStatus
			kind string
		)
		if err := rows.Scan(&s.LineName, &s.InfoText, &kind); err != nil {
			return nil, fmt.Errorf("failed to scan row: %v", err)
		}
		s.StatusKind = entities.StatusKind(kind)
		result = append(result, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %v", err)
	}
	return result, nil
}

// GetLastUpdateTime returns when the pipeline last saved a snapshot, zero if never
func (r *SQLiteSnapshotRepository) GetLastUpdateTime(pipeline string) (time.Time, error) {
	var updatedAt string
	err := r.db.QueryRow(`SELECT updated_at FROM cycles WHERE pipeline = ?`, pipeline).Scan(&updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get last update time: %v", err)
	}

	t, err := time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp '%s': %v", updatedAt, err)
	}
	return t, nil
}

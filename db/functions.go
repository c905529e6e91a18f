package db

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// ErrRunNotFound is returned when a run ID does not exist.
var ErrRunNotFound = errors.New("run not found")

// UpsertVideo records a probed source video and returns its ID.
// Probe fields are refreshed when the path is already known.
func UpsertVideo(db *sql.DB, v Video, probedAt time.Time) (int64, error) {
	filename := v.Filename
	if filename == "" {
		filename = filepath.Base(v.Path)
	}
	ext := v.Extension
	if ext == "" {
		ext = strings.TrimPrefix(filepath.Ext(v.Path), ".")
	}

	var id int64
	err := db.QueryRow(UpsertVideoSQL, v.Path, filename, ext, v.Filesize, v.Width, v.Height, v.Duration, v.Codec, probedAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert video: %w", err)
	}
	return id, nil
}

// InsertRun starts a new pending run.
func InsertRun(db *sql.DB, uuid string, seed int64, startedAt time.Time) error {
	if _, err := db.Exec(InsertRunSQL, uuid, seed, startedAt); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// UpdateRunSource attaches the chosen video and clip window to a run.
func UpdateRunSource(db *sql.DB, uuid string, videoID int64, start, length float64, clipPath string) error {
	if _, err := db.Exec(UpdateRunSourceSQL, videoID, start, length, clipPath, uuid); err != nil {
		return fmt.Errorf("update run source: %w", err)
	}
	return nil
}

// MarkRunExtracted records that the clip file was written.
func MarkRunExtracted(db *sql.DB, uuid string, extractedAt time.Time, clipSize int64) error {
	if _, err := db.Exec(MarkRunExtractedSQL, extractedAt, clipSize, uuid); err != nil {
		return fmt.Errorf("mark run extracted: %w", err)
	}
	return nil
}

// MarkRunFinished sets the final status of a run with an optional log message.
func MarkRunFinished(db *sql.DB, uuid, status string, finishedAt time.Time, logMsg string) error {
	if _, err := db.Exec(MarkRunFinishedSQL, status, finishedAt, logMsg, uuid); err != nil {
		return fmt.Errorf("mark run finished: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var r Run
	err := row.Scan(
		&r.ID, &r.UUID, &r.SourcePath, &r.Seed, &r.ClipPath,
		&r.ClipStart, &r.ClipLength, &r.ClipSize,
		&r.Status, &r.Log, &r.StartedAt, &r.ExtractedAt, &r.FinishedAt,
		&r.Width, &r.Height, &r.Duration,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// SelectRuns returns up to limit runs, newest first.
func SelectRuns(db *sql.DB, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := db.Query(SelectRunsSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("select runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// SelectRunByID returns a single run, or ErrRunNotFound.
func SelectRunByID(db *sql.DB, id int64) (*Run, error) {
	r, err := scanRun(db.QueryRow(SelectRunByIDSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: ID %d", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("select run: %w", err)
	}
	return r, nil
}

// SelectLastClip returns the newest run that produced a clip file, or ErrRunNotFound.
func SelectLastClip(db *sql.DB) (*Run, error) {
	runs, err := SelectRuns(db, 0)
	if err != nil {
		return nil, err
	}
	for i := range runs {
		if runs[i].ExtractedAt.Valid && runs[i].ClipPath != "" {
			return &runs[i], nil
		}
	}
	return nil, ErrRunNotFound
}

// DeleteRuns clears the run history and returns how many rows were removed.
func DeleteRuns(db *sql.DB) (int64, error) {
	result, err := db.Exec(DeleteRunsSQL)
	if err != nil {
		return 0, fmt.Errorf("delete runs: %w", err)
	}
	return result.RowsAffected()
}

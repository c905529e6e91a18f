package db

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/user/cliporama/clip"
	"github.com/user/cliporama/library"
	"github.com/user/cliporama/probe"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func TestOpen_MigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	for i := 0; i < 2; i++ {
		database, err := Open(path)
		if err != nil {
			t.Fatalf("Open #%d: %v", i+1, err)
		}

		var applied int
		if err := database.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&applied); err != nil {
			t.Fatalf("count migrations: %v", err)
		}
		if applied != 2 {
			t.Errorf("applied migrations = %d, want 2", applied)
		}
		database.Close()
	}
}

func TestHistory_RunLifecycle(t *testing.T) {
	database := openTestDB(t)

	clock := time.Date(2026, 10, 17, 20, 0, 0, 0, time.UTC)
	h := NewHistory(database)
	h.Now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	if err := h.Start("run-1", 1234); err != nil {
		t.Fatalf("Start: %v", err)
	}

	video := library.Video{Path: "/videos/s01/e01.mp4", Size: 1 << 20}
	meta := &probe.Metadata{Width: 1920, Height: 1080, Duration: 1320.5, Codec: "h264", HasAudio: true}
	window := clip.Window{Start: 100.25, Length: 7}

	if err := h.Source("run-1", video, meta, window, "/tmp/out.mp4"); err != nil {
		t.Fatalf("Source: %v", err)
	}
	if err := h.Extracted("run-1", 4096); err != nil {
		t.Fatalf("Extracted: %v", err)
	}
	if err := h.Finish("run-1", StatusTimeout, "no consumer"); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	runs, err := SelectRuns(database, 10)
	if err != nil {
		t.Fatalf("SelectRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}
	r := runs[0]
	if r.UUID != "run-1" || r.Seed != 1234 {
		t.Errorf("identity = %q seed %d", r.UUID, r.Seed)
	}
	if r.SourcePath != video.Path {
		t.Errorf("SourcePath = %q", r.SourcePath)
	}
	if r.ClipStart != 100.25 || r.ClipLength != 7 || r.ClipPath != "/tmp/out.mp4" {
		t.Errorf("clip = %v+%v at %q", r.ClipStart, r.ClipLength, r.ClipPath)
	}
	if r.ClipSize != 4096 {
		t.Errorf("ClipSize = %d", r.ClipSize)
	}
	if r.Status != StatusTimeout || r.Log != "no consumer" {
		t.Errorf("status = %q log = %q", r.Status, r.Log)
	}
	if r.Width != 1920 || r.Height != 1080 || r.Duration != 1320.5 {
		t.Errorf("source = %dx%d %v", r.Width, r.Height, r.Duration)
	}
	if !r.ExtractedAt.Valid || !r.FinishedAt.Valid {
		t.Errorf("timestamps not set: %+v %+v", r.ExtractedAt, r.FinishedAt)
	}

	got, err := SelectRunByID(database, r.ID)
	if err != nil {
		t.Fatalf("SelectRunByID: %v", err)
	}
	if got.UUID != "run-1" {
		t.Errorf("SelectRunByID UUID = %q", got.UUID)
	}
}

func TestUpsertVideo_SamePathKeepsID(t *testing.T) {
	database := openTestDB(t)
	now := time.Now()

	first, err := UpsertVideo(database, Video{Path: "/v/a.mp4", Duration: 10}, now)
	if err != nil {
		t.Fatalf("UpsertVideo: %v", err)
	}
	second, err := UpsertVideo(database, Video{Path: "/v/a.mp4", Duration: 12}, now)
	if err != nil {
		t.Fatalf("UpsertVideo: %v", err)
	}
	if first != second {
		t.Errorf("ids differ: %d vs %d", first, second)
	}

	var duration float64
	var ext string
	if err := database.QueryRow(`SELECT duration, extension FROM videos WHERE id = ?`, first).Scan(&duration, &ext); err != nil {
		t.Fatalf("query: %v", err)
	}
	if duration != 12 {
		t.Errorf("duration = %v, want refreshed 12", duration)
	}
	if ext != "mp4" {
		t.Errorf("extension = %q", ext)
	}
}

func TestSelectRunByID_NotFound(t *testing.T) {
	database := openTestDB(t)

	_, err := SelectRunByID(database, 99)
	if !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
}

func TestSelectLastClip(t *testing.T) {
	database := openTestDB(t)
	h := NewHistory(database)

	if _, err := SelectLastClip(database); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("empty history: expected ErrRunNotFound, got %v", err)
	}

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	step := 0
	h.Now = func() time.Time {
		step++
		return base.Add(time.Duration(step) * time.Minute)
	}

	video := library.Video{Path: "/v/a.mp4"}
	meta := &probe.Metadata{Duration: 60}

	// Older run with a clip.
	mustNoErr(t, h.Start("old", 1))
	mustNoErr(t, h.Source("old", video, meta, clip.Window{Start: 1, Length: 5}, "/clips/old.mp4"))
	mustNoErr(t, h.Extracted("old", 10))
	mustNoErr(t, h.Finish("old", StatusServed, ""))

	// Newer run that failed before extraction.
	mustNoErr(t, h.Start("new", 2))
	mustNoErr(t, h.Finish("new", StatusError, "probe failed"))

	r, err := SelectLastClip(database)
	if err != nil {
		t.Fatalf("SelectLastClip: %v", err)
	}
	if r.UUID != "old" || r.ClipPath != "/clips/old.mp4" {
		t.Errorf("got run %q clip %q", r.UUID, r.ClipPath)
	}

	runs, err := SelectRuns(database, 1)
	if err != nil {
		t.Fatalf("SelectRuns: %v", err)
	}
	if len(runs) != 1 || runs[0].UUID != "new" {
		t.Errorf("newest run should come first: %+v", runs)
	}

	n, err := DeleteRuns(database)
	if err != nil {
		t.Fatalf("DeleteRuns: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted %d runs, want 2", n)
	}
}

func mustNoErr(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

package db

import (
	"database/sql"
	"time"
)

// Run statuses. A run moves pending -> extracted -> one of the final states,
// or straight to error when anything before streaming fails.
const (
	StatusPending     = "pending"
	StatusExtracted   = "extracted"
	StatusServed      = "served"
	StatusTimeout     = "timeout"
	StatusServeFailed = "serve_failed"
	StatusError       = "error"
)

// Video represents a row in the videos table.
type Video struct {
	ID        int64
	Path      string
	Filename  string
	Extension string
	Filesize  int64
	Width     int
	Height    int
	Duration  float64
	Codec     string
}

// Run represents a row in the runs table joined with its source video.
type Run struct {
	ID          int64
	UUID        string
	SourcePath  string
	Seed        int64
	ClipPath    string
	ClipStart   float64
	ClipLength  float64
	ClipSize    int64
	Status      string
	Log         string
	StartedAt   time.Time
	ExtractedAt sql.NullTime
	FinishedAt  sql.NullTime
	Width       int
	Height      int
	Duration    float64
}

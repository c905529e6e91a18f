package db

import (
	"database/sql"
	"time"

	"github.com/user/cliporama/clip"
	"github.com/user/cliporama/library"
	"github.com/user/cliporama/probe"
)

// History records pipeline runs. It satisfies session.Recorder.
type History struct {
	DB *sql.DB
	// Now is overridable for tests.
	Now func() time.Time
}

func NewHistory(database *sql.DB) *History {
	return &History{DB: database, Now: time.Now}
}

func (h *History) now() time.Time {
	if h.Now == nil {
		return time.Now()
	}
	return h.Now()
}

func (h *History) Start(id string, seed int64) error {
	return InsertRun(h.DB, id, seed, h.now())
}

func (h *History) Source(id string, v library.Video, meta *probe.Metadata, w clip.Window, clipPath string) error {
	videoID, err := UpsertVideo(h.DB, Video{
		Path:     v.Path,
		Filesize: v.Size,
		Width:    meta.Width,
		Height:   meta.Height,
		Duration: meta.Duration,
		Codec:    meta.Codec,
	}, h.now())
	if err != nil {
		return err
	}
	return UpdateRunSource(h.DB, id, videoID, w.Start, w.Length, clipPath)
}

func (h *History) Extracted(id string, size int64) error {
	return MarkRunExtracted(h.DB, id, h.now(), size)
}

func (h *History) Finish(id, status, logMsg string) error {
	return MarkRunFinished(h.DB, id, status, h.now(), logMsg)
}

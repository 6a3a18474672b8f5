package crawler

import (
	"time"

	appLog "github.com/yourssu/ssu-time/internal/log"
)

// Miss records an announcement that was found but yielded no usable
// date, kept for run diagnostics.
type Miss struct {
	Title  string
	URL    string
	Reason string
}

// Report summarizes one crawler run.
type Report struct {
	Source     string
	EventCount int
	MissCount  int
	Duration   time.Duration
	StorageKey string
}

// Log emits the report through the application logger.
func (r Report) Log() {
	appLog.Info("crawl complete",
		"source", r.Source,
		"events", r.EventCount,
		"misses", r.MissCount,
		"duration", r.Duration.Round(time.Millisecond),
		"key", r.StorageKey,
	)
}

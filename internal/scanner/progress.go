package scanner

import "time"

// Status identifies what the pipeline is currently doing.
type Status string

const (
	// StatusScanning is emitted when a directory is being enumerated.
	StatusScanning Status = "scanning"
	// StatusProcessing is emitted when a file enters the state machine.
	StatusProcessing Status = "processing"
	// StatusThumbnail is emitted when thumbnail generation begins.
	StatusThumbnail Status = "generating_thumbnail"
)

// ProgressEvent is pushed to the caller's sink repeatedly during a scan.
type ProgressEvent struct {
	Status      Status `json:"status"`
	File        string `json:"file,omitempty"`
	Description string `json:"description,omitempty"`
}

// ProgressFunc receives progress events. It is called synchronously from
// the walk; implementations should return quickly.
type ProgressFunc func(ProgressEvent)

// Progress is a point-in-time snapshot of the current (or last) scan,
// served by the HTTP API.
type Progress struct {
	Scanning    bool      `json:"scanning"`
	Root        string    `json:"root,omitempty"`
	CurrentFile string    `json:"currentFile,omitempty"`
	Added       int       `json:"added"`
	Skipped     int       `json:"skipped"`
	Errors      int       `json:"errors"`
	StartedAt   time.Time `json:"startedAt,omitempty"`
}

// GetProgress returns the latest progress snapshot.
func (s *Scanner) GetProgress() Progress {
	if p, ok := s.progress.Load().(Progress); ok {
		return p
	}
	return Progress{}
}

func (s *Scanner) updateProgress(res *Result, currentFile string) {
	prev := s.GetProgress()
	s.progress.Store(Progress{
		Scanning:    true,
		Root:        prev.Root,
		CurrentFile: currentFile,
		Added:       res.Added,
		Skipped:     res.Skipped,
		Errors:      res.Errors,
		StartedAt:   prev.StartedAt,
	})
}

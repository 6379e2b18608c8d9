package artifact

import (
	"os"
	"time"

	"github.com/ericrobolson/heimdall/errors"
)

// Decision is the outcome of one change-detection poll.
type Decision struct {
	// ModTime is the canonical file's modification time at the poll.
	ModTime time.Time
	// Changed reports whether ModTime is strictly newer than the
	// timestamp the caller last loaded at.
	Changed bool
}

// Detector reports whether the canonical artifact has been rebuilt since
// the given timestamp. A failed poll must leave all caller state untouched;
// implementations only observe, they never advance anything.
type Detector interface {
	Poll(since time.Time) (Decision, error)
}

// StatDetector detects changes by reading the canonical file's
// modification time on every poll. This is the default detector.
type StatDetector struct {
	path string
}

func NewStatDetector(path string) *StatDetector {
	return &StatDetector{path: path}
}

func (d *StatDetector) Poll(since time.Time) (Decision, error) {
	info, err := os.Stat(d.path)
	if err != nil {
		return Decision{}, errors.Poll(d.path, err)
	}

	mtime := info.ModTime()
	return Decision{ModTime: mtime, Changed: mtime.After(since)}, nil
}

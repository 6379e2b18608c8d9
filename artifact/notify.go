package artifact

import (
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ericrobolson/heimdall/errors"
)

// NotifyDetector detects changes through fsnotify events instead of
// stat-per-poll. It watches the canonical file's directory (build tools
// typically replace the file, which would drop a watch on the file itself)
// and drains pending events without blocking when polled.
//
// Every positive decision is still confirmed against the modification
// time, so the Detector contract is identical to StatDetector's: Changed
// iff the fresh mtime is strictly newer than since. Polls stay synchronous;
// no event is delivered outside Poll.
type NotifyDetector struct {
	watcher *fsnotify.Watcher
	path    string
	base    string
	pending bool
}

// NewNotifyDetector starts watching the canonical artifact's directory.
// Close the detector when done.
func NewNotifyDetector(path string) (*NotifyDetector, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Poll(path, err)
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, errors.Poll(path, err)
	}

	return &NotifyDetector{
		watcher: w,
		path:    path,
		base:    filepath.Base(path),
	}, nil
}

func (d *NotifyDetector) Poll(since time.Time) (Decision, error) {
	d.drain()

	if !d.pending {
		return Decision{ModTime: since, Changed: false}, nil
	}

	info, err := os.Stat(d.path)
	if err != nil {
		// Keep the pending flag so the next poll retries the stat.
		return Decision{}, errors.Poll(d.path, err)
	}

	d.pending = false
	mtime := info.ModTime()
	return Decision{ModTime: mtime, Changed: mtime.After(since)}, nil
}

// drain consumes all queued events without blocking.
func (d *NotifyDetector) drain() {
	for {
		select {
		case ev, ok := <-d.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != d.base {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
				d.pending = true
			}
		case _, ok := <-d.watcher.Errors:
			if !ok {
				return
			}
			// A dropped event is indistinguishable from a change;
			// force an mtime check on this poll.
			d.pending = true
		default:
			return
		}
	}
}

func (d *NotifyDetector) Close() error {
	return d.watcher.Close()
}

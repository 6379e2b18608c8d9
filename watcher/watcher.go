package watcher

import (
	"github.com/ericrobolson/heimdall"
	"github.com/ericrobolson/heimdall/artifact"
	"github.com/ericrobolson/heimdall/engine"
)

// Outcome reports what one Watch call did. It is produced fresh by every
// call and never persisted.
type Outcome int

const (
	// NoChange: the artifact has not been rebuilt since the last load.
	NoChange Outcome = iota
	// Updated: a rebuild was detected and the swap completed.
	Updated
	// Failed: the poll or the swap failed; the accompanying error says
	// how. The host decides whether to keep polling.
	Failed
)

var outcomeNames = [...]string{"no_change", "updated", "failed"}

func (o Outcome) String() string {
	if o < NoChange || o > Failed {
		return "unknown"
	}
	return outcomeNames[o]
}

// Config configures a Watcher.
type Config struct {
	// Path is the canonical artifact path. The file must exist and be
	// loadable at construction. Required for hot-reload builds.
	Path string

	// Detector overrides change detection. Defaults to mtime polling
	// (artifact.StatDetector); use artifact.NewNotifyDetector for an
	// fsnotify-backed variant. If the detector implements io.Closer it
	// is closed with the watcher.
	Detector artifact.Detector

	// HostFuncs are extra host functions exposed to the artifact under
	// the "heimdall" import module.
	HostFuncs map[string]engine.HostFunc

	// Program is the statically linked artifact used by builds with the
	// heimdall_static tag. Required there, ignored otherwise.
	Program heimdall.Program
}

//go:build heimdall_static

package watcher

import (
	"context"

	"github.com/ericrobolson/heimdall"
	"github.com/ericrobolson/heimdall/errors"
)

// Watcher drives a statically linked Program. The watch/reload machinery
// is compiled out; lifecycle stages are direct in-process calls.
type Watcher struct {
	program heimdall.Program
}

// New returns a watcher over cfg.Program and the state its Init produced.
// cfg.Path is ignored: there is no artifact file in a static build.
func New(ctx context.Context, cfg Config) (*Watcher, heimdall.State, error) {
	if cfg.Program == nil {
		return nil, 0, errors.InvalidInput("Config.Program is required for static builds")
	}
	return &Watcher{program: cfg.Program}, cfg.Program.Init(), nil
}

// Watch always reports NoChange: the artifact is part of the binary.
func (w *Watcher) Watch(ctx context.Context, state *heimdall.State) (Outcome, error) {
	return NoChange, nil
}

// Update calls the program's update stage directly.
func (w *Watcher) Update(ctx context.Context, state *heimdall.State) error {
	*state = w.program.Update(*state)
	return nil
}

// Finalize calls the program's finalize stage directly.
func (w *Watcher) Finalize(ctx context.Context, state *heimdall.State) error {
	*state = w.program.Finalize(*state)
	return nil
}

func (w *Watcher) Close(ctx context.Context) error {
	return nil
}

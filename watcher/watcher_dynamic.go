//go:build !heimdall_static

package watcher

import (
	"context"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/ericrobolson/heimdall"
	"github.com/ericrobolson/heimdall/artifact"
	"github.com/ericrobolson/heimdall/engine"
	"github.com/ericrobolson/heimdall/errors"
)

// Watcher owns one artifact's handle, shadow path, and watched timestamp.
// Not safe for concurrent use; one goroutine drives it.
type Watcher struct {
	eng      *engine.Engine
	detector artifact.Detector
	handle   *engine.Handle
	path     string
	watched  time.Time
}

// New loads the artifact at cfg.Path, calls heimdall_init, and returns the
// watcher together with the initial state. Failure here is fatal to
// startup: there is no state to proceed with.
func New(ctx context.Context, cfg Config) (*Watcher, heimdall.State, error) {
	if cfg.Path == "" {
		return nil, 0, errors.InvalidInput("Config.Path is required")
	}

	var opts []engine.Option
	for name, fn := range cfg.HostFuncs {
		opts = append(opts, engine.WithHostFunc(name, fn))
	}

	eng, err := engine.New(ctx, opts...)
	if err != nil {
		return nil, 0, err
	}

	handle, mtime, err := eng.Load(ctx, cfg.Path)
	if err != nil {
		eng.Close(ctx)
		return nil, 0, err
	}

	state, err := handle.Init(ctx)
	if err != nil {
		handle.Close(ctx)
		eng.Close(ctx)
		return nil, 0, err
	}

	detector := cfg.Detector
	if detector == nil {
		detector = artifact.NewStatDetector(cfg.Path)
	}

	Logger().Info("artifact initialized",
		zap.String("path", cfg.Path),
		zap.Time("mtime", mtime))

	return &Watcher{
		eng:      eng,
		detector: detector,
		handle:   handle,
		path:     cfg.Path,
		watched:  mtime,
	}, state, nil
}

// Watch polls the canonical artifact and swaps to a new build if one is
// found, threading state through unload and reload around the swap.
//
// A failed poll changes nothing. A failed load leaves the watcher without
// a handle until the next successful swap: the unload has already run and
// the old shadow copy is superseded, so the old handle is not resurrected.
// The watched timestamp is not advanced on failure, so the newer artifact
// keeps triggering Changed until a load succeeds.
func (w *Watcher) Watch(ctx context.Context, state *heimdall.State) (Outcome, error) {
	decision, err := w.detector.Poll(w.watched)
	if err != nil {
		return Failed, err
	}
	if !decision.Changed {
		return NoChange, nil
	}

	Logger().Info("artifact changed",
		zap.String("path", w.path),
		zap.Time("mtime", decision.ModTime))

	// Unload against the outgoing handle, then release it, strictly
	// before the shadow file is overwritten by the load. If the unload
	// itself fails nothing has been torn down yet and the old handle
	// stays authoritative.
	if w.handle != nil {
		next, err := w.handle.Unload(ctx, *state)
		if err != nil {
			return Failed, err
		}
		*state = next

		if err := w.handle.Close(ctx); err != nil {
			Logger().Warn("release failed", zap.Error(err))
		}
		w.handle = nil
	}

	handle, mtime, err := w.eng.Load(ctx, w.path)
	if err != nil {
		return Failed, err
	}
	w.handle = handle
	if mtime.After(w.watched) {
		w.watched = mtime
	}

	next, err := w.handle.Reload(ctx, *state)
	if err != nil {
		// The swap itself succeeded; a missing or faulting reload is a
		// defect in the new build and is propagated, not skipped.
		return Failed, err
	}
	*state = next

	Logger().Info("artifact swapped",
		zap.String("path", w.path),
		zap.Time("mtime", w.watched))

	return Updated, nil
}

// Update invokes heimdall_update against the currently loaded handle.
// Called once per host tick, whether or not a swap occurred this tick.
func (w *Watcher) Update(ctx context.Context, state *heimdall.State) error {
	if w.handle == nil {
		return errors.NoHandle(heimdall.StageUpdate)
	}

	next, err := w.handle.Update(ctx, *state)
	if err != nil {
		return err
	}
	*state = next
	return nil
}

// Finalize invokes heimdall_finalize for an orderly shutdown. It is the
// host's responsibility to call it; nothing calls it automatically.
func (w *Watcher) Finalize(ctx context.Context, state *heimdall.State) error {
	if w.handle == nil {
		return errors.NoHandle(heimdall.StageFinalize)
	}

	next, err := w.handle.Finalize(ctx, *state)
	if err != nil {
		return err
	}
	*state = next
	return nil
}

// Close releases the handle, the detector, and the engine.
func (w *Watcher) Close(ctx context.Context) error {
	if w.handle != nil {
		w.handle.Close(ctx)
		w.handle = nil
	}
	if c, ok := w.detector.(io.Closer); ok {
		c.Close()
	}
	return w.eng.Close(ctx)
}

package engine

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/ericrobolson/heimdall"
	"github.com/ericrobolson/heimdall/errors"
)

// Handle is the ownership token for one mapped artifact. It is exclusively
// owned by the watcher that loaded it and is not safe for concurrent use.
type Handle struct {
	compiled wazero.CompiledModule
	module   api.Module
	path     string
	closed   bool
}

// Path returns the shadow path this handle was mapped from.
func (h *Handle) Path() string {
	return h.path
}

// Closed reports whether the handle has been released.
func (h *Handle) Closed() bool {
	return h.closed
}

// Close releases the mapped artifact. Idempotent. Must complete before a
// new load overwrites the shadow file; some platforms refuse to overwrite
// a still-mapped file.
func (h *Handle) Close(ctx context.Context) error {
	if h.closed {
		return nil
	}
	h.closed = true

	Logger().Debug("artifact released", zap.String("shadow", h.path))

	if err := h.module.Close(ctx); err != nil {
		h.compiled.Close(ctx)
		return err
	}
	return h.compiled.Close(ctx)
}

// Init calls heimdall_init and returns the artifact's initial state.
func (h *Handle) Init(ctx context.Context) (heimdall.State, error) {
	return h.invoke(ctx, heimdall.StageInit, nil)
}

// Reload calls heimdall_reload. Invoked against the incoming handle after
// a successful swap.
func (h *Handle) Reload(ctx context.Context, st heimdall.State) (heimdall.State, error) {
	return h.invoke(ctx, heimdall.StageReload, &st)
}

// Unload calls heimdall_unload. Invoked against the outgoing handle before
// it is released.
func (h *Handle) Unload(ctx context.Context, st heimdall.State) (heimdall.State, error) {
	return h.invoke(ctx, heimdall.StageUnload, &st)
}

// Update calls heimdall_update, once per host tick.
func (h *Handle) Update(ctx context.Context, st heimdall.State) (heimdall.State, error) {
	return h.invoke(ctx, heimdall.StageUpdate, &st)
}

// Finalize calls heimdall_finalize. Host-initiated; never automatic.
func (h *Handle) Finalize(ctx context.Context, st heimdall.State) (heimdall.State, error) {
	return h.invoke(ctx, heimdall.StageFinalize, &st)
}

// invoke resolves the stage's export, validates its signature against the
// lifecycle ABI, and calls it. st is nil only for init, which takes no
// state. Every stage returns the state as its single i64 result.
func (h *Handle) invoke(ctx context.Context, stage heimdall.Stage, st *heimdall.State) (heimdall.State, error) {
	if h.closed {
		return 0, errors.Closed(stage)
	}

	fn := h.module.ExportedFunction(stage.Symbol())
	if fn == nil {
		return 0, errors.MissingSymbol(stage)
	}
	if err := checkSignature(stage, fn.Definition()); err != nil {
		return 0, err
	}

	var results []uint64
	var err error
	if st == nil {
		results, err = fn.Call(ctx)
	} else {
		results, err = fn.Call(ctx, uint64(*st))
	}
	if err != nil {
		return 0, errors.Trap(stage, err)
	}

	return heimdall.State(results[0]), nil
}

func checkSignature(stage heimdall.Stage, def api.FunctionDefinition) error {
	wantParams := 1
	if stage == heimdall.StageInit {
		wantParams = 0
	}

	params := def.ParamTypes()
	results := def.ResultTypes()

	if len(params) != wantParams || len(results) != 1 {
		return errors.BadSignature(stage, fmt.Sprintf(
			"%s has %d params and %d results, want %d and 1",
			stage.Symbol(), len(params), len(results), wantParams))
	}
	for _, p := range params {
		if p != api.ValueTypeI64 {
			return errors.BadSignature(stage, stage.Symbol()+" param must be i64")
		}
	}
	if results[0] != api.ValueTypeI64 {
		return errors.BadSignature(stage, stage.Symbol()+" result must be i64")
	}
	return nil
}

package engine

import (
	"context"
	"os"
	"time"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/ericrobolson/heimdall"
	"github.com/ericrobolson/heimdall/artifact"
	"github.com/ericrobolson/heimdall/errors"
)

// HostFunc is a function an artifact can import from the "heimdall" host
// module, e.g. (import "heimdall" "trace" (func (param i64))).
type HostFunc func(ctx context.Context, arg uint64)

// Engine owns the wazero runtime artifacts are loaded into.
type Engine struct {
	runtime   wazero.Runtime
	hostFuncs map[string]HostFunc
	hostReady bool
}

// Option configures an Engine at construction.
type Option func(*Engine)

// WithHostFunc exposes fn to artifacts as an import from the "heimdall"
// module under the given name. The builtin "log" export can be overridden.
func WithHostFunc(name string, fn HostFunc) Option {
	return func(e *Engine) {
		e.hostFuncs[name] = fn
	}
}

// New creates an engine with the builtin "heimdall" host module, whose
// "log" export reports the plugin's value through the engine logger.
func New(ctx context.Context, opts ...Option) (*Engine, error) {
	e := &Engine{
		runtime: wazero.NewRuntime(ctx),
		hostFuncs: map[string]HostFunc{
			"log": func(ctx context.Context, arg uint64) {
				Logger().Info("plugin log", zap.Uint64("value", arg))
			},
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// initHost instantiates the host module. Deferred to the first Load so it
// only exists when an artifact can import it.
func (e *Engine) initHost(ctx context.Context) error {
	if e.hostReady {
		return nil
	}

	builder := e.runtime.NewHostModuleBuilder(heimdall.HostModule)
	for name, fn := range e.hostFuncs {
		fn := fn
		builder = builder.NewFunctionBuilder().
			WithGoFunction(api.GoFunc(func(ctx context.Context, stack []uint64) {
				fn(ctx, stack[0])
			}), []api.ValueType{api.ValueTypeI64}, nil).
			Export(name)
	}
	if _, err := builder.Instantiate(ctx); err != nil {
		return errors.Map(heimdall.HostModule, err)
	}

	e.hostReady = true
	return nil
}

// Load maps the artifact at canonical into the process and returns its
// Handle plus the modification time of the version captured.
//
// The ordering is load-bearing: clone canonical to shadow, re-stat the
// canonical file after the copy, then map the shadow copy. The canonical
// file itself is never held open past the clone. The previous Handle, if
// any, must already be closed; the shadow file is overwritten here.
func (e *Engine) Load(ctx context.Context, canonical string) (*Handle, time.Time, error) {
	if err := e.initHost(ctx); err != nil {
		return nil, time.Time{}, err
	}

	shadow, mtime, err := artifact.Clone(canonical)
	if err != nil {
		return nil, time.Time{}, err
	}

	bin, err := os.ReadFile(shadow)
	if err != nil {
		return nil, time.Time{}, errors.Map(shadow, err)
	}

	compiled, err := e.runtime.CompileModule(ctx, bin)
	if err != nil {
		return nil, time.Time{}, errors.Map(shadow, err)
	}

	// Anonymous instance: successive loads of the same artifact must not
	// collide in the runtime's module namespace.
	mod, err := e.runtime.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName(""))
	if err != nil {
		compiled.Close(ctx)
		return nil, time.Time{}, errors.Map(shadow, err)
	}

	Logger().Debug("artifact loaded",
		zap.String("canonical", canonical),
		zap.String("shadow", shadow),
		zap.Time("mtime", mtime))

	return &Handle{compiled: compiled, module: mod, path: shadow}, mtime, nil
}

// Close releases the runtime and everything loaded into it.
func (e *Engine) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}

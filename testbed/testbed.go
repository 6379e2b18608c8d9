// Package testbed emits the artifacts the end-to-end tests load: plain
// counters, counters with a stage stripped, and traced variants that
// report every lifecycle call to a host function.
package testbed

import (
	"github.com/ericrobolson/heimdall"
	"github.com/ericrobolson/heimdall/wasm"
)

// CounterSpec configures a counter artifact.
type CounterSpec struct {
	// InitValue is what heimdall_init returns.
	InitValue int64
	// UpdateStep is added to the state on every update.
	UpdateStep int64
	// UnloadDelta is subtracted on unload.
	UnloadDelta int64
	// ReloadDelta is added on reload.
	ReloadDelta int64
}

var unary = wasm.FuncType{Params: []wasm.ValType{wasm.I64}, Results: []wasm.ValType{wasm.I64}}

// Counter emits a five-stage counter artifact. Finalize passes the state
// through unchanged.
func Counter(spec CounterSpec) []byte {
	b := wasm.NewBuilder()

	initFn := b.Func(wasm.FuncType{Results: []wasm.ValType{wasm.I64}},
		wasm.I64Const(spec.InitValue))
	reload := b.Func(unary, wasm.LocalGet(0), wasm.I64Const(spec.ReloadDelta), wasm.I64Add())
	unload := b.Func(unary, wasm.LocalGet(0), wasm.I64Const(spec.UnloadDelta), wasm.I64Sub())
	update := b.Func(unary, wasm.LocalGet(0), wasm.I64Const(spec.UpdateStep), wasm.I64Add())
	fini := b.Func(unary, wasm.LocalGet(0))

	b.Export(heimdall.StageInit.Symbol(), initFn)
	b.Export(heimdall.StageReload.Symbol(), reload)
	b.Export(heimdall.StageUnload.Symbol(), unload)
	b.Export(heimdall.StageUpdate.Symbol(), update)
	b.Export(heimdall.StageFinalize.Symbol(), fini)

	return mustBuild(b)
}

// WithoutStage emits the counter artifact minus one stage's export.
func WithoutStage(spec CounterSpec, missing heimdall.Stage) []byte {
	b := wasm.NewBuilder()

	fns := map[heimdall.Stage]uint32{
		heimdall.StageInit: b.Func(wasm.FuncType{Results: []wasm.ValType{wasm.I64}},
			wasm.I64Const(spec.InitValue)),
		heimdall.StageReload:   b.Func(unary, wasm.LocalGet(0), wasm.I64Const(spec.ReloadDelta), wasm.I64Add()),
		heimdall.StageUnload:   b.Func(unary, wasm.LocalGet(0), wasm.I64Const(spec.UnloadDelta), wasm.I64Sub()),
		heimdall.StageUpdate:   b.Func(unary, wasm.LocalGet(0), wasm.I64Const(spec.UpdateStep), wasm.I64Add()),
		heimdall.StageFinalize: b.Func(unary, wasm.LocalGet(0)),
	}

	for _, stage := range heimdall.Stages() {
		if stage == missing {
			continue
		}
		b.Export(stage.Symbol(), fns[stage])
	}

	return mustBuild(b)
}

// Traced emits an artifact whose every stage calls the imported host
// function heimdall.trace with tag*10+stage before passing the state
// through unchanged (init returns 0). Tests use distinct tags per artifact
// version to observe which version handled which stage, and in what order.
func Traced(tag int64) []byte {
	b := wasm.NewBuilder()
	trace := b.ImportFunc(heimdall.HostModule, "trace", wasm.FuncType{Params: []wasm.ValType{wasm.I64}})

	stamp := func(stage heimdall.Stage) []byte {
		var body []byte
		body = append(body, wasm.I64Const(tag*10+int64(stage))...)
		body = append(body, wasm.Call(trace)...)
		return body
	}

	initFn := b.Func(wasm.FuncType{Results: []wasm.ValType{wasm.I64}},
		stamp(heimdall.StageInit), wasm.I64Const(0))
	reload := b.Func(unary, stamp(heimdall.StageReload), wasm.LocalGet(0))
	unload := b.Func(unary, stamp(heimdall.StageUnload), wasm.LocalGet(0))
	update := b.Func(unary, stamp(heimdall.StageUpdate), wasm.LocalGet(0))
	fini := b.Func(unary, stamp(heimdall.StageFinalize), wasm.LocalGet(0))

	b.Export(heimdall.StageInit.Symbol(), initFn)
	b.Export(heimdall.StageReload.Symbol(), reload)
	b.Export(heimdall.StageUnload.Symbol(), unload)
	b.Export(heimdall.StageUpdate.Symbol(), update)
	b.Export(heimdall.StageFinalize.Symbol(), fini)

	return mustBuild(b)
}

func mustBuild(b *wasm.Builder) []byte {
	bin, err := b.Build()
	if err != nil {
		// Builders above only emit well-formed modules; an error here
		// is a defect in this package.
		panic(err)
	}
	return bin
}

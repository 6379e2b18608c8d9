// Package wasm emits minimal WebAssembly core modules.
//
// heimdall artifacts are wasm modules exporting the five lifecycle entry
// points. This package is the write side only: enough of the binary format
// (LEB128, type/import/function/export/code sections) to construct demo
// plugins and instrumented test artifacts without an external toolchain.
//
//	b := wasm.NewBuilder()
//	fn := b.Func(wasm.FuncType{Results: []wasm.ValType{wasm.I64}},
//	    wasm.I64Const(0))
//	b.Export("heimdall_init", fn)
//	bin, err := b.Build()
package wasm

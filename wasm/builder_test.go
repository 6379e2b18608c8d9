package wasm

import (
	"bytes"
	"context"
	"testing"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

func TestAppendULEB128(t *testing.T) {
	tests := []struct {
		v    uint64
		want []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{127, []byte{0x7F}},
		{128, []byte{0x80, 0x01}},
		{624485, []byte{0xE5, 0x8E, 0x26}},
	}

	for _, tt := range tests {
		if got := AppendULEB128(nil, tt.v); !bytes.Equal(got, tt.want) {
			t.Errorf("AppendULEB128(%d) = %x, want %x", tt.v, got, tt.want)
		}
	}
}

func TestAppendSLEB128(t *testing.T) {
	tests := []struct {
		v    int64
		want []byte
	}{
		{0, []byte{0x00}},
		{11, []byte{0x0B}},
		{-1, []byte{0x7F}},
		{63, []byte{0x3F}},
		{64, []byte{0xC0, 0x00}},
		{-64, []byte{0x40}},
		{-65, []byte{0xBF, 0x7F}},
		{-123456, []byte{0xC0, 0xBB, 0x78}},
	}

	for _, tt := range tests {
		if got := AppendSLEB128(nil, tt.v); !bytes.Equal(got, tt.want) {
			t.Errorf("AppendSLEB128(%d) = %x, want %x", tt.v, got, tt.want)
		}
	}
}

func TestBuilder_TypeInterning(t *testing.T) {
	b := NewBuilder()
	unary := FuncType{Params: []ValType{I64}, Results: []ValType{I64}}

	b.Func(unary, LocalGet(0))
	b.Func(unary, LocalGet(0))
	b.Func(FuncType{Results: []ValType{I64}}, I64Const(0))

	if len(b.types) != 2 {
		t.Errorf("types = %d, want 2 (identical signatures interned)", len(b.types))
	}
}

func TestBuilder_LateImportRejected(t *testing.T) {
	b := NewBuilder()
	b.Func(FuncType{Results: []ValType{I64}}, I64Const(0))
	b.ImportFunc("heimdall", "log", FuncType{Params: []ValType{I64}})

	if _, err := b.Build(); err == nil {
		t.Fatal("expected Build to reject an import declared after a function")
	}
}

// TestBuilder_Instantiate round-trips an emitted module through wazero.
func TestBuilder_Instantiate(t *testing.T) {
	ctx := context.Background()

	b := NewBuilder()
	add := b.Func(FuncType{Params: []ValType{I64, I64}, Results: []ValType{I64}},
		LocalGet(0),
		LocalGet(1),
		I64Add(),
	)
	b.Export("add", add)

	bin, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	r := wazero.NewRuntime(ctx)
	defer r.Close(ctx)

	mod, err := r.Instantiate(ctx, bin)
	if err != nil {
		t.Fatalf("instantiate emitted module: %v", err)
	}

	res, err := mod.ExportedFunction("add").Call(ctx, 40, 2)
	if err != nil {
		t.Fatalf("call add: %v", err)
	}
	if res[0] != 42 {
		t.Errorf("add(40, 2) = %d, want 42", res[0])
	}
}

// TestBuilder_Imports emits a module calling a host function.
func TestBuilder_Imports(t *testing.T) {
	ctx := context.Background()

	b := NewBuilder()
	logFn := b.ImportFunc("host", "log", FuncType{Params: []ValType{I64}})
	tick := b.Func(FuncType{Params: []ValType{I64}, Results: []ValType{I64}},
		LocalGet(0),
		Call(logFn),
		LocalGet(0),
		I64Const(1),
		I64Add(),
	)
	b.Export("tick", tick)

	bin, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	r := wazero.NewRuntime(ctx)
	defer r.Close(ctx)

	var logged []uint64
	_, err = r.NewHostModuleBuilder("host").
		NewFunctionBuilder().
		WithGoFunction(api.GoFunc(func(ctx context.Context, stack []uint64) {
			logged = append(logged, stack[0])
		}), []api.ValueType{api.ValueTypeI64}, nil).
		Export("log").
		Instantiate(ctx)
	if err != nil {
		t.Fatalf("host module: %v", err)
	}

	mod, err := r.Instantiate(ctx, bin)
	if err != nil {
		t.Fatalf("instantiate: %v", err)
	}

	res, err := mod.ExportedFunction("tick").Call(ctx, 7)
	if err != nil {
		t.Fatalf("call tick: %v", err)
	}
	if res[0] != 8 {
		t.Errorf("tick(7) = %d, want 8", res[0])
	}
	if len(logged) != 1 || logged[0] != 7 {
		t.Errorf("logged = %v, want [7]", logged)
	}
}

func TestBuilder_Unreachable(t *testing.T) {
	ctx := context.Background()

	b := NewBuilder()
	boom := b.Func(FuncType{Params: []ValType{I64}, Results: []ValType{I64}},
		Unreachable(),
		LocalGet(0),
	)
	b.Export("boom", boom)

	bin, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	r := wazero.NewRuntime(ctx)
	defer r.Close(ctx)

	mod, err := r.Instantiate(ctx, bin)
	if err != nil {
		t.Fatalf("instantiate: %v", err)
	}

	if _, err := mod.ExportedFunction("boom").Call(ctx, 0); err == nil {
		t.Fatal("expected unreachable to trap")
	}
}

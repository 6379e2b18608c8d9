package wasm

import "fmt"

// ValType is a wasm value type.
type ValType byte

const (
	I32 ValType = 0x7F
	I64 ValType = 0x7E
	F32 ValType = 0x7D
	F64 ValType = 0x7C
)

// FuncType describes a function signature.
type FuncType struct {
	Params  []ValType
	Results []ValType
}

func (ft FuncType) equal(other FuncType) bool {
	if len(ft.Params) != len(other.Params) || len(ft.Results) != len(other.Results) {
		return false
	}
	for i, p := range ft.Params {
		if p != other.Params[i] {
			return false
		}
	}
	for i, r := range ft.Results {
		if r != other.Results[i] {
			return false
		}
	}
	return true
}

// Section ids used by the emitter.
const (
	sectionType     = 1
	sectionImport   = 2
	sectionFunction = 3
	sectionExport   = 7
	sectionCode     = 10
)

const exportKindFunc = 0x00

// Builder assembles a wasm core module. Declare imports before functions:
// imported functions occupy the low end of the function index space, so a
// late import would invalidate indices already handed out.
type Builder struct {
	err     error
	types   []FuncType
	imports []importEntry
	funcs   []funcEntry
	exports []exportEntry
}

type importEntry struct {
	module  string
	name    string
	typeIdx uint32
}

type funcEntry struct {
	body    []byte
	typeIdx uint32
}

type exportEntry struct {
	name    string
	funcIdx uint32
}

func NewBuilder() *Builder {
	return &Builder{}
}

// typeIndex interns ft into the type section.
func (b *Builder) typeIndex(ft FuncType) uint32 {
	for i, t := range b.types {
		if t.equal(ft) {
			return uint32(i)
		}
	}
	b.types = append(b.types, ft)
	return uint32(len(b.types) - 1)
}

// ImportFunc declares a function import and returns its function index.
func (b *Builder) ImportFunc(module, name string, ft FuncType) uint32 {
	if len(b.funcs) > 0 && b.err == nil {
		b.err = fmt.Errorf("import %s.%s declared after a function; imports must come first", module, name)
	}
	b.imports = append(b.imports, importEntry{
		module:  module,
		name:    name,
		typeIdx: b.typeIndex(ft),
	})
	return uint32(len(b.imports) - 1)
}

// Func adds a function with the given signature and body instructions and
// returns its function index. The terminating end opcode is appended
// automatically; bodies declare no locals.
func (b *Builder) Func(ft FuncType, body ...[]byte) uint32 {
	var code []byte
	code = AppendULEB128(code, 0) // no local declarations
	for _, frag := range body {
		code = append(code, frag...)
	}
	code = append(code, 0x0B) // end

	b.funcs = append(b.funcs, funcEntry{typeIdx: b.typeIndex(ft), body: code})
	return uint32(len(b.imports) + len(b.funcs) - 1)
}

// Export exports the function at index fn under the given name.
func (b *Builder) Export(name string, fn uint32) {
	b.exports = append(b.exports, exportEntry{name: name, funcIdx: fn})
}

// Build emits the module binary.
func (b *Builder) Build() ([]byte, error) {
	if b.err != nil {
		return nil, b.err
	}

	out := []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}

	// Type section
	var sec []byte
	sec = AppendULEB128(sec, uint64(len(b.types)))
	for _, ft := range b.types {
		sec = append(sec, 0x60)
		sec = AppendULEB128(sec, uint64(len(ft.Params)))
		for _, p := range ft.Params {
			sec = append(sec, byte(p))
		}
		sec = AppendULEB128(sec, uint64(len(ft.Results)))
		for _, r := range ft.Results {
			sec = append(sec, byte(r))
		}
	}
	out = appendSection(out, sectionType, sec)

	// Import section
	if len(b.imports) > 0 {
		sec = sec[:0]
		sec = AppendULEB128(sec, uint64(len(b.imports)))
		for _, imp := range b.imports {
			sec = appendName(sec, imp.module)
			sec = appendName(sec, imp.name)
			sec = append(sec, exportKindFunc)
			sec = AppendULEB128(sec, uint64(imp.typeIdx))
		}
		out = appendSection(out, sectionImport, sec)
	}

	// Function section
	sec = sec[:0]
	sec = AppendULEB128(sec, uint64(len(b.funcs)))
	for _, fn := range b.funcs {
		sec = AppendULEB128(sec, uint64(fn.typeIdx))
	}
	out = appendSection(out, sectionFunction, sec)

	// Export section
	if len(b.exports) > 0 {
		sec = sec[:0]
		sec = AppendULEB128(sec, uint64(len(b.exports)))
		for _, exp := range b.exports {
			sec = appendName(sec, exp.name)
			sec = append(sec, exportKindFunc)
			sec = AppendULEB128(sec, uint64(exp.funcIdx))
		}
		out = appendSection(out, sectionExport, sec)
	}

	// Code section
	sec = sec[:0]
	sec = AppendULEB128(sec, uint64(len(b.funcs)))
	for _, fn := range b.funcs {
		sec = AppendULEB128(sec, uint64(len(fn.body)))
		sec = append(sec, fn.body...)
	}
	out = appendSection(out, sectionCode, sec)

	return out, nil
}

func appendSection(out []byte, id byte, content []byte) []byte {
	out = append(out, id)
	out = AppendULEB128(out, uint64(len(content)))
	return append(out, content...)
}

// Instruction fragments for function bodies.

func LocalGet(i uint32) []byte {
	return AppendULEB128([]byte{0x20}, uint64(i))
}

func I64Const(v int64) []byte {
	return AppendSLEB128([]byte{0x42}, v)
}

func I64Add() []byte { return []byte{0x7C} }
func I64Sub() []byte { return []byte{0x7D} }
func I64Mul() []byte { return []byte{0x7E} }
func I64Or() []byte  { return []byte{0x84} }
func I64Shl() []byte { return []byte{0x86} }

func Call(fn uint32) []byte {
	return AppendULEB128([]byte{0x10}, uint64(fn))
}

func Drop() []byte { return []byte{0x1A} }

// Unreachable traps when executed.
func Unreachable() []byte { return []byte{0x00} }

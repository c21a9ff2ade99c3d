// Package synth builds small core WebAssembly modules in memory.
package synth

import (
	"github.com/tetratelabs/wazero/api"
)

// Signature is a core function type.
type Signature struct {
	Params  []api.ValueType
	Results []api.ValueType
}

// Builder emits a core module that imports functions from one host module,
// re-exports each through a forwarding trampoline, and defines its own
// memory, globals and functions.
type Builder struct {
	importModule string
	imports      []importFunc
	funcs        []localFunc
	globals      []global
	memoryName   string
	memoryPages  uint32
}

type importFunc struct {
	name string
	sig  Signature
}

type localFunc struct {
	name   string
	sig    Signature
	locals []api.ValueType
	body   Code
}

type global struct {
	valType api.ValueType
	mutable bool
	init    int64
}

// NewBuilder creates a builder whose imports come from importModule.
func NewBuilder(importModule string) *Builder {
	return &Builder{importModule: importModule}
}

// Forward imports name from the host module and exports a trampoline of the
// same name that passes its parameters straight through.
func (b *Builder) Forward(name string, sig Signature) *Builder {
	b.imports = append(b.imports, importFunc{name: name, sig: sig})
	return b
}

// Func defines and exports a function. body holds the instructions without the
// final end; locals are declared after the parameters.
func (b *Builder) Func(name string, sig Signature, locals []api.ValueType, body Code) *Builder {
	b.funcs = append(b.funcs, localFunc{name: name, sig: sig, locals: locals, body: body})
	return b
}

// Global defines a global and returns its index.
func (b *Builder) Global(t api.ValueType, mutable bool, init int64) uint32 {
	b.globals = append(b.globals, global{valType: t, mutable: mutable, init: init})
	return uint32(len(b.globals) - 1)
}

// Memory defines linear memory with a minimum of pages and exports it as name.
func (b *Builder) Memory(name string, pages uint32) *Builder {
	b.memoryName = name
	b.memoryPages = pages
	return b
}

// Build generates the module bytes.
func (b *Builder) Build() []byte {
	wasm := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

	wasm = append(wasm, section(0x01, b.typeSection())...)
	if len(b.imports) > 0 {
		wasm = append(wasm, section(0x02, b.importSection())...)
	}
	wasm = append(wasm, section(0x03, b.funcSection())...)
	if b.memoryName != "" {
		wasm = append(wasm, section(0x05, b.memorySection())...)
	}
	if len(b.globals) > 0 {
		wasm = append(wasm, section(0x06, b.globalSection())...)
	}
	wasm = append(wasm, section(0x07, b.exportSection())...)
	wasm = append(wasm, section(0x0a, b.codeSection())...)

	return wasm
}

// Types are laid out one per import, then one per local function.
// Trampolines reuse the type of the import they forward to.
func (b *Builder) typeSection() []byte {
	out := ULEB128(uint32(len(b.imports) + len(b.funcs)))
	add := func(sig Signature) {
		out = append(out, 0x60)
		out = append(out, ULEB128(uint32(len(sig.Params)))...)
		for _, t := range sig.Params {
			out = append(out, ValType(t))
		}
		out = append(out, ULEB128(uint32(len(sig.Results)))...)
		for _, t := range sig.Results {
			out = append(out, ValType(t))
		}
	}
	for _, f := range b.imports {
		add(f.sig)
	}
	for _, f := range b.funcs {
		add(f.sig)
	}
	return out
}

func (b *Builder) importSection() []byte {
	out := ULEB128(uint32(len(b.imports)))
	for i, f := range b.imports {
		out = append(out, name(b.importModule)...)
		out = append(out, name(f.name)...)
		out = append(out, 0x00)
		out = append(out, ULEB128(uint32(i))...)
	}
	return out
}

func (b *Builder) funcSection() []byte {
	n := len(b.imports)
	out := ULEB128(uint32(n + len(b.funcs)))
	for i := range b.imports {
		out = append(out, ULEB128(uint32(i))...)
	}
	for i := range b.funcs {
		out = append(out, ULEB128(uint32(n+i))...)
	}
	return out
}

func (b *Builder) memorySection() []byte {
	out := []byte{0x01, 0x00}
	return append(out, ULEB128(b.memoryPages)...)
}

func (b *Builder) globalSection() []byte {
	out := ULEB128(uint32(len(b.globals)))
	for _, g := range b.globals {
		out = append(out, ValType(g.valType))
		if g.mutable {
			out = append(out, 0x01)
		} else {
			out = append(out, 0x00)
		}
		switch g.valType {
		case api.ValueTypeI64:
			out = append(out, 0x42)
			out = append(out, SLEB128(g.init)...)
		default:
			out = append(out, OpI32Const)
			out = append(out, SLEB128(int32(g.init))...)
		}
		out = append(out, OpEnd)
	}
	return out
}

// Function indices: imports, then trampolines, then local functions.
func (b *Builder) exportSection() []byte {
	n := len(b.imports)
	count := n + len(b.funcs)
	if b.memoryName != "" {
		count++
	}

	out := ULEB128(uint32(count))
	if b.memoryName != "" {
		out = append(out, name(b.memoryName)...)
		out = append(out, 0x02, 0x00)
	}
	for i, f := range b.imports {
		out = append(out, name(f.name)...)
		out = append(out, 0x00)
		out = append(out, ULEB128(uint32(n+i))...)
	}
	for i, f := range b.funcs {
		out = append(out, name(f.name)...)
		out = append(out, 0x00)
		out = append(out, ULEB128(uint32(2*n+i))...)
	}
	return out
}

func (b *Builder) codeSection() []byte {
	out := ULEB128(uint32(len(b.imports) + len(b.funcs)))
	for i, f := range b.imports {
		body := trampoline(uint32(i), f.sig)
		out = append(out, ULEB128(uint32(len(body)))...)
		out = append(out, body...)
	}
	for _, f := range b.funcs {
		body := append(localDecls(f.locals), f.body...)
		body = append(body, OpEnd)
		out = append(out, ULEB128(uint32(len(body)))...)
		out = append(out, body...)
	}
	return out
}

func trampoline(importIdx uint32, sig Signature) []byte {
	body := Code{0x00}
	for i := range sig.Params {
		body = body.LocalGet(uint32(i))
	}
	body = append(body, OpCall)
	body = append(body, ULEB128(importIdx)...)
	return append(body, OpEnd)
}

// localDecls groups consecutive locals of the same type.
func localDecls(locals []api.ValueType) []byte {
	type group struct {
		n uint32
		t api.ValueType
	}
	var groups []group
	for _, t := range locals {
		if len(groups) > 0 && groups[len(groups)-1].t == t {
			groups[len(groups)-1].n++
			continue
		}
		groups = append(groups, group{n: 1, t: t})
	}

	out := ULEB128(uint32(len(groups)))
	for _, g := range groups {
		out = append(out, ULEB128(g.n)...)
		out = append(out, ValType(g.t))
	}
	return out
}

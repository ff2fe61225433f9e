package handler

import (
	"bytes"
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/sson-dev/sson/path"
	"github.com/sson-dev/sson/token"
)

// Wasm is a converter handler that runs a user-supplied WebAssembly module
// over each matched element's raw bytes, for transform logic too involved
// or too sensitive to express as a Go plugin. The module must export
// linear memory plus two functions:
//
//	alloc(size uint32) uint32
//	transform(ptr uint32, len uint32) uint64  // packed (outPtr<<32 | outLen)
type Wasm struct {
	rt    wazero.Runtime
	mod   api.Module
	alloc api.Function
	xform api.Function
	buf   bytes.Buffer
}

// NewWasm compiles and instantiates wasmBytes, returning a ready-to-use
// Wasm handler.
func NewWasm(ctx context.Context, wasmBytes []byte) (*Wasm, error) {
	rt := wazero.NewRuntime(ctx)
	compiled, err := rt.CompileModule(ctx, wasmBytes)
	if err != nil {
		rt.Close(ctx)
		return nil, Wrap("wasm: compile module", err)
	}
	mod, err := rt.InstantiateModule(ctx, compiled, wazero.NewModuleConfig())
	if err != nil {
		rt.Close(ctx)
		return nil, Wrap("wasm: instantiate module", err)
	}
	alloc := mod.ExportedFunction("alloc")
	xform := mod.ExportedFunction("transform")
	if alloc == nil || xform == nil {
		rt.Close(ctx)
		return nil, &Error{Msg: "wasm: module must export alloc and transform"}
	}
	return &Wasm{rt: rt, mod: mod, alloc: alloc, xform: xform}, nil
}

// Close releases the wazero runtime.
func (w *Wasm) Close(ctx context.Context) error { return w.rt.Close(ctx) }

func (w *Wasm) IsConverter() bool { return true }

func (w *Wasm) Start(path.Path, int, token.Token) ([]byte, error) {
	w.buf.Reset()
	return nil, nil
}

func (w *Wasm) Feed(b []byte, _ int) ([]byte, error) {
	w.buf.Write(b)
	return nil, nil
}

func (w *Wasm) End(path.Path, int, token.Token) ([]byte, error) {
	ctx := context.Background()
	data := w.buf.Bytes()
	res, err := w.alloc.Call(ctx, uint64(len(data)))
	if err != nil {
		return nil, Wrap("wasm: alloc", err)
	}
	ptr := uint32(res[0])
	mem := w.mod.Memory()
	if !mem.Write(ptr, data) {
		return nil, &Error{Msg: "wasm: failed writing input to guest memory"}
	}
	packed, err := w.xform.Call(ctx, uint64(ptr), uint64(len(data)))
	if err != nil {
		return nil, Wrap("wasm: transform", err)
	}
	outPtr := uint32(packed[0] >> 32)
	outLen := uint32(packed[0])
	out, ok := mem.Read(outPtr, outLen)
	if !ok {
		return nil, &Error{Msg: "wasm: failed reading output from guest memory"}
	}
	return append([]byte(nil), out...), nil
}

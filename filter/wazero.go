package filter

import (
	"context"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/tracelog/errors"
)

// Guest ABI for filter programs. A program is a WebAssembly module with
// three exports:
//
//	memory         exported linear memory
//	filter_buffer  () -> i32: address of the scalar buffer
//	filter_eval    (ptr: i32, count: i32) -> i32: nonzero to record
//
// The host writes the flattened scalars as little-endian 64-bit values
// at filter_buffer before each call.
const (
	exportBuffer = "filter_buffer"
	exportEval   = "filter_eval"
)

// Config holds configuration for engine creation
type Config struct {
	// MemoryLimitPages sets the maximum memory per program in pages
	// (64KB each). 0 means the wazero default.
	MemoryLimitPages uint32
}

// Engine compiles filter programs with wazero.
type Engine struct {
	runtime wazero.Runtime
}

// NewEngine creates a new wazero-based filter engine
func NewEngine(ctx context.Context) *Engine {
	return NewEngineWithConfig(ctx, nil)
}

// NewEngineWithConfig creates a new engine with custom configuration
func NewEngineWithConfig(ctx context.Context, cfg *Config) *Engine {
	runtimeCfg := wazero.NewRuntimeConfig()
	if cfg != nil && cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}
	return &Engine{runtime: wazero.NewRuntimeWithConfig(ctx, runtimeCfg)}
}

// Close releases the engine and every program compiled with it.
func (e *Engine) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}

// Compile instantiates a filter program from its wasm bytes and resolves
// the guest ABI exports.
func (e *Engine) Compile(ctx context.Context, name string, wasm []byte) (*Program, error) {
	mod, err := e.runtime.InstantiateWithConfig(ctx, wasm,
		wazero.NewModuleConfig().WithName(name))
	if err != nil {
		return nil, errors.InvalidProgram(name, err)
	}

	eval := mod.ExportedFunction(exportEval)
	if eval == nil {
		_ = mod.Close(ctx)
		return nil, errors.New(errors.PhaseFilter, errors.KindInvalidProgram).
			Detail("program %q does not export %s", name, exportEval).
			Build()
	}
	bufFn := mod.ExportedFunction(exportBuffer)
	if bufFn == nil {
		_ = mod.Close(ctx)
		return nil, errors.New(errors.PhaseFilter, errors.KindInvalidProgram).
			Detail("program %q does not export %s", name, exportBuffer).
			Build()
	}
	if mod.Memory() == nil {
		_ = mod.Close(ctx)
		return nil, errors.New(errors.PhaseFilter, errors.KindInvalidProgram).
			Detail("program %q does not export memory", name).
			Build()
	}

	res, err := bufFn.Call(ctx)
	if err != nil {
		_ = mod.Close(ctx)
		return nil, errors.InvalidProgram(name, err)
	}

	return &Program{
		name:   name,
		mod:    mod,
		eval:   eval,
		buffer: uint32(res[0]),
	}, nil
}

// Program is a compiled filter program. Evaluate is safe for concurrent
// use; calls into one program instance are serialized.
type Program struct {
	mu     sync.Mutex
	mod    api.Module
	eval   api.Function
	name   string
	buffer uint32
}

// Name returns the name the program was compiled under.
func (p *Program) Name() string { return p.name }

// Evaluate writes the scalar buffer into guest memory and runs the
// program. Engine failures record rather than drop: tracing must never
// lose an event over a broken filter.
func (p *Program) Evaluate(scalars []uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	mem := p.mod.Memory()
	for i, v := range scalars {
		if !mem.WriteUint64Le(p.buffer+uint32(i*8), v) {
			Logger().Warn("filter scalar buffer out of bounds",
				zap.String("program", p.name),
				zap.Int("slot", i))
			return true
		}
	}

	res, err := p.eval.Call(context.Background(),
		uint64(p.buffer), uint64(len(scalars)))
	if err != nil {
		Logger().Warn("filter evaluation failed",
			zap.String("program", p.name),
			zap.Error(err))
		return true
	}
	return uint32(res[0]) != 0
}

// Close releases the program's module instance.
func (p *Program) Close(ctx context.Context) error {
	return p.mod.Close(ctx)
}

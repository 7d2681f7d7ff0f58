// Package wasmhost runs the wasm build of the disassembler under wazero and
// drives its exports with the module's allocate/free protocol.
package wasmhost

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"disassembler/internal/boundary"
)

// Export names of the reactor module.
const (
	ExportMalloc      = "malloc"
	ExportFree        = "free"
	ExportVersion     = "version"
	ExportDisassemble = "disassemble"
)

// ErrMemory is returned when a buffer lies outside the module memory.
var ErrMemory = errors.New("wasm memory access out of range")

// Module is an instantiated disassembler module. Calls are serialised: a
// wasm instance runs one export at a time.
type Module struct {
	mu      sync.Mutex
	runtime wazero.Runtime
	mod     api.Module

	malloc      api.Function
	free        api.Function
	version     api.Function
	disassemble api.Function
}

// Open loads the module stored at path.
func Open(ctx context.Context, path string) (*Module, error) {
	bin, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read module: %w", err)
	}
	return Load(ctx, bin)
}

// Load compiles and instantiates a module binary.
func Load(ctx context.Context, bin []byte) (*Module, error) {
	r := wazero.NewRuntime(ctx)
	if _, err := wasi_snapshot_preview1.Instantiate(ctx, r); err != nil {
		_ = r.Close(ctx)
		return nil, fmt.Errorf("instantiate wasi: %w", err)
	}

	compiled, err := r.CompileModule(ctx, bin)
	if err != nil {
		_ = r.Close(ctx)
		return nil, fmt.Errorf("compile module: %w", err)
	}

	cfg := wazero.NewModuleConfig().WithStartFunctions("_initialize")
	mod, err := r.InstantiateModule(ctx, compiled, cfg)
	if err != nil {
		_ = r.Close(ctx)
		return nil, fmt.Errorf("instantiate module: %w", err)
	}

	m := &Module{runtime: r, mod: mod}
	exports := map[string]*api.Function{
		ExportMalloc:      &m.malloc,
		ExportFree:        &m.free,
		ExportVersion:     &m.version,
		ExportDisassemble: &m.disassemble,
	}
	for name, fn := range exports {
		if *fn = mod.ExportedFunction(name); *fn == nil {
			_ = r.Close(ctx)
			return nil, fmt.Errorf("module does not export %q", name)
		}
	}
	return m, nil
}

// Close releases the runtime and every module it instantiated.
func (m *Module) Close(ctx context.Context) error {
	return m.runtime.Close(ctx)
}

// Version returns the version reported by the module.
func (m *Module) Version(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	res, err := m.version.Call(ctx)
	if err != nil {
		return "", fmt.Errorf("call %s: %w", ExportVersion, err)
	}
	s, _, err := m.take(ctx, res[0])
	return s, err
}

// Disassemble runs the module's disassembler over code. ok is false when the
// module signals malformed input.
func (m *Module) Disassemble(ctx context.Context, code []byte, compat bool) (text string, ok bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	size := uint32(len(code))
	res, err := m.malloc.Call(ctx, uint64(size))
	if err != nil {
		return "", false, fmt.Errorf("call %s: %w", ExportMalloc, err)
	}
	in := uint32(res[0])
	defer func() {
		if ferr := m.release(ctx, in, size); err == nil {
			err = ferr
		}
	}()

	if !m.mod.Memory().Write(in, code) {
		return "", false, fmt.Errorf("%w: write %d bytes at %#x", ErrMemory, size, in)
	}

	var flag uint64
	if compat {
		flag = 1
	}
	res, err = m.disassemble.Call(ctx, uint64(in), uint64(size), flag)
	if err != nil {
		return "", false, fmt.Errorf("call %s: %w", ExportDisassemble, err)
	}
	return m.take(ctx, res[0])
}

// take copies a packed result out of module memory and frees it.
func (m *Module) take(ctx context.Context, packed uint64) (s string, ok bool, err error) {
	if packed == 0 {
		return "", false, nil
	}
	ptr, size := boundary.Unpack(packed)
	defer func() {
		if ferr := m.release(ctx, ptr, size); err == nil {
			err = ferr
		}
	}()

	buf, inRange := m.mod.Memory().Read(ptr, size)
	if !inRange {
		return "", false, fmt.Errorf("%w: read %d bytes at %#x", ErrMemory, size, ptr)
	}
	return string(buf), true, nil
}

func (m *Module) release(ctx context.Context, ptr, size uint32) error {
	if _, err := m.free.Call(ctx, uint64(ptr), uint64(size)); err != nil {
		return fmt.Errorf("call %s: %w", ExportFree, err)
	}
	return nil
}

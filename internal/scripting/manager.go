package scripting

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/ruleforge/internal/game/dice"
)

// ErrUnknownMacro is returned by Run when no global function has the macro's name.
var ErrUnknownMacro = errors.New("scripting: unknown macro")

// Result is the outcome of one macro run.
type Result struct {
	// Value is the macro's first return value converted to Go: nil, bool,
	// int, float64, string, []any or map[string]any.
	Value any
	// Rolls lists every pool the macro rolled, in order.
	Rolls []dice.Result
}

// Manager owns one sandboxed LState holding every loaded macro.
//
// Manager is safe for concurrent use; runs are serialized because an LState
// is single-threaded.
type Manager struct {
	mu        sync.Mutex
	L         *lua.LState
	roller    dice.Roller
	bands     dice.Bands
	instLimit int
	logger    *zap.Logger

	// Bound for the duration of one run.
	runCtx  context.Context
	rolls   []dice.Result
	rollErr error
}

// NewManager creates a Manager with an empty VM.
//
// Precondition: roller and logger must be non-nil; instLimit >= 0 (0 uses
// DefaultInstructionLimit).
// Postcondition: Returns a non-nil Manager whose VM has the engine module registered.
func NewManager(roller dice.Roller, bands dice.Bands, instLimit int, logger *zap.Logger) *Manager {
	if roller == nil {
		panic("scripting.NewManager: precondition violated: roller must be non-nil")
	}
	if logger == nil {
		panic("scripting.NewManager: precondition violated: logger must be non-nil")
	}
	m := &Manager{
		L:         NewSandboxedState(instLimit),
		roller:    roller,
		bands:     bands,
		instLimit: instLimit,
		logger:    logger,
		runCtx:    context.Background(),
	}
	m.RegisterModules(m.L)
	return m
}

// LoadDir executes every *.lua file in dir in lexicographic order. Files
// typically define macros as global functions.
//
// Precondition: dir must be a readable directory.
// Postcondition: on error the files loaded before the failing one stay loaded.
func (m *Manager) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("scripting: reading script dir %q: %w", dir, err)
	}
	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, path := range luaFiles {
		err := limited(context.Background(), m.L, m.instLimit, func() error { return m.L.DoFile(path) })
		if err != nil {
			return fmt.Errorf("scripting: loading %q: %w", path, err)
		}
		m.logger.Debug("macro file loaded", zap.String("path", path))
	}
	return nil
}

// LoadString executes src as a chunk named name.
func (m *Manager) LoadString(name, src string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	err := limited(context.Background(), m.L, m.instLimit, func() error { return m.L.DoString(src) })
	if err != nil {
		return fmt.Errorf("scripting: loading %q: %w", name, err)
	}
	return nil
}

// Has reports whether a macro named name is loaded.
func (m *Manager) Has(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.L.GetGlobal(name).Type() == lua.LTFunction
}

// Run calls the macro name with args converted to Lua values.
//
// Precondition: args are nil, bool, integer, float64, string, []int, []any or
// map[string]any values.
// Postcondition: returns ErrUnknownMacro if name is not a loaded function; a
// cancelled ctx or failed roll is returned wrapped so errors.Is sees the cause.
func (m *Manager) Run(ctx context.Context, name string, args ...any) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	fn := m.L.GetGlobal(name)
	if fn.Type() != lua.LTFunction {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownMacro, name)
	}
	largs := make([]lua.LValue, 0, len(args))
	for _, a := range args {
		largs = append(largs, toLua(m.L, a))
	}
	return m.run(ctx, name, func() error {
		return m.L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, largs...)
	})
}

// Eval runs src as an anonymous chunk and returns the chunk's first return value.
func (m *Manager) Eval(ctx context.Context, src string) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	chunk, err := m.L.LoadString(src)
	if err != nil {
		return Result{}, fmt.Errorf("scripting: compiling chunk: %w", err)
	}
	return m.run(ctx, "<eval>", func() error {
		m.L.Push(chunk)
		return m.L.PCall(0, 1, nil)
	})
}

// run executes call with the per-run state bound. The caller holds m.mu.
func (m *Manager) run(ctx context.Context, name string, call func() error) (Result, error) {
	m.runCtx, m.rolls, m.rollErr = ctx, nil, nil
	defer func() { m.runCtx = context.Background() }()

	top := m.L.GetTop()
	err := limited(ctx, m.L, m.instLimit, call)
	if err != nil {
		m.L.SetTop(top)
		if m.rollErr != nil {
			err = fmt.Errorf("scripting: macro %q: %w", name, m.rollErr)
		} else if ctx.Err() != nil {
			err = fmt.Errorf("scripting: macro %q: %w", name, ctx.Err())
		} else {
			err = fmt.Errorf("scripting: macro %q: %w", name, err)
		}
		m.logger.Warn("macro failed", zap.String("macro", name), zap.Error(err))
		return Result{Rolls: m.rolls}, err
	}
	ret := m.L.Get(-1)
	m.L.SetTop(top)
	return Result{Value: fromLua(ret), Rolls: m.rolls}, nil
}

// Close releases the VM. The Manager must not be used afterwards.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.L.Close()
}

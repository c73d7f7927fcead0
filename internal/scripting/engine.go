package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM used by event graph Branch and Script
// nodes. Single-goroutine access only (sequencer phase).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// Vars is the context table handed to a script function. Values must be
// bool, string, an integer type or float64.
type Vars map[string]any

// NewEngine creates a Lua engine and loads all scripts from the given
// directory: core/ first, then events/, then the directory root.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	e := newEngine(log)

	for _, dir := range []string{
		filepath.Join(scriptsDir, "core"),
		filepath.Join(scriptsDir, "events"),
		scriptsDir,
	} {
		if err := e.loadDir(dir); err != nil {
			e.vm.Close()
			return nil, fmt.Errorf("load scripts: %w", err)
		}
	}
	return e, nil
}

func newEngine(log *zap.Logger) *Engine {
	vm := lua.NewState(lua.Options{SkipOpenLibs: false})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))
	e := &Engine{vm: vm, log: log}
	vm.SetGlobal("log", vm.NewFunction(e.luaLog))
	return e
}

// loadDir loads all .lua files in a directory, in name order.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// LoadString runs a chunk of Lua source, typically to define functions.
func (e *Engine) LoadString(name, src string) error {
	if err := e.vm.DoString(src); err != nil {
		return fmt.Errorf("load %s: %w", name, err)
	}
	return nil
}

// Has reports whether a global function with the given name exists.
func (e *Engine) Has(name string) bool {
	_, ok := e.vm.GetGlobal(name).(*lua.LFunction)
	return ok
}

// EvalCondition calls name(ctx) and returns the truthiness of its result.
func (e *Engine) EvalCondition(name string, vars Vars) (bool, error) {
	ret, err := e.call(name, vars)
	if err != nil {
		return false, err
	}
	return lua.LVAsBool(ret), nil
}

// Run calls name(ctx). A numeric return value selects an output port;
// anything else selects port 0.
func (e *Engine) Run(name string, vars Vars) (int, error) {
	ret, err := e.call(name, vars)
	if err != nil {
		return 0, err
	}
	if n, ok := ret.(lua.LNumber); ok && n >= 0 {
		return int(n), nil
	}
	return 0, nil
}

func (e *Engine) call(name string, vars Vars) (lua.LValue, error) {
	fn := e.vm.GetGlobal(name)
	if fn == lua.LNil {
		return lua.LNil, fmt.Errorf("lua function %s not found", name)
	}

	ctx := e.vm.NewTable()
	for k, v := range vars {
		ctx.RawSetString(k, toLValue(v))
	}

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, ctx); err != nil {
		return lua.LNil, fmt.Errorf("lua %s: %w", name, err)
	}
	ret := e.vm.Get(-1)
	e.vm.Pop(1)
	return ret, nil
}

// luaLog implements log(msg) for scripts.
func (e *Engine) luaLog(L *lua.LState) int {
	e.log.Info("lua", zap.String("msg", L.CheckString(1)))
	return 0
}

func toLValue(v any) lua.LValue {
	switch x := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(x)
	case string:
		return lua.LString(x)
	case int:
		return lua.LNumber(x)
	case int64:
		return lua.LNumber(x)
	case uint32:
		return lua.LNumber(x)
	case uint64:
		return lua.LNumber(x)
	case float64:
		return lua.LNumber(x)
	default:
		return lua.LString(fmt.Sprint(x))
	}
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}

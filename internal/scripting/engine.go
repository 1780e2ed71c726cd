package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/l1jgo/arena/internal/core/geom"
)

// Engine wraps a single gopher-lua VM for balance formulas.
// Single-goroutine access only (game loop). A nil *Engine is valid and
// answers every call with the Go fallback.
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from the given directory.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}

	// core first so feature scripts may override its defaults
	for _, sub := range []string{"core", "combat", "match"} {
		p := filepath.Join(scriptsDir, sub)
		if err := e.loadDir(p); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}

	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
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

// Close releases the VM.
func (e *Engine) Close() {
	if e != nil && e.vm != nil {
		e.vm.Close()
	}
}

// Has reports whether a global Lua function is defined.
func (e *Engine) Has(name string) bool {
	if e == nil {
		return false
	}
	_, ok := e.vm.GetGlobal(name).(*lua.LFunction)
	return ok
}

// call runs a global function with one return value. ok is false when the
// function is missing or raised an error.
func (e *Engine) call(name string, args ...lua.LValue) (lua.LValue, bool) {
	if e == nil {
		return lua.LNil, false
	}
	fn, ok := e.vm.GetGlobal(name).(*lua.LFunction)
	if !ok {
		return lua.LNil, false
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, args...); err != nil {
		e.log.Error("lua 函式執行失敗", zap.String("fn", name), zap.Error(err))
		return lua.LNil, false
	}
	ret := e.vm.Get(-1)
	e.vm.Pop(1)
	return ret, true
}

// DamageContext holds pre-packed data for one damage application.
type DamageContext struct {
	Amount       float64
	Source       string // ability or effect id
	Mode         string
	AttackerType string
	TargetType   string
	TargetHP     float64
	TargetMaxHP  float64
}

// CalcDamage calls the Lua calc_damage function. Without one the raw
// amount is used. The result is never negative.
func (e *Engine) CalcDamage(ctx DamageContext) float64 {
	if !e.Has("calc_damage") {
		return ctx.Amount
	}
	t := e.vm.NewTable()
	t.RawSetString("amount", lua.LNumber(ctx.Amount))
	t.RawSetString("source", lua.LString(ctx.Source))
	t.RawSetString("mode", lua.LString(ctx.Mode))
	t.RawSetString("attacker_type", lua.LString(ctx.AttackerType))
	t.RawSetString("target_type", lua.LString(ctx.TargetType))
	t.RawSetString("target_hp", lua.LNumber(ctx.TargetHP))
	t.RawSetString("target_max_hp", lua.LNumber(ctx.TargetMaxHP))

	ret, ok := e.call("calc_damage", t)
	if !ok {
		return ctx.Amount
	}
	n, isNum := ret.(lua.LNumber)
	if !isNum {
		e.log.Error("lua calc_damage returned non-number", zap.String("type", ret.Type().String()))
		return ctx.Amount
	}
	if n < 0 {
		return 0
	}
	return float64(n)
}

// RespawnDelay calls the Lua respawn_delay function, falling back to
// fallback when it is missing, fails, or returns a negative value.
func (e *Engine) RespawnDelay(mode string, fallback float64) float64 {
	ret, ok := e.call("respawn_delay", lua.LString(mode))
	if !ok {
		return fallback
	}
	n, isNum := ret.(lua.LNumber)
	if !isNum || n < 0 {
		return fallback
	}
	return float64(n)
}

// SpawnPoint calls the Lua spawn_point function. The function returns a
// table {x = ..., y = ...} or nil to defer to the arena's spawn points.
func (e *Engine) SpawnPoint(team uint8, playerID uint32) (geom.Vec2, bool) {
	ret, ok := e.call("spawn_point", lua.LNumber(team), lua.LNumber(playerID))
	if !ok {
		return geom.Vec2{}, false
	}
	t, isTable := ret.(*lua.LTable)
	if !isTable {
		return geom.Vec2{}, false
	}
	x, okX := t.RawGetString("x").(lua.LNumber)
	y, okY := t.RawGetString("y").(lua.LNumber)
	if !okX || !okY {
		return geom.Vec2{}, false
	}
	return geom.V(float64(x), float64(y)), true
}

package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM for cleanup policy hooks.
// Single-goroutine access only (loop goroutine).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from the given
// directory tree. A missing directory is fine — all hooks fall back to
// their defaults.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}

	for _, sub := range []string{"core", "cleanup"} {
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

func (e *Engine) Close() {
	e.vm.Close()
}

// WeaponContext is the data handed to the Lua hooks for one dropped
// weapon.
type WeaponContext struct {
	TemplateID int32
	Name       string
	Class      string
	DroppedBy  int32
	AgeSeconds float64 // 0 for should_track
	Reason     string  // eviction reason, "" for should_track
}

func (e *Engine) weaponTable(ctx WeaponContext) *lua.LTable {
	t := e.vm.NewTable()
	t.RawSetString("template_id", lua.LNumber(ctx.TemplateID))
	t.RawSetString("name", lua.LString(ctx.Name))
	t.RawSetString("class", lua.LString(ctx.Class))
	t.RawSetString("dropped_by", lua.LNumber(ctx.DroppedBy))
	t.RawSetString("age_seconds", lua.LNumber(ctx.AgeSeconds))
	t.RawSetString("reason", lua.LString(ctx.Reason))
	return t
}

// ShouldTrack calls the Lua should_track hook. Default is true: with no
// script loaded every drop is tracked.
func (e *Engine) ShouldTrack(ctx WeaponContext) bool {
	fn := e.vm.GetGlobal("should_track")
	if fn == lua.LNil {
		return true
	}

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, e.weaponTable(ctx)); err != nil {
		e.log.Error("lua should_track error", zap.Error(err))
		return true
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)
	return lua.LVAsBool(result)
}

// OnWeaponEvicted calls the Lua on_weapon_evicted hook, if present.
// Script errors are logged and swallowed.
func (e *Engine) OnWeaponEvicted(ctx WeaponContext) {
	fn := e.vm.GetGlobal("on_weapon_evicted")
	if fn == lua.LNil {
		return
	}

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, e.weaponTable(ctx)); err != nil {
		e.log.Error("lua on_weapon_evicted error", zap.Error(err))
	}
}

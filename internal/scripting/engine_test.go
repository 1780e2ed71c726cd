package scripting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/l1jgo/arena/internal/core/geom"
)

func writeScript(t *testing.T, dir, sub, name, src string) {
	t.Helper()
	p := filepath.Join(dir, sub)
	require.NoError(t, os.MkdirAll(p, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(p, name), []byte(src), 0o644))
}

func TestFallbacksWithoutScripts(t *testing.T) {
	e, err := NewEngine(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	defer e.Close()

	assert.False(t, e.Has("calc_damage"))
	assert.Equal(t, 12.0, e.CalcDamage(DamageContext{Amount: 12}))
	assert.Equal(t, 5.0, e.RespawnDelay("deathmatch", 5))
	_, ok := e.SpawnPoint(0, 1)
	assert.False(t, ok)
}

func TestNilEngine(t *testing.T) {
	var e *Engine
	assert.Equal(t, 3.0, e.CalcDamage(DamageContext{Amount: 3}))
	assert.Equal(t, 7.0, e.RespawnDelay("x", 7))
	e.Close()
}

func TestScriptedFormulas(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "core", "a.lua", `
function calc_damage(ctx)
  if ctx.source == "immune" then return -5 end
  return ctx.amount * 2
end
function respawn_delay(mode)
  if mode == "fast" then return 1 end
  return -1
end
function spawn_point(team, id)
  if team == 1 then return {x = 10, y = id} end
  return nil
end
`)
	// later directories override core
	writeScript(t, dir, "match", "b.lua", `function respawn_delay(mode) if mode == "fast" then return 2 end return -1 end`)

	e, err := NewEngine(dir, zap.NewNop())
	require.NoError(t, err)
	defer e.Close()

	assert.Equal(t, 20.0, e.CalcDamage(DamageContext{Amount: 10}))
	assert.Equal(t, 0.0, e.CalcDamage(DamageContext{Amount: 10, Source: "immune"}))
	assert.Equal(t, 2.0, e.RespawnDelay("fast", 5))
	assert.Equal(t, 5.0, e.RespawnDelay("slow", 5), "negative falls back")

	p, ok := e.SpawnPoint(1, 4)
	require.True(t, ok)
	assert.Equal(t, geom.V(10, 4), p)
	_, ok = e.SpawnPoint(0, 4)
	assert.False(t, ok)
}

func TestScriptErrorsFallBack(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "core", "bad.lua", `
function calc_damage(ctx) error("boom") end
function respawn_delay(mode) return "soon" end
`)
	e, err := NewEngine(dir, zap.NewNop())
	require.NoError(t, err)
	defer e.Close()

	assert.Equal(t, 9.0, e.CalcDamage(DamageContext{Amount: 9}))
	assert.Equal(t, 4.0, e.RespawnDelay("x", 4))
}

func TestSyntaxErrorFailsLoad(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "core", "broken.lua", `function (`)
	_, err := NewEngine(dir, zap.NewNop())
	require.Error(t, err)
}

func TestShippedFormulas(t *testing.T) {
	e, err := NewEngine("../../scripts", zap.NewNop())
	require.NoError(t, err)
	defer e.Close()

	assert.Equal(t, 5.0, e.RespawnDelay("deathmatch", 1))
	assert.Equal(t, 9.0, e.CalcDamage(DamageContext{Amount: 10, TargetType: "Neutral"}))
	assert.Equal(t, 10.0, e.CalcDamage(DamageContext{Amount: 10, TargetType: "Hero"}))
}

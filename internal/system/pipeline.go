package system

import (
	"time"

	"go.uber.org/zap"

	coresys "github.com/l1jgo/arena/internal/core/system"
	"github.com/l1jgo/arena/internal/world"
)

// Gameplay returns the simulation systems, Movement through Cleanup.
func Gameplay(ws *world.State, log *zap.Logger) []coresys.System {
	return []coresys.System{
		NewMovementSystem(ws),
		NewHealthSystem(ws, log),
		NewAISystem(ws, log),
		NewCastSystem(ws, log),
		NewEffectSystem(ws, log),
		NewCollisionSystem(ws),
		NewLifetimeSystem(ws),
		NewCleanupSystem(ws),
	}
}

// Pipeline advances one world by whole ticks: it opens the event frame,
// runs every system in phase order and delivers the frame to bus
// subscribers.
type Pipeline struct {
	world  *world.State
	runner *coresys.Runner
	tick   uint32
}

func NewPipeline(ws *world.State, systems ...coresys.System) *Pipeline {
	r := coresys.NewRunner()
	for _, s := range systems {
		r.Register(s)
	}
	return &Pipeline{world: ws, runner: r}
}

// Register adds a system after construction.
func (p *Pipeline) Register(s coresys.System) { p.runner.Register(s) }

// Step runs one tick and returns its number.
func (p *Pipeline) Step(dt time.Duration) uint32 {
	p.tick++
	p.world.Bus.BeginTick(p.tick)
	p.runner.Tick(dt)
	p.world.Bus.EndTick()
	return p.tick
}

func (p *Pipeline) Tick() uint32 { return p.tick }

package system

import (
	"time"

	coresys "github.com/l1jgo/arena/internal/core/system"
	"github.com/l1jgo/arena/internal/world"
)

// CleanupSystem flushes the deferred entity destruction queue at tick end
// and drops the removed entities' ability books.
// Phase 8 (Cleanup).
type CleanupSystem struct {
	world *world.State
}

func NewCleanupSystem(ws *world.State) *CleanupSystem {
	return &CleanupSystem{world: ws}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	for _, id := range s.world.ECS.FlushDestroyQueue() {
		s.world.Forget(id)
	}
}

package system

import "time"

// Phase defines execution ordering within a single tick. Later phases
// observe this tick's movement, damage and cast results.
type Phase int

const (
	PhaseInput     Phase = iota // 0: drain transport queue, apply inputs
	PhaseMovement               // 1: movement strategies
	PhaseHealth                 // 2: death and respawn
	PhaseAI                     // 3: neutral behavior
	PhaseCast                   // 4: cooldowns, cast progress, queued casts
	PhaseEffect                 // 5: status effect start/tick/remove
	PhaseCollision              // 6: pairwise overlap hooks
	PhaseLifetime               // 7: transient expiry
	PhaseCleanup                // 8: destroy queued entities
	PhaseOutput                 // 9: replication packets, lobby broadcast
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhaseMovement:
		return "movement"
	case PhaseHealth:
		return "health"
	case PhaseAI:
		return "ai"
	case PhaseCast:
		return "cast"
	case PhaseEffect:
		return "effect"
	case PhaseCollision:
		return "collision"
	case PhaseLifetime:
		return "lifetime"
	case PhaseCleanup:
		return "cleanup"
	case PhaseOutput:
		return "output"
	default:
		return "unknown"
	}
}

// System is the interface every ECS system implements. Update runs to
// completion and never blocks.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}

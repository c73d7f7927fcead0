package system

import (
	"time"

	"github.com/creaturesim/server/internal/core/ecs"
	coresys "github.com/creaturesim/server/internal/core/system"
)

// CleanupSystem applies the tick's structural changes: deferred commands
// from the parallel jobs and the sequencer first, then queued destruction.
// Phase 8 (Cleanup).
type CleanupSystem struct {
	world  *ecs.World
	played uint64
}

func NewCleanupSystem(world *ecs.World) *CleanupSystem {
	return &CleanupSystem{world: world}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	s.played += uint64(s.world.Commands().Playback(s.world))
	s.world.FlushDestroyQueue()
}

// Played returns how many deferred commands have been applied so far.
func (s *CleanupSystem) Played() uint64 { return s.played }

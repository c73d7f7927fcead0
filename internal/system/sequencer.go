package system

import (
	"time"

	coresys "github.com/creaturesim/server/internal/core/system"
	"github.com/creaturesim/server/internal/sequencer"
)

// SequencerSystem ticks the event sequencer serially. Phase 3 (Sequencer).
type SequencerSystem struct {
	seq *sequencer.Sequencer
}

func NewSequencerSystem(seq *sequencer.Sequencer) *SequencerSystem {
	return &SequencerSystem{seq: seq}
}

func (s *SequencerSystem) Phase() coresys.Phase { return coresys.PhaseSequencer }

func (s *SequencerSystem) Update(dt time.Duration) {
	s.seq.Tick(dt)
}

package system

import (
	"time"

	"github.com/creaturesim/server/internal/bridge"
	coresys "github.com/creaturesim/server/internal/core/system"
	"go.uber.org/zap"
)

// BridgeBeginSystem makes the previous drain's results readable.
// Phase 1 (PreUpdate).
type BridgeBeginSystem struct {
	bridges []bridge.Drainer
}

func NewBridgeBeginSystem(bridges []bridge.Drainer) *BridgeBeginSystem {
	return &BridgeBeginSystem{bridges: bridges}
}

func (s *BridgeBeginSystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *BridgeBeginSystem) Update(_ time.Duration) {
	for _, b := range s.bridges {
		b.BeginTick()
	}
}

// BridgeDrainSystem drains every bridge serially, after all parallel jobs
// and the sequencer have enqueued. Phase 4 (Bridge).
type BridgeDrainSystem struct {
	bridges []bridge.Drainer
	applied uint64
	log     *zap.Logger
}

func NewBridgeDrainSystem(bridges []bridge.Drainer, log *zap.Logger) *BridgeDrainSystem {
	return &BridgeDrainSystem{bridges: bridges, log: log}
}

func (s *BridgeDrainSystem) Phase() coresys.Phase { return coresys.PhaseBridge }

func (s *BridgeDrainSystem) Update(dt time.Duration) {
	for _, b := range s.bridges {
		if n := b.Drain(dt); n > 0 {
			s.applied += uint64(n)
			s.log.Debug("bridge drained", zap.String("bridge", b.Name()), zap.Int("commands", n))
		}
	}
}

// Applied returns the total number of commands applied so far.
func (s *BridgeDrainSystem) Applied() uint64 { return s.applied }

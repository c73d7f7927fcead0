package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput        Phase = iota // 0: drain packet queues
	PhasePreUpdate                 // 1: dispatch last tick's events, promote bridge results, copy input
	PhasePrediction                // 2: parallel per-entity simulation (replayed on rollback)
	PhaseSequencer                 // 3: scripted event graphs (serial bridge client)
	PhaseBridge                    // 4: drain bridge channels into their services
	PhasePresentation              // 5: draw buffers + observer frames
	PhaseOutput                    // 6: flush session output
	PhasePersist                   // 7: journal + chat log
	PhaseCleanup                   // 8: command buffer playback, destroy queued entities
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhasePreUpdate:
		return "pre-update"
	case PhasePrediction:
		return "prediction"
	case PhaseSequencer:
		return "sequencer"
	case PhaseBridge:
		return "bridge"
	case PhasePresentation:
		return "presentation"
	case PhaseOutput:
		return "output"
	case PhasePersist:
		return "persist"
	case PhaseCleanup:
		return "cleanup"
	default:
		return "unknown"
	}
}

// System is the interface every ECS system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}

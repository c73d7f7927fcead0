package event

import "github.com/creaturesim/server/internal/core/ecs"

// Approval is emitted once per approval request, accepted or not.
type Approval struct {
	SessionID uint64
	Name      string
	Accepted  bool
	Reason    string // empty when accepted
}

// Connected is emitted when an approved session enters the simulation.
type Connected struct {
	SessionID uint64
	Name      string
}

// Disconnected is emitted when a session closes for any reason.
type Disconnected struct {
	SessionID uint64
	Name      string
	Reason    string
}

// ChatReceived is emitted for every chat message accepted from a session.
type ChatReceived struct {
	SessionID uint64
	From      string
	Text      string
}

// PlayerSpawned is emitted after a player's creature entity is created.
type PlayerSpawned struct {
	SessionID uint64
	Entity    ecs.EntityID
}

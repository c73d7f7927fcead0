package observer

import (
	"github.com/creaturesim/server/internal/bridge/camera"
	"github.com/creaturesim/server/internal/bridge/draw"
	"github.com/creaturesim/server/internal/bridge/environment"
	"github.com/creaturesim/server/internal/bridge/game"
	"github.com/creaturesim/server/internal/bridge/ui"
	"github.com/creaturesim/server/internal/core/vec"
	"github.com/creaturesim/server/internal/creature"
)

// ProtocolVersion is sent in the hello message.
const ProtocolVersion = 1

// Hello is the first message every observer receives.
type Hello struct {
	Type     string `json:"type"` // "hello"
	Protocol int    `json:"protocol"`
	Client   uint64 `json:"client"`
}

// Frame is everything a renderer needs for one presentation tick.
type Frame struct {
	Type        string               `json:"type"` // "frame"
	Tick        uint64               `json:"tick"`
	Entities    []Entity             `json:"entities"`
	Debug       []draw.Primitive     `json:"debug,omitempty"`
	Camera      camera.Property      `json:"camera"`
	Environment environment.Property `json:"environment"`
	Game        game.Property        `json:"game"`
	UI          ui.Property          `json:"ui"`
}

// Entity is one drawable entity. Shadow is empty for non-creatures.
type Entity struct {
	ID       uint64                 `json:"id"`
	Prefab   string                 `json:"prefab"`
	Position vec.Vec3               `json:"position"`
	Yaw      float64                `json:"yaw"`
	Sprite   []creature.DrawElement `json:"sprite"`
	Shadow   []creature.DrawElement `json:"shadow,omitempty"`
}

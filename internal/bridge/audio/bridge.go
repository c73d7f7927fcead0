package audio

import (
	"github.com/creaturesim/server/internal/bridge"
	"github.com/creaturesim/server/internal/core/ecs"
	"github.com/creaturesim/server/internal/core/vec"
	"go.uber.org/zap"
)

// Bridge is the audio façade.
type Bridge struct {
	*bridge.Bridge[Command, Property, Result]
	manager *Manager
}

func NewBridge(lanes int, m *Manager, log *zap.Logger) *Bridge {
	return &Bridge{
		Bridge:  bridge.New[Command, Property, Result]("audio", lanes, m, log),
		manager: m,
	}
}

func (b *Bridge) Manager() *Manager { return b.manager }

func hdr(e ecs.EntityID) bridge.Header { return bridge.Header{Entity: e} }

func (b *Bridge) PlayMusic(lane int, e ecs.EntityID, clip string, volume float64) {
	b.Enqueue(lane, PlayMusic{Header: hdr(e), Clip: clip, Volume: volume})
}

func (b *Bridge) StopMusic(lane int, e ecs.EntityID) {
	b.Enqueue(lane, StopMusic{Header: hdr(e)})
}

func (b *Bridge) PlaySoundFX(lane int, e ecs.EntityID, clip string, volume float64) {
	b.Enqueue(lane, PlaySoundFX{Header: hdr(e), Clip: clip, Volume: volume})
}

func (b *Bridge) PlayPointSoundFX(lane int, e ecs.EntityID, clip string, pos vec.Vec3, volume, minDist, maxDist float64) {
	b.Enqueue(lane, PlayPointSoundFX{
		Header:      hdr(e),
		Clip:        clip,
		Position:    pos,
		Volume:      volume,
		MinDistance: minDist,
		MaxDistance: maxDist,
	})
}

func (b *Bridge) PlayBlendSoundFX(lane int, e ecs.EntityID, clip string, pos vec.Vec3, volume, blend, minDist, maxDist float64) {
	b.Enqueue(lane, PlayBlendSoundFX{
		Header:       hdr(e),
		Clip:         clip,
		Position:     pos,
		Volume:       volume,
		SpatialBlend: blend,
		MinDistance:  minDist,
		MaxDistance:  maxDist,
	})
}

func (b *Bridge) SetAudioPosition(lane int, e ecs.EntityID, audio bridge.Handle, pos vec.Vec3) {
	b.Enqueue(lane, SetAudioPosition{Header: hdr(e), Audio: audio, Position: pos})
}

func (b *Bridge) SetAudioVolume(lane int, e ecs.EntityID, audio bridge.Handle, volume float64) {
	b.Enqueue(lane, SetAudioVolume{Header: hdr(e), Audio: audio, Volume: volume})
}

func (b *Bridge) StopAudio(lane int, e ecs.EntityID, audio bridge.Handle) {
	b.Enqueue(lane, StopAudio{Header: hdr(e), Audio: audio})
}

func (b *Bridge) SetListener(lane int, e ecs.EntityID, pos vec.Vec3, yaw float64) {
	b.Enqueue(lane, SetListener{Header: hdr(e), Position: pos, Yaw: yaw})
}

// TryGetAudioID returns the handle from e's last Play* command.
func (b *Bridge) TryGetAudioID(e ecs.EntityID) (bridge.Handle, bool) {
	r, ok := b.Result(e)
	return r.AudioID, ok
}

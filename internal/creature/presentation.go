package creature

// SyncPresentation copies the motion state into element 0 of both draw
// buffers.
func SyncPresentation(c *CreatureCore, sprite *SpriteDrawBuffer, shadow *ShadowDrawBuffer) {
	e := DrawElement{Motion: c.MotionX, Offset: c.MotionXOffset}
	if len(sprite.Elements) == 0 {
		sprite.Elements = make([]DrawElement, 1)
	}
	if len(shadow.Elements) == 0 {
		shadow.Elements = make([]DrawElement, 1)
	}
	sprite.Elements[0] = e
	shadow.Elements[0] = e
}

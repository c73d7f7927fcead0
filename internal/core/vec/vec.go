// Package vec holds the small fixed-size vector types shared by simulation
// components and bridge payloads.
package vec

import "math"

// Vec2 is a 2D vector. For movement input X is strafe and Y is forward.
type Vec2 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Vec3 is a 3D vector in world space. Y is up.
type Vec3 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

func V2(x, y float64) Vec2    { return Vec2{X: x, Y: y} }
func V3(x, y, z float64) Vec3 { return Vec3{X: x, Y: y, Z: z} }

func (v Vec2) Add(o Vec2) Vec2             { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2             { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(s float64) Vec2        { return Vec2{v.X * s, v.Y * s} }
func (v Vec2) Len() float64                { return math.Hypot(v.X, v.Y) }
func (v Vec2) IsZero() bool                { return v.X == 0 && v.Y == 0 }
func (v Vec2) Dot(o Vec2) float64          { return v.X*o.X + v.Y*o.Y }
func (v Vec2) Lerp(o Vec2, t float64) Vec2 { return v.Add(o.Sub(v).Scale(t)) }

// Normalize returns the unit vector, or zero for a zero vector.
func (v Vec2) Normalize() Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

// Rotate rotates the vector counter-clockwise by rad radians.
func (v Vec2) Rotate(rad float64) Vec2 {
	s, c := math.Sincos(rad)
	return Vec2{v.X*c - v.Y*s, v.X*s + v.Y*c}
}

func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3      { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Len() float64         { return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z) }
func (v Vec3) IsZero() bool         { return v.X == 0 && v.Y == 0 && v.Z == 0 }
func (v Vec3) Dist(o Vec3) float64  { return v.Sub(o).Len() }

// Horizontal drops the vertical component.
func (v Vec3) Horizontal() Vec2 { return Vec2{v.X, v.Z} }

// Normalize returns the unit vector, or zero for a zero vector.
func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l == 0 {
		return Vec3{}
	}
	return v.Scale(1 / l)
}

// Lerp interpolates between v and o; t is not clamped.
func (v Vec3) Lerp(o Vec3, t float64) Vec3 {
	return v.Add(o.Sub(v).Scale(t))
}

// Clamp01 clamps t into [0, 1].
func Clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

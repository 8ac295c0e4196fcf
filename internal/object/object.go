package object

import (
	"github.com/tomz197/spacedefender/internal/physics"
)

// Field is the play area entities move in.
type Field struct {
	Width  float64 // Logical width
	Height float64 // Logical height
	Margin float64 // Horizontal inset the player is clamped to
	Slack  float64 // Distance past the top/bottom edge before a bullet expires
}

// DefaultField is the 960x540 arena the game is tuned for.
var DefaultField = Field{
	Width:  960,
	Height: 540,
	Margin: 20,
	Slack:  20,
}

// Center returns the middle of the field.
func (f Field) Center() (float64, float64) {
	return f.Width / 2, f.Height / 2
}

// Body is the kinematic state shared by every entity kind.
type Body struct {
	X, Y   float64 // Top-left corner
	W, H   float64 // Bounding box size
	VX, VY float64 // Velocity in units per second
	Active bool    // False once the entity is scheduled for removal
}

func (b *Body) body() *Body { return b }

// Center returns the centre of the bounding box.
func (b *Body) Center() (float64, float64) {
	return b.X + b.W/2, b.Y + b.H/2
}

// MarkDestroyed marks the entity for removal on the next compaction.
func (b *Body) MarkDestroyed() {
	b.Active = false
}

// IsDestroyed returns true if the entity is marked for removal.
func (b *Body) IsDestroyed() bool {
	return !b.Active
}

// Entity is a kinematic game object: one of *Player, *Enemy or *Bullet.
// The set is closed; Advance dispatches on the concrete type.
type Entity interface {
	body() *Body
}

// BodyOf returns the shared kinematic fields of an entity.
func BodyOf(e Entity) *Body {
	return e.body()
}

// Integrate moves a body by its velocity over dt seconds.
func Integrate(b *Body, dt float64) {
	physics.Integrate(&b.X, &b.Y, b.VX, b.VY, dt)
}

// Advance updates a single entity for one frame. It only mutates e.
func Advance(e Entity, f Field, dt float64) {
	switch v := e.(type) {
	case *Player:
		v.advance(f, dt)
	case *Enemy:
		v.advance(f, dt)
	case *Bullet:
		v.advance(f, dt)
	}
}

// Collide reports whether the bounding boxes of a and b overlap.
func Collide(a, b Entity) bool {
	ba, bb := a.body(), b.body()
	return physics.RectsOverlap(ba.X, ba.Y, ba.W, ba.H, bb.X, bb.Y, bb.W, bb.H)
}

// ShouldRenderBlink returns true if an object with remaining protection time
// should be drawn dimmed this frame.
// Returns false always if remainingTime <= 0 (no protection).
func ShouldRenderBlink(remainingTime float64, frequency float64) bool {
	if remainingTime <= 0 {
		return false
	}
	phase := int(remainingTime * frequency)
	return phase%2 == 0
}

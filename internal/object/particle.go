package object

import (
	"image/color"
	"math"
	"math/rand"
	"sync"
)

// Particle physics constants. Decay and drag are authored per 60 Hz tick.
const (
	ParticleGravity = 100.0 // Units per second squared, pulling down
	ParticleDrag    = 0.98  // Velocity multiplier applied once per update
	decayReference  = 60.0
)

// particlePool is a sync.Pool for reusing Particle objects to reduce allocations.
var particlePool = sync.Pool{
	New: func() any {
		return &Particle{}
	},
}

// Particle is a short-lived visual effect. It never collides.
type Particle struct {
	X, Y   float64     // Position
	VX, VY float64     // Velocity
	Life   float64     // Remaining life, starts at 1.0 and fades to 0
	Decay  float64     // Life lost per reference tick
	Size   float64     // Radius, or font scale for labels
	Color  color.NRGBA // Base colour
	Label  string      // Optional text drawn instead of a disc (score popups)
	Active bool
}

// NewParticle creates a particle from the pool moving at angle degrees with the given speed.
func NewParticle(x, y, angle, speed float64, c color.NRGBA, size float64, rng *rand.Rand) *Particle {
	rad := angle * math.Pi / 180
	p := particlePool.Get().(*Particle)
	*p = Particle{
		X:      x,
		Y:      y,
		VX:     math.Cos(rad) * speed,
		VY:     math.Sin(rad) * speed,
		Life:   1.0,
		Decay:  rng.Float64()*0.02 + 0.01,
		Size:   size,
		Color:  c,
		Active: true,
	}
	return p
}

// Release returns the particle to the pool for reuse.
// Should be called when the particle is removed from the game.
func (p *Particle) Release() {
	particlePool.Put(p)
}

// Update moves the particle and fades it out.
func (p *Particle) Update(dt float64) {
	p.X += p.VX * dt
	p.Y += p.VY * dt
	p.Life -= p.Decay * dt * decayReference

	p.VY += ParticleGravity * dt

	// Drag is per call, not per second
	p.VX *= ParticleDrag
	p.VY *= ParticleDrag

	if p.Life <= 0 {
		p.Active = false
	}
}

// IsDestroyed returns true once the particle has faded out.
func (p *Particle) IsDestroyed() bool {
	return !p.Active
}

// Alpha returns the opacity to draw the particle with.
func (p *Particle) Alpha() float64 {
	if p.Life <= 0 {
		return 0
	}
	if p.Life > 1 {
		return 1
	}
	return p.Life
}

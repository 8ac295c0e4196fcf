package object

import (
	"github.com/tomz197/spacedefender/internal/physics"
)

// Player tuning.
const (
	PlayerWidth            = 50.0
	PlayerHeight           = 40.0
	PlayerLives            = 3
	PlayerSpeed            = 400.0 // Horizontal speed while a direction key is held
	PlayerFireRate         = 0.2   // Minimum seconds between shots
	InvulnerabilitySeconds = 2.0
)

// Player is the ship at the bottom of the field.
type Player struct {
	Body
	Lives         int
	ShootCooldown float64 // Seconds until the next shot is allowed
	Invulnerable  float64 // Seconds of remaining damage immunity
}

// NewPlayer creates the ship with its top-left corner at (x, y).
func NewPlayer(x, y float64) *Player {
	return &Player{
		Body: Body{
			X:      x,
			Y:      y,
			W:      PlayerWidth,
			H:      PlayerHeight,
			Active: true,
		},
		Lives: PlayerLives,
	}
}

func (p *Player) advance(f Field, dt float64) {
	Integrate(&p.Body, dt)

	if p.ShootCooldown > 0 {
		p.ShootCooldown -= dt
	}
	if p.Invulnerable > 0 {
		p.Invulnerable -= dt
	}

	p.X = physics.Clamp(p.X, f.Margin, f.Width-p.W-f.Margin)
}

// Steer sets the horizontal velocity from the direction keys.
func (p *Player) Steer(left, right bool) {
	switch {
	case left:
		p.VX = -PlayerSpeed
	case right:
		p.VX = PlayerSpeed
	default:
		p.VX = 0
	}
}

// Shoot fires a bullet from the nose of the ship.
// Returns nil while the weapon is cooling down.
func (p *Player) Shoot() *Bullet {
	if p.ShootCooldown > 0 {
		return nil
	}
	p.ShootCooldown = PlayerFireRate
	return NewBullet(p.X+p.W/2-BulletWidth/2, p.Y, 0, -BulletSpeed)
}

// TakeDamage removes a life unless the ship is still invulnerable.
// Returns true if a life was lost.
func (p *Player) TakeDamage() bool {
	if p.Invulnerable > 0 {
		return false
	}
	p.Lives--
	p.Invulnerable = InvulnerabilitySeconds
	return true
}

// IsProtected returns true while hits are ignored.
func (p *Player) IsProtected() bool {
	return p.Invulnerable > 0
}

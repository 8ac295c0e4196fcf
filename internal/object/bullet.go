package object

// BulletSpeed is the upward speed of player bullets.
const BulletSpeed = 600.0

// Bullet size.
const (
	BulletWidth  = 6.0
	BulletHeight = 20.0
)

// Bullet is a shot fired by the player.
type Bullet struct {
	Body
	Damage int
}

// NewBullet creates a bullet at (x, y) travelling with velocity (vx, vy).
func NewBullet(x, y, vx, vy float64) *Bullet {
	return &Bullet{
		Body: Body{
			X:      x,
			Y:      y,
			W:      BulletWidth,
			H:      BulletHeight,
			VX:     vx,
			VY:     vy,
			Active: true,
		},
		Damage: 1,
	}
}

func (b *Bullet) advance(f Field, dt float64) {
	Integrate(&b.Body, dt)

	if b.Y < -f.Slack || b.Y > f.Height+f.Slack {
		b.MarkDestroyed()
	}
}

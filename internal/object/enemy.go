package object

// EnemyClass represents the kind of an enemy ship.
type EnemyClass int

const (
	EnemyBasic EnemyClass = iota
	EnemyStrong
	EnemyElite
)

func (c EnemyClass) String() string {
	switch c {
	case EnemyStrong:
		return "strong"
	case EnemyElite:
		return "elite"
	default:
		return "basic"
	}
}

// Per-class properties fixed at spawn.
var enemySizes = map[EnemyClass]float64{
	EnemyBasic:  40,
	EnemyStrong: 45,
	EnemyElite:  35,
}

var enemyHealth = map[EnemyClass]int{
	EnemyBasic:  1,
	EnemyStrong: 3,
	EnemyElite:  2,
}

var enemyPoints = map[EnemyClass]int{
	EnemyBasic:  100,
	EnemyStrong: 300,
	EnemyElite:  500,
}

// enemySpeeds is the base fall speed before the per-level bonus.
var enemySpeeds = map[EnemyClass]float64{
	EnemyBasic:  60,
	EnemyStrong: 40,
	EnemyElite:  80,
}

// Enemy is a descending hostile ship.
type Enemy struct {
	Body
	Class     EnemyClass
	Health    int
	MaxHealth int
	Points    int // Score awarded on destruction
}

// NewEnemy creates an enemy of the given class at (x, y) with zero velocity.
func NewEnemy(x, y float64, class EnemyClass) *Enemy {
	size := enemySizes[class]
	return &Enemy{
		Body: Body{
			X:      x,
			Y:      y,
			W:      size,
			H:      size,
			Active: true,
		},
		Class:     class,
		Health:    enemyHealth[class],
		MaxHealth: enemyHealth[class],
		Points:    enemyPoints[class],
	}
}

// BaseSpeed returns the fall speed of a class before level scaling.
func BaseSpeed(class EnemyClass) float64 {
	return enemySpeeds[class]
}

func (e *Enemy) advance(f Field, dt float64) {
	Integrate(&e.Body, dt)

	if e.Class != EnemyElite {
		return
	}
	// Bounce off the side walls
	if e.X <= 0 && e.VX < 0 {
		e.VX = -e.VX
	} else if e.X >= f.Width-e.W && e.VX > 0 {
		e.VX = -e.VX
	}
}

// TakeDamage subtracts dmg from health. Returns true if the enemy is dead.
func (e *Enemy) TakeDamage(dmg int) bool {
	e.Health -= dmg
	return e.Health <= 0
}

// HealthFraction returns remaining health in [0, 1] for health bars.
func (e *Enemy) HealthFraction() float64 {
	if e.MaxHealth <= 0 || e.Health <= 0 {
		return 0
	}
	return float64(e.Health) / float64(e.MaxHealth)
}

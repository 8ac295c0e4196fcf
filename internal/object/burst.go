package object

import (
	"fmt"
	"image/color"
	"math/rand"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Emitter receives particles created by the burst helpers.
type Emitter interface {
	Emit(p *Particle)
}

// Burst sizes.
const (
	ExplosionParticles    = 15
	BigExplosionParticles = 50
	ScorePopupParticles   = 5
	MuzzleFlashParticles  = 5
	LevelStartParticles   = 30
)

// ScorePopupLife is the starting life of score labels; they outlast sparks.
const ScorePopupLife = 1.5

var (
	ExplosionColor    = color.NRGBA{R: 0xff, G: 0x6b, B: 0x35, A: 0xff}
	BigExplosionColor = color.NRGBA{R: 0xff, G: 0x44, B: 0x44, A: 0xff}
	ScorePopupColor   = color.NRGBA{R: 0x44, G: 0xbb, B: 0xdd, A: 0xff}
	MuzzleFlashColor  = color.NRGBA{R: 0xff, G: 0xff, B: 0x00, A: 0xff}
)

// burst describes a radial particle emission.
type burst struct {
	count       int
	angleMin    float64 // Degrees
	angleSpread float64
	speedMin    float64
	speedSpread float64
	sizeMin     float64
	sizeSpread  float64
	color       color.NRGBA
}

func (b burst) emit(x, y float64, rng *rand.Rand, em Emitter, decorate func(*Particle)) {
	if em == nil {
		return
	}
	for i := 0; i < b.count; i++ {
		angle := b.angleMin + rng.Float64()*b.angleSpread
		speed := b.speedMin + rng.Float64()*b.speedSpread
		size := b.sizeMin + rng.Float64()*b.sizeSpread
		p := NewParticle(x, y, angle, speed, b.color, size, rng)
		if decorate != nil {
			decorate(p)
		}
		em.Emit(p)
	}
}

// SpawnExplosion emits the burst shown when an enemy is hit.
func SpawnExplosion(x, y float64, rng *rand.Rand, em Emitter) {
	burst{
		count:       ExplosionParticles,
		angleSpread: 360,
		speedMin:    50,
		speedSpread: 100,
		sizeMin:     1,
		sizeSpread:  3,
		color:       ExplosionColor,
	}.emit(x, y, rng, em, nil)
}

// SpawnBigExplosion emits the burst shown when the player is destroyed.
func SpawnBigExplosion(x, y float64, rng *rand.Rand, em Emitter) {
	burst{
		count:       BigExplosionParticles,
		angleSpread: 360,
		speedMin:    100,
		speedSpread: 200,
		sizeMin:     2,
		sizeSpread:  4,
		color:       BigExplosionColor,
	}.emit(x, y, rng, em, nil)
}

// SpawnScorePopup emits floating "+N" labels drifting upwards.
func SpawnScorePopup(x, y float64, points int, rng *rand.Rand, em Emitter) {
	label := fmt.Sprintf("+%d", points)
	burst{
		count:       ScorePopupParticles,
		angleMin:    240,
		angleSpread: 60,
		speedMin:    30,
		speedSpread: 50,
		sizeMin:     1,
		sizeSpread:  2,
		color:       ScorePopupColor,
	}.emit(x, y, rng, em, func(p *Particle) {
		p.Label = label
		p.Life = ScorePopupLife
	})
}

// SpawnMuzzleFlash emits sparks at the gun when the player fires.
func SpawnMuzzleFlash(x, y float64, rng *rand.Rand, em Emitter) {
	burst{
		count:       MuzzleFlashParticles,
		angleMin:    255,
		angleSpread: 30,
		speedMin:    50,
		speedSpread: 100,
		sizeMin:     1,
		sizeSpread:  2,
		color:       MuzzleFlashColor,
	}.emit(x, y, rng, em, nil)
}

// SpawnLevelStart emits a ring of sparks tinted by the level number.
func SpawnLevelStart(x, y float64, level int, rng *rand.Rand, em Emitter) {
	burst{
		count:       LevelStartParticles,
		angleSpread: 360,
		speedMin:    100,
		speedSpread: 200,
		sizeMin:     1,
		sizeSpread:  2,
		color:       LevelColor(level),
	}.emit(x, y, rng, em, nil)
}

// LevelColor returns the accent colour for a level (hue rotates 60° per level).
func LevelColor(level int) color.NRGBA {
	hue := float64((level * 60) % 360)
	r, g, b := colorful.Hsl(hue, 1.0, 0.6).Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}
}

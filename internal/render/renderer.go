package render

import (
	"image/color"
	"math"
	"math/rand"

	"github.com/tomz197/spacedefender/internal/game"
	"github.com/tomz197/spacedefender/internal/loop/config"
	"github.com/tomz197/spacedefender/internal/object"
)

// Scene is the read-only view of a simulation the renderer needs.
type Scene interface {
	State() game.RunState
	Player() *object.Player
	Entities() []object.Entity
	Particles() []*object.Particle
	BackgroundOffset() float64
	Field() object.Field
}

type star struct {
	x, y       float64
	size       float64
	brightness float64
}

// Renderer draws scenes and menu screens. It keeps the star field between
// frames and is not safe for concurrent use.
type Renderer struct {
	assets Assets
	field  object.Field
	stars  []star
	points [3]Point
}

// NewRenderer creates a renderer with a random star field.
// assets may be nil, in which case everything is drawn procedurally.
func NewRenderer(assets Assets, field object.Field, rng *rand.Rand) *Renderer {
	r := &Renderer{
		assets: assets,
		field:  field,
		stars:  make([]star, config.StarCount),
	}
	for i := range r.stars {
		r.stars[i] = star{
			x:          rng.Float64() * field.Width,
			y:          rng.Float64() * field.Height,
			size:       rng.Float64()*2 + 1,
			brightness: rng.Float64()*0.5 + 0.5,
		}
	}
	return r
}

func (r *Renderer) sprite(key string) (any, bool) {
	if r.assets == nil {
		return nil, false
	}
	return r.assets.Get(key)
}

// DrawScene draws one frame of a running game with HUD and overlays.
func (r *Renderer) DrawScene(s Surface, sc Scene) {
	st := sc.State()

	r.drawBackground(s, sc.BackgroundOffset())
	for _, p := range sc.Particles() {
		r.drawParticle(s, p)
	}
	for _, e := range sc.Entities() {
		switch v := e.(type) {
		case *object.Player:
			r.drawPlayer(s, v)
		case *object.Enemy:
			r.drawEnemy(s, v)
		case *object.Bullet:
			r.drawBullet(s, v)
		}
	}
	r.drawHUD(s, st)

	if st.LevelComplete {
		r.drawLevelComplete(s, st)
	}
	if st.GameOver {
		r.drawGameOver(s, st)
	}
}

func (r *Renderer) drawBackground(s Surface, offset float64) {
	w, h := r.field.Width, r.field.Height
	s.Clear(ColorSpace)
	if img, ok := r.sprite(SpriteBackground); ok {
		s.Image(img, 0, 0, w, h, 1)
	}

	// Far layer
	for _, st := range r.stars {
		y := math.Mod(st.y+offset*0.3, h)
		s.FillRect(st.x, y, st.size, st.size, Fade(ColorWhite, st.brightness*0.3))
	}
	// Near layer, large stars only
	for _, st := range r.stars {
		if st.size <= 1.5 {
			continue
		}
		y := math.Mod(st.y+offset*0.7, h)
		s.FillRect(st.x, y, st.size, st.size, Fade(ColorWhite, st.brightness*0.6))
	}
}

func (r *Renderer) drawParticle(s Surface, p *object.Particle) {
	c := Fade(p.Color, p.Alpha())
	if c.A == 0 {
		return
	}
	if p.Label != "" {
		s.Text(p.X, p.Y, p.Label, math.Floor(p.Size*4), AlignCenter, c)
		return
	}
	s.FillCircle(p.X, p.Y, p.Size, c)
}

func (r *Renderer) drawPlayer(s Surface, p *object.Player) {
	alpha := 1.0
	if p.IsProtected() && object.ShouldRenderBlink(p.Invulnerable, config.PlayerBlinkFrequency) {
		alpha = 0.5
	}

	if img, ok := r.sprite(SpritePlayer); ok {
		s.Image(img, p.X, p.Y, p.W, p.H, alpha)
		return
	}

	r.points = [3]Point{
		{p.X + p.W/2, p.Y},
		{p.X + p.W, p.Y + p.H},
		{p.X, p.Y + p.H},
	}
	s.FillPolygon(r.points[:], Fade(ColorAccent, alpha))
	s.FillRect(p.X+p.W/2-10, p.Y+10, 20, 15, Fade(ColorHull, alpha))
	s.FillRect(p.X+10, p.Y+p.H-5, 10, 8, Fade(ColorThruster, alpha))
	s.FillRect(p.X+p.W-20, p.Y+p.H-5, 10, 8, Fade(ColorThruster, alpha))
}

var enemySprites = map[object.EnemyClass]string{
	object.EnemyBasic:  SpriteEnemyBasic,
	object.EnemyStrong: SpriteEnemyStrong,
	object.EnemyElite:  SpriteEnemyElite,
}

var enemyColors = map[object.EnemyClass][2]color.NRGBA{
	object.EnemyBasic:  {rgb(0xff4444), rgb(0xff8888)},
	object.EnemyStrong: {rgb(0xff8844), rgb(0xffbb88)},
	object.EnemyElite:  {rgb(0xff44ff), rgb(0xffaaff)},
}

func (r *Renderer) drawEnemy(s Surface, e *object.Enemy) {
	if img, ok := r.sprite(enemySprites[e.Class]); ok {
		s.Image(img, e.X, e.Y, e.W, e.H, 1)
	} else {
		colors := enemyColors[e.Class]
		cx, cy := e.Center()
		s.FillCircle(cx, cy, e.W/2, colors[0])
		s.FillRect(e.X+e.W/4, e.Y+e.H/4, e.W/2, e.H/4, colors[1])
	}

	if e.Health <= 1 {
		return
	}
	bar := ColorHealth
	if e.Class == object.EnemyElite {
		bar = ColorEliteBar
	}
	s.FillRect(e.X, e.Y-10, e.W, 4, ColorBarTrack)
	s.FillRect(e.X, e.Y-10, e.W*e.HealthFraction(), 4, bar)
}

// bulletBands is the number of slices used to approximate the bullet gradient.
const bulletBands = 4

func (r *Renderer) drawBullet(s Surface, b *object.Bullet) {
	if img, ok := r.sprite(SpriteBullet); ok {
		s.Image(img, b.X, b.Y, b.W, b.H, 1)
		return
	}

	band := b.H / bulletBands
	for i := 0; i < bulletBands; i++ {
		t := (float64(i) + 0.5) / bulletBands
		var c color.NRGBA
		if t < 0.5 {
			c = Blend(ColorBulletTip, ColorBulletMid, t*2)
		} else {
			c = Blend(ColorBulletMid, ColorBulletTail, (t-0.5)*2)
		}
		s.FillRect(b.X, b.Y+float64(i)*band, b.W, band, c)
	}
	s.FillRect(b.X+1, b.Y+2, b.W-2, 4, Fade(ColorWhite, 0.6))
}

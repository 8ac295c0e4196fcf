package game

import (
	"math"

	"github.com/tomz197/spacedefender/internal/loop/config"
	"github.com/tomz197/spacedefender/internal/object"
)

// Update advances the run by dt seconds. It does nothing once the game is over.
func (s *Simulation) Update(dt float64) {
	if s.gameOver || s.player == nil {
		return
	}

	if !s.levelComplete {
		s.timeLeft -= dt
		if s.timeLeft <= 0 {
			remaining := s.timeLeft
			s.timeLeft = 0
			s.completeLevel(remaining)
		}
	}

	s.background = math.Mod(s.background+config.BackgroundScrollSpeed*dt, s.field.Height)

	for _, p := range s.particles {
		p.Update(dt)
	}
	for _, e := range s.entities {
		object.Advance(e, s.field, dt)
	}

	if !s.levelComplete {
		s.spawnTimer += dt
		if s.spawnTimer >= SpawnInterval(s.level) {
			s.spawnEnemy()
			s.spawnTimer = 0
		}
	}

	s.collide()
	s.compact()
}

// completeLevel awards the time bonus and schedules the next level.
func (s *Simulation) completeLevel(timeLeft float64) {
	s.levelComplete = true

	if bonus := TimeBonus(timeLeft); bonus > 0 {
		s.addScore(bonus)
		cx, cy := s.field.Center()
		object.SpawnScorePopup(cx, cy, bonus, s.rng, &s.particles)
	}

	s.advance.Schedule(s.clock.Now(), config.LevelAdvanceDelay, func() {
		s.StartLevel(s.level + 1)
	})
	s.log.Debug("Level complete", "level", s.level, "score", s.score)
}

// spawnEnemy drops one enemy in at the top of the field.
func (s *Simulation) spawnEnemy() {
	x := s.rng.Float64() * (s.field.Width - config.EnemySpawnWidth)

	class := object.EnemyBasic
	r := s.rng.Float64()
	switch {
	case s.level >= config.EliteMinLevel && r < config.EliteChance:
		class = object.EnemyElite
	case s.level >= config.StrongMinLevel && r < config.StrongChance:
		class = object.EnemyStrong
	case r < config.StrongFallbackRatio:
		class = object.EnemyStrong
	}

	e := object.NewEnemy(x, config.EnemySpawnY, class)
	e.VY = object.BaseSpeed(class) + float64(s.level)*config.EnemySpeedPerLevel
	if class == object.EnemyElite {
		e.VX = (s.rng.Float64() - 0.5) * 2 * config.EliteDriftMax
	}
	s.entities = append(s.entities, e)
}

// collide resolves bullet hits on enemies, then enemies ramming the player.
func (s *Simulation) collide() {
	var bullets []*object.Bullet
	var enemies []*object.Enemy
	for _, e := range s.entities {
		switch v := e.(type) {
		case *object.Bullet:
			bullets = append(bullets, v)
		case *object.Enemy:
			enemies = append(enemies, v)
		}
	}

	for _, b := range bullets {
		for _, e := range enemies {
			if !b.Active {
				break
			}
			if !e.Active || !object.Collide(b, e) {
				continue
			}
			s.hitEnemy(b, e)
		}
	}

	for _, e := range enemies {
		if !e.Active || !object.Collide(s.player, e) {
			continue
		}
		s.ram(e)
	}
}

func (s *Simulation) hitEnemy(b *object.Bullet, e *object.Enemy) {
	cx, cy := e.Center()
	object.SpawnExplosion(cx, cy, s.rng, &s.particles)
	s.audio.PlaySound(config.SoundEnemyHit, config.VolumeEnemyHit)
	b.MarkDestroyed()

	if !e.TakeDamage(b.Damage) {
		return
	}
	s.addScore(e.Points)
	e.MarkDestroyed()
	s.audio.PlaySound(config.SoundExplosion, config.VolumeEnemyKilled)
	object.SpawnScorePopup(e.X, e.Y, e.Points, s.rng, &s.particles)
}

func (s *Simulation) ram(e *object.Enemy) {
	cx, cy := e.Center()
	object.SpawnExplosion(cx, cy, s.rng, &s.particles)
	s.audio.PlaySound(config.SoundExplosion, config.VolumePlayerHit)
	e.MarkDestroyed()

	if !s.player.TakeDamage() || s.player.Lives > 0 {
		return
	}
	s.gameOver = true
	s.audio.PlaySound(config.SoundGameOver, config.VolumeGameOver)
	px, py := s.player.Center()
	object.SpawnBigExplosion(px, py, s.rng, &s.particles)
	s.log.Info("Game over", "level", s.level, "score", s.score, "highScore", s.highScore)
}

// addScore adds points and persists a new high score.
func (s *Simulation) addScore(points int) {
	s.score += points
	if s.score <= s.highScore {
		return
	}
	s.highScore = s.score
	if s.store == nil {
		return
	}
	if err := s.store.Save(s.highScore); err != nil {
		s.log.Warn("Failed to save high score", "err", err)
	}
}

// compact drops inactive entities and faded particles.
func (s *Simulation) compact() {
	entities := s.entities[:0]
	for _, e := range s.entities {
		if !object.BodyOf(e).IsDestroyed() {
			entities = append(entities, e)
		}
	}
	clear(s.entities[len(entities):])
	s.entities = entities

	particles := s.particles[:0]
	for _, p := range s.particles {
		if !p.IsDestroyed() {
			particles = append(particles, p)
		} else {
			p.Release()
		}
	}
	clear(s.particles[len(particles):])
	s.particles = particles
}

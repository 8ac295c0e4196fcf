package game

import (
	"github.com/tomz197/spacedefender/internal/loop/config"
	"github.com/tomz197/spacedefender/internal/object"
)

// Input is the per-frame state of the keys that steer the ship.
type Input struct {
	Left  bool
	Right bool
	Fire  bool
}

// HandleInput applies held keys to the player. Input is ignored between
// levels and after game over.
func (s *Simulation) HandleInput(in Input) {
	if s.player == nil || s.gameOver || s.levelComplete {
		return
	}

	s.player.Steer(in.Left, in.Right)

	if !in.Fire {
		return
	}
	b := s.player.Shoot()
	if b == nil {
		return
	}
	s.entities = append(s.entities, b)
	object.SpawnMuzzleFlash(s.player.X+s.player.W/2, s.player.Y, s.rng, &s.particles)
	s.audio.PlaySound(config.SoundShoot, config.VolumeShoot)
}

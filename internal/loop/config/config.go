// Package config centralizes all tunable game parameters.
package config

import "time"

// Field dimensions - the logical play area in engine units.
// Actual rendering scales to fit the terminal, window or browser canvas.
const (
	FieldWidth  = 960
	FieldHeight = 540
	FieldMargin = 20 // Horizontal inset the player ship is clamped to
	BulletSlack = 20 // Distance past the top/bottom edge before a bullet expires
)

// Levels
const (
	LevelSeconds      = 40.0            // Countdown per level
	LevelAdvanceDelay = 3 * time.Second // Wall-clock pause before the next level starts
	TimeBonusPerTenth = 1               // Points per tenth of a second left on the countdown
)

// Spawning
const (
	SpawnIntervalBase  = 2.0  // Seconds between spawns on level 1
	SpawnIntervalStep  = 0.15 // Reduction per level
	SpawnIntervalFloor = 0.3
	EnemySpeedPerLevel = 8.0 // Added to the base fall speed for every level
	EliteDriftMax      = 50.0
	EnemySpawnY        = -40.0
	EnemySpawnWidth    = 40.0 // Width reserved at the right edge when picking spawn x
)

// Enemy class thresholds for the single uniform draw on spawn.
const (
	EliteMinLevel       = 3
	EliteChance         = 0.15
	StrongMinLevel      = 2
	StrongChance        = 0.25
	StrongFallbackRatio = 0.10
)

// Player
const (
	PlayerStartOffsetX   = 25 // Half the ship width, subtracted from the field centre
	PlayerStartOffsetY   = 80 // Distance from the bottom of the field
	PlayerBlinkFrequency = 10.0
)

// Background
const (
	BackgroundScrollSpeed = 80.0 // Units per second
	StarCount             = 100
)

// Sound keys and volumes.
const (
	SoundShoot         = "shoot"
	SoundEnemyHit      = "enemy-hit"
	SoundExplosion     = "explosion"
	SoundGameOver      = "game-over"
	SoundLevelComplete = "level-complete"
	MusicBackground    = "background-music"

	VolumeShoot          = 0.3
	VolumeEnemyHit       = 0.5
	VolumeEnemyKilled    = 0.6
	VolumePlayerHit      = 0.7
	VolumeGameOver       = 0.8
	VolumeLevelComplete  = 0.8
	VolumeBackgroundLoop = 0.4
)

// Client rendering
const (
	ClientTargetFPS       = 60
	ClientTargetFrameTime = time.Second / ClientTargetFPS
	MaxFrameDelta         = 100 * time.Millisecond // Longer gaps (tab switch, stall) are clamped
	FallbackFrameDelta    = 16 * time.Millisecond
)

// Terminal sessions
const (
	IdleTimeout    = 3 * time.Minute  // SSH sessions without a key press are closed
	IdleWarnBefore = 15 * time.Second // Countdown shown before an idle disconnect
)

// Terminal view resolution in sub-pixels; the field is scaled down into it.
const (
	ViewWidth  = 160
	ViewHeight = 90
)

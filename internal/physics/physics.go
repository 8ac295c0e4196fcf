// Package physics provides collision detection and kinematic helpers.
package physics

// RectsOverlap checks if two axis-aligned rectangles overlap.
// Edges that only touch do not count as an overlap.
func RectsOverlap(ax, ay, aw, ah, bx, by, bw, bh float64) bool {
	return ax < bx+bw &&
		ax+aw > bx &&
		ay < by+bh &&
		ay+ah > by
}

// Clamp limits v to the range [lo, hi]. If hi < lo, lo wins.
func Clamp(v, lo, hi float64) float64 {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}

// Integrate advances a position by velocity over dt seconds.
func Integrate(x, y *float64, vx, vy, dt float64) {
	*x += vx * dt
	*y += vy * dt
}

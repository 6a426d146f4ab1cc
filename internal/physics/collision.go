package physics

import "math"

// Collide resolves an overlap between two circles. The bodies are pushed
// apart along the contact normal in proportion to their inverse masses,
// then, unless they are already separating, a restitution impulse is
// exchanged along the normal. It reports whether the bodies overlapped.
func Collide(a, b *Body, restitution float64) bool {
	dx := b.X - a.X
	dy := b.Y - a.Y
	minDist := a.Radius + b.Radius
	distSq := dx*dx + dy*dy
	if distSq >= minDist*minDist {
		return false
	}

	dist := math.Sqrt(distSq)
	var nx, ny float64
	switch {
	case dist == 0:
		// Coincident centres have no normal; separate along +x.
		nx, ny = 1, 0
	default:
		nx, ny = dx/dist, dy/dist
	}
	if dist < minSeparation {
		dist = minSeparation
	}

	invA, invB := 1/a.Mass, 1/b.Mass
	invSum := invA + invB

	if overlap := minDist - dist; overlap > 0 {
		a.X -= nx * overlap * invA / invSum
		a.Y -= ny * overlap * invA / invSum
		b.X += nx * overlap * invB / invSum
		b.Y += ny * overlap * invB / invSum
	}

	velAlongNormal := (b.VX-a.VX)*nx + (b.VY-a.VY)*ny
	if velAlongNormal > 0 {
		return true
	}

	j := -(1 + restitution) * velAlongNormal / invSum
	a.VX -= j * nx * invA
	a.VY -= j * ny * invA
	b.VX += j * nx * invB
	b.VY += j * ny * invB
	return true
}

package physics

// Settle advances one settling tick: a strong homing spring with strong
// damping and no cursor or collision forces. When every body is within
// SettleEpsilon of home and moving slower than SettleEpsilon, all bodies
// are snapped exactly home at rest and Settle reports true. After
// MaxSettleTicks the snap happens regardless.
func (e *Engine) Settle() bool {
	p := &e.params
	maxX, maxY := e.Bounds()
	e.settleTicks++

	converged := true
	for i := range e.bodies {
		b := &e.bodies[i]

		b.VX = (b.VX + (b.HomeX-b.X)*p.SettleHoming) * p.SettleDamping
		b.VY = (b.VY + (b.HomeY-b.Y)*p.SettleHoming) * p.SettleDamping
		b.X += b.VX
		b.Y += b.VY
		contain(b, maxX, maxY, p.Bounce)

		if p.Rotation {
			torque := wrapAngle(-b.Rotation) * p.SettleTorque
			b.AngularVelocity = (b.AngularVelocity + torque) * p.SettleAngularDamping
			b.Rotation = wrapAngle(b.Rotation + b.AngularVelocity)
		}

		if converged && (b.DistanceHome() > p.SettleEpsilon || b.Speed() > p.SettleEpsilon) {
			converged = false
		}
	}

	if converged || (p.MaxSettleTicks > 0 && e.settleTicks >= p.MaxSettleTicks) {
		e.Pin()
		return true
	}
	return false
}

// SettleTicks returns the number of settling ticks since the last pin or
// activation.
func (e *Engine) SettleTicks() int {
	return e.settleTicks
}

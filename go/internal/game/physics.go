package game

import "math/rand/v2"

// StepResult reports what happened during one tick.
type StepResult struct {
	Scored bool
	Scorer Team
	Hits   []Slot
}

// Step advances the simulation by one tick. Only paddles listed in occupied
// take part in collisions; empty slots have no collidable paddle.
func Step(s *State, occupied []Slot, rng *rand.Rand) StepResult {
	var res StepResult
	b := &s.Ball

	b.X += b.VX
	b.Y += b.VY

	if b.Y-b.Radius <= 0 || b.Y+b.Radius >= FieldHeight {
		b.VY = -b.VY
		b.Y = max(b.Radius, min(FieldHeight-b.Radius, b.Y))
	}

	for _, slot := range occupied {
		p, ok := s.Paddles[slot]
		if !ok {
			continue
		}
		if overlaps(*b, *p) {
			bounce(b, *p)
			res.Hits = append(res.Hits, slot)
		}
	}

	switch {
	case b.X-b.Radius <= 0:
		s.Score.Add(TeamRight)
		b.Reset(TeamLeft, rng)
		res.Scored, res.Scorer = true, TeamRight
	case b.X+b.Radius >= FieldWidth:
		s.Score.Add(TeamLeft)
		b.Reset(TeamRight, rng)
		res.Scored, res.Scorer = true, TeamLeft
	}
	return res
}

// overlaps is strict on all four edges; a ball exactly touching a face is
// caught on the following tick.
func overlaps(b Ball, p Paddle) bool {
	return b.X-b.Radius < p.X+p.Width &&
		b.X+b.Radius > p.X &&
		b.Y+b.Radius > p.Y &&
		b.Y-b.Radius < p.Y+p.Height
}

// bounce reverses the horizontal direction and speeds the ball up on both
// axes. The vertical component keeps its sign: only vx is negated.
func bounce(b *Ball, p Paddle) {
	b.VX *= -BounceMultiplier
	b.VY *= BounceMultiplier

	hitPos := (b.Y - p.Y) / p.Height
	b.VY += (hitPos - 0.5) * SpinFactor

	if p.Team == TeamLeft {
		b.X = p.X + p.Width + b.Radius
	} else {
		b.X = p.X - b.Radius
	}
}

// Reset centres the ball and serves it towards the given side with a random
// vertical component.
func (b *Ball) Reset(towards Team, rng *rand.Rand) {
	b.X = FieldWidth / 2
	b.Y = FieldHeight / 2
	b.Speed = BallSpeed
	b.VX = BallSpeed
	if towards == TeamLeft {
		b.VX = -BallSpeed
	}
	b.VY = (rng.Float64() - 0.5) * ServeSpread
}

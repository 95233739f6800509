package game

import "math"

// Team is one side of the court.
type Team string

const (
	TeamLeft  Team = "left"
	TeamRight Team = "right"
)

// Slot is one of the four fixed paddle identities a connection can occupy.
type Slot string

const (
	Left1  Slot = "left1"
	Left2  Slot = "left2"
	Right1 Slot = "right1"
	Right2 Slot = "right2"
)

// Rotation is the order free slots are handed out in. Sides alternate so a
// partially filled roster stays balanced.
var Rotation = [4]Slot{Left1, Right1, Left2, Right2}

// Team returns the side a slot plays for.
func (s Slot) Team() Team {
	switch s {
	case Left1, Left2:
		return TeamLeft
	default:
		return TeamRight
	}
}

// Valid reports whether s is one of the four known slots.
func (s Slot) Valid() bool {
	switch s {
	case Left1, Left2, Right1, Right2:
		return true
	}
	return false
}

type Ball struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	VX     float64 `json:"vx"`
	VY     float64 `json:"vy"`
	Radius float64 `json:"radius"`
	Speed  float64 `json:"speed"`
}

type Paddle struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Team   Team    `json:"team"`
}

// MoveTo sets the paddle's vertical offset, clamped to the field.
func (p *Paddle) MoveTo(y float64) {
	if math.IsNaN(y) {
		return
	}
	p.Y = ClampPaddleY(y)
}

// ClampPaddleY limits y to [0, FieldHeight-PaddleHeight].
func ClampPaddleY(y float64) float64 {
	return math.Max(0, math.Min(FieldHeight-PaddleHeight, y))
}

type Score struct {
	Left  int `json:"left"`
	Right int `json:"right"`
}

// Add credits one point to team.
func (s *Score) Add(team Team) {
	if team == TeamLeft {
		s.Left++
		return
	}
	s.Right++
}

// Winner returns the team that has reached target, if any. Left is checked first.
func (s Score) Winner(target int) (Team, bool) {
	switch {
	case s.Left >= target:
		return TeamLeft, true
	case s.Right >= target:
		return TeamRight, true
	}
	return "", false
}

// State is the simulated part of a session.
type State struct {
	Ball    Ball
	Paddles map[Slot]*Paddle
	Score   Score
}

// NewState returns a centred ball with the opening velocity and the four
// paddles at their home positions.
func NewState() *State {
	return &State{
		Ball: Ball{
			X:      FieldWidth / 2,
			Y:      FieldHeight / 2,
			VX:     BallSpeed,
			VY:     6,
			Radius: BallRadius,
			Speed:  BallSpeed,
		},
		Paddles: DefaultPaddles(),
	}
}

// DefaultPaddles builds the four paddles at their home positions.
func DefaultPaddles() map[Slot]*Paddle {
	rightX := FieldWidth - PaddleInset - PaddleWidth
	top, bottom := 170.0, 710.0
	return map[Slot]*Paddle{
		Left1:  {X: PaddleInset, Y: top, Width: PaddleWidth, Height: PaddleHeight, Team: TeamLeft},
		Left2:  {X: PaddleInset, Y: bottom, Width: PaddleWidth, Height: PaddleHeight, Team: TeamLeft},
		Right1: {X: rightX, Y: top, Width: PaddleWidth, Height: PaddleHeight, Team: TeamRight},
		Right2: {X: rightX, Y: bottom, Width: PaddleWidth, Height: PaddleHeight, Team: TeamRight},
	}
}

// PaddleValues copies the paddles so they can be handed to another goroutine.
func (s *State) PaddleValues() map[Slot]Paddle {
	out := make(map[Slot]Paddle, len(s.Paddles))
	for slot, p := range s.Paddles {
		out[slot] = *p
	}
	return out
}

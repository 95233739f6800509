package game

// Field and simulation constants. Units are pixels and ticks.
const (
	FieldWidth  = 1920.0
	FieldHeight = 1080.0

	BallRadius = 20.0
	BallSpeed  = 10.0
	// A served ball gets a vertical component in [-ServeSpread/2, ServeSpread/2).
	ServeSpread = 12.0

	PaddleWidth  = 30.0
	PaddleHeight = 200.0
	PaddleInset  = 40.0 // distance of the left paddles from the left edge

	BounceMultiplier = 1.08 // applied to both axes on every paddle hit
	SpinFactor       = 10.0

	TargetScore = 10
	TickRate    = 60 // physics steps per second
)

package sim

const (
	// DefaultTimeStep is the fixed physics step.
	DefaultTimeStep = 1.0 / 60
	// DefaultMaxFrame caps how much wall time one frame may feed the accumulator.
	DefaultMaxFrame = 0.05
)

// Stepper turns variable frame times into fixed physics steps. Frame time above MaxFrame is dropped
// so a stalled frame cannot trigger a burst of catch-up steps.
type Stepper struct {
	TimeStep float64
	MaxFrame float64
	acc      float64
}

// NewStepper returns a stepper; non-positive arguments fall back to the defaults.
func NewStepper(timeStep, maxFrame float64) Stepper {
	if timeStep <= 0 {
		timeStep = DefaultTimeStep
	}
	if maxFrame <= 0 {
		maxFrame = DefaultMaxFrame
	}
	return Stepper{TimeStep: timeStep, MaxFrame: maxFrame}
}

// Advance feeds frameDt into the accumulator and calls step(TimeStep) for every whole step it holds.
// It returns the number of steps taken.
func (s *Stepper) Advance(frameDt float64, step func(dt float64)) int {
	if frameDt <= 0 || s.TimeStep <= 0 {
		return 0
	}
	s.acc += min(frameDt, s.MaxFrame)
	n := 0
	for s.acc >= s.TimeStep {
		step(s.TimeStep)
		s.acc -= s.TimeStep
		n++
	}
	return n
}

// Pending is the accumulated time not yet consumed by a step.
func (s *Stepper) Pending() float64 { return s.acc }

// Reset drops any accumulated time.
func (s *Stepper) Reset() { s.acc = 0 }

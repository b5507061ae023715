// Package calculator implements the step-by-step logistics cost dialogue.
//
// A session is a Step: one of five variants, each carrying only the answers
// collected so far. Advance applies one user message to a Step and reports the
// resulting Transition; it never performs I/O.
package calculator

// Step is the in-progress state of a calculator session.
type Step interface {
	// Index is the zero-based position of the step in the dialogue.
	Index() int
	// Name identifies the step in logs.
	Name() string

	isStep()
}

// AwaitOrigin waits for the pickup location.
type AwaitOrigin struct{}

// AwaitDestination waits for the delivery location.
type AwaitDestination struct {
	From string
}

// AwaitWeight waits for the cargo weight in kilograms.
type AwaitWeight struct {
	From string
	To   string
}

// AwaitVolume waits for the cargo volume in cubic metres.
type AwaitVolume struct {
	From   string
	To     string
	Weight float64
}

// AwaitPlaces waits for the number of pieces.
type AwaitPlaces struct {
	From   string
	To     string
	Weight float64
	Volume float64
}

func (AwaitOrigin) Index() int      { return 0 }
func (AwaitDestination) Index() int { return 1 }
func (AwaitWeight) Index() int      { return 2 }
func (AwaitVolume) Index() int      { return 3 }
func (AwaitPlaces) Index() int      { return 4 }

func (AwaitOrigin) Name() string      { return "await_origin" }
func (AwaitDestination) Name() string { return "await_destination" }
func (AwaitWeight) Name() string      { return "await_weight" }
func (AwaitVolume) Name() string      { return "await_volume" }
func (AwaitPlaces) Name() string      { return "await_places" }

func (AwaitOrigin) isStep()      {}
func (AwaitDestination) isStep() {}
func (AwaitWeight) isStep()      {}
func (AwaitVolume) isStep()      {}
func (AwaitPlaces) isStep()      {}

// Start returns the first step of a fresh session.
func Start() Step { return AwaitOrigin{} }

// Quote is the complete set of answers for one calculation.
type Quote struct {
	From   string
	To     string
	Weight float64
	Volume float64
	Places int
}

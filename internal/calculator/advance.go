package calculator

import "fmt"

// BackLabel is the reply button that moves the dialogue one step back.
const BackLabel = "Назад"

// Outcome classifies a Transition.
type Outcome int

const (
	// OutcomeNext moves to Transition.Next.
	OutcomeNext Outcome = iota
	// OutcomeReprompt keeps the current step because the input did not parse.
	OutcomeReprompt
	// OutcomeComplete finishes the dialogue with Transition.Quote.
	OutcomeComplete
	// OutcomeExit leaves the dialogue without a quote.
	OutcomeExit
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNext:
		return "next"
	case OutcomeReprompt:
		return "reprompt"
	case OutcomeComplete:
		return "complete"
	case OutcomeExit:
		return "exit"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Transition is the result of applying one message to a Step.
// Next is set for OutcomeNext and OutcomeReprompt, Quote for OutcomeComplete.
type Transition struct {
	Outcome Outcome
	Next    Step
	Quote   Quote
}

func next(s Step) Transition     { return Transition{Outcome: OutcomeNext, Next: s} }
func reprompt(s Step) Transition { return Transition{Outcome: OutcomeReprompt, Next: s} }

// Advance applies input to step. The back label is handled here as well, so
// callers only branch on the Outcome.
func Advance(step Step, input string) Transition {
	if input == BackLabel {
		return Back(step)
	}
	switch s := step.(type) {
	case AwaitOrigin:
		return next(AwaitDestination{From: input})
	case AwaitDestination:
		return next(AwaitWeight{From: s.From, To: input})
	case AwaitWeight:
		w, ok := ParseNumber(input)
		if !ok {
			return reprompt(s)
		}
		return next(AwaitVolume{From: s.From, To: s.To, Weight: w})
	case AwaitVolume:
		v, ok := ParseNumber(input)
		if !ok {
			return reprompt(s)
		}
		return next(AwaitPlaces{From: s.From, To: s.To, Weight: s.Weight, Volume: v})
	case AwaitPlaces:
		n, ok := ParseCount(input)
		if !ok {
			return reprompt(s)
		}
		return Transition{
			Outcome: OutcomeComplete,
			Quote:   Quote{From: s.From, To: s.To, Weight: s.Weight, Volume: s.Volume, Places: n},
		}
	}
	return Transition{Outcome: OutcomeExit}
}

// Back returns the previous step, keeping the answers valid there.
// From the first step it exits the dialogue.
func Back(step Step) Transition {
	switch s := step.(type) {
	case AwaitDestination:
		return next(AwaitOrigin{})
	case AwaitWeight:
		return next(AwaitDestination{From: s.From})
	case AwaitVolume:
		return next(AwaitWeight{From: s.From, To: s.To})
	case AwaitPlaces:
		return next(AwaitVolume{From: s.From, To: s.To, Weight: s.Weight})
	}
	return Transition{Outcome: OutcomeExit}
}

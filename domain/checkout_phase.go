package domain

// Step is the index of a form step shown to the user.
type Step int

const (
	StepAddress Step = iota
	StepPayment
	StepReview
)

// Phase is the state of the checkout step controller.
type Phase string

const (
	PhaseAddress    Phase = "ADDRESS"
	PhasePayment    Phase = "PAYMENT"
	PhaseReview     Phase = "REVIEW"
	PhaseSubmitting Phase = "SUBMITTING"
	PhaseCompleted  Phase = "COMPLETED"
	PhaseFailed     Phase = "FAILED"
)

var transitions = map[Phase][]Phase{
	PhaseAddress:    {PhasePayment},
	PhasePayment:    {PhaseAddress, PhaseReview},
	PhaseReview:     {PhasePayment, PhaseSubmitting, PhaseFailed},
	PhaseSubmitting: {PhaseCompleted, PhaseFailed},
	PhaseFailed:     {PhasePayment, PhaseReview, PhaseSubmitting, PhaseFailed},
}

// CanTransitionTo reports whether the controller may move from one phase to another.
func CanTransitionTo(from, to Phase) bool {
	for _, p := range transitions[from] {
		if p == to {
			return true
		}
	}
	return false
}

// Step returns the form step the phase is displayed on. Submitting, completed
// and failed attempts all stay on the review step.
func (p Phase) Step() Step {
	switch p {
	case PhaseAddress:
		return StepAddress
	case PhasePayment:
		return StepPayment
	default:
		return StepReview
	}
}

func (p Phase) IsTerminal() bool {
	return p == PhaseCompleted
}

// String representation (for logging)
func (p Phase) String() string {
	return string(p)
}

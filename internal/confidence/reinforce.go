package confidence

import "github.com/Veraticus/invoice-memory/internal/memory"

// Base confidence deltas per outcome, before rating modulation. Failure
// deltas are kept strictly negative regardless of rating so invariant 6
// (spec §8.6) holds for every rating in the failure path.
const (
	deltaSuccessAuto        = 0.03
	deltaSuccessHumanReview = 0.05
	deltaFailedValidation   = -0.10
	deltaRejected           = -0.15

	// dissatisfiedSuccessDelta applies when a success outcome nonetheless
	// carries a low human satisfaction rating: the classification worked
	// but the human was unhappy with it, so confidence still erodes, just
	// not by more than the 0.05 bound invariant 5 allows.
	dissatisfiedSuccessDelta = -0.05

	highRatingBoost  = 1.2
	lowRatingPenalty = 1.3
)

// Reinforce maps an outcome and optional human satisfaction rating (1-5) to
// a confidence delta, returning clamp(c + delta, 0.1, 1.0). Deterministic:
// identical inputs always yield identical outputs.
func Reinforce(c float64, outcome Outcome, rating *int) float64 {
	delta := baseDelta(outcome)

	switch {
	case rating == nil:
		// absent rating: base delta stands.
	case *rating >= 4:
		delta *= highRatingBoost
	case *rating == 3:
		// neutral: base delta stands.
	default: // rating <= 2
		if outcome.isSuccess() {
			delta = dissatisfiedSuccessDelta
		} else {
			delta *= lowRatingPenalty
		}
	}

	return memory.ClampConfidence(c + delta)
}

func baseDelta(outcome Outcome) float64 {
	switch outcome {
	case SuccessAuto:
		return deltaSuccessAuto
	case SuccessHumanReview:
		return deltaSuccessHumanReview
	case FailedValidation:
		return deltaFailedValidation
	case Rejected:
		return deltaRejected
	default:
		return 0
	}
}

package confidence

// Outcome is the result of applying a memory to an invoice, as reported by
// the pipeline collaborator.
type Outcome string

// The four outcomes reinforce recognizes.
const (
	SuccessAuto        Outcome = "SuccessAuto"
	SuccessHumanReview Outcome = "SuccessHumanReview"
	FailedValidation   Outcome = "FailedValidation"
	Rejected           Outcome = "Rejected"
)

// isSuccess reports whether o is one of the two success outcomes.
func (o Outcome) isSuccess() bool {
	return o == SuccessAuto || o == SuccessHumanReview
}

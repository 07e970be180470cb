package confidence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func rating(r int) *int { return &r }

func TestReinforce_SuccessDoesNotDropMoreThanPoint05(t *testing.T) {
	tests := []struct {
		name    string
		outcome Outcome
		rating  *int
	}{
		{"success auto, no rating", SuccessAuto, nil},
		{"success human review, no rating", SuccessHumanReview, nil},
		{"success auto, rating 3", SuccessAuto, rating(3)},
		{"success human review, rating 5", SuccessHumanReview, rating(5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := 0.7
			got := Reinforce(c, tt.outcome, tt.rating)
			assert.GreaterOrEqual(t, got, c-0.05)
		})
	}
}

func TestReinforce_FailureStrictlyDecreases(t *testing.T) {
	tests := []struct {
		name    string
		outcome Outcome
		rating  *int
	}{
		{"failed validation, no rating", FailedValidation, nil},
		{"rejected, no rating", Rejected, nil},
		{"failed validation, rating 1", FailedValidation, rating(1)},
		{"rejected, rating 3", Rejected, rating(3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := 0.7
			got := Reinforce(c, tt.outcome, tt.rating)
			assert.Less(t, got, c)
		})
	}
}

func TestReinforce_ClampsToFloorAndCeiling(t *testing.T) {
	assert.Equal(t, 0.1, Reinforce(0.1, Rejected, nil))
	assert.LessOrEqual(t, Reinforce(0.99, SuccessHumanReview, rating(5)), 1.0)
}

func TestReinforce_Deterministic(t *testing.T) {
	a := Reinforce(0.55, FailedValidation, rating(2))
	b := Reinforce(0.55, FailedValidation, rating(2))
	assert.InDelta(t, a, b, 1e-4)
}

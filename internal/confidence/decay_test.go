package confidence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDecay_ZeroElapsedIsNoop(t *testing.T) {
	assert.Equal(t, 0.73, Decay(0.73, 0))
}

func TestDecay_NeverIncreases(t *testing.T) {
	c := 0.8
	assert.LessOrEqual(t, Decay(c, 24*time.Hour), c)
	assert.LessOrEqual(t, Decay(c, 365*24*time.Hour), c)
}

func TestDecay_Monotone(t *testing.T) {
	c := 0.9
	short := Decay(c, 10*24*time.Hour)
	long := Decay(c, 100*24*time.Hour)
	assert.GreaterOrEqual(t, short, long)
}

func TestDecay_AsymptoteAtFloor(t *testing.T) {
	got := Decay(1.0, 100*365*24*time.Hour)
	assert.GreaterOrEqual(t, got, 0.1)
	assert.InDelta(t, 0.1, got, 1e-3)
}

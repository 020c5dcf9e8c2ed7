package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(-0.1, 0, 1))
	assert.Equal(t, 1.0, Clamp(1.0000001, 0, 1))
	assert.Equal(t, 0.42, Clamp(0.42, 0, 1))
}

func TestRoundTo(t *testing.T) {
	assert.Equal(t, 12.3, RoundTo(12.34, 1))
	assert.Equal(t, 12.35, RoundTo(12.345001, 2))
}

func TestLerp(t *testing.T) {
	assert.Equal(t, 15.0, Lerp(10, 20, 0.5))
	assert.Equal(t, 10.0, Lerp(10, 20, 0))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 33.3, Percent(1, 3))
	assert.Equal(t, 0.0, Percent(5, 0))
}

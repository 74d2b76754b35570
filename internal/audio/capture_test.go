package audio

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelSilence(t *testing.T) {
	rms, db := Level(make([]int16, 512))
	assert.Equal(t, 0.0, rms)
	assert.Equal(t, -100.0, db)

	rms, db = Level(nil)
	assert.Equal(t, 0.0, rms)
	assert.Equal(t, -100.0, db)
}

func TestLevelFullScaleSquare(t *testing.T) {
	samples := make([]int16, 256)
	for i := range samples {
		if i%2 == 0 {
			samples[i] = math.MaxInt16
		} else {
			samples[i] = -math.MaxInt16
		}
	}
	rms, db := Level(samples)
	assert.InDelta(t, 1.0, rms, 1e-9)
	assert.InDelta(t, 0.0, db, 1e-6)
}

func TestToInt16Clips(t *testing.T) {
	assert.Equal(t, int16(math.MaxInt16), ToInt16(2))
	assert.Equal(t, int16(-math.MaxInt16), ToInt16(-2))
	assert.Equal(t, int16(0), ToInt16(0))
}

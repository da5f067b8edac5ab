package revenue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplit(t *testing.T) {
	s := Split(10000)
	assert.Equal(t, int64(8500), s.Owner)
	assert.Equal(t, int64(1500), s.Platform)

	for _, gross := range []int64{0, 1, 3, 7, 99, 12345, 999999} {
		s := Split(gross)
		assert.Equal(t, gross, s.Owner+s.Platform, "parts must add up for %d", gross)
	}
}

func TestAvailable(t *testing.T) {
	assert.Equal(t, int64(8500), Available(10000, 0))
	assert.Equal(t, int64(0), Available(10000, 8500))
	assert.Equal(t, int64(-1), Available(10000, 8501))
}

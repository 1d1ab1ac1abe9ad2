package astm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrameNumber(t *testing.T) {
	want := []int{1, 2, 3, 4, 5, 6, 7, 0, 1, 2, 3, 4, 5, 6, 7, 0, 1}
	for i, n := range want {
		assert.Equal(t, n, FrameNumber(i), "index %d", i)
	}

	assert.Equal(t, 0, FrameNumber(-1))
	assert.Equal(t, 7, FrameNumber(-2))
}

func TestEncodeConfig(t *testing.T) {
	def := DefaultEncodeConfig()
	assert.True(t, def.IncludeLeadInChecksum)
	assert.True(t, def.IncludeSequenceNumbers)
	assert.Zero(t, def.MaxFrameSize)
	assert.False(t, def.Splitting())

	cfg := NewEncodeConfig(
		WithLeadInChecksum(false),
		WithSequenceNumbers(false),
		WithMaxFrameSize(StandardFrameSize),
	)
	assert.False(t, cfg.IncludeLeadInChecksum)
	assert.False(t, cfg.IncludeSequenceNumbers)
	assert.Equal(t, 240, cfg.MaxFrameSize)
	assert.True(t, cfg.Splitting())
}

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeriesAt(t *testing.T) {
	s := Series{
		Timestamps:   []string{"t1", "t2"},
		TDS:          []float64{1, 2},
		Conductivity: []float64{10, 20},
		Hardness:     []float64{100, 200},
	}

	r, ok := s.At(1)
	assert.True(t, ok)
	assert.Equal(t, Reading{Timestamp: "t2", TDS: 2, Conductivity: 20, Hardness: 200}, r)

	_, ok = s.At(2)
	assert.False(t, ok)
	_, ok = s.At(-1)
	assert.False(t, ok)

	latest, ok := s.Latest()
	assert.True(t, ok)
	assert.Equal(t, "t2", latest.Timestamp)
}

func TestEmptySeriesHasNoLatest(t *testing.T) {
	s := EmptySeries()
	assert.Equal(t, 0, s.Len())
	assert.NotNil(t, s.TDS)

	_, ok := s.Latest()
	assert.False(t, ok)
}

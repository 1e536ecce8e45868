package rng

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromDateDeterminism(t *testing.T) {
	a := FromDate("2024-03-01", "daily")
	b := FromDate("2024-03-01", "daily")

	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Float64(), b.Float64(), "sequence diverged at step %d", i)
	}
}

func TestFromDateSaltIndependence(t *testing.T) {
	a := FromDate("2024-03-01", "daily")
	b := FromDate("2024-03-01", "weekly")

	// Streams for different salts should diverge immediately.
	assert.NotEqual(t, a.Float64(), b.Float64())
}

func TestFloat64Range(t *testing.T) {
	s := FromDate("2024-01-15", "")
	for i := 0; i < 1000; i++ {
		v := s.Float64()
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}
}

func TestShuffleDeterminism(t *testing.T) {
	order := func() []int {
		s := FromDate("2024-06-01", "variety")
		vals := []int{0, 1, 2, 3, 4, 5, 6, 7}
		s.Shuffle(len(vals), func(i, j int) { vals[i], vals[j] = vals[j], vals[i] })
		return vals
	}

	first := order()
	second := order()
	assert.Equal(t, first, second)
}

func TestWeightedIndex(t *testing.T) {
	tests := []struct {
		name    string
		weights []float64
		wantOK  bool
	}{
		{"single item", []float64{5}, true},
		{"several items", []float64{1, 2, 3}, true},
		{"empty pool", nil, false},
		{"all zero weight", []float64{0, 0}, false},
		{"negative weights excluded", []float64{-1, 0, 2}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := FromDate("2024-03-01", tt.name)
			idx, ok := WeightedIndex(s, len(tt.weights), func(i int) float64 { return tt.weights[i] })
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				require.GreaterOrEqual(t, idx, 0)
				require.Less(t, idx, len(tt.weights))
				assert.Greater(t, tt.weights[idx], 0.0, "picked an excluded item")
			} else {
				assert.Equal(t, -1, idx)
			}
		})
	}
}

func TestWeightedIndexSkewsTowardHeavyItems(t *testing.T) {
	s := NewSource(42)
	counts := make([]int, 2)
	weights := []float64{1, 9}

	for i := 0; i < 2000; i++ {
		idx, ok := WeightedIndex(s, 2, func(i int) float64 { return weights[i] })
		require.True(t, ok)
		counts[idx]++
	}

	assert.Greater(t, counts[1], counts[0]*3, "heavy item should dominate: %v", counts)
}

func TestIntnPanicsOnNonPositive(t *testing.T) {
	s := NewSource(1)
	assert.Panics(t, func() { s.Intn(0) })
}

package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineSimilarityIdentical(t *testing.T) {
	v := []float64{0.2, 0.4, 0.6}
	assert.InDelta(t, 1.0, CosineSimilarity(v, v), 1e-9)
}

func TestCosineSimilarityOrthogonal(t *testing.T) {
	assert.InDelta(t, 0.0, CosineSimilarity([]float64{1, 0}, []float64{0, 1}), 1e-9)
}

func TestCosineSimilarityScaleInvariant(t *testing.T) {
	a := []float64{0.3, 0.1, 0.8}
	b := []float64{0.5, 0.9, 0.2}
	scaled := make([]float64, len(b))
	for i, x := range b {
		scaled[i] = 7.5 * x
	}
	assert.InDelta(t, CosineSimilarity(a, b), CosineSimilarity(a, scaled), 1e-9)
}

func TestCosineSimilarityDegenerate(t *testing.T) {
	assert.Equal(t, 0.0, CosineSimilarity(nil, nil))
	assert.Equal(t, 0.0, CosineSimilarity([]float64{1, 2}, []float64{1, 2, 3}))
	assert.Equal(t, 0.0, CosineSimilarity([]float64{0, 0}, []float64{1, 1}))
}

func TestBestPicksHighestScore(t *testing.T) {
	templates := map[string][]float64{
		"S1_Bob":        {1, 0, 0},
		"S2_Carol":      {0, 1, 0},
		"prof_P1_Alice": {0, 0, 1},
	}
	match, err := Best([]float64{0.1, 0.9, 0.05}, templates)
	require.NoError(t, err)
	assert.Equal(t, "S2_Carol", match.Label)
	assert.Greater(t, match.Similarity, 0.9)
}

func TestBestEmptyTemplates(t *testing.T) {
	_, err := Best([]float64{1, 0}, map[string][]float64{})
	assert.ErrorIs(t, err, ErrNoTemplates)
}

func TestBestTieDeterministic(t *testing.T) {
	templates := map[string][]float64{
		"S2_Carol": {1, 0},
		"S1_Bob":   {1, 0},
	}
	for i := 0; i < 10; i++ {
		match, err := Best([]float64{2, 0}, templates)
		require.NoError(t, err)
		assert.Equal(t, "S1_Bob", match.Label)
	}
}

// Package matcher implements nearest-template identity resolution over
// normalized embedding vectors.
package matcher

import (
	"errors"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/bala2207022/face-attendance/internal/models"
)

// ErrNoTemplates reports an empty template set. Callers must treat it as
// "model not trained", not as a failed recognition.
var ErrNoTemplates = errors.New("no templates registered")

// CosineSimilarity computes the cosine of the angle between two vectors.
// Both sides are re-normalized even when they are already unit-length,
// so the result is invariant to positive scalar scaling of either input.
// Zero-length or mismatched vectors score 0.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	na := floats.Norm(a, 2)
	nb := floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	return floats.Dot(a, b) / (na * nb)
}

// Best returns the single highest-scoring label for the probe. Exact
// ties resolve to the lexicographically first label, so repeated calls
// with the same inputs pick the same winner.
func Best(probe []float64, templates map[string][]float64) (models.Match, error) {
	if len(templates) == 0 {
		return models.Match{}, ErrNoTemplates
	}

	labels := make([]string, 0, len(templates))
	for label := range templates {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	best := models.Match{Similarity: -1}
	for _, label := range labels {
		if s := CosineSimilarity(probe, templates[label]); s > best.Similarity {
			best = models.Match{Label: label, Similarity: s}
		}
	}
	return best, nil
}

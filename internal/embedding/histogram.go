package embedding

import (
	"bytes"
	"context"
	"image"
	"math"

	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
)

const histogramSize = 128

// HistogramExtractor is the fallback used when no extractor sidecar is
// available: grayscale, resize to a fixed grid, flatten and L2-normalize.
// The result is a coarse image descriptor, not a face embedding, but it
// keeps enrollment and matching flows working end to end.
type HistogramExtractor struct{}

// NewHistogramExtractor builds the fallback extractor.
func NewHistogramExtractor() *HistogramExtractor {
	return &HistogramExtractor{}
}

// Name identifies the implementation in logs.
func (e *HistogramExtractor) Name() string {
	return "histogram-fallback"
}

// Extract decodes the image and produces the normalized pixel vector.
// Returns ErrNoFaceDetected for undecodable or blank images so callers
// see the same outcome surface as the remote extractor.
func (e *HistogramExtractor) Extract(_ context.Context, data []byte) ([]float64, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ErrNoFaceDetected
	}

	gray := image.NewGray(image.Rect(0, 0, histogramSize, histogramSize))
	draw.BiLinear.Scale(gray, gray.Bounds(), src, src.Bounds(), draw.Src, nil)

	vec := make([]float64, histogramSize*histogramSize)
	var norm float64
	for i, px := range gray.Pix {
		v := float64(px) / 255.0
		vec[i] = v
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm <= 1e-6 {
		return nil, ErrNoFaceDetected
	}
	for i := range vec {
		vec[i] /= norm
	}
	return vec, nil
}

// Package embedding provides the extractor capability the core depends
// on: given an image, produce a fixed-length normalized vector for the
// most prominent detected face.
package embedding

import (
	"context"
	"errors"
)

// ErrNoFaceDetected is returned when the extractor finds no face in the
// image. The core takes no action on it; nothing is recorded.
var ErrNoFaceDetected = errors.New("no face detected")

// Extractor converts an image into an embedding vector.
type Extractor interface {
	Extract(ctx context.Context, image []byte) ([]float64, error)
	// Name identifies the implementation in logs.
	Name() string
}

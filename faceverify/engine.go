package faceverify

import (
	"context"
	"image"
)

// DetectionMode selects the speed/accuracy trade-off of the cascade scan.
type DetectionMode string

const (
	ModeFast     DetectionMode = "fast"
	ModeAccurate DetectionMode = "accurate"
)

// Face is one detected face region with the detector's quality score.
type Face struct {
	Rect    image.Rectangle
	Quality float32
}

// Engine abstracts the face detection and embedding backend so the
// verifier can be exercised with a stub and the production cascade can be
// swapped without touching workflow code.
type Engine interface {
	// DetectFaces returns all face regions found in the image, best
	// quality first.
	DetectFaces(ctx context.Context, img image.Image) ([]Face, error)

	// ExtractEmbedding produces a fixed-length vector describing the face
	// region, comparable across images via Euclidean distance.
	ExtractEmbedding(img image.Image, face Face) ([]float64, error)
}

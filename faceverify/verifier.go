package faceverify

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// DefaultTolerance is the maximum embedding distance still accepted as a
// match. The reported confidence is informational (1 - distance, floored
// at zero); the tolerance alone gates the boolean outcome.
const DefaultTolerance = 0.6

// Result is the structured outcome of one photo comparison. Detection
// failures and missing inputs are reported here, not raised: they are
// frequent operational outcomes the operator UI must handle.
type Result struct {
	Verified           bool    `json:"verified"`
	Confidence         float64 `json:"confidence"`
	FaceDetectedLive   bool    `json:"face_detected_live"`
	FaceDetectedStored bool    `json:"face_detected_stored"`
	Error              string  `json:"error,omitempty"`
}

// Verifier compares a live registration photo against a stored reference
// photo. It is stateless: construct once with its engine and tolerance and
// share freely.
type Verifier struct {
	engine    Engine
	tolerance float64
}

func NewVerifier(engine Engine, tolerance float64) *Verifier {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return &Verifier{engine: engine, tolerance: tolerance}
}

// Verify returns the similarity verdict for two photo blobs (JPEG/PNG).
// A missing stored photo short-circuits before any decoding or detection.
// Cancellation of ctx (including deadline expiry) aborts the comparison
// and is reported through the Error field rather than hanging the caller.
func (v *Verifier) Verify(ctx context.Context, livePhoto, storedPhoto []byte) Result {
	if len(storedPhoto) == 0 {
		return Result{Error: "no stored photo provided"}
	}
	if len(livePhoto) == 0 {
		return Result{Error: "no live photo provided"}
	}

	done := make(chan Result, 1)
	go func() {
		done <- v.compare(ctx, livePhoto, storedPhoto)
	}()

	select {
	case res := <-done:
		return res
	case <-ctx.Done():
		return Result{Error: fmt.Sprintf("verification aborted: %v", ctx.Err())}
	}
}

func (v *Verifier) compare(ctx context.Context, livePhoto, storedPhoto []byte) Result {
	liveImg, err := imaging.Decode(bytes.NewReader(livePhoto))
	if err != nil {
		return Result{Error: fmt.Sprintf("could not decode live photo: %v", err)}
	}
	storedImg, err := imaging.Decode(bytes.NewReader(storedPhoto))
	if err != nil {
		return Result{Error: fmt.Sprintf("could not decode stored photo: %v", err)}
	}

	liveFace, res := v.detectOne(ctx, liveImg, "live")
	if res != nil {
		return *res
	}
	storedFace, res := v.detectOne(ctx, storedImg, "stored")
	if res != nil {
		res.FaceDetectedLive = true
		return *res
	}

	liveVec, err := v.engine.ExtractEmbedding(liveImg, *liveFace)
	if err != nil {
		return Result{
			FaceDetectedLive:   true,
			FaceDetectedStored: true,
			Error:              fmt.Sprintf("failed to embed live photo: %v", err),
		}
	}
	storedVec, err := v.engine.ExtractEmbedding(storedImg, *storedFace)
	if err != nil {
		return Result{
			FaceDetectedLive:   true,
			FaceDetectedStored: true,
			Error:              fmt.Sprintf("failed to embed stored photo: %v", err),
		}
	}

	distance, err := euclidean(liveVec, storedVec)
	if err != nil {
		return Result{
			FaceDetectedLive:   true,
			FaceDetectedStored: true,
			Error:              err.Error(),
		}
	}

	return Result{
		Verified:           distance <= v.tolerance,
		Confidence:         math.Max(0, 1-distance),
		FaceDetectedLive:   true,
		FaceDetectedStored: true,
	}
}

// detectOne finds the most prominent face in the image. A nil Result means
// success; otherwise it carries the zero-confidence failure naming the
// side that failed detection, and no embedding work happens for it.
func (v *Verifier) detectOne(ctx context.Context, img image.Image, side string) (*Face, *Result) {
	faces, err := v.engine.DetectFaces(ctx, img)
	if err != nil {
		return nil, &Result{Error: fmt.Sprintf("face detection failed on %s photo: %v", side, err)}
	}
	if len(faces) == 0 {
		return nil, &Result{Error: fmt.Sprintf("no face detected in %s photo", side)}
	}
	face := faces[0]
	return &face, nil
}

func euclidean(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("embedding length mismatch: %d vs %d", len(a), len(b))
	}
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum), nil
}

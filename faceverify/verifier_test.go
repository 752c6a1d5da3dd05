package faceverify

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"strings"
	"testing"
	"time"
)

// stubEngine scripts detection and embedding outcomes per call, in the
// order Verify invokes them: live first, then stored.
type stubEngine struct {
	faces      [][]Face
	embeddings [][]float64
	detectErr  error
	embedErr   error
	delay      time.Duration

	detectCalls int
	embedCalls  int
}

func (s *stubEngine) DetectFaces(ctx context.Context, img image.Image) ([]Face, error) {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	call := s.detectCalls
	s.detectCalls++
	if s.detectErr != nil {
		return nil, s.detectErr
	}
	if call < len(s.faces) {
		return s.faces[call], nil
	}
	return nil, nil
}

func (s *stubEngine) ExtractEmbedding(img image.Image, face Face) ([]float64, error) {
	call := s.embedCalls
	s.embedCalls++
	if s.embedErr != nil {
		return nil, s.embedErr
	}
	if call < len(s.embeddings) {
		return s.embeddings[call], nil
	}
	return nil, errors.New("no scripted embedding")
}

func onePixelPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 8, 8))); err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	return buf.Bytes()
}

func oneFace() []Face {
	return []Face{{Rect: image.Rect(0, 0, 8, 8), Quality: 10}}
}

func TestVerifyMissingStoredPhotoShortCircuits(t *testing.T) {
	engine := &stubEngine{}
	v := NewVerifier(engine, DefaultTolerance)

	res := v.Verify(context.Background(), onePixelPNG(t), nil)
	if res.Error != "no stored photo provided" {
		t.Errorf("error = %q", res.Error)
	}
	if res.Verified || res.FaceDetectedLive || res.FaceDetectedStored {
		t.Errorf("unexpected positive flags: %+v", res)
	}
	if engine.detectCalls != 0 {
		t.Errorf("engine invoked %d times before input validation", engine.detectCalls)
	}
}

func TestVerifyMissingLivePhoto(t *testing.T) {
	v := NewVerifier(&stubEngine{}, DefaultTolerance)
	res := v.Verify(context.Background(), nil, onePixelPNG(t))
	if res.Error != "no live photo provided" {
		t.Errorf("error = %q", res.Error)
	}
}

func TestVerifyUndecodablePhoto(t *testing.T) {
	v := NewVerifier(&stubEngine{}, DefaultTolerance)
	res := v.Verify(context.Background(), []byte("not an image"), onePixelPNG(t))
	if !strings.Contains(res.Error, "could not decode live photo") {
		t.Errorf("error = %q", res.Error)
	}
}

func TestVerifyNoFaceInLivePhoto(t *testing.T) {
	engine := &stubEngine{faces: [][]Face{nil, oneFace()}}
	v := NewVerifier(engine, DefaultTolerance)

	res := v.Verify(context.Background(), onePixelPNG(t), onePixelPNG(t))
	if res.Error != "no face detected in live photo" {
		t.Errorf("error = %q", res.Error)
	}
	if res.FaceDetectedLive {
		t.Error("live face flagged detected despite detection miss")
	}
	if engine.detectCalls != 1 {
		t.Errorf("detection ran %d times, want 1 (stored photo skipped)", engine.detectCalls)
	}
}

func TestVerifyNoFaceInStoredPhoto(t *testing.T) {
	engine := &stubEngine{faces: [][]Face{oneFace(), nil}}
	v := NewVerifier(engine, DefaultTolerance)

	res := v.Verify(context.Background(), onePixelPNG(t), onePixelPNG(t))
	if res.Error != "no face detected in stored photo" {
		t.Errorf("error = %q", res.Error)
	}
	if !res.FaceDetectedLive {
		t.Error("live detection success lost from the result")
	}
	if res.FaceDetectedStored {
		t.Error("stored face flagged detected despite detection miss")
	}
}

func TestVerifyIdenticalEmbeddingsMatch(t *testing.T) {
	vec := []float64{0.1, 0.5, 0.3}
	engine := &stubEngine{
		faces:      [][]Face{oneFace(), oneFace()},
		embeddings: [][]float64{vec, vec},
	}
	v := NewVerifier(engine, DefaultTolerance)

	res := v.Verify(context.Background(), onePixelPNG(t), onePixelPNG(t))
	if res.Error != "" {
		t.Fatalf("unexpected error: %s", res.Error)
	}
	if !res.Verified {
		t.Error("identical embeddings not verified")
	}
	if res.Confidence != 1 {
		t.Errorf("confidence = %v, want 1", res.Confidence)
	}
	if !res.FaceDetectedLive || !res.FaceDetectedStored {
		t.Errorf("detection flags lost: %+v", res)
	}
}

func TestVerifyDistantEmbeddingsRejected(t *testing.T) {
	engine := &stubEngine{
		faces:      [][]Face{oneFace(), oneFace()},
		embeddings: [][]float64{{1, 0, 0}, {0, 1, 1}},
	}
	v := NewVerifier(engine, DefaultTolerance)

	res := v.Verify(context.Background(), onePixelPNG(t), onePixelPNG(t))
	if res.Verified {
		t.Error("distance sqrt(3) verified at tolerance 0.6")
	}
	// 1 - sqrt(3) is negative, confidence floors at zero.
	if res.Confidence != 0 {
		t.Errorf("confidence = %v, want 0", res.Confidence)
	}
}

func TestVerifyDistanceAtToleranceStillMatches(t *testing.T) {
	engine := &stubEngine{
		faces:      [][]Face{oneFace(), oneFace()},
		embeddings: [][]float64{{0, 0}, {0.6, 0}},
	}
	v := NewVerifier(engine, 0.6)

	res := v.Verify(context.Background(), onePixelPNG(t), onePixelPNG(t))
	if !res.Verified {
		t.Error("distance equal to tolerance must still verify")
	}
}

func TestVerifyEmbeddingLengthMismatch(t *testing.T) {
	engine := &stubEngine{
		faces:      [][]Face{oneFace(), oneFace()},
		embeddings: [][]float64{{1, 2, 3}, {1, 2}},
	}
	v := NewVerifier(engine, DefaultTolerance)

	res := v.Verify(context.Background(), onePixelPNG(t), onePixelPNG(t))
	if !strings.Contains(res.Error, "embedding length mismatch") {
		t.Errorf("error = %q", res.Error)
	}
	if res.Verified {
		t.Error("mismatched embeddings verified")
	}
}

func TestVerifyContextCancellation(t *testing.T) {
	engine := &stubEngine{delay: time.Second, faces: [][]Face{oneFace(), oneFace()}}
	v := NewVerifier(engine, DefaultTolerance)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	res := v.Verify(ctx, onePixelPNG(t), onePixelPNG(t))
	if !strings.Contains(res.Error, "verification aborted") {
		t.Errorf("error = %q", res.Error)
	}
	if res.Verified {
		t.Error("aborted comparison verified")
	}
}

func TestNewVerifierDefaultsTolerance(t *testing.T) {
	engine := &stubEngine{
		faces:      [][]Face{oneFace(), oneFace()},
		embeddings: [][]float64{{0, 0}, {0.55, 0}},
	}
	v := NewVerifier(engine, 0)

	res := v.Verify(context.Background(), onePixelPNG(t), onePixelPNG(t))
	if !res.Verified {
		t.Errorf("distance 0.55 must pass the default tolerance, got %+v", res)
	}
}

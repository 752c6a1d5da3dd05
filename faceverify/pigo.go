package faceverify

import (
	"context"
	"fmt"
	"image"
	"math"
	"os"
	"sort"

	"github.com/disintegration/imaging"
	pigo "github.com/esimov/pigo/core"
)

// embeddingSide is the edge length of the normalized face patch; the
// embedding is its embeddingSide^2 grayscale vector.
const embeddingSide = 32

// minDetectionQuality filters out low-confidence cascade hits.
const minDetectionQuality = 5.0

type PigoEngine struct {
	classifier *pigo.Pigo
	mode       DetectionMode
}

// NewPigoEngine loads the binary cascade file and prepares a detector.
// The mode maps to the cascade's shift/scale factors: fast scans coarser,
// accurate scans denser and slower.
func NewPigoEngine(cascadePath string, mode DetectionMode) (*PigoEngine, error) {
	cascade, err := os.ReadFile(cascadePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read face cascade %s: %w", cascadePath, err)
	}

	classifier, err := pigo.NewPigo().Unpack(cascade)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack face cascade: %w", err)
	}

	if mode != ModeAccurate {
		mode = ModeFast
	}

	return &PigoEngine{classifier: classifier, mode: mode}, nil
}

func (e *PigoEngine) cascadeFactors() (shift, scale float64) {
	if e.mode == ModeAccurate {
		return 0.08, 1.05
	}
	return 0.15, 1.15
}

func (e *PigoEngine) DetectFaces(ctx context.Context, img image.Image) ([]Face, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src := pigo.ImgToNRGBA(img)
	pixels := pigo.RgbToGrayscale(src)
	cols, rows := src.Bounds().Dx(), src.Bounds().Dy()

	shift, scale := e.cascadeFactors()
	params := pigo.CascadeParams{
		MinSize:     20,
		MaxSize:     rows,
		ShiftFactor: shift,
		ScaleFactor: scale,
		ImageParams: pigo.ImageParams{
			Pixels: pixels,
			Rows:   rows,
			Cols:   cols,
			Dim:    cols,
		},
	}

	dets := e.classifier.RunCascade(params, 0.0)
	dets = e.classifier.ClusterDetections(dets, 0.2)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	faces := make([]Face, 0, len(dets))
	for _, d := range dets {
		if d.Q < minDetectionQuality {
			continue
		}
		half := d.Scale / 2
		faces = append(faces, Face{
			Rect:    image.Rect(d.Col-half, d.Row-half, d.Col+half, d.Row+half),
			Quality: d.Q,
		})
	}

	// Largest region first; the verifier compares the most prominent face
	// when a photo contains more than one.
	sort.Slice(faces, func(i, j int) bool {
		ai := faces[i].Rect.Dx() * faces[i].Rect.Dy()
		aj := faces[j].Rect.Dx() * faces[j].Rect.Dy()
		if ai != aj {
			return ai > aj
		}
		return faces[i].Quality > faces[j].Quality
	})

	return faces, nil
}

// ExtractEmbedding crops the face region, resizes it to a fixed grayscale
// patch and returns the zero-mean, unit-norm pixel vector. Two embeddings
// of the same person land close under Euclidean distance.
func (e *PigoEngine) ExtractEmbedding(img image.Image, face Face) ([]float64, error) {
	rect := face.Rect.Intersect(img.Bounds())
	if rect.Empty() {
		return nil, fmt.Errorf("face region %v lies outside the image bounds", face.Rect)
	}

	patch := imaging.Crop(img, rect)
	patch = imaging.Resize(patch, embeddingSide, embeddingSide, imaging.Lanczos)
	patch = imaging.Grayscale(patch)

	vec := make([]float64, 0, embeddingSide*embeddingSide)
	sum := 0.0
	for y := 0; y < embeddingSide; y++ {
		for x := 0; x < embeddingSide; x++ {
			r, _, _, _ := patch.At(x, y).RGBA()
			v := float64(r >> 8)
			vec = append(vec, v)
			sum += v
		}
	}

	mean := sum / float64(len(vec))
	norm := 0.0
	for i := range vec {
		vec[i] -= mean
		norm += vec[i] * vec[i]
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return nil, fmt.Errorf("face region has no contrast, cannot embed")
	}
	for i := range vec {
		vec[i] /= norm
	}

	return vec, nil
}

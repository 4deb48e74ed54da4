package detection

import (
	"image"

	"github.com/khaledhikmat/vs-detect/model"
)

// Suppressor is a non-max suppression primitive. It returns indices of the boxes to keep.
type Suppressor interface {
	Suppress(boxes []image.Rectangle, scores []float32, scoreThreshold, nmsThreshold float32) []int
}

// Suppress collapses overlapping candidates with the fixed thresholds. The primitive
// is not called for an empty candidate list.
func Suppress(s Suppressor, candidates []model.Candidate) []int {
	if len(candidates) == 0 {
		return nil
	}

	boxes := make([]image.Rectangle, len(candidates))
	scores := make([]float32, len(candidates))
	for i, c := range candidates {
		boxes[i] = c.Box.Rect()
		scores[i] = c.Confidence
	}

	return s.Suppress(boxes, scores, ConfidenceThreshold, NMSThreshold)
}

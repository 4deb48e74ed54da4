package pipeline

import (
	"image"

	"gocv.io/x/gocv"
)

// cvSuppressor delegates non-max suppression to OpenCV
type cvSuppressor struct{}

func (cvSuppressor) Suppress(boxes []image.Rectangle, scores []float32, scoreThreshold, nmsThreshold float32) []int {
	return gocv.NMSBoxes(boxes, scores, scoreThreshold, nmsThreshold)
}

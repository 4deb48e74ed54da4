// Package detection turns raw YOLO output rows into detections. It has no
// dependency on OpenCV; suppression is handed to a Suppressor.
package detection

import (
	"fmt"

	"github.com/khaledhikmat/vs-detect/model"
)

const (
	InputSize           = 416
	ScaleFactor         = 1.0 / 255.0
	ConfidenceThreshold = float32(0.5)
	NMSThreshold        = float32(0.4)

	// Row layout: cx, cy, w, h, objectness, class scores...
	ScoreOffset = 5
)

// Decode walks a flat row-major output of the given stride and keeps every row whose
// best class score is strictly above threshold. width and height are the original
// image dimensions.
func Decode(data []float32, stride, width, height int, threshold float32) ([]model.Candidate, error) {
	if stride <= ScoreOffset {
		return nil, fmt.Errorf("unexpected output row width %d", stride)
	}
	if len(data)%stride != 0 {
		return nil, fmt.Errorf("output size %d is not a multiple of row width %d", len(data), stride)
	}

	candidates := []model.Candidate{}
	for off := 0; off < len(data); off += stride {
		row := data[off : off+stride]
		classID, confidence := argmax(row[ScoreOffset:])
		if confidence <= threshold {
			continue
		}

		candidates = append(candidates, model.Candidate{
			Box:        toPixelBox(row, width, height),
			Confidence: confidence,
			ClassID:    classID,
		})
	}

	return candidates, nil
}

// argmax returns the first index holding the maximum score
func argmax(scores []float32) (int, float32) {
	id := 0
	best := scores[0]
	for j := 1; j < len(scores); j++ {
		if scores[j] > best {
			best = scores[j]
			id = j
		}
	}
	return id, best
}

func toPixelBox(row []float32, width, height int) model.Box {
	cx := int(row[0] * float32(width))
	cy := int(row[1] * float32(height))
	w := int(row[2] * float32(width))
	h := int(row[3] * float32(height))

	return model.Box{
		X:      int(float64(cx) - float64(w)/2),
		Y:      int(float64(cy) - float64(h)/2),
		Width:  w,
		Height: h,
	}
}

package detection

import (
	"fmt"
	"math"

	"github.com/khaledhikmat/vs-detect/model"
)

// Results maps surviving indices to labelled detections, in index order
func Results(candidates []model.Candidate, indices []int, labels []string) ([]model.Detection, error) {
	results := make([]model.Detection, 0, len(indices))
	for _, i := range indices {
		if i < 0 || i >= len(candidates) {
			return nil, fmt.Errorf("suppression returned index %d out of %d candidates", i, len(candidates))
		}

		c := candidates[i]
		if c.ClassID < 0 || c.ClassID >= len(labels) {
			return nil, fmt.Errorf("class id %d has no label (%d labels loaded)", c.ClassID, len(labels))
		}

		results = append(results, model.Detection{
			Label:      labels[c.ClassID],
			Confidence: Percent(c.Confidence),
		})
	}

	return results, nil
}

func Percent(score float32) int {
	return int(math.Round(float64(score) * 100))
}

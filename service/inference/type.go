package inference

import (
	"context"

	"github.com/khaledhikmat/vs-detect/model"
)

// IService runs object detection on an encoded image. Errors returned are
// *model.DetectError values so callers can tell client mistakes from failures.
type IService interface {
	Detect(ctx context.Context, image []byte) ([]model.Detection, error)
	Labels() []string
	Close() error
}

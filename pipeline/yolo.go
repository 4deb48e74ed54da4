package pipeline

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/khaledhikmat/vs-detect/detection"
	"github.com/khaledhikmat/vs-detect/model"
)

// yolo is one network instance. It is not safe for concurrent use.
type yolo struct {
	net         gocv.Net
	outputNames []string
	labels      []string
	suppressor  detection.Suppressor
}

func newYolo(a Assets, labels []string) (*yolo, error) {
	net, err := LoadNet(a)
	if err != nil {
		return nil, err
	}

	names := OutputLayerNames(&net)
	if len(names) == 0 {
		net.Close()
		return nil, fmt.Errorf("network %s has no output layers", a.Config)
	}

	return &yolo{
		net:         net,
		outputNames: names,
		labels:      labels,
		suppressor:  cvSuppressor{},
	}, nil
}

func (y *yolo) detect(img gocv.Mat) ([]model.Detection, error) {
	width, height := img.Cols(), img.Rows()

	blob := gocv.BlobFromImage(img, detection.ScaleFactor, image.Pt(detection.InputSize, detection.InputSize), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	y.net.SetInput(blob, "")

	outputs := y.net.ForwardLayers(y.outputNames)
	defer func() {
		for i := range outputs {
			outputs[i].Close()
		}
	}()

	candidates := []model.Candidate{}
	for i := range outputs {
		cands, err := decodeOutput(&outputs[i], width, height)
		if err != nil {
			return nil, fmt.Errorf("output layer %s: %w", y.outputNames[i], err)
		}
		candidates = append(candidates, cands...)
	}

	indices := detection.Suppress(y.suppressor, candidates)
	return detection.Results(candidates, indices, y.labels)
}

// decodeOutput reads a detection head whose last dimension is the row width
func decodeOutput(out *gocv.Mat, width, height int) ([]model.Candidate, error) {
	if out.Empty() {
		return []model.Candidate{}, nil
	}

	dims := out.Size()
	if len(dims) < 2 {
		return nil, fmt.Errorf("unexpected output dims: %v", dims)
	}

	data, err := out.DataPtrFloat32()
	if err != nil {
		return nil, err
	}

	return detection.Decode(data, dims[len(dims)-1], width, height, detection.ConfidenceThreshold)
}

func (y *yolo) close() {
	y.net.Close()
}

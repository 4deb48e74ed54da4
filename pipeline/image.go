package pipeline

import (
	"gocv.io/x/gocv"

	"github.com/khaledhikmat/vs-detect/model"
)

// DecodeImage turns uploaded bytes into a BGR mat. The caller closes the mat.
func DecodeImage(data []byte) (gocv.Mat, error) {
	img, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return img, model.NewDecodeFailureError(err)
	}
	if img.Empty() {
		img.Close()
		return img, model.NewDecodeFailureError(nil)
	}
	return img, nil
}

package handler

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/khaledhikmat/vs-detect/model"
	"github.com/khaledhikmat/vs-detect/service/inference"
	"github.com/khaledhikmat/vs-detect/service/lgr"
)

const imageField = "image"

type DetectHandler struct {
	inferenceSvc inference.IService
}

func NewDetectHandler(inferenceSvc inference.IService) *DetectHandler {
	return &DetectHandler{
		inferenceSvc: inferenceSvc,
	}
}

// Detect expects a multipart upload with an image field and answers with a JSON
// array of label/confidence objects
func (h *DetectHandler) Detect(c *gin.Context) {
	data, err := readImage(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	results, err := h.inferenceSvc.Detect(c.Request.Context(), data)
	if err != nil {
		abortWithError(c, err)
		return
	}

	if results == nil {
		results = []model.Detection{}
	}
	c.JSON(http.StatusOK, results)
}

// readImage returns the first part named image that carries a filename
// parameter, an empty one included. Plain form values do not count as uploads.
func readImage(c *gin.Context) ([]byte, error) {
	mr, err := c.Request.MultipartReader()
	if err != nil {
		return nil, model.NewMissingFieldError(err)
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, model.NewMissingFieldError(nil)
		}
		if err != nil {
			return nil, model.NewMissingFieldError(err)
		}

		if part.FormName() != imageField || !isFilePart(part) {
			part.Close()
			continue
		}

		data, err := io.ReadAll(part)
		part.Close()
		if err != nil {
			return nil, model.NewInternalError(err)
		}
		return data, nil
	}
}

func isFilePart(part *multipart.Part) bool {
	_, params, err := mime.ParseMediaType(part.Header.Get("Content-Disposition"))
	if err != nil {
		return false
	}
	_, ok := params["filename"]
	return ok
}

func statusOf(kind model.ErrorKind) int {
	switch kind {
	case model.ErrMissingField, model.ErrDecodeFailure:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	kind := model.KindOf(err)
	status := statusOf(kind)

	if status >= http.StatusInternalServerError {
		lgr.Logger.Error("detection failed",
			slog.String("requestID", c.GetString("requestID")),
			lgr.Err(err),
		)
	} else {
		lgr.Logger.Debug("detection rejected",
			slog.String("requestID", c.GetString("requestID")),
			slog.String("kind", kind.String()),
		)
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

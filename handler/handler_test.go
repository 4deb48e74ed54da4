package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image/color"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khaledhikmat/vs-detect/middleware"
	"github.com/khaledhikmat/vs-detect/model"
	"github.com/khaledhikmat/vs-detect/service/config"
	"github.com/khaledhikmat/vs-detect/service/inference"
)

var testLabels = []string{"person", "bicycle", "car"}

func init() {
	gin.SetMode(gin.TestMode)
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := imaging.New(32, 32, color.NRGBA{R: 255, A: 255})
	buf := &bytes.Buffer{}
	require.NoError(t, imaging.Encode(buf, img, imaging.PNG))
	return buf.Bytes()
}

// multipartRequest builds a POST /detect; a nil file omits the image field
func multipartRequest(t *testing.T, field string, file []byte, extra map[string]string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range extra {
		require.NoError(t, w.WriteField(k, v))
	}
	if file != nil {
		part, err := w.CreateFormFile(field, "upload.png")
		require.NoError(t, err)
		_, err = part.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/detect", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func serve(svc inference.IService, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	NewRouter(config.NewHardCoded(), svc).ServeHTTP(rec, req)
	return rec
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestHealth(t *testing.T) {
	rec := serve(inference.NewFake(nil, nil, errors.New("model not loaded")), httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
}

func TestDetectSuccess(t *testing.T) {
	want := []model.Detection{
		{Label: "person", Confidence: 93},
		{Label: "car", Confidence: 61},
	}
	fake := inference.NewFake(testLabels, want, nil)

	rec := serve(fake, multipartRequest(t, "image", pngBytes(t), nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got []model.Detection
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.ElementsMatch(t, want, got)
	for _, d := range got {
		assert.Contains(t, testLabels, d.Label)
		assert.GreaterOrEqual(t, d.Confidence, 0)
		assert.LessOrEqual(t, d.Confidence, 100)
	}
}

func TestDetectEmptyResultIsArray(t *testing.T) {
	rec := serve(inference.NewFake(testLabels, nil, nil), multipartRequest(t, "image", pngBytes(t), nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestDetectMissingField(t *testing.T) {
	fake := inference.NewFake(testLabels, nil, nil)

	cases := map[string]*http.Request{
		"no fields":    multipartRequest(t, "image", nil, nil),
		"other fields": multipartRequest(t, "image", nil, map[string]string{"image_url": "http://x", "foo": "bar"}),
		"wrong field":  multipartRequest(t, "photo", pngBytes(t), nil),
		"not multipart": func() *http.Request {
			req := httptest.NewRequest(http.MethodPost, "/detect", strings.NewReader(`{"image":"x"}`))
			req.Header.Set("Content-Type", "application/json")
			return req
		}(),
	}

	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			rec := serve(fake, req)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, model.MissingFieldMessage, errorBody(t, rec))
		})
	}
	assert.Equal(t, 0, fake.Calls())
}

func TestDetectDecodeFailure(t *testing.T) {
	fake := inference.NewFake(testLabels, nil, model.NewDecodeFailureError(errors.New("empty mat")))

	rec := serve(fake, multipartRequest(t, "image", []byte("random bytes, not an image"), nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, model.DecodeFailureMessage, errorBody(t, rec))
}

func TestDetectEmptyUpload(t *testing.T) {
	fake := inference.NewFake(testLabels, nil, nil)

	rec := serve(fake, multipartRequest(t, "image", []byte{}, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, fake.Calls())
	assert.Empty(t, fake.LastImage())
}

// rawPartRequest writes a single part with a hand-made Content-Disposition
func rawPartRequest(t *testing.T, disposition string, content []byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", disposition)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/detect", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestDetectEmptyFilenameIsAnUpload(t *testing.T) {
	fake := inference.NewFake(testLabels, nil, nil)
	img := pngBytes(t)

	rec := serve(fake, rawPartRequest(t, `form-data; name="image"; filename=""`, img))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, fake.Calls())
	assert.Equal(t, img, fake.LastImage())
}

func TestDetectPlainValueIsNotAnUpload(t *testing.T) {
	fake := inference.NewFake(testLabels, nil, nil)

	rec := serve(fake, rawPartRequest(t, `form-data; name="image"`, pngBytes(t)))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, model.MissingFieldMessage, errorBody(t, rec))
	assert.Equal(t, 0, fake.Calls())
}

func TestDetectSkipsPartsBeforeImage(t *testing.T) {
	fake := inference.NewFake(testLabels, nil, nil)
	img := pngBytes(t)

	rec := serve(fake, multipartRequest(t, "image", img, map[string]string{"image": "not a file", "note": "x"}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, img, fake.LastImage())
}

func TestHealthHead(t *testing.T) {
	rec := serve(inference.NewFake(nil, nil, nil), httptest.NewRequest(http.MethodHead, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDetectMethodNotAllowed(t *testing.T) {
	fake := inference.NewFake(testLabels, nil, nil)

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		t.Run(method, func(t *testing.T) {
			rec := serve(fake, httptest.NewRequest(method, "/detect", nil))
			assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
		})
	}
	assert.Equal(t, 0, fake.Calls())
}

func TestUnknownRouteIsNotFound(t *testing.T) {
	rec := serve(inference.NewFake(nil, nil, nil), httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDetectInternalError(t *testing.T) {
	fake := inference.NewFake(testLabels, nil, model.NewInternalError(errors.New("unexpected output dims: [1]")))

	rec := serve(fake, multipartRequest(t, "image", pngBytes(t), nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "unexpected output dims: [1]", errorBody(t, rec))
}

func TestDetectUntypedErrorIsInternal(t *testing.T) {
	fake := inference.NewFake(testLabels, nil, errors.New("something odd"))

	rec := serve(fake, multipartRequest(t, "image", pngBytes(t), nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "something odd", errorBody(t, rec))
}

type panickingService struct {
	inference.IService
}

func (panickingService) Detect(_ context.Context, _ []byte) ([]model.Detection, error) {
	panic("tensor shape mismatch")
}

func TestDetectPanicIsInternal(t *testing.T) {
	rec := serve(panickingService{}, multipartRequest(t, "image", pngBytes(t), nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "tensor shape mismatch", errorBody(t, rec))
}

func TestDetectRequestIDPropagates(t *testing.T) {
	var seen string
	svc := requestIDService{seen: &seen}

	req := multipartRequest(t, "image", pngBytes(t), nil)
	req.Header.Set(middleware.RequestIDHeader, "req-123")
	rec := serve(svc, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "req-123", seen)
	assert.Equal(t, "req-123", rec.Header().Get(middleware.RequestIDHeader))
}

type requestIDService struct {
	inference.IService
	seen *string
}

func (s requestIDService) Detect(ctx context.Context, _ []byte) ([]model.Detection, error) {
	*s.seen = model.RequestID(ctx)
	return []model.Detection{}, nil
}

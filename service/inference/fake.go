package inference

import (
	"context"
	"sync"

	"github.com/khaledhikmat/vs-detect/model"
)

// fakeService returns canned results and counts invocations
type fakeService struct {
	mu      sync.Mutex
	results []model.Detection
	err     error
	calls   int
	last    []byte
	labels  []string
}

type Fake interface {
	IService
	Calls() int
	LastImage() []byte
}

func NewFake(labels []string, results []model.Detection, err error) Fake {
	return &fakeService{
		results: results,
		err:     err,
		labels:  labels,
	}
}

func (svc *fakeService) Detect(_ context.Context, image []byte) ([]model.Detection, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.calls++
	svc.last = image

	if svc.err != nil {
		return nil, svc.err
	}

	out := make([]model.Detection, len(svc.results))
	copy(out, svc.results)
	return out, nil
}

func (svc *fakeService) Labels() []string {
	return svc.labels
}

func (svc *fakeService) Close() error {
	return nil
}

func (svc *fakeService) Calls() int {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.calls
}

func (svc *fakeService) LastImage() []byte {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.last
}

package cache

import (
	"context"

	"github.com/khaledhikmat/vs-detect/model"
)

type noopService struct {
}

func NewNoop() IService {
	return &noopService{}
}

func (svc *noopService) Get(_ context.Context, _ string) ([]model.Detection, bool, error) {
	return nil, false, nil
}

func (svc *noopService) Set(_ context.Context, _ string, _ []model.Detection) error {
	return nil
}

func (svc *noopService) Close() error {
	return nil
}

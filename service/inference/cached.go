package inference

import (
	"context"
	"log/slog"

	"github.com/khaledhikmat/vs-detect/model"
	"github.com/khaledhikmat/vs-detect/service/cache"
	"github.com/khaledhikmat/vs-detect/service/lgr"
)

type cachedService struct {
	inner    IService
	cacheSvc cache.IService
}

// NewCached serves repeated uploads of identical bytes from the cache. Cache
// failures are logged and never fail a request. Only successes are cached.
func NewCached(inner IService, cacheSvc cache.IService) IService {
	return &cachedService{
		inner:    inner,
		cacheSvc: cacheSvc,
	}
}

func (svc *cachedService) Detect(ctx context.Context, image []byte) ([]model.Detection, error) {
	key := cache.Key(image)

	results, ok, err := svc.cacheSvc.Get(ctx, key)
	if err != nil {
		lgr.Logger.Warn("failed to get cached detections",
			slog.String("key", key),
			slog.String("requestID", model.RequestID(ctx)),
			lgr.Err(err),
		)
	}
	if ok {
		lgr.Logger.Debug("detections cache hit",
			slog.String("key", key),
			slog.String("requestID", model.RequestID(ctx)),
		)
		return results, nil
	}

	results, err = svc.inner.Detect(ctx, image)
	if err != nil {
		return nil, err
	}

	if err := svc.cacheSvc.Set(ctx, key, results); err != nil {
		lgr.Logger.Warn("failed to cache detections",
			slog.String("key", key),
			lgr.Err(err),
		)
	}

	return results, nil
}

func (svc *cachedService) Labels() []string {
	return svc.inner.Labels()
}

func (svc *cachedService) Close() error {
	err := svc.inner.Close()
	if cerr := svc.cacheSvc.Close(); err == nil {
		err = cerr
	}
	return err
}

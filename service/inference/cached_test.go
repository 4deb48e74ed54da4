package inference

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khaledhikmat/vs-detect/model"
)

// memCache is an in-memory cache.IService
type memCache struct {
	mu     sync.Mutex
	items  map[string][]model.Detection
	getErr error
}

func newMemCache() *memCache {
	return &memCache{items: map[string][]model.Detection{}}
}

func (c *memCache) Get(_ context.Context, key string) ([]model.Detection, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	r, ok := c.items[key]
	return r, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, results []model.Detection) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = results
	return nil
}

func (c *memCache) Close() error {
	return nil
}

func TestCachedHitSkipsInference(t *testing.T) {
	want := []model.Detection{{Label: "dog", Confidence: 77}}
	fake := NewFake([]string{"dog"}, want, nil)
	svc := NewCached(fake, newMemCache())

	ctx := context.Background()
	first, err := svc.Detect(ctx, []byte("image-bytes"))
	require.NoError(t, err)
	second, err := svc.Detect(ctx, []byte("image-bytes"))
	require.NoError(t, err)

	assert.Equal(t, want, first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, fake.Calls())

	_, err = svc.Detect(ctx, []byte("other-bytes"))
	require.NoError(t, err)
	assert.Equal(t, 2, fake.Calls())
}

func TestCachedDoesNotCacheErrors(t *testing.T) {
	fake := NewFake(nil, nil, model.NewInternalError(errors.New("bad shape")))
	mem := newMemCache()
	svc := NewCached(fake, mem)

	_, err := svc.Detect(context.Background(), []byte("x"))
	require.Error(t, err)
	assert.Equal(t, model.ErrInternal, model.KindOf(err))
	assert.Empty(t, mem.items)
}

func TestCachedGetErrorFallsThrough(t *testing.T) {
	fake := NewFake(nil, []model.Detection{}, nil)
	mem := newMemCache()
	mem.getErr = errors.New("redis down")
	svc := NewCached(fake, mem)

	res, err := svc.Detect(context.Background(), []byte("x"))
	require.NoError(t, err)
	assert.Empty(t, res)
	assert.Equal(t, 1, fake.Calls())
}

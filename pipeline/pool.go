package pipeline

import (
	"context"
	"fmt"
	"sync"

	"gocv.io/x/gocv"

	"github.com/khaledhikmat/vs-detect/model"
)

// detector is one network instance. It is not safe for concurrent use.
type detector interface {
	detect(img gocv.Mat) ([]model.Detection, error)
	close()
}

// netPool hands out independent networks. A size of one serializes inference.
type netPool struct {
	nets   chan detector
	all    []detector
	mu     sync.Mutex
	closed bool
}

func newNetPool(a Assets, labels []string, size int) (*netPool, error) {
	if size < 1 {
		size = 1
	}

	dets := make([]detector, 0, size)
	for i := 0; i < size; i++ {
		y, err := newYolo(a, labels)
		if err != nil {
			for _, d := range dets {
				d.close()
			}
			return nil, fmt.Errorf("failed to initialize network %d: %w", i, err)
		}
		dets = append(dets, y)
	}

	return newPoolOf(dets), nil
}

func newPoolOf(dets []detector) *netPool {
	p := &netPool{
		nets: make(chan detector, len(dets)),
		all:  dets,
	}
	for _, d := range dets {
		p.nets <- d
	}
	return p
}

func (p *netPool) acquire(ctx context.Context) (detector, error) {
	select {
	case d, ok := <-p.nets:
		if !ok {
			return nil, fmt.Errorf("network pool is closed")
		}
		return d, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *netPool) release(d detector) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.nets <- d
}

func (p *netPool) size() int {
	return len(p.all)
}

// close releases every network. Networks still acquired are closed too, so it
// must only be called once requests have drained.
func (p *netPool) close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	close(p.nets)

	for _, d := range p.all {
		d.close()
	}
}

package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"

	"github.com/khaledhikmat/vs-detect/model"
)

// IService caches detection results by image digest. A miss returns (nil, false, nil).
type IService interface {
	Get(ctx context.Context, key string) ([]model.Detection, bool, error)
	Set(ctx context.Context, key string, results []model.Detection) error
	Close() error
}

// Key is the MD5 of the raw upload. Results are deterministic for identical bytes.
func Key(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

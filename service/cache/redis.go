package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/khaledhikmat/vs-detect/model"
	"github.com/khaledhikmat/vs-detect/service/config"
	"github.com/khaledhikmat/vs-detect/service/lgr"
)

const keyPrefix = "detect:"

type redisService struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(cfgSvc config.IService) IService {
	return &redisService{
		client: redis.NewClient(&redis.Options{
			Addr:     cfgSvc.GetCacheAddress(),
			Password: cfgSvc.GetCachePassword(),
			DB:       cfgSvc.GetCacheDB(),
		}),
		ttl: cfgSvc.GetCacheTTL(),
	}
}

// New returns a redis cache when one is configured and reachable, a no-op cache otherwise
func New(ctx context.Context, cfgSvc config.IService) IService {
	if cfgSvc.GetCacheAddress() == "" {
		return NewNoop()
	}

	svc := NewRedis(cfgSvc).(*redisService)
	if err := svc.client.Ping(ctx).Err(); err != nil {
		lgr.Logger.Warn("redis connection failed, cache disabled",
			slog.String("address", cfgSvc.GetCacheAddress()),
			lgr.Err(err),
		)
		_ = svc.Close()
		return NewNoop()
	}

	lgr.Logger.Info("redis connected", slog.String("address", cfgSvc.GetCacheAddress()))
	return svc
}

func (svc *redisService) Get(ctx context.Context, key string) ([]model.Detection, bool, error) {
	data, err := svc.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}

	results := []model.Detection{}
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, false, err
	}
	return results, true, nil
}

func (svc *redisService) Set(ctx context.Context, key string, results []model.Detection) error {
	data, err := json.Marshal(results)
	if err != nil {
		return err
	}
	return svc.client.Set(ctx, keyPrefix+key, data, svc.ttl).Err()
}

func (svc *redisService) Close() error {
	return svc.client.Close()
}

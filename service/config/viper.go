package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// viperService overrides the hardcoded defaults with an optional YAML file and
// VSD_* environment variables. Model asset names stay hardcoded.
type viperService struct {
	IService
	v *viper.Viper
}

func NewViper(path string) (IService, error) {
	defaults := NewHardCoded()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("VSD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("mode.max_shutdown_time", defaults.GetModeMaxShutdownTime())
	v.SetDefault("server.address", defaults.GetServerAddress())
	v.SetDefault("server.mode", defaults.GetServerMode())
	v.SetDefault("server.read_timeout", defaults.GetServerReadTimeout())
	v.SetDefault("server.write_timeout", defaults.GetServerWriteTimeout())
	v.SetDefault("server.max_multipart_memory", defaults.GetServerMaxMultipartMemory())
	v.SetDefault("detector.pool_size", defaults.GetDetectorPoolSize())
	v.SetDefault("detector.logging", defaults.GetDetectorLogging())
	v.SetDefault("detector.log_file", defaults.GetDetectorLogFile())
	v.SetDefault("cache.address", defaults.GetCacheAddress())
	v.SetDefault("cache.password", defaults.GetCachePassword())
	v.SetDefault("cache.db", defaults.GetCacheDB())
	v.SetDefault("cache.ttl", defaults.GetCacheTTL())

	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	return &viperService{
		IService: defaults,
		v:        v,
	}, nil
}

func (svc *viperService) GetModeMaxShutdownTime() int {
	return svc.v.GetInt("mode.max_shutdown_time")
}

func (svc *viperService) GetServerAddress() string {
	return svc.v.GetString("server.address")
}

func (svc *viperService) GetServerMode() string {
	return svc.v.GetString("server.mode")
}

func (svc *viperService) GetServerReadTimeout() time.Duration {
	return svc.v.GetDuration("server.read_timeout")
}

func (svc *viperService) GetServerWriteTimeout() time.Duration {
	return svc.v.GetDuration("server.write_timeout")
}

func (svc *viperService) GetServerMaxMultipartMemory() int64 {
	return svc.v.GetInt64("server.max_multipart_memory")
}

func (svc *viperService) GetDetectorPoolSize() int {
	size := svc.v.GetInt("detector.pool_size")
	if size < 1 {
		return 1
	}
	return size
}

func (svc *viperService) GetDetectorLogging() bool {
	return svc.v.GetBool("detector.logging")
}

func (svc *viperService) GetDetectorLogFile() string {
	return svc.v.GetString("detector.log_file")
}

func (svc *viperService) GetCacheAddress() string {
	return svc.v.GetString("cache.address")
}

func (svc *viperService) GetCachePassword() string {
	return svc.v.GetString("cache.password")
}

func (svc *viperService) GetCacheDB() int {
	return svc.v.GetInt("cache.db")
}

func (svc *viperService) GetCacheTTL() time.Duration {
	return svc.v.GetDuration("cache.ttl")
}

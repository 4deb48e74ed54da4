package config

import "time"

type IService interface {
	GetModeMaxShutdownTime() int

	GetServerAddress() string
	GetServerMode() string
	GetServerReadTimeout() time.Duration
	GetServerWriteTimeout() time.Duration
	GetServerMaxMultipartMemory() int64

	// Model assets are looked up relative to the working directory
	GetModelConfigFile() string
	GetModelWeightsFile() string
	GetClassNamesFile() string

	GetDetectorPoolSize() int
	GetDetectorLogging() bool
	GetDetectorLogFile() string

	// An empty cache address disables result caching
	GetCacheAddress() string
	GetCachePassword() string
	GetCacheDB() int
	GetCacheTTL() time.Duration
}

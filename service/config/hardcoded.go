package config

import "time"

type hardcodedService struct {
}

func NewHardCoded() IService {
	return &hardcodedService{}
}

func (svc *hardcodedService) GetModeMaxShutdownTime() int {
	return 5
}

func (svc *hardcodedService) GetServerAddress() string {
	return ":5000"
}

func (svc *hardcodedService) GetServerMode() string {
	return "release"
}

func (svc *hardcodedService) GetServerReadTimeout() time.Duration {
	return 30 * time.Second
}

func (svc *hardcodedService) GetServerWriteTimeout() time.Duration {
	return 60 * time.Second
}

func (svc *hardcodedService) GetServerMaxMultipartMemory() int64 {
	return 32 << 20
}

func (svc *hardcodedService) GetModelConfigFile() string {
	return "yolov3.cfg"
}

func (svc *hardcodedService) GetModelWeightsFile() string {
	return "yolov3-tiny.weights"
}

func (svc *hardcodedService) GetClassNamesFile() string {
	return "coco.names"
}

func (svc *hardcodedService) GetDetectorPoolSize() int {
	// One network means one inference at a time
	return 1
}

func (svc *hardcodedService) GetDetectorLogging() bool {
	return false
}

func (svc *hardcodedService) GetDetectorLogFile() string {
	return "detections.log"
}

func (svc *hardcodedService) GetCacheAddress() string {
	return ""
}

func (svc *hardcodedService) GetCachePassword() string {
	return ""
}

func (svc *hardcodedService) GetCacheDB() int {
	return 0
}

func (svc *hardcodedService) GetCacheTTL() time.Duration {
	return 24 * time.Hour
}

package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/natefinch/lumberjack"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gocv.io/x/gocv"

	"github.com/khaledhikmat/vs-detect/model"
	"github.com/khaledhikmat/vs-detect/service/config"
	"github.com/khaledhikmat/vs-detect/service/inference"
	"github.com/khaledhikmat/vs-detect/service/lgr"
)

const tracerName = "github.com/khaledhikmat/vs-detect/pipeline"

type yoloService struct {
	pool      *netPool
	labels    []string
	tracer    trace.Tracer
	detLogger *lumberjack.Logger

	statsMu       sync.Mutex
	stats         model.DetectorStats
	beginTime     time.Time
	totalProcTime time.Duration
}

type Option func(*yoloService)

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(svc *yoloService) {
		svc.tracer = tp.Tracer(tracerName)
	}
}

// NewYoloService verifies the model assets and loads the network pool. Any error
// here means the process cannot serve detections.
func NewYoloService(cfgSvc config.IService, opts ...Option) (inference.IService, error) {
	assets := AssetsFromConfig(cfgSvc)
	if err := assets.Verify(); err != nil {
		return nil, model.GenError("model_loader", err, map[string]interface{}{
			"config":     assets.Config,
			"weights":    assets.Weights,
			"classNames": assets.ClassNames,
		}, "model asset missing")
	}

	labels, err := LoadLabels(assets.ClassNames)
	if err != nil {
		return nil, model.GenError("model_loader", err, nil, "error loading class names")
	}

	pool, err := newNetPool(assets, labels, cfgSvc.GetDetectorPoolSize())
	if err != nil {
		return nil, model.GenError("model_loader", err, nil, "error loading network")
	}

	svc := newYoloService(cfgSvc, pool, labels, opts...)

	lgr.Logger.Info("yolo detector loaded",
		slog.String("config", assets.Config),
		slog.String("weights", assets.Weights),
		slog.Int("labels", len(labels)),
		slog.Int("networks", pool.size()),
		slog.String("openCV", gocv.Version()),
	)

	return svc, nil
}

func newYoloService(cfgSvc config.IService, pool *netPool, labels []string, opts ...Option) *yoloService {
	svc := &yoloService{
		pool:      pool,
		labels:    labels,
		tracer:    otel.GetTracerProvider().Tracer(tracerName),
		beginTime: time.Now(),
		stats: model.DetectorStats{
			Name:     "yoloDetector",
			PoolSize: pool.size(),
		},
	}

	if cfgSvc.GetDetectorLogging() {
		svc.detLogger = &lumberjack.Logger{
			Filename:   cfgSvc.GetDetectorLogFile(),
			MaxSize:    10, // MB
			MaxBackups: 5,
			MaxAge:     7,    // days
			Compress:   true, // compress old logs
		}
	}

	for _, opt := range opts {
		opt(svc)
	}

	return svc
}

func (svc *yoloService) Detect(ctx context.Context, data []byte) ([]model.Detection, error) {
	ctx, span := svc.tracer.Start(ctx, "yolo.detect",
		trace.WithAttributes(attribute.Int("image.bytes", len(data))),
	)
	defer span.End()

	start := time.Now()
	results, err := svc.detect(ctx, span, data)
	elapsed := time.Since(start)

	svc.statsMu.Lock()
	svc.stats.Requests++
	svc.totalProcTime += elapsed
	if err != nil {
		svc.stats.Errors++
	} else {
		svc.stats.Detections += len(results)
	}
	svc.statsMu.Unlock()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("detections", len(results)))
	svc.logDetections(ctx, results)

	lgr.Logger.Debug("image processed",
		slog.String("requestID", model.RequestID(ctx)),
		slog.Int("detections", len(results)),
		slog.Duration("elapsed", elapsed),
	)

	return results, nil
}

func (svc *yoloService) detect(ctx context.Context, span trace.Span, data []byte) (results []model.Detection, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = model.NewInternalError(fmt.Errorf("%v", r))
		}
	}()

	img, err := DecodeImage(data)
	if err != nil {
		return nil, err
	}
	defer img.Close()

	span.AddEvent("decoded", trace.WithAttributes(
		attribute.Int("image.width", img.Cols()),
		attribute.Int("image.height", img.Rows()),
	))

	d, err := svc.pool.acquire(ctx)
	if err != nil {
		return nil, model.NewInternalError(err)
	}
	defer svc.pool.release(d)

	results, err = d.detect(img)
	if err != nil {
		return nil, model.NewInternalError(err)
	}

	return results, nil
}

func (svc *yoloService) Labels() []string {
	out := make([]string, len(svc.labels))
	copy(out, svc.labels)
	return out
}

func (svc *yoloService) Close() error {
	svc.pool.close()

	stats := svc.Stats()
	lgr.Logger.Info("yolo detector closed",
		slog.Any("stats", stats),
	)

	if svc.detLogger != nil {
		return svc.detLogger.Close()
	}
	return nil
}

func (svc *yoloService) Stats() model.DetectorStats {
	svc.statsMu.Lock()
	defer svc.statsMu.Unlock()

	stats := svc.stats
	stats.Uptime = int64(time.Since(svc.beginTime).Seconds())
	stats.Timestamp = time.Now().Unix()
	if stats.Requests > 0 {
		stats.AvgProcTime = svc.totalProcTime.Seconds() / float64(stats.Requests)
	}
	return stats
}

func (svc *yoloService) logDetections(ctx context.Context, detections []model.Detection) {
	if svc.detLogger == nil {
		return
	}

	entry := map[string]interface{}{
		"time":       time.Now().Format(time.RFC3339),
		"requestID":  model.RequestID(ctx),
		"detections": detections,
	}

	jsonData, err := json.Marshal(entry)
	if err != nil {
		lgr.Logger.Error("error marshaling detections", lgr.Err(err))
		return
	}

	if _, err := svc.detLogger.Write(append(jsonData, '\n')); err != nil {
		lgr.Logger.Error("error writing to detection log file", lgr.Err(err))
	}
}

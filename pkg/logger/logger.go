package logger

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger 日志接口
type Logger interface {
	Debugf(ctx context.Context, format string, args ...interface{})
	Infof(ctx context.Context, format string, args ...interface{})
	Warnf(ctx context.Context, format string, args ...interface{})
	Errorf(ctx context.Context, format string, args ...interface{})
	Sync() error
}

type ctxKey string

// Context 日志字段 key
const (
	keyTraceID    ctxKey = "trace_id"
	keyRunID      ctxKey = "run_id"
	keyWorkerID   ctxKey = "worker_id"
	keyActionType ctxKey = "action_type"
)

// WithTraceID 注入 trace_id
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, keyTraceID, traceID)
}

// WithRunID 注入体检运行 ID
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, keyRunID, runID)
}

// WithWorkerID 注入 worker_id
func WithWorkerID(ctx context.Context, workerID int) context.Context {
	return context.WithValue(ctx, keyWorkerID, workerID)
}

// WithActionType 注入 action_type
func WithActionType(ctx context.Context, actionType string) context.Context {
	return context.WithValue(ctx, keyActionType, actionType)
}

// TraceID 读取 trace_id
func TraceID(ctx context.Context) string {
	traceID, _ := ctx.Value(keyTraceID).(string)
	return traceID
}

// ZapLogger Zap 日志实现
type ZapLogger struct {
	logger *zap.Logger
}

// NewZapLogger 创建 Zap 日志实例
func NewZapLogger(level string) (Logger, error) {
	// 解析日志级别
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}

	return &ZapLogger{logger: logger}, nil
}

// New 包装已有的 zap.Logger
func New(z *zap.Logger) Logger {
	return &ZapLogger{logger: z}
}

// NewNop 创建丢弃所有输出的日志实例（测试用）
func NewNop() Logger {
	return &ZapLogger{logger: zap.NewNop()}
}

// extractFields 从 Context 提取日志字段
func (l *ZapLogger) extractFields(ctx context.Context) []zap.Field {
	fields := make([]zap.Field, 0, 4)
	if ctx == nil {
		return fields
	}

	if traceID, ok := ctx.Value(keyTraceID).(string); ok && traceID != "" {
		fields = append(fields, zap.String("trace_id", traceID))
	}
	if runID, ok := ctx.Value(keyRunID).(string); ok && runID != "" {
		fields = append(fields, zap.String("run_id", runID))
	}
	if workerID, ok := ctx.Value(keyWorkerID).(int); ok {
		fields = append(fields, zap.Int("worker_id", workerID))
	}
	if actionType, ok := ctx.Value(keyActionType).(string); ok && actionType != "" {
		fields = append(fields, zap.String("action_type", actionType))
	}

	return fields
}

// Debugf 输出 Debug 日志
func (l *ZapLogger) Debugf(ctx context.Context, format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...), l.extractFields(ctx)...)
}

// Infof 输出 Info 日志
func (l *ZapLogger) Infof(ctx context.Context, format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...), l.extractFields(ctx)...)
}

// Warnf 输出 Warn 日志
func (l *ZapLogger) Warnf(ctx context.Context, format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...), l.extractFields(ctx)...)
}

// Errorf 输出 Error 日志
func (l *ZapLogger) Errorf(ctx context.Context, format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...), l.extractFields(ctx)...)
}

// Sync 同步日志缓冲区
func (l *ZapLogger) Sync() error {
	return l.logger.Sync()
}

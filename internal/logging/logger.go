// Package logging provides config-driven categorized logging for stringact.
// Every category gets a named child of one zap base logger. Logging is off
// unless debug mode is enabled, in which case disabled categories still get
// a no-op logger so call sites never need to check.
package logging

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot    Category = "boot"    // Startup, config loading
	CategoryActions Category = "actions" // Action execution internals
	CategoryHost    Category = "host"    // Dispatch, arity checks, batches
	CategoryKernel  Category = "kernel"  // Fact recording
	CategoryAudit   Category = "audit"   // Mangle-queryable audit events
)

// Options mirrors the logging part of config.Config to avoid an import cycle.
type Options struct {
	DebugMode bool
	Level     string // debug, info, warn, error
	Format    string // json, console
	// Enabled reports whether a category logs; usually
	// config.LoggingConfig.IsCategoryEnabled. Nil enables every category.
	Enabled func(category string) bool
	// OutputPaths defaults to stderr.
	OutputPaths []string
}

// Logger wraps a category-scoped zap logger
type Logger struct {
	category Category
	sugar    *zap.SugaredLogger
}

var (
	mu       sync.RWMutex
	base     = zap.NewNop()
	opts     Options
	loggers  = make(map[Category]*Logger)
	nopSugar = zap.NewNop().Sugar()
)

// Configure builds the base logger from opts. With DebugMode off the base
// logger is a no-op.
func Configure(o Options) error {
	if !o.DebugMode {
		SetBase(zap.NewNop(), o)
		return nil
	}

	level, err := zapcore.ParseLevel(levelOrDefault(o.Level))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", o.Level, err)
	}

	var cfg zap.Config
	switch strings.ToLower(o.Format) {
	case "", "console", "text":
		cfg = zap.NewDevelopmentConfig()
	case "json":
		cfg = zap.NewProductionConfig()
	default:
		return fmt.Errorf("invalid log format %q", o.Format)
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	if len(o.OutputPaths) > 0 {
		cfg.OutputPaths = o.OutputPaths
	}
	cfg.ErrorOutputPaths = []string{"stderr"}

	l, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	SetBase(l, o)

	Get(CategoryBoot).Debug("logging configured: level=%s format=%s", level, cfg.Encoding)
	return nil
}

// SetBase installs l as the base logger. Category filters come from o;
// DebugMode is forced on so tests can install observer loggers directly.
func SetBase(l *zap.Logger, o Options) {
	if l == nil {
		l = zap.NewNop()
	}
	mu.Lock()
	defer mu.Unlock()
	base = l
	opts = o
	if l.Core().Enabled(zapcore.FatalLevel) {
		opts.DebugMode = true
	}
	loggers = make(map[Category]*Logger)
}

// Base returns the base zap logger.
func Base() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// Sync flushes the base logger.
func Sync() error {
	return Base().Sync()
}

func levelOrDefault(level string) string {
	if level == "" {
		return "info"
	}
	if strings.EqualFold(level, "warning") {
		return "warn"
	}
	return strings.ToLower(level)
}

// IsCategoryEnabled returns whether a specific category is enabled
func IsCategoryEnabled(category Category) bool {
	mu.RLock()
	defer mu.RUnlock()
	return categoryEnabledLocked(category)
}

func categoryEnabledLocked(category Category) bool {
	if !opts.DebugMode {
		return false
	}
	if opts.Enabled == nil {
		return true
	}
	return opts.Enabled(string(category))
}

// Get returns (or creates) a logger for the given category.
func Get(category Category) *Logger {
	mu.RLock()
	if l, ok := loggers[category]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}

	l := &Logger{category: category, sugar: nopSugar}
	if categoryEnabledLocked(category) {
		l.sugar = base.Named(string(category)).Sugar()
	}
	loggers[category] = l
	return l
}

// Zap returns the underlying structured logger.
func (l *Logger) Zap() *zap.Logger {
	return l.sugar.Desugar()
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	l.sugar.Debugf(format, args...)
}

// Info logs an informational message
func (l *Logger) Info(format string, args ...interface{}) {
	l.sugar.Infof(format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.sugar.Warnf(format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.sugar.Errorf(format, args...)
}

// StructuredLog writes a message with key-value fields at the given level.
func (l *Logger) StructuredLog(level string, msg string, fields map[string]interface{}) {
	kv := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		kv = append(kv, k, v)
	}
	switch levelOrDefault(level) {
	case "debug":
		l.sugar.Debugw(msg, kv...)
	case "warn":
		l.sugar.Warnw(msg, kv...)
	case "error":
		l.sugar.Errorw(msg, kv...)
	default:
		l.sugar.Infow(msg, kv...)
	}
}

// =============================================================================
// CATEGORY HELPERS
// =============================================================================

func Boot(format string, args ...interface{}) {
	Get(CategoryBoot).Info(format, args...)
}

func BootDebug(format string, args ...interface{}) {
	Get(CategoryBoot).Debug(format, args...)
}

func BootWarn(format string, args ...interface{}) {
	Get(CategoryBoot).Warn(format, args...)
}

func Actions(format string, args ...interface{}) {
	Get(CategoryActions).Info(format, args...)
}

func ActionsDebug(format string, args ...interface{}) {
	Get(CategoryActions).Debug(format, args...)
}

func ActionsWarn(format string, args ...interface{}) {
	Get(CategoryActions).Warn(format, args...)
}

func Host(format string, args ...interface{}) {
	Get(CategoryHost).Info(format, args...)
}

func HostDebug(format string, args ...interface{}) {
	Get(CategoryHost).Debug(format, args...)
}

func HostWarn(format string, args ...interface{}) {
	Get(CategoryHost).Warn(format, args...)
}

func HostError(format string, args ...interface{}) {
	Get(CategoryHost).Error(format, args...)
}

func Kernel(format string, args ...interface{}) {
	Get(CategoryKernel).Info(format, args...)
}

func KernelDebug(format string, args ...interface{}) {
	Get(CategoryKernel).Debug(format, args...)
}

func KernelWarn(format string, args ...interface{}) {
	Get(CategoryKernel).Warn(format, args...)
}

// =============================================================================
// REQUEST ID TRACING
// =============================================================================

// RequestLogger provides request-scoped logging with a correlation ID
type RequestLogger struct {
	logger    *Logger
	requestID string
	fields    []interface{}
}

// WithRequestID creates a request-scoped logger
func WithRequestID(category Category, requestID string) *RequestLogger {
	return &RequestLogger{
		logger:    Get(category),
		requestID: requestID,
	}
}

// WithField adds a field to the request logger
func (r *RequestLogger) WithField(key string, value interface{}) *RequestLogger {
	r.fields = append(r.fields, key, value)
	return r
}

func (r *RequestLogger) kv() []interface{} {
	return append([]interface{}{"req", r.requestID}, r.fields...)
}

func (r *RequestLogger) Debug(format string, args ...interface{}) {
	r.logger.sugar.Debugw(fmt.Sprintf(format, args...), r.kv()...)
}

func (r *RequestLogger) Info(format string, args ...interface{}) {
	r.logger.sugar.Infow(fmt.Sprintf(format, args...), r.kv()...)
}

func (r *RequestLogger) Warn(format string, args ...interface{}) {
	r.logger.sugar.Warnw(fmt.Sprintf(format, args...), r.kv()...)
}

func (r *RequestLogger) Error(format string, args ...interface{}) {
	r.logger.sugar.Errorw(fmt.Sprintf(format, args...), r.kv()...)
}

// =============================================================================
// TIMING HELPERS
// =============================================================================

// Timer helps measure operation duration
type Timer struct {
	category Category
	op       string
	start    time.Time
}

// StartTimer begins timing an operation
func StartTimer(category Category, operation string) *Timer {
	return &Timer{
		category: category,
		op:       operation,
		start:    time.Now(),
	}
}

// Stop ends the timer and logs the duration
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	return elapsed
}

// StopWithThreshold logs a warning if duration exceeds threshold
func (t *Timer) StopWithThreshold(threshold time.Duration) time.Duration {
	elapsed := time.Since(t.start)
	if threshold > 0 && elapsed > threshold {
		Get(t.category).Warn("%s took %v (threshold: %v)", t.op, elapsed, threshold)
	} else {
		Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	}
	return elapsed
}

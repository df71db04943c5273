package logging

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// observe installs an observer base logger for the duration of the test.
func observe(t *testing.T, categories map[string]bool) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	o := Options{DebugMode: true}
	if categories != nil {
		o.Enabled = func(category string) bool {
			enabled, ok := categories[category]
			return !ok || enabled
		}
	}
	SetBase(zap.New(core), o)
	t.Cleanup(func() { SetBase(zap.NewNop(), Options{}) })
	return logs
}

func TestAllCategoriesLog(t *testing.T) {
	logs := observe(t, nil)

	categories := []Category{CategoryBoot, CategoryActions, CategoryHost, CategoryKernel, CategoryAudit}
	for _, cat := range categories {
		require.True(t, IsCategoryEnabled(cat), "category %s", cat)
		l := Get(cat)
		l.Debug("debug %s", cat)
		l.Info("info %s", cat)
		l.Warn("warn %s", cat)
		l.Error("error %s", cat)
	}

	assert.Equal(t, 4*len(categories), logs.Len())
	for _, cat := range categories {
		entries := logs.FilterMessage("info " + string(cat)).All()
		require.Len(t, entries, 1)
		assert.Equal(t, string(cat), entries[0].LoggerName)
	}
}

func TestDebugModeDisabled(t *testing.T) {
	require.NoError(t, Configure(Options{DebugMode: false, Level: "debug"}))
	t.Cleanup(func() { SetBase(zap.NewNop(), Options{}) })

	assert.False(t, IsCategoryEnabled(CategoryActions))
	// Must not panic on the no-op logger.
	ActionsDebug("ignored %d", 1)
	HostError("ignored")
	WithRequestID(CategoryHost, "r").Info("ignored")
	Audit().ActionExecute("string/random")
}

func TestCategoryToggle(t *testing.T) {
	logs := observe(t, map[string]bool{"actions": false, "host": true})

	assert.False(t, IsCategoryEnabled(CategoryActions))
	assert.True(t, IsCategoryEnabled(CategoryHost))
	assert.True(t, IsCategoryEnabled(CategoryKernel), "unlisted categories default to enabled")

	ActionsDebug("hidden")
	HostDebug("shown")
	KernelDebug("also shown")

	assert.Zero(t, logs.FilterMessage("hidden").Len())
	assert.Equal(t, 1, logs.FilterMessage("shown").Len())
	assert.Equal(t, 1, logs.FilterMessage("also shown").Len())
}

func TestConfigure(t *testing.T) {
	t.Cleanup(func() { SetBase(zap.NewNop(), Options{}) })

	path := filepath.Join(t.TempDir(), "out.log")
	require.NoError(t, Configure(Options{DebugMode: true, Level: "warning", Format: "json", OutputPaths: []string{path}}))
	assert.True(t, IsCategoryEnabled(CategoryBoot))
	assert.False(t, Base().Core().Enabled(zapcore.InfoLevel))
	assert.True(t, Base().Core().Enabled(zapcore.WarnLevel))

	assert.Error(t, Configure(Options{DebugMode: true, Level: "loud"}))
	assert.Error(t, Configure(Options{DebugMode: true, Format: "xml"}))
}

func TestRequestLogger(t *testing.T) {
	logs := observe(t, nil)

	WithRequestID(CategoryHost, "abc-123").WithField("action", "string/replace").Warn("slow %s", "call")

	entries := logs.FilterMessage("slow call").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, "abc-123", fields["req"])
	assert.Equal(t, "string/replace", fields["action"])
}

func TestStructuredLog(t *testing.T) {
	logs := observe(t, nil)

	Get(CategoryHost).StructuredLog("error", "dispatch failed", map[string]interface{}{"kind": "argument_count"})

	entries := logs.FilterMessage("dispatch failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, "argument_count", entries[0].ContextMap()["kind"])
}

func TestTimerLogging(t *testing.T) {
	logs := observe(t, nil)

	elapsed := StartTimer(CategoryHost, "fast op").Stop()
	assert.GreaterOrEqual(t, elapsed, time.Duration(0))

	timer := StartTimer(CategoryHost, "slow op")
	time.Sleep(2 * time.Millisecond)
	timer.StopWithThreshold(time.Nanosecond)

	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.DebugLevel).Len())
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.WarnLevel).Len())
}

func TestConcurrentGet(t *testing.T) {
	observe(t, nil)

	var wg sync.WaitGroup
	got := make([]*Logger, 32)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = Get(CategoryActions)
			got[i].Debug("goroutine %d", i)
		}(i)
	}
	wg.Wait()

	for _, l := range got {
		assert.Same(t, got[0], l)
	}
}

func TestAuditEvents(t *testing.T) {
	logs := observe(t, nil)

	a := AuditWithInvocation("inv-1")
	a.ActionExecute("string/random")
	a.ActionComplete("string/random", 3, 5*time.Millisecond, nil)
	a.ActionComplete("string/replace", 0, 0, errors.New(`bad "pattern"`))

	entries := logs.FilterLoggerName(string(CategoryAudit)).All()
	require.Len(t, entries, 3)
	assert.Equal(t, "action_execute", entries[0].Message)
	assert.Equal(t, "action_complete", entries[1].Message)
	assert.Equal(t, "action_error", entries[2].Message)

	fields := entries[1].ContextMap()
	assert.Equal(t, "inv-1", fields["req"])
	assert.Contains(t, fields["mangle"], `/action_complete, "string/random", "inv-1", true, 5).`)
	assert.Contains(t, entries[2].ContextMap()["error"], `bad "pattern"`)
}

func TestAuditDisabledCategory(t *testing.T) {
	logs := observe(t, map[string]bool{"audit": false})

	Audit().KernelAssert("action_output", 4)
	assert.Zero(t, logs.Len())
}

func TestGenerateMangleFact(t *testing.T) {
	tests := []struct {
		name  string
		event AuditEvent
		want  string
	}{
		{
			name:  "batch",
			event: AuditEvent{Timestamp: 1, EventType: AuditBatchComplete, Invocation: "b", Count: 2, Success: true},
			want:  `batch_event(1, /batch_complete, "b", 2, true).`,
		},
		{
			name:  "kernel",
			event: AuditEvent{Timestamp: 2, EventType: AuditKernelQuery, Target: "action_output", Count: 7},
			want:  `kernel_op(2, /kernel_query, "action_output", 7).`,
		},
		{
			name:  "escaped action",
			event: AuditEvent{Timestamp: 3, EventType: AuditActionError, Action: "a\"b\n", Invocation: "i"},
			want:  `action_event(3, /action_error, "a\"b\n", "i", false, 0).`,
		},
		{
			name:  "fallback",
			event: AuditEvent{Timestamp: 4, EventType: "custom", Error: `x\y`},
			want:  `audit_event(4, /custom, "x\\y", false).`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, generateMangleFact(tt.event))
		})
	}
}

package logging

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// AuditEventType names an audit event. Each type maps to a Mangle predicate.
type AuditEventType string

const (
	// Action lifecycle -> action_event/6
	AuditActionExecute  AuditEventType = "action_execute"
	AuditActionComplete AuditEventType = "action_complete"
	AuditActionError    AuditEventType = "action_error"

	// Batches -> batch_event/5
	AuditBatchStart    AuditEventType = "batch_start"
	AuditBatchComplete AuditEventType = "batch_complete"

	// Fact store -> kernel_op/4
	AuditKernelAssert AuditEventType = "kernel_assert"
	AuditKernelQuery  AuditEventType = "kernel_query"

	// Performance -> perf_metric/4
	AuditPerfSlow AuditEventType = "perf_slow"
)

// AuditEvent is one structured audit entry. MangleFact is filled in by Log.
type AuditEvent struct {
	Timestamp  int64          // Unix milliseconds
	EventType  AuditEventType // Maps to Mangle predicate
	Invocation string         // Invocation correlation ID
	Action     string
	Target     string
	Success    bool
	Count      int
	DurationMs int64
	Error      string
	MangleFact string
}

// AuditLogger emits audit events on the audit category.
type AuditLogger struct {
	invocation string
}

// Audit returns an audit logger with no correlation ID.
func Audit() *AuditLogger {
	return &AuditLogger{}
}

// AuditWithInvocation returns an audit logger that stamps every event
// with the given invocation ID.
func AuditWithInvocation(invocation string) *AuditLogger {
	return &AuditLogger{invocation: invocation}
}

// Log fills defaults, renders the Mangle fact and writes the event.
func (a *AuditLogger) Log(event AuditEvent) {
	if !IsCategoryEnabled(CategoryAudit) {
		return
	}
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().UnixMilli()
	}
	if event.Invocation == "" {
		event.Invocation = a.invocation
	}
	event.MangleFact = generateMangleFact(event)

	Get(CategoryAudit).Zap().Info(string(event.EventType),
		zap.Int64("ts", event.Timestamp),
		zap.String("req", event.Invocation),
		zap.String("action", event.Action),
		zap.String("target", event.Target),
		zap.Bool("success", event.Success),
		zap.Int("count", event.Count),
		zap.Int64("dur_ms", event.DurationMs),
		zap.String("error", event.Error),
		zap.String("mangle", event.MangleFact),
	)
}

func generateMangleFact(e AuditEvent) string {
	switch e.EventType {
	case AuditActionExecute, AuditActionComplete, AuditActionError:
		return fmt.Sprintf("action_event(%d, /%s, \"%s\", \"%s\", %v, %d).",
			e.Timestamp, e.EventType, escapeString(e.Action), escapeString(e.Invocation), e.Success, e.DurationMs)

	case AuditBatchStart, AuditBatchComplete:
		return fmt.Sprintf("batch_event(%d, /%s, \"%s\", %d, %v).",
			e.Timestamp, e.EventType, escapeString(e.Invocation), e.Count, e.Success)

	case AuditKernelAssert, AuditKernelQuery:
		return fmt.Sprintf("kernel_op(%d, /%s, \"%s\", %d).",
			e.Timestamp, e.EventType, escapeString(e.Target), e.Count)

	case AuditPerfSlow:
		return fmt.Sprintf("perf_metric(%d, \"%s\", \"%s\", %d).",
			e.Timestamp, escapeString(e.Action), escapeString(e.Invocation), e.DurationMs)

	default:
		return fmt.Sprintf("audit_event(%d, /%s, \"%s\", %v).",
			e.Timestamp, e.EventType, escapeString(e.Error), e.Success)
	}
}

// escapeString quotes s for use inside a Mangle string literal.
func escapeString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + len(s)/10)

	for _, c := range s {
		switch c {
		case '"':
			b.WriteString("\\\"")
		case '\\':
			b.WriteString("\\\\")
		case '\n':
			b.WriteString("\\n")
		case '\r':
			b.WriteString("\\r")
		case '\t':
			b.WriteString("\\t")
		default:
			b.WriteRune(c)
		}
	}
	return b.String()
}

// ActionExecute records the start of an action invocation.
func (a *AuditLogger) ActionExecute(action string) {
	a.Log(AuditEvent{
		EventType: AuditActionExecute,
		Action:    action,
		Success:   true,
	})
}

// ActionComplete records the end of an action invocation. A nil err
// records success.
func (a *AuditLogger) ActionComplete(action string, outputs int, d time.Duration, err error) {
	event := AuditEvent{
		EventType:  AuditActionComplete,
		Action:     action,
		Count:      outputs,
		DurationMs: d.Milliseconds(),
		Success:    err == nil,
	}
	if err != nil {
		event.EventType = AuditActionError
		event.Error = err.Error()
	}
	a.Log(event)
}

// BatchStart records a batch of n calls.
func (a *AuditLogger) BatchStart(n int) {
	a.Log(AuditEvent{EventType: AuditBatchStart, Count: n, Success: true})
}

// BatchComplete records the end of a batch with its failure count.
func (a *AuditLogger) BatchComplete(n, failed int, d time.Duration) {
	a.Log(AuditEvent{
		EventType:  AuditBatchComplete,
		Count:      n,
		DurationMs: d.Milliseconds(),
		Success:    failed == 0,
	})
}

// KernelAssert records facts added to the fact store.
func (a *AuditLogger) KernelAssert(predicate string, count int) {
	a.Log(AuditEvent{EventType: AuditKernelAssert, Target: predicate, Count: count, Success: true})
}

// KernelQuery records a fact store query and its result count.
func (a *AuditLogger) KernelQuery(predicate string, results int) {
	a.Log(AuditEvent{EventType: AuditKernelQuery, Target: predicate, Count: results, Success: true})
}

// PerfSlow records an operation that exceeded its threshold.
func (a *AuditLogger) PerfSlow(operation string, d time.Duration) {
	a.Log(AuditEvent{EventType: AuditPerfSlow, Action: operation, DurationMs: d.Milliseconds()})
}

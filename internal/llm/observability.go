package llm

import (
	"io"

	"github.com/charmbracelet/log"
)

// LLMCallEvent records metadata about a single LLM invocation.
type LLMCallEvent struct {
	Task      TaskType
	Model     string
	LatencyMs int64
	Success   bool
	ErrorCode string
}

// Observer receives events about LLM calls for logging and metrics.
type Observer interface {
	OnCallComplete(event LLMCallEvent)
}

// LogObserver writes LLM call events through a leveled logger.
type LogObserver struct {
	logger *log.Logger
}

// NewLogObserver creates an Observer that logs events to w.
func NewLogObserver(w io.Writer) *LogObserver {
	return &LogObserver{
		logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			Prefix:          "llm",
		}),
	}
}

func (o *LogObserver) OnCallComplete(event LLMCallEvent) {
	if event.Success {
		o.logger.Info("call complete",
			"task", event.Task, "model", event.Model, "latency_ms", event.LatencyMs)
		return
	}
	o.logger.Warn("call failed",
		"task", event.Task, "model", event.Model, "latency_ms", event.LatencyMs,
		"error_code", event.ErrorCode)
}

// NoopObserver discards all events. Useful for tests.
type NoopObserver struct{}

func (NoopObserver) OnCallComplete(LLMCallEvent) {}

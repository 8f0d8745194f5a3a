package accesslog

import (
	"context"
	"encoding/json"
	"fmt"

	"ms-dayreport/internal/logger"
	"ms-dayreport/internal/models"
	"ms-dayreport/internal/report"
)

// Publisher is the audit stream sink. The Kafka producer satisfies it.
type Publisher interface {
	Publish(ctx context.Context, key, value []byte) error
}

// Recorder appends access log entries to the audit stream. Fire-and-forget:
// a dead sink costs an audit line and a diagnostic log, never the response.
type Recorder struct {
	Sink   Publisher
	Logger *logger.Logger
}

func NewRecorder(sink Publisher, log *logger.Logger) *Recorder {
	return &Recorder{Sink: sink, Logger: log}
}

// Record writes one entry. Errors are swallowed after logging.
func (r *Recorder) Record(ctx context.Context, entry models.AccessLogEntry) {
	payload, err := json.Marshal(entry)
	if err != nil {
		r.logError(fmt.Sprintf("failed to marshal access entry for %s: %v", entry.Actor, err))
		return
	}

	if r.Sink == nil {
		r.logError("no audit sink configured, dropping access entry")
		return
	}

	if err := r.Sink.Publish(ctx, []byte(entry.Actor), payload); err != nil {
		sinkErr := &report.LogSinkError{Err: err}
		r.logError(fmt.Sprintf("dropping access entry for %s: %v", entry.Actor, sinkErr))
		return
	}

	if r.Logger != nil {
		r.Logger.Debug("ACCESS", fmt.Sprintf("recorded %s read of %s (%s)", entry.Actor, entry.Date, entry.CacheStatus))
	}
}

func (r *Recorder) logError(msg string) {
	if r.Logger != nil {
		r.Logger.Error("ACCESS", msg)
	}
}

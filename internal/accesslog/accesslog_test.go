package accesslog_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-dayreport/internal/accesslog"
	"ms-dayreport/internal/logger"
	"ms-dayreport/internal/models"
)

type CapturingPublisher struct {
	keys   [][]byte
	values [][]byte
	err    error
}

func (p *CapturingPublisher) Publish(ctx context.Context, key, value []byte) error {
	if p.err != nil {
		return p.err
	}
	p.keys = append(p.keys, key)
	p.values = append(p.values, value)
	return nil
}

func sampleEntry() models.AccessLogEntry {
	return models.AccessLogEntry{
		Actor:       "admin-1",
		Date:        "2025-06-15",
		CacheStatus: models.CacheStatusHit,
		Timestamp:   time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
		OriginAddr:  "10.0.0.5:51234",
	}
}

func TestRecord_PublishesEntryKeyedByActor(t *testing.T) {
	sink := &CapturingPublisher{}
	recorder := accesslog.NewRecorder(sink, logger.NewLogger())

	recorder.Record(context.Background(), sampleEntry())

	require.Len(t, sink.values, 1)
	assert.Equal(t, []byte("admin-1"), sink.keys[0])

	var decoded models.AccessLogEntry
	require.NoError(t, json.Unmarshal(sink.values[0], &decoded))
	assert.Equal(t, sampleEntry(), decoded)
}

func TestRecord_SinkFailureIsSwallowed(t *testing.T) {
	sink := &CapturingPublisher{err: errors.New("broker unreachable")}
	recorder := accesslog.NewRecorder(sink, logger.NewLogger())

	// Must not panic or surface the failure in any way.
	recorder.Record(context.Background(), sampleEntry())
	assert.Empty(t, sink.values)
}

func TestRecord_NilSinkIsSafe(t *testing.T) {
	recorder := accesslog.NewRecorder(nil, logger.NewLogger())
	recorder.Record(context.Background(), sampleEntry())
}

package invalidate_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"ms-dayreport/internal/invalidate"
	"ms-dayreport/internal/logger"
	"ms-dayreport/internal/models"
)

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetOrCompute(ctx context.Context, date string, forceRefresh bool) ([]models.OrderRow, bool, error) {
	args := m.Called(ctx, date, forceRefresh)
	return nil, args.Bool(1), args.Error(2)
}

func (m *MockCache) Invalidate(ctx context.Context, date string) error {
	args := m.Called(ctx, date)
	return args.Error(0)
}

func (m *MockCache) InvalidateAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func TestHandleOrderEvent_InvalidatesEverything(t *testing.T) {
	cache := new(MockCache)
	cache.On("InvalidateAll", mock.Anything).Return(nil)

	listener := invalidate.NewListener(cache, logger.NewLogger())
	err := listener.HandleOrderEvent(context.Background(), []byte(`{"order_id":"o1","action":"updated"}`))

	assert.NoError(t, err)
	cache.AssertCalled(t, "InvalidateAll", mock.Anything)
}

func TestHandleOrderEvent_MalformedPayload(t *testing.T) {
	cache := new(MockCache)

	listener := invalidate.NewListener(cache, logger.NewLogger())
	err := listener.HandleOrderEvent(context.Background(), []byte(`not json`))

	assert.Error(t, err)
	cache.AssertNotCalled(t, "InvalidateAll", mock.Anything)
}

func TestHandleEventEvent_TargetsTheEventDate(t *testing.T) {
	cache := new(MockCache)
	cache.On("Invalidate", mock.Anything, "2025-06-15").Return(nil)

	listener := invalidate.NewListener(cache, logger.NewLogger())
	err := listener.HandleEventEvent(context.Background(),
		[]byte(`{"event_id":"e1","action":"updated","start_date":"2025-06-15T19:00:00Z"}`))

	assert.NoError(t, err)
	cache.AssertCalled(t, "Invalidate", mock.Anything, "2025-06-15")
	cache.AssertNotCalled(t, "InvalidateAll", mock.Anything)
}

func TestHandleEventEvent_BareDateAccepted(t *testing.T) {
	cache := new(MockCache)
	cache.On("Invalidate", mock.Anything, "2025-06-15").Return(nil)

	listener := invalidate.NewListener(cache, logger.NewLogger())
	err := listener.HandleEventEvent(context.Background(),
		[]byte(`{"event_id":"e1","action":"created","start_date":"2025-06-15"}`))

	assert.NoError(t, err)
	cache.AssertCalled(t, "Invalidate", mock.Anything, "2025-06-15")
}

func TestHandleEventEvent_MissingDateFallsBackToBulk(t *testing.T) {
	cache := new(MockCache)
	cache.On("InvalidateAll", mock.Anything).Return(nil)

	listener := invalidate.NewListener(cache, logger.NewLogger())
	err := listener.HandleEventEvent(context.Background(),
		[]byte(`{"event_id":"e1","action":"deleted"}`))

	assert.NoError(t, err)
	cache.AssertCalled(t, "InvalidateAll", mock.Anything)
}

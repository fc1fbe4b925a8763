package repository

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockCache struct {
	mock.Mock
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]byte), args.Bool(1), args.Error(2)
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func TestFailoverCache(t *testing.T) {
	primary := new(mockCache)
	fallback := new(mockCache)
	logger := zerolog.New(io.Discard)
	cache := NewFailoverCache(primary, fallback, &logger)
	ctx := context.Background()

	t.Run("PrimarySuccess", func(t *testing.T) {
		primary.On("Get", ctx, "k1").Return([]byte("v1"), true, nil).Once()

		got, ok, err := cache.Get(ctx, "k1")
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []byte("v1"), got)
		primary.AssertExpectations(t)
	})

	t.Run("PrimaryFailFallbackSuccess", func(t *testing.T) {
		primary.On("Get", ctx, "k2").Return(nil, false, errors.New("fail")).Once()
		fallback.On("Get", ctx, "k2").Return([]byte("v2"), true, nil).Once()

		got, ok, err := cache.Get(ctx, "k2")
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []byte("v2"), got)
		assert.True(t, cache.isDown.Load())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("StaysOnFallbackInsideWindow", func(t *testing.T) {
		fallback.On("Set", ctx, "k3", []byte("v3"), time.Minute).Return(nil).Once()

		assert.NoError(t, cache.Set(ctx, "k3", []byte("v3"), time.Minute))
		primary.AssertNotCalled(t, "Set", ctx, "k3", []byte("v3"), time.Minute)
		fallback.AssertExpectations(t)
	})

	t.Run("RecoveryAttempt", func(t *testing.T) {
		cache.lastCheck = time.Now().Add(-2 * time.Minute)
		primary.On("Get", ctx, "k4").Return([]byte("v4"), true, nil).Once()

		got, _, err := cache.Get(ctx, "k4")
		assert.NoError(t, err)
		assert.Equal(t, []byte("v4"), got)
		assert.False(t, cache.isDown.Load())
		primary.AssertExpectations(t)
	})

	t.Run("RecoveryAttemptFail", func(t *testing.T) {
		cache.isDown.Store(true)
		cache.lastCheck = time.Now().Add(-2 * time.Minute)
		primary.On("Get", ctx, "k5").Return(nil, false, errors.New("still fail")).Once()
		fallback.On("Get", ctx, "k5").Return(nil, false, nil).Once()

		_, ok, err := cache.Get(ctx, "k5")
		assert.NoError(t, err)
		assert.False(t, ok)
		assert.True(t, cache.isDown.Load())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("SetFailover", func(t *testing.T) {
		cache.isDown.Store(false)
		primary.On("Set", ctx, "k6", []byte("v6"), time.Second).Return(errors.New("fail")).Once()
		fallback.On("Set", ctx, "k6", []byte("v6"), time.Second).Return(nil).Once()

		assert.NoError(t, cache.Set(ctx, "k6", []byte("v6"), time.Second))
		assert.True(t, cache.isDown.Load())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("DeleteClearsBoth", func(t *testing.T) {
		cache.isDown.Store(false)
		fallback.On("Delete", ctx, "k7").Return(nil).Once()
		primary.On("Delete", ctx, "k7").Return(nil).Once()

		assert.NoError(t, cache.Delete(ctx, "k7"))
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})
}

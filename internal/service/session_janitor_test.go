package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/artisanhub/marketplace-api/internal/core"
	"github.com/artisanhub/marketplace-api/internal/mocks"
)

func TestNewSessionJanitor_Validation(t *testing.T) {
	ctrl := gomock.NewController(t)

	_, err := NewSessionJanitor(SessionJanitorOptions{Interval: time.Minute})
	require.Error(t, err)

	_, err = NewSessionJanitor(SessionJanitorOptions{Store: mocks.NewMockExpiredSessionPurger(ctrl)})
	require.Error(t, err)
}

func TestSessionJanitor_PurgeOnceUsesRetentionCutoff(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockExpiredSessionPurger(ctrl)
	clock := core.NewFixedTimeProvider(validatorNow)

	j, err := NewSessionJanitor(SessionJanitorOptions{
		Store:     store,
		Interval:  time.Hour,
		Retention: 24 * time.Hour,
		Clock:     clock,
	})
	require.NoError(t, err)

	store.EXPECT().DeleteExpired(gomock.Any(), validatorNow.Add(-24*time.Hour)).Return(int64(7), nil)

	n, err := j.PurgeOnce(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 7, n)
}

func TestSessionJanitor_PurgeOnceWrapsStoreError(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockExpiredSessionPurger(ctrl)
	boom := errors.New("db down")

	j, err := NewSessionJanitor(SessionJanitorOptions{Store: store, Interval: time.Hour})
	require.NoError(t, err)

	store.EXPECT().DeleteExpired(gomock.Any(), gomock.Any()).Return(int64(0), boom)

	_, err = j.PurgeOnce(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestSessionJanitor_RunStopsOnCancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockExpiredSessionPurger(ctrl)

	purged := make(chan struct{}, 1)
	store.EXPECT().DeleteExpired(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, time.Time) (int64, error) {
			select {
			case purged <- struct{}{}:
			default:
			}
			return 0, nil
		}).MinTimes(1)

	j, err := NewSessionJanitor(SessionJanitorOptions{Store: store, Interval: 50 * time.Millisecond})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- j.Run(ctx) }()

	select {
	case <-purged:
	case <-time.After(5 * time.Second):
		t.Fatal("janitor never purged")
	}
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("janitor did not stop")
	}
}

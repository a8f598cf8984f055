package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/anonto42/bharat-link/backend/internal/models"
	"github.com/anonto42/bharat-link/backend/internal/realtime"
	"github.com/anonto42/bharat-link/backend/internal/repositories/memory"
	"github.com/anonto42/bharat-link/backend/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func seedRead(t *testing.T, store *memory.Store, createdAt time.Time) {
	t.Helper()
	n := &models.Notification{UserID: "u1", ActorID: "u2", Type: models.NotificationFollow, Message: "m", CreatedAt: createdAt}
	require.NoError(t, store.UpsertNotification(context.Background(), n))
	_, err := store.MarkAsRead(context.Background(), n.ID, "u1")
	require.NoError(t, err)
}

func TestSweep(t *testing.T) {
	store := memory.New()
	now := time.Now()
	seedRead(t, store, now.Add(-40*24*time.Hour))
	seedRead(t, store, now.Add(-time.Hour))

	svc := services.NewNotificationService(store, store, realtime.Nop{}, zap.NewNop(), time.Now)
	sweeper := NewNotificationSweeper(svc, 30, time.Hour, zap.NewNop())

	assert.Equal(t, int64(1), sweeper.Sweep(context.Background()))
	assert.Zero(t, sweeper.Sweep(context.Background()))

	store.Fail = errors.New("down")
	assert.Zero(t, sweeper.Sweep(context.Background()))
}

func TestRun_StopsOnCancel(t *testing.T) {
	store := memory.New()
	seedRead(t, store, time.Now().Add(-40*24*time.Hour))
	svc := services.NewNotificationService(store, store, realtime.Nop{}, zap.NewNop(), time.Now)
	sweeper := NewNotificationSweeper(svc, 30, 10*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweeper.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		page, err := svc.GetNotifications(context.Background(), "u1", "", 0)
		return err == nil && len(page.Items) == 0
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}

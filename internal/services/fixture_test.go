package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/anonto42/bharat-link/backend/internal/models"
	"github.com/anonto42/bharat-link/backend/internal/repositories/memory"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type emitted struct {
	UserID  string
	Event   string
	Payload any
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []emitted
}

func (r *recordingEmitter) EmitToUser(userID, event string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, emitted{UserID: userID, Event: event, Payload: payload})
}

func (r *recordingEmitter) EmitGlobal(event string, payload any) {
	r.EmitToUser("", event, payload)
}

func (r *recordingEmitter) named(event string) []emitted {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []emitted
	for _, e := range r.events {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

// fakeClock advances one second per reading so rows get distinct timestamps.
type fakeClock struct {
	mu     sync.Mutex
	t      time.Time
	step   time.Duration
	frozen bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC), step: time.Second}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.frozen {
		c.t = c.t.Add(c.step)
	}
	return c.t
}

func (c *fakeClock) Freeze() {
	c.mu.Lock()
	c.frozen = true
	c.mu.Unlock()
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	store         *memory.Store
	emitter       *recordingEmitter
	clock         *fakeClock
	activity      *ActivityService
	notifications *NotificationService
	feed          *FeedService
	graph         *SocialGraphService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	emitter := &recordingEmitter{}
	clock := newFakeClock()
	log := zap.NewNop()

	activity := NewActivityService(store, log, clock.Now)
	notifications := NewNotificationService(store, store, emitter, log, clock.Now)
	feed := NewFeedService(FeedDeps{
		Posts:         store,
		Likes:         store,
		Comments:      store,
		Users:         store,
		Notifications: notifications,
		Activity:      activity,
		Emitter:       emitter,
		Limits:        DefaultLimits,
		Log:           log,
		Now:           clock.Now,
	})
	graph := NewSocialGraphService(store, store, notifications, activity, clock.Now)

	return &fixture{
		store:         store,
		emitter:       emitter,
		clock:         clock,
		activity:      activity,
		notifications: notifications,
		feed:          feed,
		graph:         graph,
	}
}

func (f *fixture) user(t *testing.T, name string) *models.User {
	t.Helper()
	u := &models.User{Email: name + "@example.com", Name: name}
	require.NoError(t, f.store.CreateUser(context.Background(), u))
	return u
}

func (f *fixture) post(t *testing.T, author *models.User, content string) *models.PostView {
	t.Helper()
	p, err := f.feed.CreatePost(context.Background(), author.ID, models.CreatePostRequest{Content: content})
	require.NoError(t, err)
	return p
}

func (f *fixture) unread(t *testing.T, userID string) []models.NotificationView {
	t.Helper()
	page, err := f.notifications.GetNotifications(context.Background(), userID, "", MaxPageLimit)
	require.NoError(t, err)
	var out []models.NotificationView
	for _, n := range page.Items {
		if !n.Read {
			out = append(out, n)
		}
	}
	return out
}

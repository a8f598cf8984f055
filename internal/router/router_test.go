package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/anonto42/bharat-link/backend/internal/middleware"
	"github.com/anonto42/bharat-link/backend/internal/models"
	"github.com/anonto42/bharat-link/backend/internal/realtime"
	"github.com/anonto42/bharat-link/backend/internal/repositories/memory"
	"github.com/anonto42/bharat-link/backend/internal/services"
	"github.com/anonto42/bharat-link/backend/validators"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type apiFixture struct {
	e     *echo.Echo
	store *memory.Store
	auth  *middleware.JWTAuthenticator
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	log := zap.NewNop()
	store := memory.New()
	hub := realtime.NewHub(log, nil)
	auth := middleware.NewJWTAuthenticator("test-secret")

	activity := services.NewActivityService(store, log, time.Now)
	notifications := services.NewNotificationService(store, store, hub, log, time.Now)
	feed := services.NewFeedService(services.FeedDeps{
		Posts: store, Likes: store, Comments: store, Users: store,
		Notifications: notifications, Activity: activity, Emitter: hub,
		Log: log, Now: time.Now,
	})
	graph := services.NewSocialGraphService(store, store, notifications, activity, time.Now)

	e := echo.New()
	e.Validator = validators.NewValidator()
	SetupRoutes(e, Deps{
		Feed: feed, Graph: graph, Notifications: notifications, Activity: activity,
		Users: store, Hub: hub, Auth: auth, Log: log,
	})
	return &apiFixture{e: e, store: store, auth: auth}
}

func (a *apiFixture) user(t *testing.T, name string) (*models.User, string) {
	t.Helper()
	u := &models.User{Email: name + "@example.com", Name: name}
	require.NoError(t, a.store.CreateUser(context.Background(), u))
	token, err := a.auth.IssueToken(u, time.Hour)
	require.NoError(t, err)
	return u, token
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

func (a *apiFixture) do(t *testing.T, method, path, token, body string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec.Code, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func TestHealth(t *testing.T) {
	api := newAPI(t)
	rec := httptest.NewRecorder()
	api.e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPostLifecycle(t *testing.T) {
	api := newAPI(t)
	_, asha := api.user(t, "asha")
	ravi, raviToken := api.user(t, "ravi")

	code, _ := api.do(t, http.MethodPost, "/api/v1/posts", "", `{"content":"hi"}`)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env := api.do(t, http.MethodPost, "/api/v1/posts", asha, `{"content":"hello world","media":["a.png"]}`)
	require.Equal(t, http.StatusCreated, code)
	assert.True(t, env.Success)
	post := decode[models.PostView](t, env.Data)
	assert.Equal(t, "asha", post.Author.Name)

	code, env = api.do(t, http.MethodPost, "/api/v1/posts/"+post.ID+"/like", raviToken, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, models.LikeResult{Liked: true, LikesCount: 1}, decode[models.LikeResult](t, env.Data))

	code, env = api.do(t, http.MethodGet, "/api/v1/posts/"+post.ID, raviToken, "")
	require.Equal(t, http.StatusOK, code)
	view := decode[models.PostView](t, env.Data)
	require.NotNil(t, view.IsLiked)
	assert.True(t, *view.IsLiked)

	code, env = api.do(t, http.MethodGet, "/api/v1/posts/"+post.ID, "", "")
	require.Equal(t, http.StatusOK, code)
	assert.False(t, *decode[models.PostView](t, env.Data).IsLiked)

	code, env = api.do(t, http.MethodPost, "/api/v1/posts/"+post.ID+"/comments", raviToken, `{"content":"great"}`)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, ravi.ID, decode[models.CommentView](t, env.Data).AuthorID)

	code, env = api.do(t, http.MethodGet, "/api/v1/posts/"+post.ID+"/comments", "", "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]models.CommentView](t, env.Data), 1)

	code, env = api.do(t, http.MethodPut, "/api/v1/posts/"+post.ID, raviToken, `{"content":"mine now"}`)
	assert.Equal(t, http.StatusForbidden, code)
	assert.False(t, env.Success)
	assert.Equal(t, "You do not have permission to update this post", env.Message)

	code, env = api.do(t, http.MethodPut, "/api/v1/posts/"+post.ID, asha, `{"content":"edited"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "edited", decode[models.PostView](t, env.Data).Content)

	code, env = api.do(t, http.MethodGet, "/api/v1/notifications/unread-count", asha, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]int{"count": 2}, decode[map[string]int](t, env.Data))

	code, env = api.do(t, http.MethodDelete, "/api/v1/posts/"+post.ID, asha, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Post deleted successfully", env.Message)

	code, env = api.do(t, http.MethodGet, "/api/v1/posts/"+post.ID, "", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Post not found", env.Message)
}

func TestValidationErrors(t *testing.T) {
	api := newAPI(t)
	_, token := api.user(t, "asha")

	code, env := api.do(t, http.MethodPost, "/api/v1/posts", token, `{"content":""}`)
	require.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Validation error", env.Message)
	fields := decode[[]map[string]string](t, env.Error)
	require.Len(t, fields, 1)
	assert.Equal(t, "content", fields[0]["field"])

	code, env = api.do(t, http.MethodPost, "/api/v1/posts", token, `{"content":"`+strings.Repeat("x", 5001)+`"}`)
	require.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "content", decode[[]map[string]string](t, env.Error)[0]["field"])

	code, _ = api.do(t, http.MethodPost, "/api/v1/posts", token, `{not json`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = api.do(t, http.MethodGet, "/api/v1/posts?cursor=nope", "", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid cursor", env.Message)

	code, _ = api.do(t, http.MethodGet, "/api/v1/posts?limit=ten", "", "")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestFeedPagination(t *testing.T) {
	api := newAPI(t)
	_, token := api.user(t, "asha")
	for i := 0; i < 3; i++ {
		code, _ := api.do(t, http.MethodPost, "/api/v1/posts", token, `{"content":"p"}`)
		require.Equal(t, http.StatusCreated, code)
	}

	code, env := api.do(t, http.MethodGet, "/api/v1/posts?limit=2", "", "")
	require.Equal(t, http.StatusOK, code)
	page := decode[models.Page[models.PostView]](t, env.Data)
	assert.Len(t, page.Items, 2)
	assert.True(t, page.HasMore)
	require.NotNil(t, page.NextCursor)

	code, env = api.do(t, http.MethodGet, "/api/v1/posts?limit=2&cursor="+*page.NextCursor, "", "")
	require.Equal(t, http.StatusOK, code)
	page = decode[models.Page[models.PostView]](t, env.Data)
	assert.Len(t, page.Items, 1)
	assert.False(t, page.HasMore)
	assert.Nil(t, page.NextCursor)
}

func TestFollowFlow(t *testing.T) {
	api := newAPI(t)
	x, xToken := api.user(t, "xena")
	y, yToken := api.user(t, "yash")

	code, env := api.do(t, http.MethodPost, "/api/v1/users/"+y.ID+"/follow", xToken, "")
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, y.ID, decode[models.ConnectionView](t, env.Data).Following.ID)

	code, env = api.do(t, http.MethodPost, "/api/v1/users/"+y.ID+"/follow", xToken, "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Already following this user", env.Message)

	code, env = api.do(t, http.MethodPost, "/api/v1/users/"+x.ID+"/follow", xToken, "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Cannot follow yourself", env.Message)

	code, env = api.do(t, http.MethodGet, "/api/v1/users/"+y.ID+"/connection-status", xToken, "")
	require.Equal(t, http.StatusOK, code)
	assert.True(t, decode[models.ConnectionStatus](t, env.Data).IsFollowing)

	code, env = api.do(t, http.MethodGet, "/api/v1/users/"+y.ID+"/follow-counts", xToken, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, models.FollowCounts{Followers: 1}, decode[models.FollowCounts](t, env.Data))

	code, env = api.do(t, http.MethodGet, "/api/v1/users/"+y.ID+"/followers", xToken, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, x.ID, decode[[]models.UserSummary](t, env.Data)[0].ID)

	code, env = api.do(t, http.MethodGet, "/api/v1/notifications", yToken, "")
	require.Equal(t, http.StatusOK, code)
	page := decode[models.Page[models.NotificationView]](t, env.Data)
	require.Len(t, page.Items, 1)
	n := page.Items[0]
	assert.Equal(t, models.NotificationFollow, n.Type)
	assert.Equal(t, "xena", n.Actor.Name)

	code, _ = api.do(t, http.MethodPut, "/api/v1/notifications/"+n.ID+"/read", xToken, "")
	assert.Equal(t, http.StatusNotFound, code)

	code, env = api.do(t, http.MethodPut, "/api/v1/notifications/"+n.ID+"/read", yToken, "")
	require.Equal(t, http.StatusOK, code)
	assert.True(t, decode[models.Notification](t, env.Data).Read)

	code, env = api.do(t, http.MethodPut, "/api/v1/notifications/mark-all-read", yToken, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]int{"updated": 0}, decode[map[string]int](t, env.Data))

	code, env = api.do(t, http.MethodGet, "/api/v1/users/"+y.ID+"/activity", yToken, "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]models.Activity](t, env.Data), 1)

	code, env = api.do(t, http.MethodDelete, "/api/v1/users/"+y.ID+"/follow", xToken, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Unfollowed successfully", env.Message)

	code, env = api.do(t, http.MethodDelete, "/api/v1/users/"+y.ID+"/follow", xToken, "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Not following this user", env.Message)

	code, _ = api.do(t, http.MethodGet, "/api/v1/users/"+y.ID+"/followers", "", "")
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestGetMe(t *testing.T) {
	api := newAPI(t)
	u, token := api.user(t, "asha")

	code, env := api.do(t, http.MethodGet, "/api/v1/users/me", token, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, u.ID, decode[models.User](t, env.Data).ID)
}

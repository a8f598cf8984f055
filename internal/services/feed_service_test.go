package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/anonto42/bharat-link/backend/internal/models"
	"github.com/anonto42/bharat-link/backend/internal/realtime"
	"github.com/anonto42/bharat-link/backend/internal/repositories"
	apperrors "github.com/anonto42/bharat-link/backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePost_ContentLength(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.user(t, "asha")

	_, err := f.feed.CreatePost(ctx, author.ID, models.CreatePostRequest{Content: strings.Repeat("a", 5001)})
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.CodeInvalidArgument, appErr.Code)
	require.Len(t, appErr.Fields, 1)
	assert.Equal(t, "content", appErr.Fields[0].Field)

	post, err := f.feed.CreatePost(ctx, author.ID, models.CreatePostRequest{Content: strings.Repeat("a", 5000)})
	require.NoError(t, err)
	assert.Len(t, post.Content, 5000)

	// Length is measured in characters, not bytes.
	_, err = f.feed.CreatePost(ctx, author.ID, models.CreatePostRequest{Content: strings.Repeat("न", 5000)})
	require.NoError(t, err)

	_, err = f.feed.CreatePost(ctx, author.ID, models.CreatePostRequest{Content: "   "})
	assert.Equal(t, apperrors.CodeInvalidArgument, apperrors.CodeOf(err))
}

func TestCreatePost_ReturnsViewAndBroadcasts(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "asha")

	post, err := f.feed.CreatePost(context.Background(), author.ID, models.CreatePostRequest{
		Content: "hello",
		Media:   []string{"https://cdn.example.com/a.png"},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, post.ID)
	assert.Equal(t, author.ID, post.Author.ID)
	assert.Equal(t, "asha", post.Author.Name)
	assert.Equal(t, 0, post.LikesCount)
	assert.Equal(t, models.PostCounts{}, post.Count)
	assert.Equal(t, []string{"https://cdn.example.com/a.png"}, []string(post.Media))

	created := f.emitter.named(realtime.EventPostCreated)
	require.Len(t, created, 1)
	assert.Empty(t, created[0].UserID)

	acts, err := f.activity.GetUserActivity(context.Background(), author.ID, 10)
	require.NoError(t, err)
	require.Len(t, acts, 1)
	assert.Equal(t, ActivityPostCreated, acts[0].Event)
}

func TestCreatePost_UnknownAuthor(t *testing.T) {
	f := newFixture(t)
	_, err := f.feed.CreatePost(context.Background(), "missing", models.CreatePostRequest{Content: "x"})
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestGetPosts_CursorPagination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.user(t, "asha")
	for i := 0; i < 25; i++ {
		f.post(t, author, fmt.Sprintf("post %d", i))
	}

	seen := map[string]bool{}
	var cursor string
	var sizes []int
	for {
		page, err := f.feed.GetPosts(ctx, PostQuery{Cursor: cursor, Limit: 10})
		require.NoError(t, err)
		sizes = append(sizes, len(page.Items))
		for i, p := range page.Items {
			assert.False(t, seen[p.ID], "post %s returned twice", p.ID)
			seen[p.ID] = true
			if i > 0 {
				assert.True(t, page.Items[i-1].CreatedAt.After(p.CreatedAt))
			}
		}
		if !page.HasMore {
			assert.Nil(t, page.NextCursor)
			break
		}
		require.NotNil(t, page.NextCursor)
		assert.Equal(t, page.Items[len(page.Items)-1].ID, *page.NextCursor)
		cursor = *page.NextCursor
	}
	assert.Equal(t, []int{10, 10, 5}, sizes)
	assert.Len(t, seen, 25)
}

func TestGetPosts_TiesBrokenByID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.user(t, "asha")
	f.clock.Freeze()
	for i := 0; i < 7; i++ {
		f.post(t, author, fmt.Sprintf("same instant %d", i))
	}

	var ids []string
	var cursor string
	for {
		page, err := f.feed.GetPosts(ctx, PostQuery{Cursor: cursor, Limit: 3})
		require.NoError(t, err)
		for _, p := range page.Items {
			ids = append(ids, p.ID)
		}
		if !page.HasMore {
			break
		}
		cursor = *page.NextCursor
	}
	require.Len(t, ids, 7)
	for i := 1; i < len(ids); i++ {
		assert.Greater(t, ids[i-1], ids[i])
	}
}

func TestGetPosts_ExactMultipleHasNoExtraPage(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "asha")
	for i := 0; i < 10; i++ {
		f.post(t, author, "p")
	}
	page, err := f.feed.GetPosts(context.Background(), PostQuery{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, page.Items, 10)
	assert.False(t, page.HasMore)
	assert.Nil(t, page.NextCursor)
}

func TestGetPosts_FilterAndDefaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	asha := f.user(t, "asha")
	ravi := f.user(t, "ravi")
	for i := 0; i < 12; i++ {
		f.post(t, asha, "a")
	}
	f.post(t, ravi, "r")

	page, err := f.feed.GetPosts(ctx, PostQuery{})
	require.NoError(t, err)
	assert.Len(t, page.Items, DefaultPostLimit)
	assert.True(t, page.HasMore)

	page, err = f.feed.GetPosts(ctx, PostQuery{UserID: ravi.ID})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, ravi.ID, page.Items[0].AuthorID)
	assert.False(t, page.HasMore)
}

func TestGetPosts_UnknownCursor(t *testing.T) {
	f := newFixture(t)
	_, err := f.feed.GetPosts(context.Background(), PostQuery{Cursor: "no-such-post"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCursor)
	assert.Equal(t, apperrors.CodeInvalidArgument, apperrors.CodeOf(err))
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 10, clampLimit(0, 10))
	assert.Equal(t, 1, clampLimit(-5, 10))
	assert.Equal(t, 50, clampLimit(500, 10))
	assert.Equal(t, 7, clampLimit(7, 10))
}

func TestGetPostByID_IsLiked(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.user(t, "asha")
	viewer := f.user(t, "ravi")
	post := f.post(t, author, "hello")

	anon, err := f.feed.GetPostByID(ctx, post.ID, "")
	require.NoError(t, err)
	require.NotNil(t, anon.IsLiked)
	assert.False(t, *anon.IsLiked)

	_, err = f.feed.ToggleLike(ctx, post.ID, viewer.ID, viewer.Name)
	require.NoError(t, err)

	seen, err := f.feed.GetPostByID(ctx, post.ID, viewer.ID)
	require.NoError(t, err)
	assert.True(t, *seen.IsLiked)
	assert.Equal(t, int64(1), seen.Count.Likes)
	assert.Equal(t, 1, seen.LikesCount)

	_, err = f.feed.GetPostByID(ctx, "missing", "")
	assert.ErrorIs(t, err, apperrors.ErrPostNotFound)
}

func TestUpdatePost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.user(t, "asha")
	other := f.user(t, "ravi")
	post := f.post(t, author, "first")

	content := "second"
	_, err := f.feed.UpdatePost(ctx, post.ID, other.ID, models.UpdatePostRequest{Content: &content})
	assert.ErrorIs(t, err, apperrors.ErrPostUpdateForbidden)

	_, err = f.feed.UpdatePost(ctx, "missing", author.ID, models.UpdatePostRequest{Content: &content})
	assert.ErrorIs(t, err, apperrors.ErrPostNotFound)

	tooLong := strings.Repeat("x", 5001)
	_, err = f.feed.UpdatePost(ctx, post.ID, author.ID, models.UpdatePostRequest{Content: &tooLong})
	assert.Equal(t, apperrors.CodeInvalidArgument, apperrors.CodeOf(err))

	media := []string{"m1", "m2"}
	updated, err := f.feed.UpdatePost(ctx, post.ID, author.ID, models.UpdatePostRequest{Media: &media})
	require.NoError(t, err)
	assert.Equal(t, "first", updated.Content)
	assert.Equal(t, media, []string(updated.Media))

	updated, err = f.feed.UpdatePost(ctx, post.ID, author.ID, models.UpdatePostRequest{Content: &content})
	require.NoError(t, err)
	assert.Equal(t, "second", updated.Content)
	assert.Equal(t, media, []string(updated.Media))

	assert.Len(t, f.emitter.named(realtime.EventPostUpdated), 2)
}

func TestDeletePost_Cascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.user(t, "asha")
	post := f.post(t, author, "doomed")

	for i := 0; i < 3; i++ {
		c := f.user(t, fmt.Sprintf("commenter%d", i))
		_, err := f.feed.AddComment(ctx, post.ID, c.ID, c.Name, "nice")
		require.NoError(t, err)
	}
	for i := 0; i < 2; i++ {
		l := f.user(t, fmt.Sprintf("liker%d", i))
		_, err := f.feed.ToggleLike(ctx, post.ID, l.ID, l.Name)
		require.NoError(t, err)
	}

	other := f.user(t, "intruder")
	assert.ErrorIs(t, f.feed.DeletePost(ctx, post.ID, other.ID), apperrors.ErrPostDeleteForbidden)

	require.NoError(t, f.feed.DeletePost(ctx, post.ID, author.ID))

	comments, err := f.feed.GetComments(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
	assert.Zero(t, f.store.LikeRows(post.ID))

	_, err = f.feed.GetPostByID(ctx, post.ID, "")
	assert.ErrorIs(t, err, apperrors.ErrPostNotFound)
	assert.ErrorIs(t, f.feed.DeletePost(ctx, post.ID, author.ID), apperrors.ErrPostNotFound)

	deleted := f.emitter.named(realtime.EventPostDeleted)
	require.Len(t, deleted, 1)
	assert.Equal(t, models.PostDeletedEvent{PostID: post.ID}, deleted[0].Payload)
}

func TestToggleLike_LikeThenUnlike(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	y := f.user(t, "yash")
	x := f.user(t, "xena")
	post := f.post(t, y, "hello")

	res, err := f.feed.ToggleLike(ctx, post.ID, x.ID, x.Name)
	require.NoError(t, err)
	assert.Equal(t, models.LikeResult{Liked: true, LikesCount: 1}, *res)

	unread := f.unread(t, y.ID)
	require.Len(t, unread, 1)
	assert.Equal(t, models.NotificationLike, unread[0].Type)
	assert.Equal(t, x.ID, unread[0].ActorID)
	assert.Equal(t, "xena liked your post", unread[0].Message)
	require.NotNil(t, unread[0].PostID)
	assert.Equal(t, post.ID, *unread[0].PostID)

	res, err = f.feed.ToggleLike(ctx, post.ID, x.ID, x.Name)
	require.NoError(t, err)
	assert.Equal(t, models.LikeResult{Liked: false, LikesCount: 0}, *res)
	assert.Len(t, f.unread(t, y.ID), 1)

	liked := f.emitter.named(realtime.EventPostLiked)
	require.Len(t, liked, 2)
	assert.Equal(t, models.PostLikedEvent{PostID: post.ID, LikesCount: 0, Liked: false}, liked[1].Payload)

	pushed := f.emitter.named(realtime.EventNotificationNew)
	require.Len(t, pushed, 1)
	assert.Equal(t, y.ID, pushed[0].UserID)
}

func TestToggleLike_RepeatedLikeKeepsOneUnreadNotification(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.user(t, "asha")
	liker := f.user(t, "ravi")
	post := f.post(t, author, "hello")

	_, err := f.feed.ToggleLike(ctx, post.ID, liker.ID, liker.Name)
	require.NoError(t, err)
	first := f.unread(t, author.ID)
	require.Len(t, first, 1)

	_, err = f.feed.ToggleLike(ctx, post.ID, liker.ID, liker.Name)
	require.NoError(t, err)
	_, err = f.feed.ToggleLike(ctx, post.ID, liker.ID, liker.Name)
	require.NoError(t, err)

	second := f.unread(t, author.ID)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.True(t, second[0].CreatedAt.After(first[0].CreatedAt))

	// Once read, the next like produces a fresh notification.
	_, err = f.notifications.MarkAllAsRead(ctx, author.ID)
	require.NoError(t, err)
	_, err = f.feed.ToggleLike(ctx, post.ID, liker.ID, liker.Name)
	require.NoError(t, err)
	_, err = f.feed.ToggleLike(ctx, post.ID, liker.ID, liker.Name)
	require.NoError(t, err)
	third := f.unread(t, author.ID)
	require.Len(t, third, 1)
	assert.NotEqual(t, first[0].ID, third[0].ID)
}

func TestToggleLike_OwnPostDoesNotNotify(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "asha")
	post := f.post(t, author, "hello")

	res, err := f.feed.ToggleLike(context.Background(), post.ID, author.ID, author.Name)
	require.NoError(t, err)
	assert.True(t, res.Liked)
	assert.Empty(t, f.unread(t, author.ID))
	assert.Empty(t, f.emitter.named(realtime.EventNotificationNew))
}

func TestToggleLike_MissingPost(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "asha")
	_, err := f.feed.ToggleLike(context.Background(), "missing", u.ID, u.Name)
	assert.ErrorIs(t, err, apperrors.ErrPostNotFound)
}

func TestToggleLike_ConcurrentTogglesKeepCounterConsistent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.user(t, "asha")
	post := f.post(t, author, "popular")

	likers := make([]*models.User, 20)
	for i := range likers {
		likers[i] = f.user(t, fmt.Sprintf("liker%d", i))
	}

	var wg sync.WaitGroup
	for _, u := range likers {
		wg.Add(1)
		go func(u *models.User) {
			defer wg.Done()
			// Three toggles leave each user liking the post.
			for i := 0; i < 3; i++ {
				_, err := f.feed.ToggleLike(ctx, post.ID, u.ID, u.Name)
				assert.NoError(t, err)
			}
		}(u)
	}
	wg.Wait()

	view, err := f.feed.GetPostByID(ctx, post.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 20, view.LikesCount)
	assert.Equal(t, 20, f.store.LikeRows(post.ID))
	assert.Len(t, f.unread(t, author.ID), 20)
}

func TestAddComment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.user(t, "asha")
	commenter := f.user(t, "ravi")
	post := f.post(t, author, "hello")

	_, err := f.feed.AddComment(ctx, post.ID, commenter.ID, commenter.Name, strings.Repeat("c", 1001))
	assert.Equal(t, apperrors.CodeInvalidArgument, apperrors.CodeOf(err))

	_, err = f.feed.AddComment(ctx, "missing", commenter.ID, commenter.Name, "hi")
	assert.ErrorIs(t, err, apperrors.ErrPostNotFound)

	c, err := f.feed.AddComment(ctx, post.ID, commenter.ID, commenter.Name, strings.Repeat("c", 1000))
	require.NoError(t, err)
	assert.Equal(t, commenter.ID, c.Author.ID)

	added := f.emitter.named(realtime.EventCommentAdded)
	require.Len(t, added, 1)
	event := added[0].Payload.(models.CommentAddedEvent)
	assert.Equal(t, post.ID, event.PostID)
	assert.Equal(t, c.ID, event.Comment.ID)

	unread := f.unread(t, author.ID)
	require.Len(t, unread, 1)
	assert.Equal(t, models.NotificationComment, unread[0].Type)
	assert.Equal(t, "ravi commented on your post", unread[0].Message)
	require.NotNil(t, unread[0].CommentID)
	assert.Equal(t, c.ID, *unread[0].CommentID)

	_, err = f.feed.AddComment(ctx, post.ID, author.ID, author.Name, "thanks")
	require.NoError(t, err)
	assert.Len(t, f.unread(t, author.ID), 1)

	view, err := f.feed.GetPostByID(ctx, post.ID, "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), view.Count.Comments)
}

func TestGetComments_NewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.user(t, "asha")
	post := f.post(t, author, "hello")

	for _, text := range []string{"one", "two", "three"} {
		_, err := f.feed.AddComment(ctx, post.ID, author.ID, author.Name, text)
		require.NoError(t, err)
	}
	comments, err := f.feed.GetComments(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 3)
	assert.Equal(t, "three", comments[0].Content)
	assert.Equal(t, "one", comments[2].Content)
	assert.Equal(t, "asha", comments[0].Author.Name)
}

func TestReconcileLikesCount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.user(t, "asha")
	liker := f.user(t, "ravi")
	a := f.post(t, author, "a")
	b := f.post(t, author, "b")
	_, err := f.feed.ToggleLike(ctx, a.ID, liker.ID, liker.Name)
	require.NoError(t, err)

	fixed, err := f.feed.ReconcileLikesCount(ctx, "")
	require.NoError(t, err)
	assert.Zero(t, fixed)

	f.store.SetLikesCount(a.ID, 7)
	f.store.SetLikesCount(b.ID, 3)

	fixed, err = f.feed.ReconcileLikesCount(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), fixed)

	fixed, err = f.feed.ReconcileLikesCount(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), fixed)

	view, err := f.feed.GetPostByID(ctx, a.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 1, view.LikesCount)
	view, err = f.feed.GetPostByID(ctx, b.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 0, view.LikesCount)
}

func TestFeed_StorageFailureIsInternal(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "asha")
	f.store.Fail = errors.New("connection reset")

	_, err := f.feed.GetPosts(context.Background(), PostQuery{})
	assert.Equal(t, apperrors.CodeInternal, apperrors.CodeOf(err))
	_, err = f.feed.CreatePost(context.Background(), author.ID, models.CreatePostRequest{Content: "x"})
	assert.Equal(t, apperrors.CodeInternal, apperrors.CodeOf(err))
}

func TestFeed_MalformedIDsReadAsEmpty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	// Postgres reports a non-UUID id as a not-found lookup.
	f.store.Fail = fmt.Errorf("postRepo.ListPosts: %w", repositories.ErrNotFound)

	page, err := f.feed.GetPosts(ctx, PostQuery{UserID: "not-a-uuid"})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.False(t, page.HasMore)
	assert.Nil(t, page.NextCursor)

	comments, err := f.feed.GetComments(ctx, "not-a-uuid")
	require.NoError(t, err)
	assert.NotNil(t, comments)
	assert.Empty(t, comments)
}

func TestGetPosts_UnknownCursorWithAuthorFilter(t *testing.T) {
	f := newFixture(t)
	author := f.user(t, "asha")
	f.post(t, author, "hello")

	_, err := f.feed.GetPosts(context.Background(), PostQuery{UserID: author.ID, Cursor: "not-a-uuid"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCursor)
}

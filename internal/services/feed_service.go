package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/anonto42/bharat-link/backend/internal/models"
	"github.com/anonto42/bharat-link/backend/internal/realtime"
	"github.com/anonto42/bharat-link/backend/internal/repositories"
	apperrors "github.com/anonto42/bharat-link/backend/pkg/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// Activity event names recorded by the feed.
const (
	ActivityPostCreated  = "post.created"
	ActivityPostUpdated  = "post.updated"
	ActivityPostDeleted  = "post.deleted"
	ActivityPostLiked    = "post.liked"
	ActivityPostUnliked  = "post.unliked"
	ActivityCommentAdded = "comment.added"
)

// PostQuery selects a page of the feed. UserID filters by author.
type PostQuery struct {
	Cursor string
	Limit  int
	UserID string
}

type FeedDeps struct {
	Posts         repositories.PostRepository
	Likes         repositories.LikeRepository
	Comments      repositories.CommentRepository
	Users         repositories.UserRepository
	Notifications *NotificationService
	Activity      *ActivityService
	Emitter       realtime.Emitter
	Limits        Limits
	Log           *zap.Logger
	Now           Clock
}

type FeedService struct {
	posts    repositories.PostRepository
	likes    repositories.LikeRepository
	comments repositories.CommentRepository
	users    repositories.UserRepository
	notifier *NotificationService
	activity *ActivityService
	emitter  realtime.Emitter
	limits   Limits
	log      *zap.Logger
	now      Clock
}

func NewFeedService(d FeedDeps) *FeedService {
	if d.Limits.PostMaxLength <= 0 {
		d.Limits.PostMaxLength = DefaultLimits.PostMaxLength
	}
	if d.Limits.CommentMaxLength <= 0 {
		d.Limits.CommentMaxLength = DefaultLimits.CommentMaxLength
	}
	return &FeedService{
		posts:    d.Posts,
		likes:    d.Likes,
		comments: d.Comments,
		users:    d.Users,
		notifier: d.Notifications,
		activity: d.Activity,
		emitter:  d.Emitter,
		limits:   d.Limits,
		log:      d.Log.Named("feed"),
		now:      d.Now,
	}
}

func validateText(field, label, value string, max int) error {
	if strings.TrimSpace(value) == "" {
		return apperrors.InvalidField(field, label+" is required")
	}
	if utf8.RuneCountInString(value) > max {
		return apperrors.InvalidField(field, fmt.Sprintf("%s must be at most %d characters", label, max))
	}
	return nil
}

func (s *FeedService) CreatePost(ctx context.Context, authorID string, req models.CreatePostRequest) (*models.PostView, error) {
	if err := validateText("content", "Content", req.Content, s.limits.PostMaxLength); err != nil {
		return nil, err
	}
	if _, err := s.users.GetUserByID(ctx, authorID); err != nil {
		return nil, storage(err, apperrors.ErrUserNotFound)
	}

	media := datatypes.JSONSlice[string]{}
	if req.Media != nil {
		media = datatypes.JSONSlice[string](req.Media)
	}
	now := s.now()
	post := &models.Post{
		ID:        uuid.NewString(),
		AuthorID:  authorID,
		Content:   req.Content,
		Media:     media,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, apperrors.ErrStorage(err)
	}

	views, err := s.decorate(ctx, []models.Post{*post})
	if err != nil {
		return nil, err
	}
	view := &views[0]

	s.emitter.EmitGlobal(realtime.EventPostCreated, view)
	s.activity.Record(ctx, models.Activity{Event: ActivityPostCreated, ActorID: authorID, PostID: post.ID})
	return view, nil
}

func (s *FeedService) GetPosts(ctx context.Context, q PostQuery) (*models.Page[models.PostView], error) {
	limit := clampLimit(q.Limit, DefaultPostLimit)

	rows, err := s.posts.ListPosts(ctx, repositories.PostFilter{
		ListOptions: repositories.ListOptions{Cursor: q.Cursor, Limit: limit + 1},
		AuthorID:    q.UserID,
	})
	if err != nil {
		if empty, mapped := listFailure(err); !empty {
			return nil, mapped
		}
		return &models.Page[models.PostView]{Items: []models.PostView{}}, nil
	}
	rows, next, hasMore := pageOf(rows, limit, func(p models.Post) string { return p.ID })

	items, err := s.decorate(ctx, rows)
	if err != nil {
		return nil, err
	}
	return &models.Page[models.PostView]{Items: items, NextCursor: next, HasMore: hasMore}, nil
}

// GetPostByID returns the post with isLiked resolved for viewerID, which may
// be empty for anonymous callers.
func (s *FeedService) GetPostByID(ctx context.Context, id, viewerID string) (*models.PostView, error) {
	post, err := s.posts.GetPostByID(ctx, id)
	if err != nil {
		return nil, storage(err, apperrors.ErrPostNotFound)
	}
	views, err := s.decorate(ctx, []models.Post{*post})
	if err != nil {
		return nil, err
	}
	view := &views[0]

	liked := false
	if viewerID != "" {
		if liked, err = s.likes.HasUserLikedPost(ctx, id, viewerID); err != nil {
			return nil, apperrors.ErrStorage(err)
		}
	}
	view.IsLiked = &liked
	return view, nil
}

func (s *FeedService) UpdatePost(ctx context.Context, id, userID string, req models.UpdatePostRequest) (*models.PostView, error) {
	post, err := s.posts.GetPostByID(ctx, id)
	if err != nil {
		return nil, storage(err, apperrors.ErrPostNotFound)
	}
	if post.AuthorID != userID {
		return nil, apperrors.ErrPostUpdateForbidden
	}
	if req.Content != nil {
		if err := validateText("content", "Content", *req.Content, s.limits.PostMaxLength); err != nil {
			return nil, err
		}
	}

	updated, err := s.posts.UpdatePost(ctx, id, repositories.PostUpdate{Content: req.Content, Media: req.Media})
	if err != nil {
		return nil, storage(err, apperrors.ErrPostNotFound)
	}
	views, err := s.decorate(ctx, []models.Post{*updated})
	if err != nil {
		return nil, err
	}
	view := &views[0]

	s.emitter.EmitGlobal(realtime.EventPostUpdated, view)
	s.activity.Record(ctx, models.Activity{Event: ActivityPostUpdated, ActorID: userID, PostID: id})
	return view, nil
}

// DeletePost removes the post with its comments and likes atomically.
func (s *FeedService) DeletePost(ctx context.Context, id, userID string) error {
	post, err := s.posts.GetPostByID(ctx, id)
	if err != nil {
		return storage(err, apperrors.ErrPostNotFound)
	}
	if post.AuthorID != userID {
		return apperrors.ErrPostDeleteForbidden
	}
	if err := s.posts.DeletePostCascade(ctx, id); err != nil {
		return storage(err, apperrors.ErrPostNotFound)
	}

	s.emitter.EmitGlobal(realtime.EventPostDeleted, models.PostDeletedEvent{PostID: id})
	s.activity.Record(ctx, models.Activity{Event: ActivityPostDeleted, ActorID: userID, PostID: id})
	return nil
}

// ToggleLike likes the post for userID, or removes the like if present. A new
// like by anyone but the author notifies the author.
func (s *FeedService) ToggleLike(ctx context.Context, postID, userID, actorName string) (*models.LikeResult, error) {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, storage(err, apperrors.ErrPostNotFound)
	}

	liked, err := s.likes.ToggleLike(ctx, postID, userID)
	if err != nil {
		return nil, storage(err, apperrors.ErrPostNotFound)
	}
	count, err := s.likes.GetLikesCount(ctx, postID)
	if err != nil {
		return nil, storage(err, apperrors.ErrPostNotFound)
	}
	result := &models.LikeResult{Liked: liked, LikesCount: count}

	s.emitter.EmitGlobal(realtime.EventPostLiked, models.PostLikedEvent{PostID: postID, LikesCount: count, Liked: liked})

	event := ActivityPostUnliked
	if liked {
		event = ActivityPostLiked
	}
	s.activity.Record(ctx, models.Activity{Event: event, ActorID: userID, TargetUserID: post.AuthorID, PostID: postID})

	if liked && post.AuthorID != userID {
		s.notifier.Notify(ctx, models.CreateNotificationInput{
			UserID:  post.AuthorID,
			Type:    models.NotificationLike,
			ActorID: userID,
			PostID:  &postID,
			Message: actorName + " liked your post",
		})
	}
	return result, nil
}

func (s *FeedService) AddComment(ctx context.Context, postID, userID, actorName, content string) (*models.CommentView, error) {
	if err := validateText("content", "Comment", content, s.limits.CommentMaxLength); err != nil {
		return nil, err
	}
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, storage(err, apperrors.ErrPostNotFound)
	}

	comment := &models.Comment{
		ID:        uuid.NewString(),
		PostID:    postID,
		AuthorID:  userID,
		Content:   content,
		CreatedAt: s.now(),
	}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, storage(err, nil)
	}

	authors, err := summaries(ctx, s.users, []string{userID})
	if err != nil {
		return nil, err
	}
	view := &models.CommentView{Comment: *comment, Author: authors[userID]}

	s.emitter.EmitGlobal(realtime.EventCommentAdded, models.CommentAddedEvent{PostID: postID, Comment: *view})
	s.activity.Record(ctx, models.Activity{
		Event:        ActivityCommentAdded,
		ActorID:      userID,
		TargetUserID: post.AuthorID,
		PostID:       postID,
		Data:         map[string]any{"commentId": comment.ID},
	})

	if post.AuthorID != userID {
		s.notifier.Notify(ctx, models.CreateNotificationInput{
			UserID:    post.AuthorID,
			Type:      models.NotificationComment,
			ActorID:   userID,
			PostID:    &postID,
			CommentID: &comment.ID,
			Message:   actorName + " commented on your post",
		})
	}
	return view, nil
}

// GetComments lists the comments of a post, newest first.
func (s *FeedService) GetComments(ctx context.Context, postID string) ([]models.CommentView, error) {
	rows, err := s.comments.GetCommentsByPostID(ctx, postID)
	if err != nil {
		if isNotFound(err) {
			return []models.CommentView{}, nil
		}
		return nil, apperrors.ErrStorage(err)
	}
	ids := make([]string, 0, len(rows))
	for _, c := range rows {
		ids = append(ids, c.AuthorID)
	}
	authors, err := summaries(ctx, s.users, ids)
	if err != nil {
		return nil, err
	}
	views := make([]models.CommentView, 0, len(rows))
	for _, c := range rows {
		views = append(views, models.CommentView{Comment: c, Author: authors[c.AuthorID]})
	}
	return views, nil
}

// ReconcileLikesCount rewrites likesCount from the like rows of one post, or
// of every post when postID is empty.
func (s *FeedService) ReconcileLikesCount(ctx context.Context, postID string) (int64, error) {
	fixed, err := s.posts.ReconcileLikesCount(ctx, postID)
	if err != nil {
		return 0, storage(err, apperrors.ErrPostNotFound)
	}
	if fixed > 0 {
		s.log.Warn("corrected drifted like counters", zap.Int64("posts", fixed), zap.String("post_id", postID))
	}
	return fixed, nil
}

func (s *FeedService) decorate(ctx context.Context, posts []models.Post) ([]models.PostView, error) {
	views := make([]models.PostView, 0, len(posts))
	if len(posts) == 0 {
		return views, nil
	}

	postIDs := make([]string, 0, len(posts))
	authorIDs := make([]string, 0, len(posts))
	for _, p := range posts {
		postIDs = append(postIDs, p.ID)
		authorIDs = append(authorIDs, p.AuthorID)
	}

	authors, err := summaries(ctx, s.users, authorIDs)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.CountCommentsByPostIDs(ctx, postIDs)
	if err != nil {
		return nil, apperrors.ErrStorage(err)
	}
	likes, err := s.likes.CountLikesByPostIDs(ctx, postIDs)
	if err != nil {
		return nil, apperrors.ErrStorage(err)
	}

	for _, p := range posts {
		views = append(views, models.PostView{
			Post:   p,
			Author: authors[p.AuthorID],
			Count:  models.PostCounts{Comments: comments[p.ID], Likes: likes[p.ID]},
		})
	}
	return views, nil
}

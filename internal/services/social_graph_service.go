package services

import (
	"context"
	stderrors "errors"

	"github.com/anonto42/bharat-link/backend/internal/models"
	"github.com/anonto42/bharat-link/backend/internal/repositories"
	apperrors "github.com/anonto42/bharat-link/backend/pkg/errors"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	ActivityUserFollowed   = "user.followed"
	ActivityUserUnfollowed = "user.unfollowed"
)

type SocialGraphService struct {
	connections repositories.ConnectionRepository
	users       repositories.UserRepository
	notifier    *NotificationService
	activity    *ActivityService
	now         Clock
}

func NewSocialGraphService(
	connections repositories.ConnectionRepository,
	users repositories.UserRepository,
	notifier *NotificationService,
	activity *ActivityService,
	now Clock,
) *SocialGraphService {
	return &SocialGraphService{
		connections: connections,
		users:       users,
		notifier:    notifier,
		activity:    activity,
		now:         now,
	}
}

func (s *SocialGraphService) FollowUser(ctx context.Context, followerID, followingID, actorName string) (*models.ConnectionView, error) {
	if followerID == followingID {
		return nil, apperrors.ErrCannotFollowYourself
	}
	target, err := s.users.GetUserByID(ctx, followingID)
	if err != nil {
		return nil, storage(err, apperrors.ErrUserNotFound)
	}

	switch _, err := s.connections.GetConnection(ctx, followerID, followingID); {
	case err == nil:
		return nil, apperrors.ErrAlreadyFollowing
	case !isNotFound(err):
		return nil, apperrors.ErrStorage(err)
	}

	conn := &models.Connection{
		ID:          uuid.NewString(),
		FollowerID:  followerID,
		FollowingID: followingID,
		Status:      models.ConnectionAccepted,
		CreatedAt:   s.now(),
	}
	if err := s.connections.CreateConnection(ctx, conn); err != nil {
		// A concurrent follow of the same pair lost the race on the unique index.
		if stderrors.Is(err, repositories.ErrDuplicate) {
			return nil, apperrors.ErrAlreadyFollowing
		}
		return nil, apperrors.ErrStorage(err)
	}

	s.activity.Record(ctx, models.Activity{Event: ActivityUserFollowed, ActorID: followerID, TargetUserID: followingID})
	s.notifier.Notify(ctx, models.CreateNotificationInput{
		UserID:  followingID,
		Type:    models.NotificationFollow,
		ActorID: followerID,
		Message: actorName + " started following you",
	})

	return &models.ConnectionView{Connection: *conn, Following: target.ToSummary()}, nil
}

func (s *SocialGraphService) UnfollowUser(ctx context.Context, followerID, followingID string) error {
	if err := s.connections.DeleteConnection(ctx, followerID, followingID); err != nil {
		return storage(err, apperrors.ErrNotFollowing)
	}
	s.activity.Record(ctx, models.Activity{Event: ActivityUserUnfollowed, ActorID: followerID, TargetUserID: followingID})
	return nil
}

func (s *SocialGraphService) GetConnectionStatus(ctx context.Context, followerID, followingID string) (*models.ConnectionStatus, error) {
	conn, err := s.connections.GetConnection(ctx, followerID, followingID)
	if err != nil {
		if isNotFound(err) {
			return &models.ConnectionStatus{IsFollowing: false}, nil
		}
		return nil, apperrors.ErrStorage(err)
	}
	status := conn.Status
	return &models.ConnectionStatus{IsFollowing: true, Status: &status}, nil
}

// GetFollowers lists users following userID, most recent edge first.
func (s *SocialGraphService) GetFollowers(ctx context.Context, userID string) ([]models.UserSummary, error) {
	users, err := s.connections.GetFollowers(ctx, userID)
	return counterparts(users, err)
}

// GetFollowing lists users userID follows, most recent edge first.
func (s *SocialGraphService) GetFollowing(ctx context.Context, userID string) ([]models.UserSummary, error) {
	users, err := s.connections.GetFollowing(ctx, userID)
	return counterparts(users, err)
}

// GetFollowCounts runs both counts concurrently. They are not read from one
// snapshot.
func (s *SocialGraphService) GetFollowCounts(ctx context.Context, userID string) (*models.FollowCounts, error) {
	var counts models.FollowCounts
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.connections.GetFollowersCount(gctx, userID)
		counts.Followers = n
		return ignoreNotFound(err)
	})
	g.Go(func() error {
		n, err := s.connections.GetFollowingCount(gctx, userID)
		counts.Following = n
		return ignoreNotFound(err)
	})
	if err := g.Wait(); err != nil {
		return nil, apperrors.ErrStorage(err)
	}
	return &counts, nil
}

// counterparts treats an id that names no user as having no edges.
func counterparts(users []models.UserSummary, err error) ([]models.UserSummary, error) {
	if isNotFound(err) {
		return []models.UserSummary{}, nil
	}
	return users, storage(err, nil)
}

func ignoreNotFound(err error) error {
	if isNotFound(err) {
		return nil
	}
	return err
}

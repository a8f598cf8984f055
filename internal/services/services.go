// Package services holds the business rules of the feed, the social graph
// and notifications. Handlers and the CLI call into it; it talks to storage
// through the repository interfaces and pushes events through an Emitter.
package services

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/anonto42/bharat-link/backend/internal/models"
	"github.com/anonto42/bharat-link/backend/internal/repositories"
	apperrors "github.com/anonto42/bharat-link/backend/pkg/errors"
)

const (
	DefaultPostLimit         = 10
	DefaultNotificationLimit = 20
	MaxPageLimit             = 50
)

// Limits bounds user supplied text, counted in characters.
type Limits struct {
	PostMaxLength    int
	CommentMaxLength int
}

// DefaultLimits are used when no configuration is supplied.
var DefaultLimits = Limits{PostMaxLength: 5000, CommentMaxLength: 1000}

// Clock returns the current time. Tests replace it to control ordering.
type Clock func() time.Time

func clampLimit(limit, def int) int {
	switch {
	case limit == 0:
		return def
	case limit < 1:
		return 1
	case limit > MaxPageLimit:
		return MaxPageLimit
	}
	return limit
}

// pageOf trims an over-fetched slice to limit and computes the next cursor.
func pageOf[T any](rows []T, limit int, id func(T) string) ([]T, *string, bool) {
	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}
	if !hasMore || len(rows) == 0 {
		return rows, nil, hasMore
	}
	next := id(rows[len(rows)-1])
	return rows, &next, true
}

func isNotFound(err error) bool {
	return stderrors.Is(err, repositories.ErrNotFound)
}

// storage maps a repository failure onto an application error. A missing row
// becomes notFound, anything else is internal.
func storage(err, notFound error) error {
	if err == nil {
		return nil
	}
	if notFound != nil && isNotFound(err) {
		return notFound
	}
	return apperrors.ErrStorage(err)
}

// listFailure maps a failed listing. An unknown cursor is the caller's
// mistake. Any other not-found means the filter names nothing, so the
// listing is empty rather than an error.
func listFailure(err error) (empty bool, mapped error) {
	switch {
	case stderrors.Is(err, repositories.ErrUnknownCursor):
		return false, apperrors.ErrInvalidCursor
	case isNotFound(err):
		return true, nil
	default:
		return false, apperrors.ErrStorage(err)
	}
}

// summaries loads user summaries for ids, filling unknown users with a bare
// id so responses never carry an empty author.
func summaries(ctx context.Context, users repositories.UserRepository, ids []string) (map[string]models.UserSummary, error) {
	found, err := users.GetUserSummaries(ctx, ids)
	if err != nil {
		return nil, apperrors.ErrStorage(err)
	}
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			found[id] = models.UserSummary{ID: id}
		}
	}
	return found, nil
}

// Package memory is an in-process implementation of every repository
// interface. It is test infrastructure for the service, handler and router
// tests and is never wired into the server.
package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/anonto42/bharat-link/backend/internal/models"
	"github.com/anonto42/bharat-link/backend/internal/repositories"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Store keeps all rows in maps guarded by a single mutex, which makes every
// method atomic the same way a transaction would.
type Store struct {
	mu            sync.Mutex
	users         map[string]models.User
	posts         map[string]models.Post
	comments      map[string]models.Comment
	likes         map[likeKey]models.Like
	connections   map[edgeKey]models.Connection
	notifications map[string]models.Notification
	activities    []models.Activity

	// Fail, when set, is returned by every method. Tests use it to simulate a
	// storage outage.
	Fail error
}

type likeKey struct{ postID, userID string }

type edgeKey struct{ followerID, followingID string }

func New() *Store {
	return &Store{
		users:         map[string]models.User{},
		posts:         map[string]models.Post{},
		comments:      map[string]models.Comment{},
		likes:         map[likeKey]models.Like{},
		connections:   map[edgeKey]models.Connection{},
		notifications: map[string]models.Notification{},
	}
}

var (
	_ repositories.UserRepository         = (*Store)(nil)
	_ repositories.PostRepository         = (*Store)(nil)
	_ repositories.LikeRepository         = (*Store)(nil)
	_ repositories.CommentRepository      = (*Store)(nil)
	_ repositories.ConnectionRepository   = (*Store)(nil)
	_ repositories.NotificationRepository = (*Store)(nil)
	_ repositories.ActivityRepository     = (*Store)(nil)
)

// newer orders by created_at DESC, id DESC.
func newer(aTime time.Time, aID string, bTime time.Time, bID string) bool {
	if !aTime.Equal(bTime) {
		return aTime.After(bTime)
	}
	return aID > bID
}

// --- users ---

func (s *Store) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	for _, u := range s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return repositories.ErrDuplicate
		}
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	user.UpdatedAt = user.CreatedAt
	s.users[user.ID] = *user
	return nil
}

func (s *Store) GetUserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	u, ok := s.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &u, nil
}

func (s *Store) GetUserByFirebaseUID(_ context.Context, firebaseUID string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	for _, u := range s.users {
		if u.FirebaseUID != nil && *u.FirebaseUID == firebaseUID {
			return &u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *Store) UpsertFirebaseUser(_ context.Context, firebaseUID, email, name string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	for id, u := range s.users {
		if u.FirebaseUID != nil && *u.FirebaseUID == firebaseUID {
			if name != "" {
				u.Name = name
				s.users[id] = u
			}
			return &u, nil
		}
	}
	for id, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			uid := firebaseUID
			u.FirebaseUID = &uid
			s.users[id] = u
			return &u, nil
		}
	}
	if name == "" {
		name = email
	}
	uid := firebaseUID
	u := models.User{ID: uuid.NewString(), Email: email, Name: name, FirebaseUID: &uid, CreatedAt: time.Now()}
	s.users[u.ID] = u
	return &u, nil
}

func (s *Store) GetUserSummaries(_ context.Context, ids []string) (map[string]models.UserSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	out := make(map[string]models.UserSummary, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out[id] = u.ToSummary()
		}
	}
	return out, nil
}

// --- posts ---

func (s *Store) CreatePost(_ context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	if post.Media == nil {
		post.Media = datatypes.JSONSlice[string]{}
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now()
	}
	post.UpdatedAt = post.CreatedAt
	s.posts[post.ID] = clonePost(*post)
	return nil
}

func (s *Store) GetPostByID(_ context.Context, id string) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	p, ok := s.posts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	p = clonePost(p)
	return &p, nil
}

func (s *Store) ListPosts(_ context.Context, filter repositories.PostFilter) ([]models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	var anchor *models.Post
	if filter.Cursor != "" {
		p, ok := s.posts[filter.Cursor]
		if !ok {
			return nil, repositories.ErrUnknownCursor
		}
		anchor = &p
	}

	var out []models.Post
	for _, p := range s.posts {
		if filter.AuthorID != "" && p.AuthorID != filter.AuthorID {
			continue
		}
		if anchor != nil && !newer(anchor.CreatedAt, anchor.ID, p.CreatedAt, p.ID) {
			continue
		}
		out = append(out, clonePost(p))
	}
	sort.Slice(out, func(i, j int) bool {
		return newer(out[i].CreatedAt, out[i].ID, out[j].CreatedAt, out[j].ID)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *Store) UpdatePost(_ context.Context, id string, update repositories.PostUpdate) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	p, ok := s.posts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	if update.Content != nil {
		p.Content = *update.Content
	}
	if update.Media != nil {
		p.Media = slices.Clone(*update.Media)
	}
	p.UpdatedAt = time.Now()
	s.posts[id] = p
	p = clonePost(p)
	return &p, nil
}

func (s *Store) DeletePostCascade(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	if _, ok := s.posts[id]; !ok {
		return repositories.ErrNotFound
	}
	for cid, c := range s.comments {
		if c.PostID == id {
			delete(s.comments, cid)
		}
	}
	for k := range s.likes {
		if k.postID == id {
			delete(s.likes, k)
		}
	}
	delete(s.posts, id)
	return nil
}

func (s *Store) ReconcileLikesCount(_ context.Context, postID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return 0, s.Fail
	}
	actual := map[string]int{}
	for k := range s.likes {
		actual[k.postID]++
	}
	var fixed int64
	for id, p := range s.posts {
		if postID != "" && id != postID {
			continue
		}
		if p.LikesCount != actual[id] {
			p.LikesCount = actual[id]
			s.posts[id] = p
			fixed++
		}
	}
	return fixed, nil
}

// SetLikesCount overwrites a post counter without touching like rows. Tests
// use it to simulate drift.
func (s *Store) SetLikesCount(postID string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.posts[postID]
	p.LikesCount = n
	s.posts[postID] = p
}

func clonePost(p models.Post) models.Post {
	p.Media = slices.Clone(p.Media)
	return p
}

// --- likes ---

func (s *Store) ToggleLike(_ context.Context, postID, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return false, s.Fail
	}
	p, ok := s.posts[postID]
	if !ok {
		return false, repositories.ErrNotFound
	}
	key := likeKey{postID, userID}
	if _, liked := s.likes[key]; liked {
		delete(s.likes, key)
		p.LikesCount--
		s.posts[postID] = p
		return false, nil
	}
	s.likes[key] = models.Like{ID: uuid.NewString(), PostID: postID, UserID: userID, CreatedAt: time.Now()}
	p.LikesCount++
	s.posts[postID] = p
	return true, nil
}

func (s *Store) HasUserLikedPost(_ context.Context, postID, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return false, s.Fail
	}
	_, ok := s.likes[likeKey{postID, userID}]
	return ok, nil
}

func (s *Store) GetLikesCount(_ context.Context, postID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return 0, s.Fail
	}
	p, ok := s.posts[postID]
	if !ok {
		return 0, repositories.ErrNotFound
	}
	return p.LikesCount, nil
}

func (s *Store) CountLikesByPostIDs(_ context.Context, postIDs []string) (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	out := map[string]int64{}
	for k := range s.likes {
		if slices.Contains(postIDs, k.postID) {
			out[k.postID]++
		}
	}
	return out, nil
}

// LikeRows counts the stored like rows of a post.
func (s *Store) LikeRows(postID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k := range s.likes {
		if k.postID == postID {
			n++
		}
	}
	return n
}

// --- comments ---

func (s *Store) CreateComment(_ context.Context, comment *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now()
	}
	s.comments[comment.ID] = *comment
	return nil
}

func (s *Store) GetCommentsByPostID(_ context.Context, postID string) ([]models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	out := []models.Comment{}
	for _, c := range s.comments {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return newer(out[i].CreatedAt, out[i].ID, out[j].CreatedAt, out[j].ID)
	})
	return out, nil
}

func (s *Store) CountCommentsByPostIDs(_ context.Context, postIDs []string) (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	out := map[string]int64{}
	for _, c := range s.comments {
		if slices.Contains(postIDs, c.PostID) {
			out[c.PostID]++
		}
	}
	return out, nil
}

// --- connections ---

func (s *Store) CreateConnection(_ context.Context, conn *models.Connection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	key := edgeKey{conn.FollowerID, conn.FollowingID}
	if _, ok := s.connections[key]; ok {
		return repositories.ErrDuplicate
	}
	if conn.ID == "" {
		conn.ID = uuid.NewString()
	}
	if conn.CreatedAt.IsZero() {
		conn.CreatedAt = time.Now()
	}
	s.connections[key] = *conn
	return nil
}

func (s *Store) GetConnection(_ context.Context, followerID, followingID string) (*models.Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	c, ok := s.connections[edgeKey{followerID, followingID}]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &c, nil
}

func (s *Store) DeleteConnection(_ context.Context, followerID, followingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	key := edgeKey{followerID, followingID}
	if _, ok := s.connections[key]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.connections, key)
	return nil
}

func (s *Store) GetFollowers(_ context.Context, userID string) ([]models.UserSummary, error) {
	return s.counterparts(userID, func(c models.Connection) (string, bool) {
		return c.FollowerID, c.FollowingID == userID
	})
}

func (s *Store) GetFollowing(_ context.Context, userID string) ([]models.UserSummary, error) {
	return s.counterparts(userID, func(c models.Connection) (string, bool) {
		return c.FollowingID, c.FollowerID == userID
	})
}

func (s *Store) counterparts(_ string, match func(models.Connection) (string, bool)) ([]models.UserSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	var edges []models.Connection
	for _, c := range s.connections {
		if _, ok := match(c); ok && c.Status == models.ConnectionAccepted {
			edges = append(edges, c)
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		return newer(edges[i].CreatedAt, edges[i].ID, edges[j].CreatedAt, edges[j].ID)
	})
	out := []models.UserSummary{}
	for _, c := range edges {
		id, _ := match(c)
		if u, ok := s.users[id]; ok {
			out = append(out, u.ToSummary())
		}
	}
	return out, nil
}

func (s *Store) GetFollowersCount(_ context.Context, userID string) (int64, error) {
	return s.countEdges(func(c models.Connection) bool { return c.FollowingID == userID })
}

func (s *Store) GetFollowingCount(_ context.Context, userID string) (int64, error) {
	return s.countEdges(func(c models.Connection) bool { return c.FollowerID == userID })
}

func (s *Store) countEdges(match func(models.Connection) bool) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return 0, s.Fail
	}
	var n int64
	for _, c := range s.connections {
		if match(c) && c.Status == models.ConnectionAccepted {
			n++
		}
	}
	return n, nil
}

// --- notifications ---

func sameTarget(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (s *Store) UpsertNotification(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	for id, existing := range s.notifications {
		if !existing.Read &&
			existing.UserID == n.UserID &&
			existing.Type == n.Type &&
			existing.ActorID == n.ActorID &&
			sameTarget(existing.PostID, n.PostID) &&
			sameTarget(existing.CommentID, n.CommentID) {
			existing.CreatedAt = n.CreatedAt
			s.notifications[id] = existing
			*n = existing
			return nil
		}
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	n.Read = false
	s.notifications[n.ID] = *n
	return nil
}

func (s *Store) ListNotifications(_ context.Context, userID string, opts repositories.ListOptions) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	var anchor *models.Notification
	if opts.Cursor != "" {
		a, ok := s.notifications[opts.Cursor]
		if !ok || a.UserID != userID {
			return nil, repositories.ErrUnknownCursor
		}
		anchor = &a
	}
	out := []models.Notification{}
	for _, n := range s.notifications {
		if n.UserID != userID {
			continue
		}
		if anchor != nil && !newer(anchor.CreatedAt, anchor.ID, n.CreatedAt, n.ID) {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		return newer(out[i].CreatedAt, out[i].ID, out[j].CreatedAt, out[j].ID)
	})
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (s *Store) GetUnreadCount(_ context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return 0, s.Fail
	}
	var n int64
	for _, x := range s.notifications {
		if x.UserID == userID && !x.Read {
			n++
		}
	}
	return n, nil
}

func (s *Store) MarkAsRead(_ context.Context, id, userID string) (*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	n, ok := s.notifications[id]
	if !ok || n.UserID != userID {
		return nil, repositories.ErrNotFound
	}
	n.Read = true
	s.notifications[id] = n
	return &n, nil
}

func (s *Store) MarkAllAsRead(_ context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return 0, s.Fail
	}
	var updated int64
	for id, n := range s.notifications {
		if n.UserID == userID && !n.Read {
			n.Read = true
			s.notifications[id] = n
			updated++
		}
	}
	return updated, nil
}

func (s *Store) DeleteReadBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return 0, s.Fail
	}
	var deleted int64
	for id, n := range s.notifications {
		if n.Read && n.CreatedAt.Before(cutoff) {
			delete(s.notifications, id)
			deleted++
		}
	}
	return deleted, nil
}

// --- activity ---

func (s *Store) RecordActivity(_ context.Context, activity *models.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	s.activities = append(s.activities, *activity)
	return nil
}

func (s *Store) GetActivitiesByUserID(_ context.Context, userID string, limit int64) ([]models.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	out := []models.Activity{}
	for i := len(s.activities) - 1; i >= 0 && int64(len(out)) < limit; i-- {
		a := s.activities[i]
		if a.ActorID == userID || a.TargetUserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

package repositories

import (
	"context"
	stderrors "errors"

	"github.com/anonto42/bharat-link/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRepository defines the read side of users plus the first-login upsert
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error)
	UpsertFirebaseUser(ctx context.Context, firebaseUID, email, name string) (*models.User, error)
	GetUserSummaries(ctx context.Context, ids []string) (map[string]models.UserSummary, error)
}

// PostgresUserRepository implements UserRepository for PostgreSQL
type PostgresUserRepository struct {
	db *gorm.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository
func NewPostgresUserRepository(db *gorm.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	return translate(r.db.WithContext(ctx).Create(user).Error, "userRepo.CreateUser")
}

func (r *PostgresUserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err, "userRepo.GetUserByID")
	}
	return &user, nil
}

func (r *PostgresUserRepository) GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("firebase_uid = ?", firebaseUID).First(&user).Error; err != nil {
		return nil, translate(err, "userRepo.GetUserByFirebaseUID")
	}
	return &user, nil
}

// UpsertFirebaseUser resolves a verified Firebase identity to a local user:
// by UID first, then by email (linking the UID), otherwise a new row.
func (r *PostgresUserRepository) UpsertFirebaseUser(ctx context.Context, firebaseUID, email, name string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("firebase_uid = ?", firebaseUID).First(&user).Error
		if err == nil {
			if name != "" && user.Name != name {
				user.Name = name
				return tx.Model(&user).Update("name", name).Error
			}
			return nil
		}
		if !stderrors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		err = tx.Where("email = ?", email).First(&user).Error
		if err == nil {
			user.FirebaseUID = &firebaseUID
			return tx.Model(&user).Update("firebase_uid", firebaseUID).Error
		}
		if !stderrors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if name == "" {
			name = email
		}
		user = models.User{
			ID:          uuid.NewString(),
			Email:       email,
			Name:        name,
			FirebaseUID: &firebaseUID,
		}
		return tx.Create(&user).Error
	})
	if err != nil {
		return nil, translate(err, "userRepo.UpsertFirebaseUser")
	}
	return &user, nil
}

func (r *PostgresUserRepository) GetUserSummaries(ctx context.Context, ids []string) (map[string]models.UserSummary, error) {
	out := make(map[string]models.UserSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []models.User
	if err := r.db.WithContext(ctx).Where("id IN ?", uniqueStrings(ids)).Find(&users).Error; err != nil {
		return nil, translate(err, "userRepo.GetUserSummaries")
	}
	for i := range users {
		out[users[i].ID] = users[i].ToSummary()
	}
	return out, nil
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

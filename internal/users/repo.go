package users

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/storegoals-backend/pkg/db"
	"github.com/angelmondragon/storegoals-backend/pkg/db/models"
	"github.com/angelmondragon/storegoals-backend/pkg/enums"
)

// LoginConstraint is the unique index on users.login.
const LoginConstraint = "users_login_key"

// Repository exposes user persistence.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// FindByLogin matches the login exactly, as the unique index does.
func (r *Repository) FindByLogin(ctx context.Context, login string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("login = ?", strings.TrimSpace(login)).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindInStore loads a user only when it belongs to storeID.
func (r *Repository) FindInStore(ctx context.Context, storeID, id int64) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("id = ? AND store_id = ?", id, storeID).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// List returns the users of a store ordered by name.
func (r *Repository) List(ctx context.Context, storeID int64, filter ListFilter) ([]models.User, error) {
	q := r.db.WithContext(ctx).Where("store_id = ?", storeID)
	if term := strings.ToLower(strings.TrimSpace(filter.Query)); term != "" {
		like := db.ContainsPattern(term)
		q = q.Where("(LOWER(name) LIKE @p "+db.LikeEscape+" OR LOWER(login) LIKE @p "+db.LikeEscape+
			" OR LOWER(COALESCE(registration, '')) LIKE @p "+db.LikeEscape+")", sql.Named("p", like))
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Role != "" {
		q = q.Where("role = ?", filter.Role)
	}

	var rows []models.User
	if err := q.Order("name ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Update persists the editable profile columns of user.
func (r *Repository) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]any{
			"name":         user.Name,
			"role":         user.Role,
			"permission":   user.Permission,
			"status":       user.Status,
			"cpf":          user.CPF,
			"registration": user.Registration,
			"email":        user.Email,
			"updated_at":   time.Now().UTC(),
		}).Error
}

func (r *Repository) SetStatus(ctx context.Context, id int64, status enums.UserStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": time.Now().UTC()}).Error
}

// UpdatePassword stores a new hash and sets the must-change flag.
func (r *Repository) UpdatePassword(ctx context.Context, id int64, hash string, mustChange bool) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"password_hash":        hash,
			"must_change_password": mustChange,
			"updated_at":           time.Now().UTC(),
		}).Error
}

// UpdateLastLogin refreshes last_login_at without touching updated_at.
func (r *Repository) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}

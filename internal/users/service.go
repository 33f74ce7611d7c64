package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/storegoals-backend/pkg/config"
	"github.com/angelmondragon/storegoals-backend/pkg/db"
	"github.com/angelmondragon/storegoals-backend/pkg/db/models"
	"github.com/angelmondragon/storegoals-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storegoals-backend/pkg/errors"
	"github.com/angelmondragon/storegoals-backend/pkg/logger"
	"github.com/angelmondragon/storegoals-backend/pkg/security"
)

const defaultTempPasswordLength = 10

// Actor is the authenticated caller of a management operation.
type Actor struct {
	UserID  int64
	StoreID int64
	Role    enums.UserRole
}

// Service manages the users of the caller's store.
type Service interface {
	List(ctx context.Context, storeID int64, filter ListFilter) ([]UserDTO, error)
	Get(ctx context.Context, storeID, userID int64) (*UserDTO, error)
	Create(ctx context.Context, actor Actor, input CreateUserInput) (*CreateUserResult, error)
	Update(ctx context.Context, actor Actor, userID int64, input UpdateUserInput) (*UserDTO, error)
	Deactivate(ctx context.Context, actor Actor, userID int64) (*UserDTO, error)
}

type repository interface {
	Create(ctx context.Context, user *models.User) error
	FindInStore(ctx context.Context, storeID, id int64) (*models.User, error)
	List(ctx context.Context, storeID int64, filter ListFilter) ([]models.User, error)
	Update(ctx context.Context, user *models.User) error
	SetStatus(ctx context.Context, id int64, status enums.UserStatus) error
}

type ServiceParams struct {
	Repo           repository
	PasswordConfig config.PasswordConfig
	Logger         *logger.Logger
}

type service struct {
	repo    repository
	passCfg config.PasswordConfig
	logg    *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("users repository is required")
	}
	return &service{repo: params.Repo, passCfg: params.PasswordConfig, logg: params.Logger}, nil
}

func (s *service) List(ctx context.Context, storeID int64, filter ListFilter) ([]UserDTO, error) {
	if storeID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id is required")
	}
	if filter.Status != "" {
		status, err := enums.ParseUserStatus(filter.Status)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		filter.Status = string(status)
	}
	if filter.Role != "" {
		role, err := enums.ParseUserRole(filter.Role)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role filter")
		}
		filter.Role = string(role)
	}

	rows, err := s.repo.List(ctx, storeID, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDataFetch, err, "list users")
	}
	out := make([]UserDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, storeID, userID int64) (*UserDTO, error) {
	user, err := s.load(ctx, storeID, userID)
	if err != nil {
		return nil, err
	}
	return FromModel(user), nil
}

func (s *service) Create(ctx context.Context, actor Actor, input CreateUserInput) (*CreateUserResult, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	role, err := enums.ParseUserRole(input.Role)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role")
	}
	login := strings.TrimSpace(input.Login)
	name := strings.TrimSpace(input.Name)
	if login == "" || name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name and login are required")
	}

	var hiredAt *time.Time
	if input.HiredAt != nil && strings.TrimSpace(*input.HiredAt) != "" {
		parsed, err := time.Parse("2006-01-02", strings.TrimSpace(*input.HiredAt))
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "hired_at must be YYYY-MM-DD")
		}
		hiredAt = &parsed
	}

	length := s.passCfg.TempPasswordLength
	if length <= 0 {
		length = defaultTempPasswordLength
	}
	tempPassword, err := security.GenerateTempPassword(length)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate temporary password")
	}
	hash, err := security.HashPassword(tempPassword, s.passCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := &models.User{
		StoreID:            actor.StoreID,
		Name:               name,
		Login:              login,
		PasswordHash:       hash,
		Role:               role,
		Permission:         input.Permission,
		Status:             enums.UserStatusActive,
		CPF:                trimmed(input.CPF),
		Registration:       trimmed(input.Registration),
		Email:              trimmed(input.Email),
		HiredAt:            hiredAt,
		MustChangePassword: true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if isDuplicateLogin(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "login already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"store_id":   actor.StoreID,
			"created_by": actor.UserID,
			"user_id":    user.ID,
		})
		s.logg.Info(logCtx, "users.created")
	}
	return &CreateUserResult{User: FromModel(user), TemporaryPassword: tempPassword}, nil
}

func (s *service) Update(ctx context.Context, actor Actor, userID int64, input UpdateUserInput) (*UserDTO, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	user, err := s.load(ctx, actor.StoreID, userID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		user.Name = name
	}
	if input.Role != nil {
		role, err := enums.ParseUserRole(*input.Role)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role")
		}
		user.Role = role
	}
	if input.Status != nil {
		status, err := enums.ParseUserStatus(*input.Status)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		if status != enums.UserStatusActive && user.ID == actor.UserID {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot deactivate yourself")
		}
		user.Status = status
	}
	if input.Permission != nil {
		user.Permission = *input.Permission
	}
	if input.CPF != nil {
		user.CPF = trimmed(input.CPF)
	}
	if input.Registration != nil {
		user.Registration = trimmed(input.Registration)
	}
	if input.Email != nil {
		user.Email = trimmed(input.Email)
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update user")
	}
	return FromModel(user), nil
}

func (s *service) Deactivate(ctx context.Context, actor Actor, userID int64) (*UserDTO, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}
	if userID == actor.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot deactivate yourself")
	}
	user, err := s.load(ctx, actor.StoreID, userID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetStatus(ctx, user.ID, enums.UserStatusInactive); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deactivate user")
	}
	user.Status = enums.UserStatusInactive
	return FromModel(user), nil
}

func (s *service) load(ctx context.Context, storeID, userID int64) (*models.User, error) {
	if storeID <= 0 || userID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store and user ids are required")
	}
	user, err := s.repo.FindInStore(ctx, storeID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDataFetch, err, "load user")
	}
	return user, nil
}

func requireManager(actor Actor) error {
	if actor.StoreID <= 0 || actor.UserID <= 0 {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if !actor.Role.CanManageUsers() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only managers can manage users")
	}
	return nil
}

// isDuplicateLogin matches the postgres constraint name or the sqlite column.
func isDuplicateLogin(err error) bool {
	return db.IsUniqueViolation(err, LoginConstraint) || db.IsUniqueViolation(err, "users.login")
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return nil
	}
	return &v
}

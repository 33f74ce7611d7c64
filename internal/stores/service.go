package stores

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/angelmondragon/storegoals-backend/pkg/db/models"
	"github.com/angelmondragon/storegoals-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storegoals-backend/pkg/errors"
)

type storeRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Store, error)
	Update(ctx context.Context, store *models.Store) error
}

// Service exposes store profile operations.
type Service interface {
	Profile(ctx context.Context, storeID int64) (*StoreDTO, error)
	Update(ctx context.Context, role enums.UserRole, storeID int64, input UpdateStoreInput) (*StoreDTO, error)
}

type service struct {
	repo storeRepository
}

func NewService(repo storeRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("store repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Profile(ctx context.Context, storeID int64) (*StoreDTO, error) {
	store, err := s.load(ctx, storeID)
	if err != nil {
		return nil, err
	}
	return FromModel(store), nil
}

func (s *service) Update(ctx context.Context, role enums.UserRole, storeID int64, input UpdateStoreInput) (*StoreDTO, error) {
	if !role.CanManageUsers() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only managers can edit the store")
	}
	store, err := s.load(ctx, storeID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		store.Name = name
	}
	if input.Region != nil {
		store.Region = strings.ToLower(strings.TrimSpace(*input.Region))
	}
	if input.Address != nil {
		store.Address = optional(*input.Address)
	}
	if input.Phone != nil {
		store.Phone = optional(*input.Phone)
	}

	if err := s.repo.Update(ctx, store); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update store")
	}
	return FromModel(store), nil
}

func (s *service) load(ctx context.Context, storeID int64) (*models.Store, error) {
	if storeID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id is required")
	}
	store, err := s.repo.FindByID(ctx, storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDataFetch, err, "load store")
	}
	return store, nil
}

func optional(value string) *string {
	v := strings.TrimSpace(value)
	if v == "" {
		return nil
	}
	return &v
}

package stores

import (
	"time"

	"github.com/angelmondragon/storegoals-backend/pkg/db/models"
)

// StoreDTO is the store profile shown on the settings and goals pages.
type StoreDTO struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Region          string    `json:"region"`
	Address         *string   `json:"address,omitempty"`
	Phone           *string   `json:"phone,omitempty"`
	Status          string    `json:"status"`
	SundaysExcluded bool      `json:"sundays_excluded"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// UpdateStoreInput patches the store profile. Nil fields are left untouched.
type UpdateStoreInput struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,min=2,max=120"`
	Region  *string `json:"region,omitempty" validate:"omitempty,max=64"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=255"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,max=32"`
}

func FromModel(m *models.Store) *StoreDTO {
	if m == nil {
		return nil
	}
	return &StoreDTO{
		ID:              m.ID,
		Name:            m.Name,
		Region:          m.Region,
		Address:         m.Address,
		Phone:           m.Phone,
		Status:          m.Status,
		SundaysExcluded: m.SundaysExcluded(),
		UpdatedAt:       m.UpdatedAt,
	}
}

package stores

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/storegoals-backend/pkg/db/models"
)

// Repository reads and updates store rows.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Store, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).First(&store, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

// Update persists the editable store columns.
func (r *Repository) Update(ctx context.Context, store *models.Store) error {
	return r.db.WithContext(ctx).
		Model(&models.Store{}).
		Where("id = ?", store.ID).
		Updates(map[string]any{
			"name":       store.Name,
			"region":     store.Region,
			"address":    store.Address,
			"phone":      store.Phone,
			"updated_at": time.Now().UTC(),
		}).Error
}

// ListIDs returns every store id in ascending order.
func (r *Repository) ListIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := r.db.WithContext(ctx).Model(&models.Store{}).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

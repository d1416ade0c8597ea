package notifications

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alerodas/shoply-backend/pkg/db/models"
)

// Repository resolves the recipients of transactional email.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a notifications repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindUser loads the account the notification is addressed to.
func (r *Repository) FindUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

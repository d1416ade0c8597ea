package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/alerodas/shoply-backend/pkg/db/models"
)

func mustCreateTestProduct(t *testing.T, tx *gorm.DB, ownerID uuid.UUID, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:          uuid.New(),
		Name:        "Test Product",
		Description: "a product",
		Price:       decimal.NewFromFloat(19.99),
		Stock:       stock,
		Tags:        pq.StringArray{"new"},
		CreatedBy:   ownerID,
	}
	if err := tx.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}

package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/alerodas/shoply-backend/pkg/db/models"
	"github.com/alerodas/shoply-backend/pkg/enums"
	"github.com/alerodas/shoply-backend/pkg/payments"
	"github.com/alerodas/shoply-backend/pkg/types"
)

func mustCreateTestProduct(t *testing.T, tx *gorm.DB, ownerID uuid.UUID, price string, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:        uuid.New(),
		Name:      "Test Product",
		Price:     decimal.RequireFromString(price),
		Stock:     stock,
		CreatedBy: ownerID,
	}
	if err := tx.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}

func mustCreateTestOrder(t *testing.T, tx *gorm.DB, userID uuid.UUID, items ...models.OrderItem) *models.Order {
	t.Helper()
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Qty))))
	}
	order := &models.Order{
		ID:              uuid.New(),
		UserID:          userID,
		Items:           items,
		TotalPrice:      total,
		ShippingAddress: testShippingAddress(),
		PaymentMethod:   enums.PaymentMethodStripe,
	}
	if err := tx.Create(order).Error; err != nil {
		t.Fatalf("create order: %v", err)
	}
	return order
}

func testShippingAddress() types.ShippingAddress {
	return types.ShippingAddress{
		Street:     "1 Main St",
		City:       "Springfield",
		PostalCode: "12345",
		Country:    "US",
	}
}

type stubCheckoutClient struct {
	createFn   func(ctx context.Context, input payments.CreateSessionInput) (*payments.Session, error)
	retrieveFn func(ctx context.Context, sessionID string) (*payments.Session, error)
}

func (s *stubCheckoutClient) CreateCheckoutSession(ctx context.Context, input payments.CreateSessionInput) (*payments.Session, error) {
	return s.createFn(ctx, input)
}

func (s *stubCheckoutClient) RetrieveSession(ctx context.Context, sessionID string) (*payments.Session, error) {
	return s.retrieveFn(ctx, sessionID)
}

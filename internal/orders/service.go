package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/alerodas/shoply-backend/internal/catalog"
	"github.com/alerodas/shoply-backend/internal/pricing"
	"github.com/alerodas/shoply-backend/pkg/config"
	"github.com/alerodas/shoply-backend/pkg/db"
	"github.com/alerodas/shoply-backend/pkg/db/models"
	"github.com/alerodas/shoply-backend/pkg/enums"
	pkgerrors "github.com/alerodas/shoply-backend/pkg/errors"
	"github.com/alerodas/shoply-backend/pkg/logger"
	"github.com/alerodas/shoply-backend/pkg/payments"
	"github.com/alerodas/shoply-backend/pkg/types"
)

// Service exposes order creation and administration.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*CreateOrderResult, error)
	List(ctx context.Context, actorID uuid.UUID, role enums.Role) ([]OrderDTO, error)
	Detail(ctx context.Context, actorID uuid.UUID, role enums.Role, orderID uuid.UUID) (*OrderDTO, error)
	MarkDelivered(ctx context.Context, actorID uuid.UUID, role enums.Role, orderID uuid.UUID) (*OrderDTO, error)
	Delete(ctx context.Context, actorID uuid.UUID, role enums.Role, orderID uuid.UUID) error
}

// CreateOrderInput holds the validated payload to create an order.
type CreateOrderInput struct {
	UserID          uuid.UUID
	UserEmail       string
	Lines           []pricing.CartLine
	ShippingAddress types.ShippingAddress
	PaymentMethod   enums.PaymentMethod
}

// CreateOrderResult reports the persisted order plus the optional payment redirect.
type CreateOrderResult struct {
	OrderID     uuid.UUID       `json:"order_id"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	RedirectURL string          `json:"redirect_url,omitempty"`
}

type service struct {
	dbClient    *db.Client
	repo        *Repository
	catalogRepo *catalog.Repository
	checkout    payments.CheckoutClient
	checkoutCfg config.CheckoutConfig
	logg        *logger.Logger
}

// NewService constructs an order service instance.
func NewService(
	dbClient *db.Client,
	repo *Repository,
	catalogRepo *catalog.Repository,
	checkout payments.CheckoutClient,
	checkoutCfg config.CheckoutConfig,
	logg *logger.Logger,
) (Service, error) {
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if catalogRepo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if checkout == nil {
		return nil, fmt.Errorf("checkout client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		dbClient:    dbClient,
		repo:        repo,
		catalogRepo: catalogRepo,
		checkout:    checkout,
		checkoutCfg: checkoutCfg,
		logg:        logg,
	}, nil
}

// Create prices the cart server-side and persists the order unpaid. For the
// stripe payment method the checkout session is opened inside the same
// transaction so a processor failure leaves no order behind.
func (s *service) Create(ctx context.Context, input CreateOrderInput) (*CreateOrderResult, error) {
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("unsupported payment method %q", input.PaymentMethod))
	}
	if missing := input.ShippingAddress.Validate(); len(missing) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping address incomplete").
			WithDetails(missing)
	}

	result := &CreateOrderResult{}
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		engine, err := pricing.NewEngine(s.catalogRepo.WithTx(tx))
		if err != nil {
			return err
		}
		quote, err := engine.Quote(ctx, input.Lines)
		if err != nil {
			return err
		}

		order := &models.Order{
			UserID:          input.UserID,
			TotalPrice:      quote.Total,
			ShippingAddress: input.ShippingAddress,
			PaymentMethod:   input.PaymentMethod,
		}
		for _, line := range quote.Lines {
			order.Items = append(order.Items, models.OrderItem{
				ProductID: line.ProductID,
				Name:      line.Name,
				Qty:       line.Qty,
				UnitPrice: line.UnitPrice,
			})
		}

		created, err := s.repo.WithTx(tx).Create(ctx, order)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert order")
		}
		result.OrderID = created.ID
		result.TotalPrice = created.TotalPrice

		if input.PaymentMethod == enums.PaymentMethodStripe {
			session, err := s.checkout.CreateCheckoutSession(ctx, s.sessionInput(created, quote, input.UserEmail))
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "payment: create checkout session")
			}
			result.RedirectURL = session.URL
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithOrderID(ctx, result.OrderID.String()), "order created")
	return result, nil
}

func (s *service) sessionInput(order *models.Order, quote *pricing.Quote, email string) payments.CreateSessionInput {
	input := payments.CreateSessionInput{
		OrderID:        order.ID.String(),
		Currency:       s.checkoutCfg.Currency,
		SuccessURL:     s.checkoutCfg.SuccessCallbackURL(),
		CancelURL:      s.checkoutCfg.CancelURL(),
		CustomerEmail:  email,
		IdempotencyKey: order.ID.String(),
	}
	for _, line := range quote.Lines {
		input.Lines = append(input.Lines, payments.CheckoutLine{
			Name:       line.Name,
			UnitAmount: line.UnitPrice.Mul(decimal.NewFromInt(100)).IntPart(),
			Quantity:   int64(line.Qty),
		})
	}
	return input
}

// List returns orders visible to the actor: users see their own, admins see
// orders containing their products, superadmins see everything.
func (s *service) List(ctx context.Context, actorID uuid.UUID, role enums.Role) ([]OrderDTO, error) {
	var (
		orders []models.Order
		err    error
	)
	switch role {
	case enums.RoleSuperadmin:
		orders, err = s.repo.ListAll(ctx)
	case enums.RoleAdmin:
		orders, err = s.repo.ListByProductOwner(ctx, actorID)
	default:
		orders, err = s.repo.ListByUser(ctx, actorID)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list orders")
	}
	return toOrderDTOs(orders), nil
}

// Detail returns one order if the actor may see it.
func (s *service) Detail(ctx context.Context, actorID uuid.UUID, role enums.Role, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != actorID {
		if err := s.ensureAdminScope(ctx, actorID, role, orderID); err != nil {
			return nil, err
		}
	}
	return toOrderDTO(order), nil
}

// MarkDelivered flips the delivery flag; admin-only, scoped to own products.
func (s *service) MarkDelivered(ctx context.Context, actorID uuid.UUID, role enums.Role, orderID uuid.UUID) (*OrderDTO, error) {
	if _, err := s.load(ctx, orderID); err != nil {
		return nil, err
	}
	if err := s.ensureAdminScope(ctx, actorID, role, orderID); err != nil {
		return nil, err
	}
	if err := s.repo.MarkDelivered(ctx, orderID, time.Now().UTC()); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: mark delivered")
	}
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return toOrderDTO(order), nil
}

// Delete removes an order; admin-only, scoped to own products.
func (s *service) Delete(ctx context.Context, actorID uuid.UUID, role enums.Role, orderID uuid.UUID) error {
	if _, err := s.load(ctx, orderID); err != nil {
		return err
	}
	if err := s.ensureAdminScope(ctx, actorID, role, orderID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, orderID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete order")
	}
	return nil
}

func (s *service) load(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load order")
	}
	return order, nil
}

func (s *service) ensureAdminScope(ctx context.Context, actorID uuid.UUID, role enums.Role, orderID uuid.UUID) error {
	switch role {
	case enums.RoleSuperadmin:
		return nil
	case enums.RoleAdmin:
		owned, err := s.repo.ContainsProductOwnedBy(ctx, orderID, actorID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check order scope")
		}
		if !owned {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not involve your products")
		}
		return nil
	default:
		return pkgerrors.New(pkgerrors.CodeForbidden, "access denied")
	}
}

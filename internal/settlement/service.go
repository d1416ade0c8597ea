package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/alerodas/shoply-backend/internal/catalog"
	"github.com/alerodas/shoply-backend/internal/orders"
	"github.com/alerodas/shoply-backend/pkg/db"
	"github.com/alerodas/shoply-backend/pkg/db/models"
	pkgerrors "github.com/alerodas/shoply-backend/pkg/errors"
	"github.com/alerodas/shoply-backend/pkg/logger"
	"github.com/alerodas/shoply-backend/pkg/metrics"
	"github.com/alerodas/shoply-backend/pkg/payments"
	"github.com/alerodas/shoply-backend/pkg/types"
)

// Notification channels feeding the reconciler.
const (
	ChannelRedirect = "redirect"
	ChannelWebhook  = "webhook"
)

// Outcome reports what one settlement attempt did.
type Outcome struct {
	OrderID        uuid.UUID
	AlreadySettled bool
}

// Notifier is told about first-time settlements; implementations must be
// safe to call concurrently.
type Notifier interface {
	OrderPaid(ctx context.Context, orderID uuid.UUID)
}

// Service is the settlement reconciler: the single state machine both the
// redirect callback and the webhook feed into. Payment state comes only from
// the processor; both channels carry nothing but the session id.
type Service struct {
	dbClient    *db.Client
	orderRepo   *orders.Repository
	catalogRepo *catalog.Repository
	checkout    payments.CheckoutClient
	locks       *orderLocks
	metrics     *metrics.SettlementMetrics
	notifier    Notifier
	logg        *logger.Logger
}

// NewService constructs the reconciler. The notifier may be nil.
func NewService(
	dbClient *db.Client,
	orderRepo *orders.Repository,
	catalogRepo *catalog.Repository,
	checkout payments.CheckoutClient,
	settlementMetrics *metrics.SettlementMetrics,
	notifier Notifier,
	logg *logger.Logger,
) (*Service, error) {
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if orderRepo == nil {
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
	return &Service{
		dbClient:    dbClient,
		orderRepo:   orderRepo,
		catalogRepo: catalogRepo,
		checkout:    checkout,
		locks:       newOrderLocks(),
		metrics:     settlementMetrics,
		notifier:    notifier,
		logg:        logg,
	}, nil
}

// Settle verifies the checkout session against the processor and settles the
// referenced order exactly once: gate on is_paid, decrement stock with a
// floor of zero, record the payment result. Safe to call concurrently from
// both channels with the same session.
func (s *Service) Settle(ctx context.Context, sessionID, channel string) (*Outcome, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveDuration(time.Since(start)) }()
	s.metrics.IncAttempt(channel)

	ctx = s.logg.WithSessionID(ctx, sessionID)

	session, err := s.checkout.RetrieveSession(ctx, sessionID)
	if err != nil {
		s.metrics.IncFailure("verification")
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "payment: verify session")
	}
	if !session.Paid {
		s.metrics.IncFailure("not_completed")
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "payment not completed").
			WithDetails(session.PaymentStatus)
	}

	orderID, err := uuid.Parse(session.OrderID)
	if err != nil || orderID == uuid.Nil {
		s.metrics.IncFailure("missing_order_reference")
		s.logg.Error(ctx, "checkout session carries no usable order reference", err)
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session missing order reference")
	}
	ctx = s.logg.WithOrderID(ctx, orderID.String())

	s.locks.Lock(orderID)
	defer s.locks.Unlock(orderID)

	outcome := &Outcome{OrderID: orderID}
	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		order, err := s.orderRepo.WithTx(tx).FindByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load order")
		}

		if order.IsPaid {
			outcome.AlreadySettled = true
			return nil
		}

		if err := s.decrementStock(ctx, tx, order); err != nil {
			return err
		}

		result := types.PaymentResult{
			ProviderID: session.ID,
			Status:     session.PaymentStatus,
			PaidAt:     session.CompletedAt,
			PayerEmail: session.PayerEmail,
		}
		if result.PaidAt.IsZero() {
			result.PaidAt = time.Now().UTC()
		}
		if err := s.orderRepo.WithTx(tx).MarkPaid(ctx, orderID, result); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: mark order paid")
		}
		return nil
	})
	if err != nil {
		s.metrics.IncFailure(failureReason(err))
		return nil, err
	}

	if outcome.AlreadySettled {
		s.metrics.IncAlreadySettled()
		s.logg.Info(ctx, "settlement skipped, order already paid")
		return outcome, nil
	}

	s.metrics.IncSettled()
	s.logg.Info(ctx, "order settled")

	if s.notifier != nil {
		go s.notifier.OrderPaid(context.WithoutCancel(ctx), orderID)
	}
	return outcome, nil
}

// decrementStock applies the conditional decrement per line; every short line
// is reported, and any shortage aborts the whole settlement.
func (s *Service) decrementStock(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	txCatalog := s.catalogRepo.WithTx(tx)
	var shortages error
	var detail []string
	for _, item := range order.Items {
		ok, err := txCatalog.DecrementStock(ctx, item.ProductID, item.Qty)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: decrement stock")
		}
		if !ok {
			shortages = multierr.Append(shortages,
				fmt.Errorf("%s: insufficient stock for qty %d", item.Name, item.Qty))
			detail = append(detail, fmt.Sprintf("%s: insufficient stock for qty %d", item.Name, item.Qty))
		}
	}
	if shortages != nil {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, shortages, "insufficient stock to settle order").
			WithDetails(detail)
	}
	return nil
}

func failureReason(err error) string {
	switch {
	case pkgerrors.HasCode(err, pkgerrors.CodeConflict):
		return "insufficient_stock"
	case pkgerrors.HasCode(err, pkgerrors.CodeNotFound):
		return "order_not_found"
	case pkgerrors.HasCode(err, pkgerrors.CodeDependency):
		return "dependency"
	default:
		return "internal"
	}
}

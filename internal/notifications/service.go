package notifications

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/alerodas/shoply-backend/pkg/db/models"
	pkgerrors "github.com/alerodas/shoply-backend/pkg/errors"
	"github.com/alerodas/shoply-backend/pkg/logger"
	"github.com/alerodas/shoply-backend/pkg/mailer"
)

type orderLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

type userLoader interface {
	FindUser(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Service sends order-confirmation email after settlement. Delivery is best
// effort: failures are logged and never surface into the settlement path.
type Service struct {
	orders orderLoader
	users  userLoader
	sender mailer.Sender
	logg   *logger.Logger
}

// NewService wires the notification dependencies.
func NewService(orders orderLoader, users userLoader, sender mailer.Sender, logg *logger.Logger) (*Service, error) {
	if orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "order loader required")
	}
	if users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "user loader required")
	}
	if sender == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "mail sender required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &Service{orders: orders, users: users, sender: sender, logg: logg}, nil
}

// OrderPaid emails the buyer a confirmation for the settled order.
func (s *Service) OrderPaid(ctx context.Context, orderID uuid.UUID) {
	ctx = s.logg.WithOrderID(ctx, orderID.String())

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		s.logg.Error(ctx, "confirmation email: load order", err)
		return
	}
	user, err := s.users.FindUser(ctx, order.UserID)
	if err != nil {
		s.logg.Error(ctx, "confirmation email: load user", err)
		return
	}

	msg := mailer.Message{
		ToName:  user.Name,
		ToEmail: user.Email,
		Subject: fmt.Sprintf("Order %s confirmed", shortOrderRef(orderID)),
		Text: fmt.Sprintf(
			"Hi %s,\n\nYour payment of %s was received and your order %s is confirmed.\n\nThanks for shopping with us.",
			user.Name, order.TotalPrice.StringFixed(2), orderID,
		),
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		s.logg.Error(ctx, "confirmation email: send", err)
		return
	}
	s.logg.Info(ctx, "confirmation email sent")
}

func shortOrderRef(id uuid.UUID) string {
	raw := id.String()
	if len(raw) >= 8 {
		return raw[:8]
	}
	return raw
}

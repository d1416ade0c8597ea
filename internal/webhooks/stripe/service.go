package stripewebhook

import (
	"context"
	"encoding/json"

	"github.com/stripe/stripe-go/v84"

	"github.com/alerodas/shoply-backend/internal/settlement"
	pkgerrors "github.com/alerodas/shoply-backend/pkg/errors"
)

type settler interface {
	Settle(ctx context.Context, sessionID, channel string) (*settlement.Outcome, error)
}

// Service maps Stripe events onto the settlement reconciler. The webhook
// payload is used only to learn the session id; payment state is re-verified
// against the processor inside Settle.
type Service struct {
	settler settler
}

func NewService(settler settler) (*Service, error) {
	if settler == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "settlement service required")
	}
	return &Service{settler: settler}, nil
}

// HandleEvent processes one verified Stripe event. Unknown event types are
// acknowledged without action.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted,
		stripe.EventTypeCheckoutSessionAsyncPaymentSucceeded:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode checkout session event")
		}
		if session.ID == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "checkout session id missing")
		}
		_, err := s.settler.Settle(ctx, session.ID, settlement.ChannelWebhook)
		return err
	default:
		return nil
	}
}

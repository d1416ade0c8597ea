package payments

import (
	"context"
	"time"

	"github.com/stripe/stripe-go/v84"
	checkoutsession "github.com/stripe/stripe-go/v84/checkout/session"
)

// OrderIDMetadataKey is the checkout-session metadata key carrying the order reference.
const OrderIDMetadataKey = "order_id"

// CheckoutLine is one priced line of a checkout session.
type CheckoutLine struct {
	Name       string
	UnitAmount int64 // minor units (cents)
	Quantity   int64
}

// CreateSessionInput carries everything needed to open a hosted checkout session.
type CreateSessionInput struct {
	OrderID        string
	Lines          []CheckoutLine
	Currency       string
	SuccessURL     string
	CancelURL      string
	CustomerEmail  string
	IdempotencyKey string
}

// Session is the provider-neutral view of a checkout session.
type Session struct {
	ID              string
	URL             string
	OrderID         string
	Paid            bool
	PaymentStatus   string
	PaymentIntentID string
	PayerEmail      string
	CompletedAt     time.Time
}

// CheckoutClient is the subset of payment-processor operations the order
// and settlement services depend on.
type CheckoutClient interface {
	CreateCheckoutSession(ctx context.Context, input CreateSessionInput) (*Session, error)
	RetrieveSession(ctx context.Context, sessionID string) (*Session, error)
}

type stripeCheckoutClient struct {
	client *Client
}

// NewCheckoutClient wraps the Stripe client so callers can be tested against the interface.
func NewCheckoutClient(client *Client) CheckoutClient {
	if client == nil {
		return nil
	}
	return &stripeCheckoutClient{client: client}
}

func (s *stripeCheckoutClient) CreateCheckoutSession(ctx context.Context, input CreateSessionInput) (*Session, error) {
	ctx, cancel := context.WithTimeout(ctx, s.client.Timeout())
	defer cancel()

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(input.SuccessURL),
		CancelURL:  stripe.String(input.CancelURL),
	}
	params.Context = ctx
	if input.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(input.CustomerEmail)
	}
	if input.IdempotencyKey != "" {
		params.SetIdempotencyKey(input.IdempotencyKey)
	}
	params.AddMetadata(OrderIDMetadataKey, input.OrderID)

	for _, line := range input.Lines {
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(line.Quantity),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(input.Currency),
				UnitAmount: stripe.Int64(line.UnitAmount),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(line.Name),
				},
			},
		})
	}

	sess, err := checkoutsession.New(params)
	if err != nil {
		return nil, err
	}
	return fromStripeSession(sess), nil
}

func (s *stripeCheckoutClient) RetrieveSession(ctx context.Context, sessionID string) (*Session, error) {
	ctx, cancel := context.WithTimeout(ctx, s.client.Timeout())
	defer cancel()

	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand("payment_intent")

	sess, err := checkoutsession.Get(sessionID, params)
	if err != nil {
		return nil, err
	}
	return fromStripeSession(sess), nil
}

func fromStripeSession(sess *stripe.CheckoutSession) *Session {
	if sess == nil {
		return nil
	}
	out := &Session{
		ID:            sess.ID,
		URL:           sess.URL,
		OrderID:       sess.Metadata[OrderIDMetadataKey],
		Paid:          sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		PaymentStatus: string(sess.PaymentStatus),
	}
	if sess.PaymentIntent != nil {
		out.PaymentIntentID = sess.PaymentIntent.ID
	}
	if sess.CustomerDetails != nil {
		out.PayerEmail = sess.CustomerDetails.Email
	}
	if sess.Created > 0 {
		out.CompletedAt = time.Unix(sess.Created, 0).UTC()
	}
	return out
}

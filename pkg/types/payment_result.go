package types

import "time"

// PaymentResult snapshots the processor's authoritative outcome for a paid
// order. Populated only by the settlement reconciler, never from client input.
type PaymentResult struct {
	ProviderID string    `json:"provider_id"`
	Status     string    `json:"status"`
	PaidAt     time.Time `json:"paid_at"`
	PayerEmail string    `json:"payer_email,omitempty"`
}

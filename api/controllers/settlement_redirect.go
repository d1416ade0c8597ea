package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/alerodas/shoply-backend/internal/settlement"
	"github.com/alerodas/shoply-backend/pkg/config"
	pkgerrors "github.com/alerodas/shoply-backend/pkg/errors"
	"github.com/alerodas/shoply-backend/pkg/logger"
)

// Settler is the settlement entry point shared by both payment channels.
type Settler interface {
	Settle(ctx context.Context, sessionID, channel string) (*settlement.Outcome, error)
}

// CheckoutSuccess is the browser-facing settlement channel: the processor
// redirects the buyer here after payment. It always answers with a redirect
// to the storefront, never an API error body, because the user agent is a
// browser mid-checkout. A duplicate settlement is a success from the buyer's
// point of view.
func CheckoutSuccess(settler Settler, checkoutCfg config.CheckoutConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// The session id is single-use and must never be cached by proxies.
		w.Header().Set("Cache-Control", "no-store")

		if settler == nil {
			http.Redirect(w, r, checkoutCfg.CheckoutErrorURL("server_error"), http.StatusFound)
			return
		}

		sessionID := strings.TrimSpace(chi.URLParam(r, "sessionId"))
		if sessionID == "" {
			http.Redirect(w, r, checkoutCfg.CheckoutErrorURL("server_error"), http.StatusFound)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithSessionID(ctx, sessionID)
		}

		outcome, err := settler.Settle(ctx, sessionID, settlement.ChannelRedirect)
		if err != nil {
			if logg != nil {
				logg.Error(ctx, "redirect settlement failed", err)
			}
			if pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
				http.Redirect(w, r, checkoutCfg.CheckoutErrorURL("payment_failed"), http.StatusFound)
				return
			}
			http.Redirect(w, r, checkoutCfg.CheckoutErrorURL("server_error"), http.StatusFound)
			return
		}

		http.Redirect(w, r, checkoutCfg.OrderURL(outcome.OrderID.String()), http.StatusFound)
	}
}

package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alerodas/shoply-backend/api/controllers"
	webhookcontrollers "github.com/alerodas/shoply-backend/api/controllers/webhooks"
	"github.com/alerodas/shoply-backend/api/middleware"
	"github.com/alerodas/shoply-backend/internal/catalog"
	internalorders "github.com/alerodas/shoply-backend/internal/orders"
	stripewebhook "github.com/alerodas/shoply-backend/internal/webhooks/stripe"
	"github.com/alerodas/shoply-backend/internal/wishlist"
	"github.com/alerodas/shoply-backend/pkg/config"
	"github.com/alerodas/shoply-backend/pkg/logger"
	"github.com/alerodas/shoply-backend/pkg/payments"
)

// Deps carries everything the HTTP surface needs. Grouped in a struct
// because the storefront wires considerably fewer collaborators than a
// marketplace would.
type Deps struct {
	Config *config.Config
	Logger *logger.Logger

	DB    controllers.Pinger
	Redis controllers.Pinger

	CatalogService  catalog.Service
	OrdersService   internalorders.Service
	WishlistService wishlist.Service
	Settler         controllers.Settler

	StripeWebhookService webhookcontrollers.StripeWebhookService
	StripeClient         *payments.Client
	StripeWebhookGuard   *stripewebhook.IdempotencyGuard
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.Checkout.FrontendOrigin),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"database": deps.DB,
			"redis":    deps.Redis,
		}))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/stripe", webhookcontrollers.StripeWebhook(deps.StripeWebhookService, deps.StripeClient, deps.StripeWebhookGuard, logg))
	})

	// Public storefront surface.
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ListProducts(deps.CatalogService, logg))
		r.Get("/{productId}", controllers.ProductDetail(deps.CatalogService, logg))
	})

	// The processor sends the buyer's browser here; no bearer token is
	// available on a cross-site redirect.
	r.Get("/api/v1/orders/success/{sessionId}", controllers.CheckoutSuccess(deps.Settler, cfg.Checkout, logg))

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/api/v1/orders", func(r chi.Router) {
			r.Post("/", controllers.CreateOrder(deps.OrdersService, logg))
			r.Get("/", controllers.ListOrders(deps.OrdersService, logg))
			r.Get("/{orderId}", controllers.OrderDetail(deps.OrdersService, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireStaff(logg))
				r.Post("/{orderId}/deliver", controllers.DeliverOrder(deps.OrdersService, logg))
				r.Delete("/{orderId}", controllers.DeleteOrder(deps.OrdersService, logg))
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireStaff(logg))
			r.Post("/api/v1/products", controllers.CreateProduct(deps.CatalogService, logg))
			r.Patch("/api/v1/products/{productId}", controllers.UpdateProduct(deps.CatalogService, logg))
			r.Delete("/api/v1/products/{productId}", controllers.DeleteProduct(deps.CatalogService, logg))
		})

		r.Post("/api/v1/products/{productId}/reviews", controllers.AddReview(deps.CatalogService, logg))

		r.Route("/api/v1/wishlist", func(r chi.Router) {
			r.Get("/", controllers.GetWishlist(deps.WishlistService, logg))
			r.Post("/", controllers.AddWishlistItem(deps.WishlistService, logg))
			r.Delete("/{productId}", controllers.RemoveWishlistItem(deps.WishlistService, logg))
		})
	})

	return r
}

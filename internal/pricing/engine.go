package pricing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/alerodas/shoply-backend/pkg/db/models"
	pkgerrors "github.com/alerodas/shoply-backend/pkg/errors"
)

// CartLine is one client-submitted cart entry. Only the product reference and
// quantity are trusted; prices are resolved from the catalog.
type CartLine struct {
	ProductID uuid.UUID
	Qty       int
}

// QuoteLine is a priced cart line snapshotted from the catalog.
type QuoteLine struct {
	ProductID uuid.UUID
	Name      string
	Qty       int
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

// Quote is the server-side priced view of a cart.
type Quote struct {
	Lines []QuoteLine
	Total decimal.Decimal
}

type productReader interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}

// Engine prices carts from current catalog state. Read-only; stock checks
// here are advisory pre-checks, the settlement decrement is the real guard.
type Engine struct {
	products productReader
}

// NewEngine constructs a pricing engine.
func NewEngine(products productReader) (*Engine, error) {
	if products == nil {
		return nil, fmt.Errorf("product reader required")
	}
	return &Engine{products: products}, nil
}

// Quote resolves and prices the cart, rejecting empty carts, non-positive
// quantities, unknown products, and quantities above current stock.
func (e *Engine) Quote(ctx context.Context, lines []CartLine) (*Quote, error) {
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart cannot be empty")
	}

	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		if line.Qty < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("quantity for product %s must be at least 1", line.ProductID))
		}
		ids = append(ids, line.ProductID)
	}

	products, err := e.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: resolve cart products")
	}
	byID := make(map[uuid.UUID]models.Product, len(products))
	for _, product := range products {
		byID[product.ID] = product
	}

	quote := &Quote{Total: decimal.Zero}
	var shortages []string
	for _, line := range lines {
		product, ok := byID[line.ProductID]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("product %s does not exist", line.ProductID))
		}
		if line.Qty > product.Stock {
			shortages = append(shortages,
				fmt.Sprintf("%s: requested %d, available %d", product.Name, line.Qty, product.Stock))
			continue
		}
		lineTotal := product.Price.Mul(decimal.NewFromInt(int64(line.Qty)))
		quote.Lines = append(quote.Lines, QuoteLine{
			ProductID: product.ID,
			Name:      product.Name,
			Qty:       line.Qty,
			UnitPrice: product.Price,
			LineTotal: lineTotal,
		})
		quote.Total = quote.Total.Add(lineTotal)
	}
	if len(shortages) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock").
			WithDetails(shortages)
	}
	return quote, nil
}

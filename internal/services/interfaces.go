package services

import (
	"context"
	"time"

	domain "github.com/shopfront/api/internal/domain"
)

// Cart is the service-level view of a shopper's cart with derived totals.
type Cart struct {
	Lines         []domain.CartLine `json:"lines"`
	Subtotal      int64             `json:"subtotal"`
	UnitCount     int               `json:"unit_count"`
	DistinctCount int               `json:"distinct_count"`
}

// AddItemCommand adds a quantity of a product to the session cart.
type AddItemCommand struct {
	SessionID string
	Product   domain.Product
	Quantity  int
}

// SetQuantityCommand sets the absolute quantity for a cart line.
type SetQuantityCommand struct {
	SessionID string
	ProductID int
	Quantity  int
}

// CartService manages the per-session shopping cart with durable persistence.
type CartService interface {
	GetCart(ctx context.Context, sessionID string) (Cart, error)
	AddItem(ctx context.Context, cmd AddItemCommand) (Cart, error)
	RemoveItem(ctx context.Context, sessionID string, productID int) (Cart, error)
	SetItemQuantity(ctx context.Context, cmd SetQuantityCommand) (Cart, error)
	ClearCart(ctx context.Context, sessionID string) error
}

// BrowseProductsQuery narrows and orders a product listing.
type BrowseProductsQuery struct {
	Limit    int
	Category string
	Search   string
	Price    domain.PriceRange
	Sort     domain.SortKey
}

// HomeContent bundles the data the storefront landing view needs.
type HomeContent struct {
	Featured       []domain.Product `json:"featured"`
	Categories     []string         `json:"categories"`
	CatalogMessage string           `json:"catalog_message,omitempty"`
}

// ProductListing is a browse result together with a degraded-mode message when
// the upstream catalog was unreachable.
type ProductListing struct {
	Products       []domain.Product `json:"products"`
	CatalogMessage string           `json:"catalog_message,omitempty"`
}

// CatalogService exposes read-only product browsing backed by the remote catalog.
type CatalogService interface {
	Home(ctx context.Context) (HomeContent, error)
	BrowseProducts(ctx context.Context, query BrowseProductsQuery) (ProductListing, error)
	GetProduct(ctx context.Context, productID int) (domain.Product, error)
	ListCategories(ctx context.Context) ([]string, error)
}

// CheckoutState is the current position and captured data of a checkout flow.
type CheckoutState struct {
	FlowID      string                 `json:"flow_id"`
	Step        domain.CheckoutStep    `json:"step"`
	Shipping    domain.ShippingDetails `json:"shipping"`
	Payment     CheckoutPaymentView    `json:"payment"`
	Countries   []string               `json:"countries"`
	FieldErrors map[string]string      `json:"field_errors,omitempty"`
	Review      *CheckoutReview        `json:"review,omitempty"`
	Processing  bool                   `json:"processing"`
}

// CheckoutPaymentView exposes payment details with the card number masked.
type CheckoutPaymentView struct {
	Method     domain.PaymentMethod `json:"method"`
	CardLast4  string               `json:"card_last4,omitempty"`
	NameOnCard string               `json:"name_on_card,omitempty"`
}

// CheckoutReview summarises the order before final submission.
type CheckoutReview struct {
	Lines  []domain.CartLine  `json:"lines"`
	Totals domain.OrderTotals `json:"totals"`
}

// OrderConfirmation is the terminal view of a completed checkout.
type OrderConfirmation struct {
	Order domain.Order `json:"order"`
}

// CheckoutService drives the multi-step checkout flow for a session.
type CheckoutService interface {
	Start(ctx context.Context, sessionID string) (CheckoutState, error)
	State(ctx context.Context, sessionID string) (CheckoutState, error)
	UpdateShipping(ctx context.Context, sessionID string, details domain.ShippingDetails) (CheckoutState, error)
	UpdatePayment(ctx context.Context, sessionID string, details domain.PaymentDetails) (CheckoutState, error)
	JumpBack(ctx context.Context, sessionID string, target domain.CheckoutStep) (CheckoutState, error)
	Submit(ctx context.Context, sessionID string) (OrderConfirmation, error)
	Confirmation(ctx context.Context, sessionID string) (OrderConfirmation, error)
}

// Clock abstracts time for deterministic tests.
type Clock func() time.Time

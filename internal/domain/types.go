package domain

import "time"

// Product is a catalog entry as served by the external catalog API.
// The storefront treats products as immutable snapshots; their lifecycle is
// owned entirely by the catalog.
type Product struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Price       int64  `json:"price"` // minor units (cents)
	Description string `json:"description"`
	Category    string `json:"category"`
	Image       string `json:"image"`
	Rating      Rating `json:"rating"`
}

// Rating aggregates the catalog's review score for a product.
type Rating struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

// CartLine is one distinct product entry in the cart with its own quantity.
// At most one line exists per product ID.
type CartLine struct {
	ProductID int    `json:"product_id"`
	Title     string `json:"title"`
	Price     int64  `json:"price"`
	Image     string `json:"image,omitempty"`
	Category  string `json:"category,omitempty"`
	Quantity  int    `json:"quantity"`
}

// LineFromProduct snapshots a product into a cart line with the given quantity.
func LineFromProduct(p Product, quantity int) CartLine {
	return CartLine{
		ProductID: p.ID,
		Title:     p.Title,
		Price:     p.Price,
		Image:     p.Image,
		Category:  p.Category,
		Quantity:  quantity,
	}
}

// Order is the summary synthesized when a checkout submission resolves.
// It exists only for the confirmation view and is never persisted.
type Order struct {
	Number            int           `json:"number"`
	Totals            OrderTotals   `json:"totals"`
	ShippingName      string        `json:"shipping_name"`
	ShippingAddress   string        `json:"shipping_address"`
	ShippingCity      string        `json:"shipping_city"`
	ShippingState     string        `json:"shipping_state"`
	ShippingZip       string        `json:"shipping_zip"`
	ShippingCountry   string        `json:"shipping_country"`
	Email             string        `json:"email"`
	PaymentMethod     PaymentMethod `json:"payment_method"`
	CardLast4         string        `json:"card_last4,omitempty"`
	Lines             []CartLine    `json:"lines"`
	PlacedAt          time.Time     `json:"placed_at"`
	EstimatedDelivery time.Time     `json:"estimated_delivery"`
}

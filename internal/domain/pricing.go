package domain

// Tax is charged at a flat 10% of the cart subtotal; shipping is always free.
const taxRatePercent = 10

// OrderTotals captures the aggregated monetary results of pricing a cart.
// All amounts are minor units (cents).
type OrderTotals struct {
	Subtotal int64 `json:"subtotal"`
	Tax      int64 `json:"tax"`
	Shipping int64 `json:"shipping"`
	Total    int64 `json:"total"`
}

// Subtotal sums price*quantity over all lines. Lines with non-positive
// quantity contribute nothing.
func Subtotal(lines []CartLine) int64 {
	var subtotal int64
	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}
		subtotal += line.Price * int64(line.Quantity)
	}
	return subtotal
}

// UnitCount sums quantities across all lines ("total units" for the cart
// badge, distinct from the number of lines).
func UnitCount(lines []CartLine) int {
	var count int
	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}
		count += line.Quantity
	}
	return count
}

// ComputeOrderTotals derives the final order amounts from the cart lines.
func ComputeOrderTotals(lines []CartLine) OrderTotals {
	subtotal := Subtotal(lines)
	tax := subtotal * taxRatePercent / 100
	return OrderTotals{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: 0,
		Total:    subtotal + tax,
	}
}

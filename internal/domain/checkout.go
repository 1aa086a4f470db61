package domain

// CheckoutStep names one state of the checkout machine.
type CheckoutStep string

const (
	StepShipping  CheckoutStep = "shipping"
	StepPayment   CheckoutStep = "payment"
	StepReview    CheckoutStep = "review"
	StepConfirmed CheckoutStep = "confirmed"
)

// forwardTransitions is the explicit table of gated forward edges. Confirmed
// is reached only through submission, never by plain advancement.
var forwardTransitions = map[CheckoutStep]CheckoutStep{
	StepShipping: StepPayment,
	StepPayment:  StepReview,
}

// stepOrder positions the steps for backward-jump checks.
var stepOrder = map[CheckoutStep]int{
	StepShipping:  0,
	StepPayment:   1,
	StepReview:    2,
	StepConfirmed: 3,
}

// NextStep returns the forward transition for the step, if one exists.
func NextStep(step CheckoutStep) (CheckoutStep, bool) {
	next, ok := forwardTransitions[step]
	return next, ok
}

// CanJumpBack reports whether the machine may move from current to target
// without validation. Backward transitions are never blocked; Confirmed is
// terminal.
func CanJumpBack(current, target CheckoutStep) bool {
	ci, ok := stepOrder[current]
	if !ok || current == StepConfirmed {
		return false
	}
	ti, ok := stepOrder[target]
	if !ok || target == StepConfirmed {
		return false
	}
	return ti < ci
}

// PaymentMethod enumerates the supported payment options.
type PaymentMethod string

const (
	PaymentCreditCard PaymentMethod = "credit-card"
	PaymentPayPal     PaymentMethod = "paypal"
)

// DefaultCountry is preselected on the shipping form.
const DefaultCountry = "USA"

// Countries lists the selectable shipping destinations.
func Countries() []string {
	return []string{"USA", "CAN", "UK", "AUS"}
}

// ValidCountry reports whether the code belongs to the shipping enum.
func ValidCountry(code string) bool {
	for _, c := range Countries() {
		if c == code {
			return true
		}
	}
	return false
}

// ShippingDetails collects the fields of the shipping step. All fields but
// country require non-blank values; email must match a basic local@domain
// shape. Country falls back to DefaultCountry when blank.
type ShippingDetails struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,emailshape"`
	Address   string `json:"address" validate:"required"`
	City      string `json:"city" validate:"required"`
	State     string `json:"state" validate:"required"`
	Zip       string `json:"zip" validate:"required"`
	Country   string `json:"country"`
}

// PaymentDetails collects the fields of the payment step. Card sub-fields are
// required only for the credit-card method, and only checked for blankness:
// no Luhn check, no expiry parsing.
type PaymentDetails struct {
	Method     PaymentMethod `json:"method" validate:"required,oneof=credit-card paypal"`
	CardNumber string        `json:"card_number" validate:"required_if=Method credit-card"`
	CardName   string        `json:"card_name" validate:"required_if=Method credit-card"`
	Expiry     string        `json:"expiry" validate:"required_if=Method credit-card"`
	CVV        string        `json:"cvv" validate:"required_if=Method credit-card"`
}

// MaskedCardNumber returns the last four digits of the card number for the
// review view, or an empty string when no number was entered.
func (p PaymentDetails) MaskedCardNumber() string {
	if len(p.CardNumber) < 4 {
		return ""
	}
	return p.CardNumber[len(p.CardNumber)-4:]
}

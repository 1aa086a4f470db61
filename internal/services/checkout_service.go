package services

import (
	"context"
	"errors"
	"math/rand/v2"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/oklog/ulid/v2"

	domain "github.com/shopfront/api/internal/domain"
)

var (
	errCheckoutCartServiceRequired = errors.New("checkout service: cart service is required")
	errCheckoutClockRequired       = errors.New("checkout service: clock is required")
)

// ErrCheckoutCartEmpty indicates checkout cannot start or complete with an empty cart.
var ErrCheckoutCartEmpty = errors.New("checkout service: cart is empty")

// ErrCheckoutNotStarted indicates no checkout flow exists for the session.
var ErrCheckoutNotStarted = errors.New("checkout service: not started")

// ErrCheckoutInvalidStep indicates the requested transition is not allowed from the current step.
var ErrCheckoutInvalidStep = errors.New("checkout service: invalid step transition")

// ErrCheckoutProcessing indicates a submission is already in flight for the flow.
var ErrCheckoutProcessing = errors.New("checkout service: submission in progress")

// ErrCheckoutNoOrder indicates no confirmed order exists for the session.
var ErrCheckoutNoOrder = errors.New("checkout service: no confirmed order")

// ErrCheckoutUnavailable indicates a dependency failure prevented the operation.
var ErrCheckoutUnavailable = errors.New("checkout service: unavailable")

// ErrCheckoutInvalidInput indicates the caller supplied invalid input.
var ErrCheckoutInvalidInput = errors.New("checkout service: invalid input")

const (
	maxOrderNumber       = 1000000
	deliveryEstimateDays = 7
)

// emailShapePattern accepts anything of the form local@domain.tld with no
// whitespace. Deliverability is not our problem.
var emailShapePattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// CheckoutServiceDeps wires the cart, clock and simulation knobs for checkout flows.
type CheckoutServiceDeps struct {
	Cart            CartService
	Clock           Clock
	ProcessingDelay time.Duration
	OrderNumber     func() int
	Sleep           func(ctx context.Context, d time.Duration) error
	Logger          func(context.Context, string, map[string]any)
	IDGenerator     func() string
}

type checkoutFlow struct {
	flowID      string
	step        domain.CheckoutStep
	shipping    domain.ShippingDetails
	payment     domain.PaymentDetails
	fieldErrors map[string]string
	processing  bool
	order       *domain.Order
}

type checkoutService struct {
	cart     CartService
	now      func() time.Time
	delay    time.Duration
	orderNum func() int
	sleep    func(ctx context.Context, d time.Duration) error
	logger   func(context.Context, string, map[string]any)
	newID    func() string
	validate *validator.Validate

	mu    sync.Mutex
	flows map[string]*checkoutFlow
}

// NewCheckoutService constructs a CheckoutService enforcing dependency validation.
func NewCheckoutService(deps CheckoutServiceDeps) (CheckoutService, error) {
	if deps.Cart == nil {
		return nil, errCheckoutCartServiceRequired
	}
	if deps.Clock == nil {
		return nil, errCheckoutClockRequired
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	orderNum := deps.OrderNumber
	if orderNum == nil {
		orderNum = func() int { return rand.IntN(maxOrderNumber) }
	}

	sleep := deps.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string { return ulid.Make().String() }
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	if err := validate.RegisterValidation("emailshape", func(fl validator.FieldLevel) bool {
		return emailShapePattern.MatchString(fl.Field().String())
	}); err != nil {
		return nil, err
	}

	service := &checkoutService{
		cart:     deps.Cart,
		now:      func() time.Time { return deps.Clock().UTC() },
		delay:    deps.ProcessingDelay,
		orderNum: orderNum,
		sleep:    sleep,
		logger:   logger,
		newID:    idGen,
		validate: validate,
		flows:    make(map[string]*checkoutFlow),
	}
	return service, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Start opens a checkout flow for the session. A non-empty cart is required.
// An unconfirmed flow already in progress is resumed rather than reset.
func (s *checkoutService) Start(ctx context.Context, sessionID string) (CheckoutState, error) {
	sid := strings.TrimSpace(sessionID)
	if sid == "" {
		return CheckoutState{}, ErrCheckoutInvalidInput
	}

	cart, err := s.cart.GetCart(ctx, sid)
	if err != nil {
		return CheckoutState{}, ErrCheckoutUnavailable
	}
	if len(cart.Lines) == 0 {
		return CheckoutState{}, ErrCheckoutCartEmpty
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	flow, ok := s.flows[sid]
	if !ok || flow.step == domain.StepConfirmed {
		flow = &checkoutFlow{
			flowID: s.newID(),
			step:   domain.StepShipping,
			shipping: domain.ShippingDetails{
				Country: domain.DefaultCountry,
			},
		}
		s.flows[sid] = flow
	}

	return s.stateLocked(ctx, sid, flow), nil
}

// State returns the current checkout state for the session.
func (s *checkoutService) State(ctx context.Context, sessionID string) (CheckoutState, error) {
	sid := strings.TrimSpace(sessionID)
	if sid == "" {
		return CheckoutState{}, ErrCheckoutInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	flow, ok := s.flows[sid]
	if !ok {
		return CheckoutState{}, ErrCheckoutNotStarted
	}
	return s.stateLocked(ctx, sid, flow), nil
}

// UpdateShipping validates the shipping form. Valid input advances the flow to
// the payment step; invalid input keeps the step and reports per-field errors
// in the returned state.
func (s *checkoutService) UpdateShipping(ctx context.Context, sessionID string, details domain.ShippingDetails) (CheckoutState, error) {
	sid := strings.TrimSpace(sessionID)
	if sid == "" {
		return CheckoutState{}, ErrCheckoutInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	flow, ok := s.flows[sid]
	if !ok {
		return CheckoutState{}, ErrCheckoutNotStarted
	}
	if flow.step != domain.StepShipping {
		return CheckoutState{}, ErrCheckoutInvalidStep
	}

	normalised := normaliseShipping(details)
	fieldErrors := s.validateStruct(normalised)
	if !domain.ValidCountry(normalised.Country) {
		fieldErrors["country"] = "Select a valid country"
	}

	flow.shipping = normalised
	if len(fieldErrors) > 0 {
		flow.fieldErrors = fieldErrors
		return s.stateLocked(ctx, sid, flow), nil
	}

	flow.fieldErrors = nil
	next, ok := domain.NextStep(flow.step)
	if !ok {
		return CheckoutState{}, ErrCheckoutInvalidStep
	}
	flow.step = next
	return s.stateLocked(ctx, sid, flow), nil
}

// UpdatePayment validates the payment form. Valid input advances the flow to
// the review step.
func (s *checkoutService) UpdatePayment(ctx context.Context, sessionID string, details domain.PaymentDetails) (CheckoutState, error) {
	sid := strings.TrimSpace(sessionID)
	if sid == "" {
		return CheckoutState{}, ErrCheckoutInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	flow, ok := s.flows[sid]
	if !ok {
		return CheckoutState{}, ErrCheckoutNotStarted
	}
	if flow.step != domain.StepPayment {
		return CheckoutState{}, ErrCheckoutInvalidStep
	}

	normalised := normalisePayment(details)
	fieldErrors := s.validateStruct(normalised)

	flow.payment = normalised
	if len(fieldErrors) > 0 {
		flow.fieldErrors = fieldErrors
		return s.stateLocked(ctx, sid, flow), nil
	}

	flow.fieldErrors = nil
	next, ok := domain.NextStep(flow.step)
	if !ok {
		return CheckoutState{}, ErrCheckoutInvalidStep
	}
	flow.step = next
	return s.stateLocked(ctx, sid, flow), nil
}

// JumpBack moves the flow to an earlier step, keeping the captured values and
// clearing any field errors. Forward jumps and leaving Confirmed are rejected.
func (s *checkoutService) JumpBack(ctx context.Context, sessionID string, target domain.CheckoutStep) (CheckoutState, error) {
	sid := strings.TrimSpace(sessionID)
	if sid == "" {
		return CheckoutState{}, ErrCheckoutInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	flow, ok := s.flows[sid]
	if !ok {
		return CheckoutState{}, ErrCheckoutNotStarted
	}
	if flow.processing {
		return CheckoutState{}, ErrCheckoutProcessing
	}
	if !domain.CanJumpBack(flow.step, target) {
		return CheckoutState{}, ErrCheckoutInvalidStep
	}

	flow.step = target
	flow.fieldErrors = nil
	return s.stateLocked(ctx, sid, flow), nil
}

// Submit finalises the flow from the review step: it simulates payment
// processing, synthesises the order, and clears the cart. The cart is cleared
// only after the order is confirmed.
func (s *checkoutService) Submit(ctx context.Context, sessionID string) (OrderConfirmation, error) {
	sid := strings.TrimSpace(sessionID)
	if sid == "" {
		return OrderConfirmation{}, ErrCheckoutInvalidInput
	}

	s.mu.Lock()
	flow, ok := s.flows[sid]
	if !ok {
		s.mu.Unlock()
		return OrderConfirmation{}, ErrCheckoutNotStarted
	}
	if flow.step != domain.StepReview {
		s.mu.Unlock()
		return OrderConfirmation{}, ErrCheckoutInvalidStep
	}
	if flow.processing {
		s.mu.Unlock()
		return OrderConfirmation{}, ErrCheckoutProcessing
	}
	flow.processing = true
	shipping := flow.shipping
	payment := flow.payment
	s.mu.Unlock()

	confirmation, err := s.processSubmission(ctx, sid, shipping, payment)

	s.mu.Lock()
	flow.processing = false
	if err == nil {
		flow.step = domain.StepConfirmed
		flow.order = &confirmation.Order
		flow.fieldErrors = nil
	}
	s.mu.Unlock()

	return confirmation, err
}

func (s *checkoutService) processSubmission(ctx context.Context, sessionID string, shipping domain.ShippingDetails, payment domain.PaymentDetails) (OrderConfirmation, error) {
	cart, err := s.cart.GetCart(ctx, sessionID)
	if err != nil {
		return OrderConfirmation{}, ErrCheckoutUnavailable
	}
	if len(cart.Lines) == 0 {
		return OrderConfirmation{}, ErrCheckoutCartEmpty
	}

	if err := s.sleep(ctx, s.delay); err != nil {
		return OrderConfirmation{}, err
	}

	now := s.now()
	order := domain.Order{
		Number:            s.orderNum(),
		Totals:            domain.ComputeOrderTotals(cart.Lines),
		ShippingName:      strings.TrimSpace(shipping.FirstName + " " + shipping.LastName),
		ShippingAddress:   shipping.Address,
		ShippingCity:      shipping.City,
		ShippingState:     shipping.State,
		ShippingZip:       shipping.Zip,
		ShippingCountry:   shipping.Country,
		Email:             shipping.Email,
		PaymentMethod:     payment.Method,
		CardLast4:         payment.MaskedCardNumber(),
		Lines:             cart.Lines,
		PlacedAt:          now,
		EstimatedDelivery: now.AddDate(0, 0, deliveryEstimateDays),
	}

	if err := s.cart.ClearCart(ctx, sessionID); err != nil {
		s.logger(ctx, "checkout.cart_clear_failed", map[string]any{
			"sessionID": sessionID,
			"error":     err.Error(),
		})
		return OrderConfirmation{}, ErrCheckoutUnavailable
	}

	s.logger(ctx, "checkout.order_confirmed", map[string]any{
		"sessionID":   sessionID,
		"orderNumber": order.Number,
		"total":       order.Totals.Total,
	})
	return OrderConfirmation{Order: order}, nil
}

// Confirmation returns the confirmed order for the session.
func (s *checkoutService) Confirmation(ctx context.Context, sessionID string) (OrderConfirmation, error) {
	sid := strings.TrimSpace(sessionID)
	if sid == "" {
		return OrderConfirmation{}, ErrCheckoutInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	flow, ok := s.flows[sid]
	if !ok || flow.order == nil {
		return OrderConfirmation{}, ErrCheckoutNoOrder
	}
	return OrderConfirmation{Order: *flow.order}, nil
}

// stateLocked projects a flow into its external view. Callers hold s.mu.
func (s *checkoutService) stateLocked(ctx context.Context, sessionID string, flow *checkoutFlow) CheckoutState {
	state := CheckoutState{
		FlowID:   flow.flowID,
		Step:     flow.step,
		Shipping: flow.shipping,
		Payment: CheckoutPaymentView{
			Method:     flow.payment.Method,
			CardLast4:  flow.payment.MaskedCardNumber(),
			NameOnCard: flow.payment.CardName,
		},
		Countries:  domain.Countries(),
		Processing: flow.processing,
	}
	if len(flow.fieldErrors) > 0 {
		errs := make(map[string]string, len(flow.fieldErrors))
		for k, v := range flow.fieldErrors {
			errs[k] = v
		}
		state.FieldErrors = errs
	}
	if flow.step == domain.StepReview {
		if cart, err := s.cart.GetCart(ctx, sessionID); err == nil {
			state.Review = &CheckoutReview{
				Lines:  cart.Lines,
				Totals: domain.ComputeOrderTotals(cart.Lines),
			}
		}
	}
	return state
}

func (s *checkoutService) validateStruct(value any) map[string]string {
	fieldErrors := make(map[string]string)
	err := s.validate.Struct(value)
	if err == nil {
		return fieldErrors
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		fieldErrors["form"] = "Invalid input"
		return fieldErrors
	}

	for _, fieldErr := range validationErrs {
		field := fieldErr.Field()
		switch fieldErr.Tag() {
		case "required", "required_if":
			fieldErrors[field] = "This field is required"
		case "emailshape":
			fieldErrors[field] = "Enter a valid email address"
		case "oneof":
			fieldErrors[field] = "Select a valid option"
		default:
			fieldErrors[field] = "Invalid value"
		}
	}
	return fieldErrors
}

func normaliseShipping(details domain.ShippingDetails) domain.ShippingDetails {
	details.FirstName = strings.TrimSpace(details.FirstName)
	details.LastName = strings.TrimSpace(details.LastName)
	details.Email = strings.TrimSpace(details.Email)
	details.Address = strings.TrimSpace(details.Address)
	details.City = strings.TrimSpace(details.City)
	details.State = strings.TrimSpace(details.State)
	details.Zip = strings.TrimSpace(details.Zip)
	details.Country = strings.TrimSpace(details.Country)
	if details.Country == "" {
		details.Country = domain.DefaultCountry
	}
	return details
}

func normalisePayment(details domain.PaymentDetails) domain.PaymentDetails {
	details.Method = domain.PaymentMethod(strings.TrimSpace(string(details.Method)))
	details.CardNumber = strings.TrimSpace(details.CardNumber)
	details.CardName = strings.TrimSpace(details.CardName)
	details.Expiry = strings.TrimSpace(details.Expiry)
	details.CVV = strings.TrimSpace(details.CVV)
	if details.Method == domain.PaymentPayPal {
		details.CardNumber = ""
		details.CardName = ""
		details.Expiry = ""
		details.CVV = ""
	}
	return details
}

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	domain "github.com/shopfront/api/internal/domain"
	"github.com/shopfront/api/internal/platform/httpx"
	"github.com/shopfront/api/internal/services"
)

// CheckoutHandlers drives the multi-step checkout flow over HTTP.
type CheckoutHandlers struct {
	checkout services.CheckoutService
}

const maxCheckoutBodySize = 16 * 1024

// NewCheckoutHandlers constructs handlers for the checkout flow.
func NewCheckoutHandlers(checkout services.CheckoutService) *CheckoutHandlers {
	return &CheckoutHandlers{checkout: checkout}
}

// Routes wires the /checkout endpoints onto the provided router.
func (h *CheckoutHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/", h.start)
	r.Get("/", h.state)
	r.Put("/shipping", h.updateShipping)
	r.Put("/payment", h.updatePayment)
	r.Post("/back", h.jumpBack)
	r.Post("/submit", h.submit)
	r.Get("/confirmation", h.confirmation)
}

type jumpBackRequest struct {
	Step string `json:"step"`
}

type checkoutStateResponse struct {
	Checkout services.CheckoutState `json:"checkout"`
}

func (h *CheckoutHandlers) start(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.checkout == nil {
		httpx.WriteError(ctx, w, httpx.NewError("checkout_service_unavailable", "checkout service is unavailable", http.StatusServiceUnavailable))
		return
	}

	sessionID, ok := sessionFromRequest(r, w)
	if !ok {
		return
	}

	state, err := h.checkout.Start(ctx, sessionID)
	if err != nil {
		h.writeCheckoutError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, checkoutStateResponse{Checkout: state})
}

func (h *CheckoutHandlers) state(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.checkout == nil {
		httpx.WriteError(ctx, w, httpx.NewError("checkout_service_unavailable", "checkout service is unavailable", http.StatusServiceUnavailable))
		return
	}

	sessionID, ok := sessionFromRequest(r, w)
	if !ok {
		return
	}

	state, err := h.checkout.State(ctx, sessionID)
	if err != nil {
		h.writeCheckoutError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, checkoutStateResponse{Checkout: state})
}

func (h *CheckoutHandlers) updateShipping(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.checkout == nil {
		httpx.WriteError(ctx, w, httpx.NewError("checkout_service_unavailable", "checkout service is unavailable", http.StatusServiceUnavailable))
		return
	}

	sessionID, ok := sessionFromRequest(r, w)
	if !ok {
		return
	}

	body, err := readLimitedBody(r, maxCheckoutBodySize)
	if err != nil {
		writeBodyError(r, w, err)
		return
	}

	var details domain.ShippingDetails
	if err := json.Unmarshal(body, &details); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body must be valid JSON", http.StatusBadRequest))
		return
	}

	state, err := h.checkout.UpdateShipping(ctx, sessionID, details)
	if err != nil {
		h.writeCheckoutError(ctx, w, err)
		return
	}
	writeJSONResponse(w, stateStatus(state), checkoutStateResponse{Checkout: state})
}

func (h *CheckoutHandlers) updatePayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.checkout == nil {
		httpx.WriteError(ctx, w, httpx.NewError("checkout_service_unavailable", "checkout service is unavailable", http.StatusServiceUnavailable))
		return
	}

	sessionID, ok := sessionFromRequest(r, w)
	if !ok {
		return
	}

	body, err := readLimitedBody(r, maxCheckoutBodySize)
	if err != nil {
		writeBodyError(r, w, err)
		return
	}

	var details domain.PaymentDetails
	if err := json.Unmarshal(body, &details); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body must be valid JSON", http.StatusBadRequest))
		return
	}

	state, err := h.checkout.UpdatePayment(ctx, sessionID, details)
	if err != nil {
		h.writeCheckoutError(ctx, w, err)
		return
	}
	writeJSONResponse(w, stateStatus(state), checkoutStateResponse{Checkout: state})
}

func (h *CheckoutHandlers) jumpBack(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.checkout == nil {
		httpx.WriteError(ctx, w, httpx.NewError("checkout_service_unavailable", "checkout service is unavailable", http.StatusServiceUnavailable))
		return
	}

	sessionID, ok := sessionFromRequest(r, w)
	if !ok {
		return
	}

	body, err := readLimitedBody(r, maxCheckoutBodySize)
	if err != nil {
		writeBodyError(r, w, err)
		return
	}

	var req jumpBackRequest
	if err := json.Unmarshal(body, &req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "request body must be valid JSON", http.StatusBadRequest))
		return
	}

	state, err := h.checkout.JumpBack(ctx, sessionID, domain.CheckoutStep(req.Step))
	if err != nil {
		h.writeCheckoutError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, checkoutStateResponse{Checkout: state})
}

func (h *CheckoutHandlers) submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.checkout == nil {
		httpx.WriteError(ctx, w, httpx.NewError("checkout_service_unavailable", "checkout service is unavailable", http.StatusServiceUnavailable))
		return
	}

	sessionID, ok := sessionFromRequest(r, w)
	if !ok {
		return
	}

	confirmation, err := h.checkout.Submit(ctx, sessionID)
	if err != nil {
		h.writeCheckoutError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, confirmation)
}

func (h *CheckoutHandlers) confirmation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.checkout == nil {
		httpx.WriteError(ctx, w, httpx.NewError("checkout_service_unavailable", "checkout service is unavailable", http.StatusServiceUnavailable))
		return
	}

	sessionID, ok := sessionFromRequest(r, w)
	if !ok {
		return
	}

	confirmation, err := h.checkout.Confirmation(ctx, sessionID)
	if err != nil {
		h.writeCheckoutError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, confirmation)
}

// stateStatus maps a validation outcome to the response code: states carrying
// field errors did not advance.
func stateStatus(state services.CheckoutState) int {
	if len(state.FieldErrors) > 0 {
		return http.StatusUnprocessableEntity
	}
	return http.StatusOK
}

func (h *CheckoutHandlers) writeCheckoutError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, services.ErrCheckoutCartEmpty):
		httpx.WriteError(ctx, w, httpx.NewError("checkout_cart_empty", "the cart is empty", http.StatusConflict).WithRedirect("/cart"))
	case errors.Is(err, services.ErrCheckoutNotStarted):
		httpx.WriteError(ctx, w, httpx.NewError("checkout_not_started", "no checkout in progress", http.StatusConflict).WithRedirect("/cart"))
	case errors.Is(err, services.ErrCheckoutInvalidStep):
		httpx.WriteError(ctx, w, httpx.NewError("checkout_invalid_step", "the requested step transition is not allowed", http.StatusConflict))
	case errors.Is(err, services.ErrCheckoutProcessing):
		httpx.WriteError(ctx, w, httpx.NewError("checkout_processing", "a submission is already in progress", http.StatusConflict))
	case errors.Is(err, services.ErrCheckoutNoOrder):
		httpx.WriteError(ctx, w, httpx.NewError("order_not_found", "no confirmed order for this session", http.StatusNotFound).WithRedirect("/"))
	case errors.Is(err, services.ErrCheckoutInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		httpx.WriteError(ctx, w, httpx.NewError("request_cancelled", "request was cancelled", 499))
	case errors.Is(err, services.ErrCheckoutUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("checkout_service_unavailable", "checkout service is unavailable", http.StatusServiceUnavailable))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("checkout_error", "failed to process checkout", http.StatusInternalServerError))
	}
}

package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
)

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decoding envelope: %v", err)
	}
	return payload
}

func TestWriteErrorEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(context.Background(), rec, NewError("cart_error", "something went wrong", http.StatusInternalServerError))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q", ct)
	}

	payload := decodeEnvelope(t, rec)
	if payload["error"] != "cart_error" {
		t.Fatalf("error = %v", payload["error"])
	}
	if payload["message"] != "something went wrong" {
		t.Fatalf("message = %v", payload["message"])
	}
	if payload["status"] != float64(http.StatusInternalServerError) {
		t.Fatalf("status field = %v", payload["status"])
	}
}

func TestWriteErrorIncludesRequestID(t *testing.T) {
	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-42")
	rec := httptest.NewRecorder()
	WriteError(ctx, rec, NewError("session_required", "no session", http.StatusBadRequest))

	payload := decodeEnvelope(t, rec)
	if payload["request_id"] != "req-42" {
		t.Fatalf("request_id = %v", payload["request_id"])
	}
}

func TestWriteErrorRedirectDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	err := NewError("checkout_cart_empty", "cart is empty", http.StatusConflict).WithRedirect("/cart")
	WriteError(context.Background(), rec, err)

	payload := decodeEnvelope(t, rec)
	if payload["redirect"] != "/cart" {
		t.Fatalf("redirect = %v", payload["redirect"])
	}
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestNewErrorSanitizesInput(t *testing.T) {
	err := NewError("bad\ncode", "multi\r\nline message", 0)
	if err.Status != http.StatusInternalServerError {
		t.Fatalf("status = %d, want default 500", err.Status)
	}
	if err.Code != "bad code" {
		t.Fatalf("code = %q", err.Code)
	}
	if err.Message != "multi  line message" {
		t.Fatalf("message = %q", err.Message)
	}
}

func TestWithDetailsCopiesMap(t *testing.T) {
	details := map[string]any{"field": "email"}
	err := NewError("invalid_request", "bad input", http.StatusBadRequest).WithDetails(details)
	details["field"] = "mutated"

	if err.Details["field"] != "email" {
		t.Fatalf("details leaked caller mutation: %v", err.Details)
	}
}

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/shopfront/api/internal/domain"
)

type stubCartRepository struct {
	loadFunc   func(ctx context.Context, sessionKey string) ([]domain.CartLine, error)
	saveFunc   func(ctx context.Context, sessionKey string, lines []domain.CartLine) error
	deleteFunc func(ctx context.Context, sessionKey string) error
}

func (s *stubCartRepository) LoadSnapshot(ctx context.Context, sessionKey string) ([]domain.CartLine, error) {
	if s.loadFunc == nil {
		return nil, &repositoryErrorStub{notFound: true}
	}
	return s.loadFunc(ctx, sessionKey)
}

func (s *stubCartRepository) SaveSnapshot(ctx context.Context, sessionKey string, lines []domain.CartLine) error {
	if s.saveFunc == nil {
		return nil
	}
	return s.saveFunc(ctx, sessionKey, lines)
}

func (s *stubCartRepository) DeleteSnapshot(ctx context.Context, sessionKey string) error {
	if s.deleteFunc == nil {
		return nil
	}
	return s.deleteFunc(ctx, sessionKey)
}

type repositoryErrorStub struct {
	notFound    bool
	corrupt     bool
	unavailable bool
}

func (r *repositoryErrorStub) Error() string     { return "repository error stub" }
func (r *repositoryErrorStub) IsNotFound() bool  { return r.notFound }
func (r *repositoryErrorStub) IsCorrupt() bool   { return r.corrupt }
func (r *repositoryErrorStub) IsUnavailable() bool {
	return r.unavailable
}

func testClock(now time.Time) Clock {
	return func() time.Time { return now }
}

func newTestCartService(t *testing.T, repo *stubCartRepository) CartService {
	t.Helper()
	now := time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC)
	service, err := NewCartService(CartServiceDeps{
		Repository: repo,
		Clock:      testClock(now),
	})
	if err != nil {
		t.Fatalf("unexpected error constructing cart service: %v", err)
	}
	return service
}

func TestCartServiceGetCartEmptyWhenMissing(t *testing.T) {
	repo := &stubCartRepository{
		loadFunc: func(ctx context.Context, sessionKey string) ([]domain.CartLine, error) {
			if sessionKey != "sess-1" {
				t.Fatalf("unexpected session key %q", sessionKey)
			}
			return nil, &repositoryErrorStub{notFound: true}
		},
	}
	service := newTestCartService(t, repo)

	cart, err := service.GetCart(context.Background(), " sess-1 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cart.Lines) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(cart.Lines))
	}
	if cart.Subtotal != 0 || cart.UnitCount != 0 || cart.DistinctCount != 0 {
		t.Fatalf("expected zeroed totals, got %+v", cart)
	}
}

func TestCartServiceGetCartFailSoftOnCorrupt(t *testing.T) {
	repo := &stubCartRepository{
		loadFunc: func(ctx context.Context, sessionKey string) ([]domain.CartLine, error) {
			return nil, &repositoryErrorStub{corrupt: true}
		},
	}
	service := newTestCartService(t, repo)

	cart, err := service.GetCart(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("expected corrupt snapshot to yield empty cart, got error: %v", err)
	}
	if len(cart.Lines) != 0 {
		t.Fatalf("expected empty cart after corrupt snapshot, got %d lines", len(cart.Lines))
	}
}

func TestCartServiceGetCartUnavailable(t *testing.T) {
	repo := &stubCartRepository{
		loadFunc: func(ctx context.Context, sessionKey string) ([]domain.CartLine, error) {
			return nil, &repositoryErrorStub{unavailable: true}
		},
	}
	service := newTestCartService(t, repo)

	if _, err := service.GetCart(context.Background(), "sess-1"); !errors.Is(err, ErrCartUnavailable) {
		t.Fatalf("expected ErrCartUnavailable, got %v", err)
	}
}

func TestCartServiceAddItemNewLine(t *testing.T) {
	var saved []domain.CartLine
	repo := &stubCartRepository{
		saveFunc: func(ctx context.Context, sessionKey string, lines []domain.CartLine) error {
			saved = lines
			return nil
		},
	}
	service := newTestCartService(t, repo)

	product := domain.Product{ID: 3, Title: "Mens Cotton Jacket", Price: 5599, Category: "men's clothing"}
	cart, err := service.AddItem(context.Background(), AddItemCommand{
		SessionID: "sess-1",
		Product:   product,
		Quantity:  2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(cart.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(cart.Lines))
	}
	line := cart.Lines[0]
	if line.ProductID != 3 || line.Quantity != 2 || line.Price != 5599 {
		t.Fatalf("unexpected line %+v", line)
	}
	if cart.Subtotal != 11198 {
		t.Fatalf("expected subtotal 11198, got %d", cart.Subtotal)
	}
	if cart.UnitCount != 2 || cart.DistinctCount != 1 {
		t.Fatalf("unexpected counts %+v", cart)
	}
	if len(saved) != 1 {
		t.Fatalf("expected snapshot persisted with 1 line, got %d", len(saved))
	}
}

func TestCartServiceAddItemMergesQuantity(t *testing.T) {
	existing := []domain.CartLine{
		{ProductID: 3, Title: "Mens Cotton Jacket", Price: 5599, Quantity: 2},
	}
	var saved []domain.CartLine
	repo := &stubCartRepository{
		loadFunc: func(ctx context.Context, sessionKey string) ([]domain.CartLine, error) {
			return existing, nil
		},
		saveFunc: func(ctx context.Context, sessionKey string, lines []domain.CartLine) error {
			saved = lines
			return nil
		},
	}
	service := newTestCartService(t, repo)

	cart, err := service.AddItem(context.Background(), AddItemCommand{
		SessionID: "sess-1",
		Product:   domain.Product{ID: 3, Title: "Mens Cotton Jacket", Price: 5599},
		Quantity:  3,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(cart.Lines) != 1 {
		t.Fatalf("expected merged single line, got %d", len(cart.Lines))
	}
	if cart.Lines[0].Quantity != 5 {
		t.Fatalf("expected quantity 5, got %d", cart.Lines[0].Quantity)
	}
	if len(saved) != 1 || saved[0].Quantity != 5 {
		t.Fatalf("expected merged snapshot persisted, got %+v", saved)
	}
}

func TestCartServiceAddItemRejectsNonPositiveQuantity(t *testing.T) {
	service := newTestCartService(t, &stubCartRepository{})

	_, err := service.AddItem(context.Background(), AddItemCommand{
		SessionID: "sess-1",
		Product:   domain.Product{ID: 3, Price: 100},
		Quantity:  0,
	})
	if !errors.Is(err, ErrCartInvalidInput) {
		t.Fatalf("expected ErrCartInvalidInput, got %v", err)
	}
}

func TestCartServiceRemoveItemAbsentIsNoOp(t *testing.T) {
	saveCalled := false
	repo := &stubCartRepository{
		loadFunc: func(ctx context.Context, sessionKey string) ([]domain.CartLine, error) {
			return []domain.CartLine{{ProductID: 1, Price: 100, Quantity: 1}}, nil
		},
		saveFunc: func(ctx context.Context, sessionKey string, lines []domain.CartLine) error {
			saveCalled = true
			return nil
		},
	}
	service := newTestCartService(t, repo)

	cart, err := service.RemoveItem(context.Background(), "sess-1", 99)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cart.Lines) != 1 {
		t.Fatalf("expected untouched cart, got %d lines", len(cart.Lines))
	}
	if saveCalled {
		t.Fatal("expected no persistence for a no-op removal")
	}
}

func TestCartServiceRemoveItemDropsLine(t *testing.T) {
	repo := &stubCartRepository{
		loadFunc: func(ctx context.Context, sessionKey string) ([]domain.CartLine, error) {
			return []domain.CartLine{
				{ProductID: 1, Price: 100, Quantity: 1},
				{ProductID: 2, Price: 250, Quantity: 4},
			}, nil
		},
	}
	service := newTestCartService(t, repo)

	cart, err := service.RemoveItem(context.Background(), "sess-1", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cart.Lines) != 1 {
		t.Fatalf("expected 1 line remaining, got %d", len(cart.Lines))
	}
	if cart.Lines[0].ProductID != 2 {
		t.Fatalf("expected product 2 to remain, got %d", cart.Lines[0].ProductID)
	}
	if cart.Subtotal != 1000 {
		t.Fatalf("expected subtotal 1000, got %d", cart.Subtotal)
	}
}

func TestCartServiceSetItemQuantityZeroRemoves(t *testing.T) {
	repo := &stubCartRepository{
		loadFunc: func(ctx context.Context, sessionKey string) ([]domain.CartLine, error) {
			return []domain.CartLine{{ProductID: 7, Price: 999, Quantity: 3}}, nil
		},
	}
	service := newTestCartService(t, repo)

	cart, err := service.SetItemQuantity(context.Background(), SetQuantityCommand{
		SessionID: "sess-1",
		ProductID: 7,
		Quantity:  0,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cart.Lines) != 0 {
		t.Fatalf("expected line removed, got %d lines", len(cart.Lines))
	}
}

func TestCartServiceSetItemQuantityUpdates(t *testing.T) {
	repo := &stubCartRepository{
		loadFunc: func(ctx context.Context, sessionKey string) ([]domain.CartLine, error) {
			return []domain.CartLine{{ProductID: 7, Price: 999, Quantity: 3}}, nil
		},
	}
	service := newTestCartService(t, repo)

	cart, err := service.SetItemQuantity(context.Background(), SetQuantityCommand{
		SessionID: "sess-1",
		ProductID: 7,
		Quantity:  5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cart.Lines[0].Quantity != 5 {
		t.Fatalf("expected quantity 5, got %d", cart.Lines[0].Quantity)
	}
	if cart.UnitCount != 5 {
		t.Fatalf("expected unit count 5, got %d", cart.UnitCount)
	}
}

func TestCartServiceSetItemQuantityAbsentIsNoOp(t *testing.T) {
	repo := &stubCartRepository{
		loadFunc: func(ctx context.Context, sessionKey string) ([]domain.CartLine, error) {
			return []domain.CartLine{{ProductID: 7, Price: 999, Quantity: 3}}, nil
		},
	}
	service := newTestCartService(t, repo)

	cart, err := service.SetItemQuantity(context.Background(), SetQuantityCommand{
		SessionID: "sess-1",
		ProductID: 42,
		Quantity:  5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cart.Lines[0].Quantity != 3 {
		t.Fatalf("expected untouched quantity 3, got %d", cart.Lines[0].Quantity)
	}
}

func TestCartServiceClearCart(t *testing.T) {
	deleted := ""
	repo := &stubCartRepository{
		deleteFunc: func(ctx context.Context, sessionKey string) error {
			deleted = sessionKey
			return nil
		},
	}
	service := newTestCartService(t, repo)

	if err := service.ClearCart(context.Background(), "sess-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != "sess-1" {
		t.Fatalf("expected snapshot delete for sess-1, got %q", deleted)
	}
}

func TestCartServicePersistFailureSurfaces(t *testing.T) {
	repo := &stubCartRepository{
		saveFunc: func(ctx context.Context, sessionKey string, lines []domain.CartLine) error {
			return &repositoryErrorStub{unavailable: true}
		},
	}
	service := newTestCartService(t, repo)

	_, err := service.AddItem(context.Background(), AddItemCommand{
		SessionID: "sess-1",
		Product:   domain.Product{ID: 1, Price: 100},
		Quantity:  1,
	})
	if !errors.Is(err, ErrCartUnavailable) {
		t.Fatalf("expected ErrCartUnavailable, got %v", err)
	}
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domain "github.com/shopfront/api/internal/domain"
	"github.com/shopfront/api/internal/repositories"
)

var (
	errCartRepositoryRequired = errors.New("cart service: repository is required")
	errCartClockRequired      = errors.New("cart service: clock is required")
)

// ErrCartInvalidInput indicates the caller supplied invalid input.
var ErrCartInvalidInput = errors.New("cart service: invalid input")

// ErrCartUnavailable indicates the cart cannot be read or persisted due to backend issues.
var ErrCartUnavailable = errors.New("cart service: unavailable")

// CartServiceDeps wires the persistence and ambient dependencies for cart operations.
type CartServiceDeps struct {
	Repository repositories.CartRepository
	Clock      Clock
	Logger     func(context.Context, string, map[string]any)
}

type cartService struct {
	repo   repositories.CartRepository
	now    func() time.Time
	logger func(context.Context, string, map[string]any)
}

// NewCartService constructs a CartService enforcing dependency validation.
func NewCartService(deps CartServiceDeps) (CartService, error) {
	if deps.Repository == nil {
		return nil, errCartRepositoryRequired
	}
	if deps.Clock == nil {
		return nil, errCartClockRequired
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	service := &cartService{
		repo:   deps.Repository,
		now:    func() time.Time { return deps.Clock().UTC() },
		logger: logger,
	}
	return service, nil
}

// GetCart loads the session cart. A missing or unreadable snapshot yields an
// empty cart rather than an error so the storefront always renders.
func (s *cartService) GetCart(ctx context.Context, sessionID string) (Cart, error) {
	if s == nil || s.repo == nil {
		return Cart{}, ErrCartUnavailable
	}

	sid := strings.TrimSpace(sessionID)
	if sid == "" {
		return Cart{}, ErrCartInvalidInput
	}

	lines, err := s.loadLines(ctx, sid)
	if err != nil {
		return Cart{}, err
	}
	return buildCart(lines), nil
}

// AddItem merges the product into the cart, incrementing the quantity when a
// line for the same product already exists.
func (s *cartService) AddItem(ctx context.Context, cmd AddItemCommand) (Cart, error) {
	if s == nil || s.repo == nil {
		return Cart{}, ErrCartUnavailable
	}

	sid := strings.TrimSpace(cmd.SessionID)
	if sid == "" {
		return Cart{}, ErrCartInvalidInput
	}
	if cmd.Product.ID <= 0 {
		return Cart{}, fmt.Errorf("%w: product id is required", ErrCartInvalidInput)
	}
	if cmd.Quantity <= 0 {
		return Cart{}, fmt.Errorf("%w: quantity must be greater than zero", ErrCartInvalidInput)
	}

	lines, err := s.loadLines(ctx, sid)
	if err != nil {
		return Cart{}, err
	}

	idx := indexOfLine(lines, cmd.Product.ID)
	if idx >= 0 {
		lines[idx].Quantity += cmd.Quantity
	} else {
		lines = append(lines, domain.LineFromProduct(cmd.Product, cmd.Quantity))
	}

	if err := s.persist(ctx, sid, lines); err != nil {
		return Cart{}, err
	}
	return buildCart(lines), nil
}

// RemoveItem drops the line for the product. Removing an absent product is a no-op.
func (s *cartService) RemoveItem(ctx context.Context, sessionID string, productID int) (Cart, error) {
	if s == nil || s.repo == nil {
		return Cart{}, ErrCartUnavailable
	}

	sid := strings.TrimSpace(sessionID)
	if sid == "" {
		return Cart{}, ErrCartInvalidInput
	}

	lines, err := s.loadLines(ctx, sid)
	if err != nil {
		return Cart{}, err
	}

	idx := indexOfLine(lines, productID)
	if idx < 0 {
		return buildCart(lines), nil
	}

	lines = append(lines[:idx], lines[idx+1:]...)
	if err := s.persist(ctx, sid, lines); err != nil {
		return Cart{}, err
	}
	return buildCart(lines), nil
}

// SetItemQuantity sets the absolute quantity for a line. A quantity of zero or
// less removes the line. Targeting an absent product is a no-op.
func (s *cartService) SetItemQuantity(ctx context.Context, cmd SetQuantityCommand) (Cart, error) {
	if s == nil || s.repo == nil {
		return Cart{}, ErrCartUnavailable
	}

	sid := strings.TrimSpace(cmd.SessionID)
	if sid == "" {
		return Cart{}, ErrCartInvalidInput
	}

	lines, err := s.loadLines(ctx, sid)
	if err != nil {
		return Cart{}, err
	}

	idx := indexOfLine(lines, cmd.ProductID)
	if idx < 0 {
		return buildCart(lines), nil
	}

	if cmd.Quantity <= 0 {
		lines = append(lines[:idx], lines[idx+1:]...)
	} else {
		lines[idx].Quantity = cmd.Quantity
	}

	if err := s.persist(ctx, sid, lines); err != nil {
		return Cart{}, err
	}
	return buildCart(lines), nil
}

// ClearCart removes every line and deletes the durable snapshot.
func (s *cartService) ClearCart(ctx context.Context, sessionID string) error {
	if s == nil || s.repo == nil {
		return ErrCartUnavailable
	}

	sid := strings.TrimSpace(sessionID)
	if sid == "" {
		return ErrCartInvalidInput
	}

	if err := s.repo.DeleteSnapshot(ctx, sid); err != nil {
		return s.translateRepoError(err)
	}
	return nil
}

func (s *cartService) loadLines(ctx context.Context, sessionID string) ([]domain.CartLine, error) {
	lines, err := s.repo.LoadSnapshot(ctx, sessionID)
	if err != nil {
		var repoErr repositories.RepositoryError
		if errors.As(err, &repoErr) {
			if repoErr.IsNotFound() {
				return []domain.CartLine{}, nil
			}
			if repoErr.IsCorrupt() {
				// A cart we cannot decode starts over empty. Losing a cart
				// beats refusing to serve the session.
				s.logger(ctx, "cart.snapshot_corrupt", map[string]any{
					"sessionID": sessionID,
					"error":     err.Error(),
				})
				return []domain.CartLine{}, nil
			}
		}
		return nil, s.translateRepoError(err)
	}
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return lines, nil
}

func (s *cartService) persist(ctx context.Context, sessionID string, lines []domain.CartLine) error {
	if err := s.repo.SaveSnapshot(ctx, sessionID, lines); err != nil {
		s.logger(ctx, "cart.persist_failed", map[string]any{
			"sessionID": sessionID,
			"error":     err.Error(),
		})
		return s.translateRepoError(err)
	}
	return nil
}

func (s *cartService) translateRepoError(err error) error {
	if err == nil {
		return nil
	}
	return ErrCartUnavailable
}

func buildCart(lines []domain.CartLine) Cart {
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return Cart{
		Lines:         lines,
		Subtotal:      domain.Subtotal(lines),
		UnitCount:     domain.UnitCount(lines),
		DistinctCount: len(lines),
	}
}

func indexOfLine(lines []domain.CartLine, productID int) int {
	for i, line := range lines {
		if line.ProductID == productID {
			return i
		}
	}
	return -1
}

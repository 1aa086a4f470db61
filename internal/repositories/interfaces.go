// Package repositories defines the persistence contracts consumed by the
// service layer.
package repositories

import (
	"context"

	"github.com/shopfront/api/internal/domain"
)

// RepositoryError wraps low-level persistence failures with categorisation
// used by services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsCorrupt() bool
	IsUnavailable() bool
}

// CartRepository persists full cart snapshots keyed by session. Every write
// replaces the prior snapshot; there is no delta persistence.
type CartRepository interface {
	LoadSnapshot(ctx context.Context, sessionKey string) ([]domain.CartLine, error)
	SaveSnapshot(ctx context.Context, sessionKey string, lines []domain.CartLine) error
	DeleteSnapshot(ctx context.Context, sessionKey string) error
}

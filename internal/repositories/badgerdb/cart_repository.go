// Package badgerdb implements the cart snapshot repository on the embedded
// Badger key-value store.
package badgerdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/shopfront/api/internal/domain"
	"github.com/shopfront/api/internal/platform/badgerdb"
	"github.com/shopfront/api/internal/repositories"
)

const cartKeyPrefix = "cart/"

// CartRepository stores one JSON-serialised line-item array per session key.
type CartRepository struct {
	db *badger.DB
}

// NewCartRepository constructs the repository from an open provider.
func NewCartRepository(provider *badgerdb.Provider) (*CartRepository, error) {
	if provider == nil || provider.DB() == nil {
		return nil, errors.New("cart repository: database provider is required")
	}
	return &CartRepository{db: provider.DB()}, nil
}

func cartKey(sessionKey string) ([]byte, error) {
	trimmed := strings.TrimSpace(sessionKey)
	if trimmed == "" {
		return nil, errors.New("cart repository: session key is required")
	}
	return []byte(cartKeyPrefix + trimmed), nil
}

// LoadSnapshot reads the persisted cart for the session. A missing key yields
// a not-found repository error; an undecodable value yields a corrupt one so
// the service can fall back to an empty cart without crashing the session.
func (r *CartRepository) LoadSnapshot(ctx context.Context, sessionKey string) ([]domain.CartLine, error) {
	key, err := cartKey(sessionKey)
	if err != nil {
		return nil, repositories.NewUnavailableError("load cart", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, repositories.NewUnavailableError("load cart", err)
	}

	var raw []byte
	err = r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, repositories.NewNotFoundError("load cart", err)
		}
		return nil, repositories.NewUnavailableError("load cart", err)
	}

	var lines []domain.CartLine
	if err := json.Unmarshal(raw, &lines); err != nil {
		return nil, repositories.NewCorruptError("load cart", fmt.Errorf("decoding snapshot: %w", err))
	}
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return lines, nil
}

// SaveSnapshot overwrites the full cart snapshot for the session.
func (r *CartRepository) SaveSnapshot(ctx context.Context, sessionKey string, lines []domain.CartLine) error {
	key, err := cartKey(sessionKey)
	if err != nil {
		return repositories.NewUnavailableError("save cart", err)
	}
	if err := ctx.Err(); err != nil {
		return repositories.NewUnavailableError("save cart", err)
	}
	if lines == nil {
		lines = []domain.CartLine{}
	}

	raw, err := json.Marshal(lines)
	if err != nil {
		return repositories.NewUnavailableError("save cart", fmt.Errorf("encoding snapshot: %w", err))
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, raw)
	})
	if err != nil {
		return repositories.NewUnavailableError("save cart", err)
	}
	return nil
}

// DeleteSnapshot removes the persisted cart; deleting an absent key is not an
// error.
func (r *CartRepository) DeleteSnapshot(ctx context.Context, sessionKey string) error {
	key, err := cartKey(sessionKey)
	if err != nil {
		return repositories.NewUnavailableError("delete cart", err)
	}
	if err := ctx.Err(); err != nil {
		return repositories.NewUnavailableError("delete cart", err)
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
	if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return repositories.NewUnavailableError("delete cart", err)
	}
	return nil
}

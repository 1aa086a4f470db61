// Package badgerdb manages the lifecycle of the embedded Badger database
// backing client-local durable storage.
package badgerdb

import (
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

// Config controls how the database is opened.
type Config struct {
	// Path is the directory for database files. Required unless InMemory.
	Path string
	// InMemory disables disk persistence; used by tests.
	InMemory bool
	// SyncWrites forces fsync on every commit so a snapshot survives crashes.
	SyncWrites bool
}

// Provider owns a single database handle.
type Provider struct {
	db *badger.DB
}

// Open creates the directory when needed and opens the database.
func Open(cfg Config, logger *zap.Logger) (*Provider, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("badgerdb: path is required for persistent database")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("badgerdb: creating %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path).WithSyncWrites(cfg.SyncWrites)
	}
	opts = opts.WithLogger(badgerLogger{logger: logger})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badgerdb: opening database: %w", err)
	}
	return &Provider{db: db}, nil
}

// DB exposes the underlying handle for repositories.
func (p *Provider) DB() *badger.DB {
	if p == nil {
		return nil
	}
	return p.db
}

// Close releases the database handle.
func (p *Provider) Close() error {
	if p == nil || p.db == nil {
		return nil
	}
	return p.db.Close()
}

// badgerLogger adapts zap to badger's Logger interface.
type badgerLogger struct {
	logger *zap.Logger
}

func (l badgerLogger) log() *zap.SugaredLogger {
	if l.logger == nil {
		return zap.NewNop().Sugar()
	}
	return l.logger.Sugar()
}

func (l badgerLogger) Errorf(format string, args ...any)   { l.log().Errorf(format, args...) }
func (l badgerLogger) Warningf(format string, args ...any) { l.log().Warnf(format, args...) }
func (l badgerLogger) Infof(format string, args ...any)    { l.log().Debugf(format, args...) }
func (l badgerLogger) Debugf(format string, args ...any)   { l.log().Debugf(format, args...) }

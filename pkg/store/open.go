package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// Backend names a store implementation.
type Backend string

// Backends accepted by [Open].
const (
	BackendAuto   Backend = "auto"
	BackendRedis  Backend = "redis"
	BackendMongo  Backend = "mongo"
	BackendSQLite Backend = "sqlite"
	BackendFile   Backend = "file"
	BackendMemory Backend = "memory"
	BackendNull   Backend = "null"
)

// ParseBackend validates a backend name. Empty selects [BackendAuto].
func ParseBackend(s string) (Backend, error) {
	switch b := Backend(s); b {
	case "":
		return BackendAuto, nil
	case BackendAuto, BackendRedis, BackendMongo, BackendSQLite, BackendFile, BackendMemory, BackendNull:
		return b, nil
	default:
		return "", fmt.Errorf("unknown store backend %q", s)
	}
}

// Clearer is implemented by local stores that can wipe all their keys.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Config selects and configures a backend.
type Config struct {
	Backend    Backend
	Redis      RedisConfig
	Mongo      MongoConfig
	SQLitePath string
	FileDir    string

	// ConnectTimeout bounds each network connection attempt. Zero means 3s.
	ConnectTimeout time.Duration

	// Backoff controls connection retries. Zero value means DefaultBackoff.
	Backoff Backoff

	Logger *log.Logger
}

// Chain returns the backends Open will try, in order. BackendAuto prefers
// cloud-backed stores, then local ones, and always ends with memory; backends
// missing their address or path are skipped. Any other backend is tried alone.
func (c Config) Chain() []Backend {
	if c.Backend != BackendAuto && c.Backend != "" {
		return []Backend{c.Backend}
	}
	var chain []Backend
	if c.Redis.Addr != "" {
		chain = append(chain, BackendRedis)
	}
	if c.Mongo.URI != "" {
		chain = append(chain, BackendMongo)
	}
	if c.SQLitePath != "" {
		chain = append(chain, BackendSQLite)
	}
	if c.FileDir != "" {
		chain = append(chain, BackendFile)
	}
	return append(chain, BackendMemory)
}

// Open returns the first backend in [Config.Chain] that connects, along with
// its name. When every candidate fails the joined errors are returned.
func Open(ctx context.Context, cfg Config) (Store, Backend, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	var errs []error
	for _, b := range cfg.Chain() {
		s, err := cfg.open(ctx, b)
		if err == nil {
			logger.Debug("store selected", "backend", b)
			return s, b, nil
		}
		logger.Warn("store backend unavailable", "backend", b, "err", err)
		errs = append(errs, fmt.Errorf("%s: %w", b, err))
	}
	return nil, "", errors.Join(errs...)
}

func (c Config) open(ctx context.Context, b Backend) (Store, error) {
	switch b {
	case BackendRedis:
		return connect(ctx, c, func(ctx context.Context) (Store, error) { return NewRedisStore(ctx, c.Redis) })
	case BackendMongo:
		return connect(ctx, c, func(ctx context.Context) (Store, error) { return NewMongoStore(ctx, c.Mongo) })
	case BackendSQLite:
		return NewSQLiteStore(c.SQLitePath)
	case BackendFile:
		return NewFileStore(c.FileDir)
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendNull:
		return NewNullStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", b)
	}
}

// connect runs dial with a per-attempt timeout under the configured backoff.
func connect(ctx context.Context, c Config, dial func(context.Context) (Store, error)) (Store, error) {
	timeout := c.ConnectTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	backoff := c.Backoff
	if backoff.Attempts == 0 {
		backoff = DefaultBackoff
	}

	var s Store
	err := backoff.Retry(ctx, func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		var err error
		s, err = dial(attemptCtx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

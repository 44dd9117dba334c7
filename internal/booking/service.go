package booking

import (
	"context"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/roach88/flightbook/internal/cache"
	"github.com/roach88/flightbook/internal/retry"
	"github.com/roach88/flightbook/internal/store"
)

// Options configures a Service. Zero values pick defaults.
type Options struct {
	// Cache stores ranked search results. Nil disables caching.
	Cache cache.Cache

	// Retry re-runs operations on transient conflicts. A nil Transient
	// predicate is replaced by store.IsTransient.
	Retry retry.Policy

	// Logger receives operation logs. Nil uses slog.Default().
	Logger *slog.Logger

	// SessionIDs names new sessions. Nil uses UUIDv7Generator.
	SessionIDs SessionIDGenerator
}

// Service is shared by all sessions of one process.
type Service struct {
	store      *store.Store
	cache      cache.Cache
	retry      retry.Policy
	logger     *slog.Logger
	sessionIDs SessionIDGenerator

	// searches collapses concurrent identical cache misses.
	searches singleflight.Group

	// txHook, when set, runs inside every operation's transaction after its
	// body succeeded and before commit. An error rolls the transaction back
	// and is handed to the retry policy like any other failure.
	txHook func(ctx context.Context, op string, tx *store.Tx) error
}

// NewService creates a Service over st.
func NewService(st *store.Store, opts Options) *Service {
	if opts.Cache == nil {
		opts.Cache = cache.NewNoOpCache()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Retry.Transient == nil {
		opts.Retry.Transient = store.IsTransient
	}
	if opts.Retry.Logger == nil {
		opts.Retry.Logger = opts.Logger
	}
	if opts.SessionIDs == nil {
		opts.SessionIDs = UUIDv7Generator{}
	}

	return &Service{
		store:      st,
		cache:      opts.Cache,
		retry:      opts.Retry,
		logger:     opts.Logger,
		sessionIDs: opts.SessionIDs,
	}
}

// NewSession starts an anonymous session.
func (s *Service) NewSession() *Session {
	id := s.sessionIDs.Generate()
	return &Session{
		svc:    s,
		id:     id,
		logger: s.logger.With("session", id),
	}
}

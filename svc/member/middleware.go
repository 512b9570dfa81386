package member

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrymomot/subscriptions/pkg/pg"
)

// Provider loads members by id.
type Provider interface {
	GetByID(ctx context.Context, id uuid.UUID) (Member, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, id uuid.UUID) (Member, error)

func (f ProviderFunc) GetByID(ctx context.Context, id uuid.UUID) (Member, error) {
	return f(ctx, id)
}

// StoreProvider reads members through store on db.
func StoreProvider(store Store, db pg.DBTX) Provider {
	return ProviderFunc(func(ctx context.Context, id uuid.UUID) (Member, error) {
		return store.Get(ctx, db, id)
	})
}

// ErrorHandler writes the response for a request whose member could not be resolved.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

type Option func(*config)

type config struct {
	errorHandler ErrorHandler
	skipPaths    []string
}

func WithErrorHandler(h ErrorHandler) Option {
	return func(c *config) {
		if h != nil {
			c.errorHandler = h
		}
	}
}

// WithSkipPaths bypasses member resolution for paths with these prefixes.
func WithSkipPaths(paths ...string) Option {
	return func(c *config) {
		c.skipPaths = append(c.skipPaths, paths...)
	}
}

// Middleware resolves the member of each request and stores it in the
// request context. Requests without a member id pass through untouched so
// that handlers decide whether authentication is required.
func Middleware(resolver Resolver, provider Provider, opts ...Option) func(http.Handler) http.Handler {
	if resolver == nil {
		resolver = NewHeaderResolver("")
	}
	if provider == nil {
		panic(ErrProviderIsRequired)
	}
	cfg := &config{errorHandler: defaultErrorHandler}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, skip := range cfg.skipPaths {
				if strings.HasPrefix(r.URL.Path, skip) {
					next.ServeHTTP(w, r)
					return
				}
			}

			id, err := resolver(r)
			if err != nil {
				cfg.errorHandler(w, r, err)
				return
			}
			if id == uuid.Nil {
				next.ServeHTTP(w, r)
				return
			}

			m, err := provider.GetByID(r.Context(), id)
			if err != nil {
				cfg.errorHandler(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithMember(r.Context(), m)))
		})
	}
}

func defaultErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvalidIdentifier):
		http.Error(w, "invalid member identifier", http.StatusBadRequest)
	case errors.Is(err, ErrMemberNotFound):
		http.Error(w, "unknown member", http.StatusUnauthorized)
	default:
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

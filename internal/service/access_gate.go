package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"teamtask/internal/core/auth"
	"teamtask/internal/core/cache"
	"teamtask/internal/domain"
)

type TokenVerifier interface {
	Parse(token string) (*auth.Claims, error)
}

// Directory resolves a user id to the caller's current identity and role.
// It returns (nil, nil) when the user does not exist.
type Directory interface {
	Principal(ctx context.Context, uid string) (*domain.Principal, error)
}

type UserDirectory struct{ Repo domain.UserRepository }

func (d UserDirectory) Principal(ctx context.Context, uid string) (*domain.Principal, error) {
	u, err := d.Repo.FindByID(ctx, uid)
	if err != nil || u == nil {
		return nil, err
	}
	p := u.Principal()
	return &p, nil
}

// CachedDirectory caches principals in redis. Users are immutable once
// registered, so a cached role can not go stale; unknown ids are never cached.
type CachedDirectory struct {
	Next  Directory
	Cache *cache.Cache
	TTL   time.Duration
}

func (d CachedDirectory) Principal(ctx context.Context, uid string) (*domain.Principal, error) {
	p, err := cache.GetOrLoadJSON(d.Cache, ctx, "principal:"+uid, d.TTL, func(ctx context.Context) (*domain.Principal, error) {
		p, err := d.Next.Principal(ctx, uid)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, domain.ErrUserNotFound
		}
		return p, nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

type AccessGate struct {
	tokens TokenVerifier
	dir    Directory
}

func NewAccessGate(tokens TokenVerifier, dir Directory) *AccessGate {
	return &AccessGate{tokens: tokens, dir: dir}
}

// Authenticate resolves "Bearer <token>" to a principal. All failures wrap
// ErrUnauthenticated; the cause (ErrInvalidToken, ErrUserNotFound) is wrapped too.
func (g *AccessGate) Authenticate(ctx context.Context, header string) (domain.Principal, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return domain.Principal{}, fmt.Errorf("%w, no token", domain.ErrUnauthenticated)
	}
	claims, err := g.tokens.Parse(token)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("%w, token failed: %w", domain.ErrUnauthenticated, err)
	}
	p, err := g.dir.Principal(ctx, claims.UID)
	if err != nil {
		return domain.Principal{}, err
	}
	if p == nil {
		return domain.Principal{}, fmt.Errorf("%w, %w", domain.ErrUnauthenticated, domain.ErrUserNotFound)
	}
	return *p, nil
}

// Authorize is the pure role predicate: role must be one of required.
func (g *AccessGate) Authorize(role domain.Role, required ...domain.Role) error {
	return Authorize(role, required...)
}

func Authorize(role domain.Role, required ...domain.Role) error {
	if slices.Contains(required, role) {
		return nil
	}
	return fmt.Errorf("%w: user role %s is not authorized to access this route", domain.ErrForbidden, role)
}

package shortener

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultExpiration    = 15 * 24 * time.Hour
	DefaultLookupTimeout = 2 * time.Second

	// maxGenerateAttempts bounds the collision-avoidance loop for generated codes.
	maxGenerateAttempts = 16
)

// CreateParams holds the caller supplied values for a new short URL.
type CreateParams struct {
	OriginalURL string
	Alias       string
	// ExpiresAt is "yyyy-MM-dd HH:mm:ss"; empty means DefaultExpiration from now.
	ExpiresAt string
	Owner     string
}

// Resolver creates, resolves and deletes short URLs, keeping the Cache consistent with the Repository.
type Resolver struct {
	store         Repository
	cache         Cache
	generateCode  CodeGenerator
	logger        *zap.Logger
	now           func() time.Time
	expiration    time.Duration
	lookupTimeout time.Duration
	location      *time.Location
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

// WithDefaultExpiration sets the lifetime of entries created without an explicit expiry.
func WithDefaultExpiration(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.expiration = d
		}
	}
}

// WithLookupTimeout bounds the cache and store lookups of Resolve.
func WithLookupTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.lookupTimeout = d
		}
	}
}

// WithLocation sets the zone used to interpret human supplied dates.
func WithLocation(loc *time.Location) Option {
	return func(r *Resolver) {
		if loc != nil {
			r.location = loc
		}
	}
}

// NewResolver creates a new resolver.
func NewResolver(
	store Repository,
	cache Cache,
	generator CodeGenerator,
	logger *zap.Logger,
	opts ...Option,
) *Resolver {
	r := &Resolver{
		store:         store,
		cache:         cache,
		generateCode:  generator,
		logger:        logger,
		now:           time.Now,
		expiration:    DefaultExpiration,
		lookupTimeout: DefaultLookupTimeout,
		location:      time.UTC,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Location returns the zone used for human supplied dates.
func (r *Resolver) Location() *time.Location {
	return r.location
}

// Create persists a new ACTIVE short URL and warms the cache.
func (r *Resolver) Create(ctx context.Context, params CreateParams) (*ShortURL, error) {
	owner := strings.TrimSpace(params.Owner)
	if owner == "" {
		return nil, fmt.Errorf("%w: owner is required", ErrInvalidRequest)
	}

	if err := ValidateURL(params.OriginalURL); err != nil {
		return nil, err
	}

	now := r.now()

	expiresAt, err := r.expiresAt(params.ExpiresAt, now)
	if err != nil {
		return nil, err
	}

	code, err := r.chooseCode(ctx, strings.TrimSpace(params.Alias))
	if err != nil {
		return nil, err
	}

	shortURL := &ShortURL{
		Code:        code,
		OriginalURL: strings.TrimSpace(params.OriginalURL),
		State:       StateActive,
		ExpiresAt:   expiresAt,
		CreatedBy:   owner,
		CreatedAt:   now,
	}

	// The store's uniqueness constraint is the final authority when two creates race on a code.
	if err = r.store.Save(ctx, shortURL); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyExists, code)
		}

		return nil, fmt.Errorf("save short url: %w", err)
	}

	r.cacheURL(ctx, shortURL, now)

	return shortURL, nil
}

// Resolve returns the original URL for an active, unexpired code.
func (r *Resolver) Resolve(ctx context.Context, code Code) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.lookupTimeout)
	defer cancel()

	originalURL, err := r.cache.Get(ctx, code)
	if err == nil {
		return originalURL, nil
	}

	if !errors.Is(err, ErrCacheMiss) {
		r.logger.Warn("cache lookup failed, reading from store",
			zap.String("code", string(code)),
			zap.Error(err),
		)
	}

	now := r.now()

	shortURL, err := r.findActive(ctx, code)
	if err != nil {
		return "", err
	}

	if shortURL.ExpiredAt(now) {
		return "", fmt.Errorf("%w: %s", ErrExpired, code)
	}

	r.cacheURL(ctx, shortURL, now)

	return shortURL.OriginalURL, nil
}

// GetForOwner returns the entry for code if it is active, unexpired and owned by owner.
func (r *Resolver) GetForOwner(ctx context.Context, code Code, owner string) (*ShortURL, error) {
	now := r.now()

	shortURL, err := r.findActive(ctx, code)
	if err != nil {
		return nil, err
	}

	if shortURL.ExpiredAt(now) {
		return nil, fmt.Errorf("%w: %s", ErrExpired, code)
	}

	if !shortURL.OwnedBy(owner) {
		return nil, fmt.Errorf("%w: not the owner of %s", ErrForbidden, code)
	}

	r.cacheURL(ctx, shortURL, now)

	return shortURL, nil
}

// Authorize returns the active entry for code if owner created it. Expiry is not checked.
func (r *Resolver) Authorize(ctx context.Context, code Code, owner string) (*ShortURL, error) {
	shortURL, err := r.findActive(ctx, code)
	if err != nil {
		return nil, err
	}

	if !shortURL.OwnedBy(owner) {
		return nil, fmt.Errorf("%w: not the owner of %s", ErrForbidden, code)
	}

	return shortURL, nil
}

// Delete soft-deletes an entry owned by owner and purges it from the cache.
func (r *Resolver) Delete(ctx context.Context, code Code, owner string) error {
	shortURL, err := r.Authorize(ctx, code, owner)
	if err != nil {
		return err
	}

	return r.markDeleted(ctx, shortURL)
}

// DeleteAsAdmin soft-deletes any active entry and purges it from the cache.
func (r *Resolver) DeleteAsAdmin(ctx context.Context, code Code, admin string) error {
	shortURL, err := r.findActive(ctx, code)
	if err != nil {
		return err
	}

	r.logger.Info("admin deleting short url",
		zap.String("code", string(code)),
		zap.String("admin", admin),
		zap.String("owner", shortURL.CreatedBy),
	)

	return r.markDeleted(ctx, shortURL)
}

// ListForOwner returns the owner's active entries, newest first.
func (r *Resolver) ListForOwner(ctx context.Context, owner string, req PageRequest) (Page[ShortURL], error) {
	return r.store.ListActiveByOwner(ctx, owner, req.Normalize())
}

// ListAll returns all active entries, newest first.
func (r *Resolver) ListAll(ctx context.Context, req PageRequest) (Page[ShortURL], error) {
	return r.store.ListActive(ctx, req.Normalize())
}

func (r *Resolver) expiresAt(raw string, now time.Time) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return now.Add(r.expiration), nil
	}

	return ParseDateTime(raw, r.location)
}

func (r *Resolver) chooseCode(ctx context.Context, alias string) (Code, error) {
	if alias != "" {
		if err := ValidateAlias(alias); err != nil {
			return "", err
		}

		exists, err := r.store.ExistsActiveByCode(ctx, Code(alias))
		if err != nil {
			return "", fmt.Errorf("check alias: %w", err)
		}

		if exists {
			return "", fmt.Errorf("%w: %s", ErrAlreadyExists, alias)
		}

		return Code(alias), nil
	}

	for range maxGenerateAttempts {
		code := Code(r.generateCode())

		exists, err := r.store.ExistsActiveByCode(ctx, code)
		if err != nil {
			return "", fmt.Errorf("check generated code: %w", err)
		}

		if !exists {
			return code, nil
		}

		r.logger.Debug("generated code collided, retrying", zap.String("code", string(code)))
	}

	return "", fmt.Errorf("no unused code after %d attempts", maxGenerateAttempts)
}

func (r *Resolver) findActive(ctx context.Context, code Code) (*ShortURL, error) {
	shortURL, err := r.store.FindActiveByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, code)
		}

		return nil, fmt.Errorf("find short url: %w", err)
	}

	return shortURL, nil
}

func (r *Resolver) markDeleted(ctx context.Context, shortURL *ShortURL) error {
	shortURL.State = StateDeleted

	if err := r.store.Save(ctx, shortURL); err != nil {
		return fmt.Errorf("save deleted short url: %w", err)
	}

	if err := r.cache.Delete(ctx, shortURL.Code); err != nil {
		return fmt.Errorf("purge cached short url: %w", err)
	}

	return nil
}

func (r *Resolver) cacheURL(ctx context.Context, shortURL *ShortURL, now time.Time) {
	ttl := shortURL.TTL(now)
	if ttl == 0 {
		return
	}

	if err := r.cache.Set(ctx, shortURL.Code, shortURL.OriginalURL, ttl); err != nil {
		r.logger.Warn("failed to cache short url",
			zap.String("code", string(shortURL.Code)),
			zap.Error(err),
		)
	}
}

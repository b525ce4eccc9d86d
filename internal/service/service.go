package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vadimbarashkov/shortly/internal/database"
	"github.com/vadimbarashkov/shortly/internal/models"
	"github.com/vadimbarashkov/shortly/internal/shortcode"
)

var (
	// ErrInvalidURL is returned when the submitted URL lacks an http:// or https:// prefix.
	ErrInvalidURL = errors.New("url must start with http:// or https://")
	// ErrURLUnreachable is returned when the reachability probe fails for the submitted URL.
	ErrURLUnreachable = errors.New("url is not reachable")
)

// URLRepository defines the interface for working with URL records at the business logic layer.
type URLRepository interface {
	// Create atomically inserts a record if no record for originalURL exists.
	// Returns database.ErrURLExists when one does; the uniqueness check and
	// the insert must not be separable.
	Create(ctx context.Context, shortCode, originalURL string) (*models.URL, error)

	// GetByShortCode retrieves a record by its short code.
	// Returns database.ErrURLNotFound if no record exists.
	GetByShortCode(ctx context.Context, shortCode string) (*models.URL, error)

	// GetByOriginalURL retrieves a record by its original URL, matched exactly.
	// Returns database.ErrURLNotFound if no record exists.
	GetByOriginalURL(ctx context.Context, originalURL string) (*models.URL, error)
}

// CounterStore yields counter values for code allocation. Implementations
// must never return the same value to two callers.
type CounterStore interface {
	Next(ctx context.Context) (uint64, error)
}

// ReachabilityChecker reports whether a URL is fetchable. Any non-nil error
// is treated as validation failure; transport errors and true
// unreachability are not distinguished.
type ReachabilityChecker interface {
	Check(ctx context.Context, rawURL string) error
}

// URLService orchestrates lookup-or-create shortening. For any given
// original URL, exactly one short code is ever durably assigned, regardless
// of concurrent requests.
type URLService struct {
	repo    URLRepository
	counter CounterStore
	checker ReachabilityChecker
	gen     *shortcode.Generator
}

// NewURLService creates a new instance of URLService with the provided collaborators.
func NewURLService(repo URLRepository, counter CounterStore, checker ReachabilityChecker) *URLService {
	return &URLService{
		repo:    repo,
		counter: counter,
		checker: checker,
		gen:     shortcode.New(),
	}
}

// ShortenURL validates the URL, returns the existing record if one is
// present, and otherwise allocates the next counter value, encodes it, and
// inserts the record. A lost insert race is absorbed by re-fetching the
// record the concurrent winner created, so the operation is idempotent from
// the caller's perspective. Validation happens before any counter or store
// mutation: a rejected URL leaves both untouched.
func (s *URLService) ShortenURL(ctx context.Context, originalURL string) (*models.URL, error) {
	const op = "service.URLService.ShortenURL"

	if !strings.HasPrefix(originalURL, "http://") && !strings.HasPrefix(originalURL, "https://") {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidURL)
	}

	if err := s.checker.Check(ctx, originalURL); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op, ErrURLUnreachable, err)
	}

	url, err := s.repo.GetByOriginalURL(ctx, originalURL)
	if err == nil {
		return url, nil
	}
	if !errors.Is(err, database.ErrURLNotFound) {
		return nil, fmt.Errorf("%s: failed to look up url: %w", op, err)
	}

	value, err := s.counter.Next(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to allocate counter value: %w", op, err)
	}

	url, err = s.repo.Create(ctx, s.gen.Encode(value), originalURL)
	if err != nil {
		if errors.Is(err, database.ErrURLExists) {
			// Lost the race: a concurrent request inserted the record
			// between our lookup and our insert. Return its record.
			url, err = s.repo.GetByOriginalURL(ctx, originalURL)
			if err != nil {
				return nil, fmt.Errorf("%s: failed to fetch record after conflict: %w", op, err)
			}

			return url, nil
		}

		return nil, fmt.Errorf("%s: failed to shorten url: %w", op, err)
	}

	return url, nil
}

// ResolveShortCode retrieves the record associated with the provided short code.
func (s *URLService) ResolveShortCode(ctx context.Context, shortCode string) (*models.URL, error) {
	const op = "service.URLService.ResolveShortCode"

	url, err := s.repo.GetByShortCode(ctx, shortCode)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to resolve short code: %w", op, err)
	}

	return url, nil
}

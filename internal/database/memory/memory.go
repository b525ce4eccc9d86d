// Package memory provides a map-backed URL repository for the memory
// storage backend and for tests. It honors the same atomicity contract as
// the Postgres repository: the existence check and the insert happen under
// one lock.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vadimbarashkov/shortly/internal/database"
	"github.com/vadimbarashkov/shortly/internal/models"
)

type URLRepository struct {
	mu     sync.RWMutex
	nextID int64
	byCode map[string]models.URL
	byURL  map[string]models.URL
}

func NewURLRepository() *URLRepository {
	return &URLRepository{
		byCode: make(map[string]models.URL),
		byURL:  make(map[string]models.URL),
	}
}

func (r *URLRepository) Create(_ context.Context, shortCode, originalURL string) (*models.URL, error) {
	const op = "database.memory.URLRepository.Create"

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byURL[originalURL]; ok {
		return nil, fmt.Errorf("%s: %w", op, database.ErrURLExists)
	}
	if _, ok := r.byCode[shortCode]; ok {
		return nil, fmt.Errorf("%s: short code %q already taken", op, shortCode)
	}

	r.nextID++
	url := models.URL{
		ID:          r.nextID,
		ShortCode:   shortCode,
		OriginalURL: originalURL,
		CreatedAt:   time.Now(),
	}

	r.byCode[shortCode] = url
	r.byURL[originalURL] = url

	return &url, nil
}

func (r *URLRepository) GetByShortCode(_ context.Context, shortCode string) (*models.URL, error) {
	const op = "database.memory.URLRepository.GetByShortCode"

	r.mu.RLock()
	defer r.mu.RUnlock()

	url, ok := r.byCode[shortCode]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, database.ErrURLNotFound)
	}

	return &url, nil
}

func (r *URLRepository) GetByOriginalURL(_ context.Context, originalURL string) (*models.URL, error) {
	const op = "database.memory.URLRepository.GetByOriginalURL"

	r.mu.RLock()
	defer r.mu.RUnlock()

	url, ok := r.byURL[originalURL]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, database.ErrURLNotFound)
	}

	return &url, nil
}

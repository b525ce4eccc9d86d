package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vadimbarashkov/shortly/internal/counter"
	"github.com/vadimbarashkov/shortly/internal/database"
	"github.com/vadimbarashkov/shortly/internal/database/memory"
	"github.com/vadimbarashkov/shortly/internal/reachability"
	"golang.org/x/sync/errgroup"
)

// TestShorteningScenario exercises the service against real collaborators:
// the in-memory repository, a file-backed counter, and the HTTP probe
// against httptest servers.
func TestShorteningScenario(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	counterPath := filepath.Join(t.TempDir(), "counter")
	ctr, err := counter.NewFileStore(counterPath)
	require.NoError(t, err)

	svc := NewURLService(memory.NewURLRepository(), ctr, reachability.New())

	firstURL := server.URL + "/first"
	secondURL := server.URL + "/second"

	first, err := svc.ShortenURL(context.Background(), firstURL)
	require.NoError(t, err)
	assert.Equal(t, "0", first.ShortCode, "first allocation must encode counter value 0")

	second, err := svc.ShortenURL(context.Background(), secondURL)
	require.NoError(t, err)
	assert.Equal(t, "1", second.ShortCode, "second allocation must encode counter value 1")

	// Resubmission returns the original record and consumes no counter value.
	again, err := svc.ShortenURL(context.Background(), firstURL)
	require.NoError(t, err)
	assert.Equal(t, first.ShortCode, again.ShortCode)
	assert.Equal(t, first.OriginalURL, again.OriginalURL)

	data, err := os.ReadFile(counterPath)
	require.NoError(t, err)
	assert.Equal(t, "2", string(data), "counter must not advance on resubmission")

	// Round-trip: resolving the code yields the exact original URL.
	resolved, err := svc.ResolveShortCode(context.Background(), first.ShortCode)
	require.NoError(t, err)
	assert.Equal(t, firstURL, resolved.OriginalURL)
}

func TestShorteningScenario_ValidationFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadURL := server.URL
	server.Close()

	counterPath := filepath.Join(t.TempDir(), "counter")
	ctr, err := counter.NewFileStore(counterPath)
	require.NoError(t, err)

	repo := memory.NewURLRepository()
	svc := NewURLService(repo, ctr, reachability.New())

	url, err := svc.ShortenURL(context.Background(), deadURL)

	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrURLUnreachable)
	assert.Nil(t, url)

	// Neither the counter nor the store may have been touched.
	_, err = os.Stat(counterPath)
	assert.ErrorIs(t, err, os.ErrNotExist, "counter must not advance on validation failure")

	_, err = repo.GetByOriginalURL(context.Background(), deadURL)
	assert.ErrorIs(t, err, database.ErrURLNotFound)
}

func TestShorteningScenario_ConcurrentRequests(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	ctr, err := counter.NewFileStore(filepath.Join(t.TempDir(), "counter"))
	require.NoError(t, err)

	repo := memory.NewURLRepository()
	svc := NewURLService(repo, ctr, reachability.New())

	const n = 20
	codes := make(chan string, n)

	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error {
			url, err := svc.ShortenURL(context.Background(), server.URL)
			if err != nil {
				return err
			}
			codes <- url.ShortCode
			return nil
		})
	}

	require.NoError(t, g.Wait())
	close(codes)

	// Every caller must receive the same code, and the store must hold
	// exactly one record for the URL.
	want := <-codes
	for code := range codes {
		assert.Equal(t, want, code)
	}

	url, err := repo.GetByOriginalURL(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, want, url.ShortCode)
}

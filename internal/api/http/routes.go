package http

import (
	"context"
	"net/http"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/go-playground/validator/v10"
	"github.com/vadimbarashkov/shortly/internal/models"

	httpSwagger "github.com/swaggo/http-swagger"
)

// URLService defines the interface for the core URL shortening business logic.
type URLService interface {
	// ShortenURL returns the record for the original URL, creating one with
	// a freshly allocated short code if none exists. The operation is
	// idempotent: resubmitting a URL returns its existing record.
	ShortenURL(ctx context.Context, originalURL string) (*models.URL, error)

	// ResolveShortCode retrieves the record for a given short code.
	// It returns an error if no record exists.
	ResolveShortCode(ctx context.Context, shortCode string) (*models.URL, error)
}

// getValidate initializes a new validator instance for validating incoming request payloads.
// It customizes tag name extraction from struct fields to match JSON tags.
func getValidate() *validator.Validate {
	validate := validator.New()

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return validate
}

// NewRouter initializes and returns a new HTTP router with all routes and middleware configured.
// baseURL is the absolute address short URLs are formed against; docsDir is
// the documentation directory served at the root.
func NewRouter(logger *httplog.Logger, urlSvc URLService, baseURL, docsDir string) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*"},
		AllowedMethods:   []string{"POST", "GET", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           84600,
	}))
	r.Use(middleware.AllowContentType("application/json"))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		validate := getValidate()

		r.Get("/ping", handlePing)

		r.Route("/shorten", func(r chi.Router) {
			r.Post("/", handleShortenURL(urlSvc, validate, baseURL))
			r.Get("/{shortCode}", handleResolveShortCode(urlSvc, baseURL))
		})
	})

	// Legacy surface: the long URL rides in the path itself.
	r.Get("/new/*", handleCreateShortURL(urlSvc, baseURL))

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/swagger.yml"),
	))
	r.Handle("/docs/*", http.StripPrefix("/docs/", http.FileServer(http.Dir(docsDir))))
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, filepath.Join(docsDir, "index.html"))
	})

	r.Get("/{shortCode}", handleRedirect(urlSvc))

	return r
}

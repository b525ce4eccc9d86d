package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"

	"github.com/go-chi/httplog/v2"
	"github.com/vadimbarashkov/shortly/internal/config"
	"github.com/vadimbarashkov/shortly/internal/counter"
	"github.com/vadimbarashkov/shortly/internal/database/memory"
	"github.com/vadimbarashkov/shortly/internal/reachability"
	"github.com/vadimbarashkov/shortly/internal/service"
	"github.com/vadimbarashkov/shortly/pkg/postgres"
	"golang.org/x/sync/errgroup"

	myhttp "github.com/vadimbarashkov/shortly/internal/api/http"
	pgstore "github.com/vadimbarashkov/shortly/internal/database/postgres"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx); err != nil {
		panic(err)
	}
}

func run(ctx context.Context) error {
	const op = "main.run"

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	var urlRepo service.URLRepository
	var counterStore service.CounterStore

	switch cfg.Storage {
	case config.StorageMemory:
		urlRepo = memory.NewURLRepository()
	case config.StoragePostgres:
		db, err := postgres.New(
			ctx,
			cfg.Postgres.DSN(),
			postgres.WithConnMaxIdleTime(cfg.Postgres.ConnMaxIdleTime),
			postgres.WithConnMaxLifetime(cfg.Postgres.ConnMaxLifetime),
			postgres.WithMaxIdleConns(cfg.Postgres.MaxIdleConns),
			postgres.WithMaxOpenConns(cfg.Postgres.MaxOpenConns),
		)
		if err != nil {
			return fmt.Errorf("%s: failed to connect to database: %w", op, err)
		}
		g.Go(func() error {
			<-ctx.Done()
			return db.Close()
		})

		if err := postgres.RunMigrations("file://migrations", cfg.Postgres.DSN()); err != nil {
			return fmt.Errorf("%s: failed to run migrations: %w", op, err)
		}

		urlRepo = pgstore.NewURLRepository(db)
		if cfg.Counter.Backend == config.CounterPostgres {
			counterStore = pgstore.NewCounterStore(db)
		}
	default:
		return fmt.Errorf("%s: unknown storage backend %q", op, cfg.Storage)
	}

	if counterStore == nil {
		switch cfg.Counter.Backend {
		case config.CounterFile:
			counterStore, err = counter.NewFileStore(cfg.Counter.File)
			if err != nil {
				return fmt.Errorf("%s: failed to open counter file: %w", op, err)
			}
		case config.CounterPostgres:
			return fmt.Errorf("%s: postgres counter requires postgres storage", op)
		default:
			return fmt.Errorf("%s: unknown counter backend %q", op, cfg.Counter.Backend)
		}
	}

	checker := reachability.New(reachability.WithTimeout(cfg.Reachability.Timeout))
	urlSvc := service.NewURLService(urlRepo, counterStore, checker)

	r := myhttp.NewRouter(httplog.NewLogger("shortly"), urlSvc, cfg.BaseURL, cfg.DocsDir)

	server := &http.Server{
		Addr:           cfg.HTTPServer.Addr(),
		Handler:        r,
		ReadTimeout:    cfg.HTTPServer.ReadTimeout,
		WriteTimeout:   cfg.HTTPServer.WriteTimeout,
		IdleTimeout:    cfg.HTTPServer.IdleTimeout,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g.Go(func() error {
		var err error

		switch cfg.Env {
		case config.EnvProd:
			err = server.ListenAndServeTLS(cfg.HTTPServer.CertFile, cfg.HTTPServer.KeyFile)
		default:
			err = server.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		return server.Shutdown(context.Background())
	})

	return g.Wait()
}

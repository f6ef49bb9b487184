package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/debemdeboas/the-journal/internal/api"
	"github.com/debemdeboas/the-journal/internal/auth"
	"github.com/debemdeboas/the-journal/internal/config"
	"github.com/debemdeboas/the-journal/internal/db"
	"github.com/debemdeboas/the-journal/internal/logger"
	"github.com/debemdeboas/the-journal/internal/model"
	"github.com/debemdeboas/the-journal/internal/render"
	"github.com/debemdeboas/the-journal/internal/repository"
	"github.com/debemdeboas/the-journal/internal/routes"
	"github.com/debemdeboas/the-journal/internal/seed"
	"github.com/debemdeboas/the-journal/internal/sse"
	"github.com/debemdeboas/the-journal/internal/storage"
	"github.com/debemdeboas/the-journal/internal/util/compression"
)

const shutdownTimeout = 10 * time.Second

// app holds everything a running server owns.
type app struct {
	handler http.Handler
	repo    *repository.ContentRepository
	events  *sse.SSEClients
	store   *storage.SnapshotStore
	closeKV func() error
}

func main() {
	configPath := flag.String("config", config.DefaultConfigPath, "path to the YAML config file")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file loaded")
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	setLoggers(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}

func setLoggers(l zerolog.Logger) {
	config.SetLogger(l.With().Str("component", "config").Logger())
	db.SetLogger(l.With().Str("component", "db").Logger())
	storage.SetLogger(l.With().Str("component", "storage").Logger())
	render.SetLogger(l.With().Str("component", "render").Logger())
	repository.SetLogger(l.With().Str("component", "repository").Logger())
	auth.SetLogger(l.With().Str("component", "auth").Logger())
	sse.SetLogger(l.With().Str("component", "sse").Logger())
	api.SetLogger(l.With().Str("component", "api").Logger())
}

// newApp opens storage, loads the collection and builds the HTTP handler.
func newApp(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*app, error) {
	kv, closeKV, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf(config.ErrOpenStorageFmt, cfg.Storage.Backend, err)
	}

	compressor, err := compression.ByName(cfg.Storage.Compression)
	if err != nil {
		closeKV()
		return nil, err
	}

	provider, err := auth.NewProvider(cfg.Auth)
	if err != nil {
		closeKV()
		return nil, fmt.Errorf("auth: %w", err)
	}

	store := storage.NewSnapshotStore(kv, cfg.Storage.Key, compressor)
	repo := repository.New(store, repository.WithContentConfig(cfg.Content))

	var seedPosts []model.Post
	if cfg.Content.Seed {
		seedPosts = seed.Posts()
	}
	repo.Init(ctx, seedPosts)

	events := sse.NewSSEClients()
	repo.SetChangeNotifier(func(id model.PostID) {
		events.Broadcast(id, "changed")
	})

	mux := http.NewServeMux()
	api.NewHandler(repo, provider, events, cfg.Content).RegisterRoutes(mux)
	provider.RegisterRoutes(mux)

	handler := routes.Chain(mux,
		routes.RequestLogger(log),
		routes.CacheIt,
		routes.SecureHeaders,
		provider.WithHeaderAuthorization(),
	)

	return &app{
		handler: handler,
		repo:    repo,
		events:  events,
		store:   store,
		closeKV: closeKV,
	}, nil
}

// close flushes pending saves and releases the storage backend.
func (a *app) close(ctx context.Context) error {
	return errors.Join(a.store.Close(ctx), a.closeKV())
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("storage", cfg.Storage.Backend).
			Int("posts", a.repo.Len()).
			Msg("Serving the journal")
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err = <-serveErr:
	case <-ctx.Done():
		log.Info().Msg("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if errors.Is(err, http.ErrServerClosed) {
		err = nil
	}
	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Warn().Err(shutdownErr).Msg("Graceful shutdown failed")
	}
	if closeErr := a.close(shutdownCtx); closeErr != nil {
		log.Error().Err(closeErr).Msg("Failed to flush storage")
	}
	return err
}

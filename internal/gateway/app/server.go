package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/louisbranch/castellan/internal/gateway/ops"
	"github.com/louisbranch/castellan/internal/gateway/storage/sqlite"
	"github.com/louisbranch/castellan/internal/gateway/throttle"
	"github.com/louisbranch/castellan/internal/platform/timeouts"
	"github.com/louisbranch/castellan/internal/telegram"
)

// sweepInterval paces the throttle ledger eviction loop.
const sweepInterval = time.Minute

// Config defines the inputs for the gateway process.
type Config struct {
	BotToken          string
	APIBaseURL        string
	GameBotUsername   string
	DBPath            string
	HTTPAddr          string
	OpsJWTSecret      string
	RateLimitInterval time.Duration
	PollTimeout       time.Duration
	JournalRetention  time.Duration
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
}

// Server hosts the Telegram polling loop and the operator HTTP process.
type Server struct {
	httpAddr        string
	shutdownTimeout time.Duration
	retention       time.Duration
	httpServer      *http.Server
	store           *sqlite.Store
	client          *telegram.Client
	poller          *telegram.Poller
	limiter         *throttle.Limiter
}

// NewServer builds a configured gateway server.
func NewServer(config Config) (*Server, error) {
	botToken := strings.TrimSpace(config.BotToken)
	if botToken == "" {
		return nil, errors.New("bot token is required")
	}
	httpAddr := strings.TrimSpace(config.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	dbPath := strings.TrimSpace(config.DBPath)
	if dbPath == "" {
		return nil, errors.New("database path is required")
	}
	gameBotUsername := strings.TrimSpace(config.GameBotUsername)
	if gameBotUsername == "" {
		return nil, errors.New("game bot username is required")
	}
	if config.ReadHeaderTimeout <= 0 {
		config.ReadHeaderTimeout = timeouts.ReadHeader
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = timeouts.Shutdown
	}

	store, err := sqlite.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	client, err := telegram.NewClient(config.APIBaseURL, botToken, nil)
	if err != nil {
		if closeErr := store.Close(); closeErr != nil {
			log.Printf("gateway: close store: %v", closeErr)
		}
		return nil, fmt.Errorf("init telegram client: %w", err)
	}

	limiter := throttle.NewLimiter(config.RateLimitInterval)
	adapter := newDomainStoreAdapter(store, store)
	gateway := NewGateway(adapter, adapter, client, limiter, gameBotUsername, nil, nil)
	poller := telegram.NewPoller(client, gateway, config.PollTimeout)

	router := ops.NewRouter(ops.Config{
		JWTSecret: config.OpsJWTSecret,
		Store:     store,
		Journal:   store,
	})
	httpServer := &http.Server{
		Addr:              httpAddr,
		Handler:           router,
		ReadHeaderTimeout: config.ReadHeaderTimeout,
	}

	return &Server{
		httpAddr:        httpAddr,
		shutdownTimeout: config.ShutdownTimeout,
		retention:       config.JournalRetention,
		httpServer:      httpServer,
		store:           store,
		client:          client,
		poller:          poller,
		limiter:         limiter,
	}, nil
}

// Run creates and serves a gateway server until the context ends.
func Run(ctx context.Context, config Config) error {
	server, err := NewServer(config)
	if err != nil {
		return fmt.Errorf("init gateway server: %w", err)
	}
	defer server.Close()

	if err := server.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("serve gateway: %w", err)
	}
	return nil
}

// ListenAndServe runs the polling loop and HTTP server until the context
// ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("gateway server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Long polling and webhooks are mutually exclusive on the Bot API side.
	if err := s.client.DeleteWebhook(runCtx, true); err != nil {
		log.Printf("gateway: delete webhook: %v", err)
	}
	s.pruneJournal(runCtx)

	sweepDone := make(chan struct{})
	go func() {
		defer close(sweepDone)
		s.sweepLoop(runCtx)
	}()

	pollDone := make(chan struct{})
	go func() {
		defer close(pollDone)
		if err := s.poller.Run(runCtx); err != nil {
			log.Printf("gateway: poll loop: %v", err)
		}
	}()

	serveErr := make(chan error, 1)
	log.Printf("gateway server listening on %s", s.httpAddr)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		cancel()
		<-pollDone
		<-sweepDone
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}

	cancel()
	<-pollDone
	<-sweepDone

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	err := s.httpServer.Shutdown(shutdownCtx)
	shutdownCancel()
	if err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}

// Close releases server resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			log.Printf("gateway: close store: %v", err)
		}
	}
}

// pruneJournal drops journal entries older than the retention horizon. A
// zero retention keeps everything.
func (s *Server) pruneJournal(ctx context.Context) {
	if s.retention <= 0 {
		return
	}
	before := time.Now().UTC().Add(-s.retention)
	pruned, err := s.store.PruneJournal(ctx, before)
	if err != nil {
		log.Printf("gateway: prune journal: %v", err)
		return
	}
	if pruned > 0 {
		log.Printf("gateway: pruned %d journal entries older than %s", pruned, before.Format(time.RFC3339))
	}
}

func (s *Server) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.limiter.Sweep(now.UTC())
		}
	}
}

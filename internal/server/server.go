// ABOUTME: Server orchestrator that owns the store, the HTTP server and optional tailnet node
// ABOUTME: Wires services to routes and manages listener setup and graceful shutdown

package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"tailscale.com/ipn/ipnstate"
	"tailscale.com/tsnet"

	"github.com/2389/taskdesk/internal/account"
	"github.com/2389/taskdesk/internal/admin"
	"github.com/2389/taskdesk/internal/auth"
	"github.com/2389/taskdesk/internal/config"
	"github.com/2389/taskdesk/internal/profile"
	"github.com/2389/taskdesk/internal/store"
	"github.com/2389/taskdesk/internal/tasks"
)

// Server serves the taskdesk HTTP API.
type Server struct {
	config      *config.Config
	store       *store.SQLStore
	httpServer  *http.Server
	tsnetServer *tsnet.Server
	logger      *slog.Logger

	tokens  *auth.TokenIssuer
	cookies auth.CookieOptions
	gate    *auth.Gate
	limiter *ipLimiter

	accounts  *account.Service
	profiles  *profile.Service
	users     *admin.UserService
	positions *admin.PositionService
	tasks     *tasks.Service

	// stopSweep ends the limiter's idle sweep
	stopSweep context.CancelFunc
}

// New opens the configured store and builds a Server on it.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	st, err := store.Open(ctx, storeOptions(cfg))
	if err != nil {
		return nil, fmt.Errorf("initializing store: %w", err)
	}
	s, err := NewWithStore(cfg, st, logger)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	return s, nil
}

// NewWithStore builds a Server on an already opened store. The server
// takes ownership and closes the store on Shutdown.
func NewWithStore(cfg *config.Config, st *store.SQLStore, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	tokens, err := auth.NewTokenIssuer([]byte(cfg.Auth.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("creating token issuer: %w", err)
	}

	s := &Server{
		config:    cfg,
		store:     st,
		logger:    logger,
		tokens:    tokens,
		cookies:   auth.CookieOptions{ForceSecure: cfg.Auth.SecureCookies},
		accounts:  account.NewService(st, tokens),
		profiles:  profile.NewService(st, logger.With("component", "profile")),
		users:     admin.NewUserService(st, logger),
		positions: admin.NewPositionService(st, logger),
		tasks:     tasks.NewService(st),
	}
	s.gate = auth.NewGate(tokens, st, logger, s.writeError)

	if cfg.RateLimit.Enabled {
		s.limiter = newIPLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)
		sweepCtx, cancel := context.WithCancel(context.Background())
		s.stopSweep = cancel
		go s.limiter.run(sweepCtx)
	}

	readHeaderTimeout := cfg.Server.ReadHeaderTimeout
	if readHeaderTimeout == 0 {
		readHeaderTimeout = 10 * time.Second
	}
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	return s, nil
}

func storeOptions(cfg *config.Config) store.Options {
	return store.Options{
		Driver:       cfg.Database.Driver,
		Path:         cfg.Database.Path,
		DSN:          cfg.Database.DSN,
		MaxOpenConns: cfg.Database.MaxOpenConns,
	}
}

// Handler returns the full middleware-wrapped router.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.registerRoutes(mux)

	var h http.Handler = mux
	h = s.recoverer(h)
	h = traced(h)
	h = accessLog(s.logger, h)
	h = withRequestID(h)
	return h
}

// Store returns the underlying store.
func (s *Server) Store() *store.SQLStore {
	return s.store
}

// Run serves until ctx is canceled or the listener fails, then shuts down.
// Returns nil on a clean shutdown.
func (s *Server) Run(ctx context.Context) error {
	ln, err := s.setupListener(ctx)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	var serverErr error
	select {
	case <-ctx.Done():
		s.logger.Info("context canceled, initiating shutdown")
	case serverErr = <-errCh:
		s.logger.Error("server error", "error", serverErr)
	}

	shutdownErr := s.gracefulShutdown()
	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// gracefulShutdown uses a fresh context because the run context is already canceled.
func (s *Server) gracefulShutdown() error {
	timeout := s.config.Server.ShutdownTimeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.Shutdown(ctx)
}

// Shutdown stops the HTTP server and releases the store and tailnet node.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")

	var errs []error
	errs = appendCloseError(errs, "HTTP shutdown", s.httpServer.Shutdown(ctx))
	if s.stopSweep != nil {
		s.stopSweep()
	}
	if s.tsnetServer != nil {
		errs = appendCloseError(errs, "tailscale shutdown", s.tsnetServer.Close())
	}
	errs = appendCloseError(errs, "store close", s.store.Close())

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %w", errors.Join(errs...))
	}
	return nil
}

func appendCloseError(errs []error, label string, err error) []error {
	if err != nil {
		return append(errs, fmt.Errorf("%s: %w", label, err))
	}
	return errs
}

// setupListener picks a tailnet or TCP listener, wrapping TCP in TLS when
// a certificate is configured.
func (s *Server) setupListener(ctx context.Context) (net.Listener, error) {
	if s.config.Tailscale.Enabled {
		if s.config.Server.HTTPAddr != "" {
			s.logger.Warn("server.http_addr is ignored when tailscale is enabled", "http_addr", s.config.Server.HTTPAddr)
		}
		return s.setupTailscaleListener(ctx)
	}

	s.logger.Info("starting server", "http_addr", s.config.Server.HTTPAddr)
	ln, err := net.Listen("tcp", s.config.Server.HTTPAddr)
	if err != nil {
		return nil, fmt.Errorf("listening on HTTP address: %w", err)
	}

	if s.config.Server.TLSCertFile == "" {
		return ln, nil
	}
	cert, err := tls.LoadX509KeyPair(s.config.Server.TLSCertFile, s.config.Server.TLSKeyFile)
	if err != nil {
		_ = ln.Close()
		return nil, fmt.Errorf("loading TLS key pair: %w", err)
	}
	return tls.NewListener(ln, &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}), nil
}

// resolveTailscaleStateDir returns the state directory, using a default if not configured.
func resolveTailscaleStateDir(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory for tailscale state (set tailscale.state_dir explicitly): %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "taskdesk", "tailscale"), nil
}

// setupTailscaleListener joins the tailnet and listens on :80, or :443 with
// tailnet-issued certificates when https is enabled.
func (s *Server) setupTailscaleListener(ctx context.Context) (net.Listener, error) {
	tsCfg := s.config.Tailscale

	stateDir, err := resolveTailscaleStateDir(tsCfg.StateDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(stateDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating tailscale state dir: %w", err)
	}
	if tsCfg.AuthKey == "" {
		return nil, errors.New("tailscale auth key required: set tailscale.auth_key or TS_AUTHKEY")
	}

	s.tsnetServer = &tsnet.Server{
		Hostname:  tsCfg.Hostname,
		Dir:       stateDir,
		Ephemeral: tsCfg.Ephemeral,
		AuthKey:   tsCfg.AuthKey,
	}

	s.logger.Info("starting tailscale node", "hostname", tsCfg.Hostname, "state_dir", stateDir, "ephemeral", tsCfg.Ephemeral)
	status, err := s.tsnetServer.Up(ctx)
	if err != nil {
		_ = s.tsnetServer.Close()
		return nil, fmt.Errorf("starting tailscale: %w", err)
	}
	s.logTailscaleStatus(tsCfg.Hostname, status)

	if !tsCfg.HTTPS {
		ln, err := s.tsnetServer.Listen("tcp", ":80")
		if err != nil {
			_ = s.tsnetServer.Close()
			return nil, fmt.Errorf("listening on tailscale HTTP port: %w", err)
		}
		return ln, nil
	}

	s.logger.Info("enabling HTTPS with Tailscale certs on :443")
	ln, err := s.tsnetServer.Listen("tcp", ":443")
	if err != nil {
		_ = s.tsnetServer.Close()
		return nil, fmt.Errorf("listening on tailscale HTTPS port: %w", err)
	}
	lc, err := s.tsnetServer.LocalClient()
	if err != nil {
		_ = ln.Close()
		_ = s.tsnetServer.Close()
		return nil, fmt.Errorf("getting tailscale local client: %w", err)
	}
	return tls.NewListener(ln, &tls.Config{
		GetCertificate: lc.GetCertificate,
		MinVersion:     tls.VersionTLS12,
	}), nil
}

func (s *Server) logTailscaleStatus(hostname string, status *ipnstate.Status) {
	var tsAddr, dnsName string
	if len(status.TailscaleIPs) > 0 {
		tsAddr = status.TailscaleIPs[0].String()
	} else {
		s.logger.Warn("tailscale node has no IP addresses assigned")
	}
	if status.Self != nil {
		dnsName = status.Self.DNSName
	}
	s.logger.Info("tailscale node ready", "hostname", hostname, "tailscale_ip", tsAddr, "dns_name", dnsName)
}

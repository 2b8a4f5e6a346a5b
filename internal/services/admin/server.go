package admin

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/louisbranch/adminactions/internal/platform/config"
	"github.com/louisbranch/adminactions/internal/platform/timeouts"
	"github.com/louisbranch/adminactions/internal/services/admin/actions"
	"github.com/louisbranch/adminactions/internal/services/admin/actions/builtin"
	"github.com/louisbranch/adminactions/internal/services/admin/actions/scripted"
	"github.com/louisbranch/adminactions/internal/services/admin/flash"
	adminsqlite "github.com/louisbranch/adminactions/internal/services/admin/storage/sqlite"
	"github.com/louisbranch/adminactions/internal/services/admin/transport/httpmux"
)

// adminServerEnv captures startup defaults for the admin process.
type adminServerEnv struct {
	DBPath          string   `env:"FRACTURING_SPACE_ADMIN_DB_PATH"`
	ScriptsDir      string   `env:"FRACTURING_SPACE_ADMIN_ACTION_SCRIPTS_DIR"`
	DisabledActions []string `env:"FRACTURING_SPACE_ADMIN_DISABLED_ACTIONS" envSeparator:","`
	IntrospectURL   string   `env:"FRACTURING_SPACE_ADMIN_INTROSPECT_URL"`
	ResourceSecret  string   `env:"FRACTURING_SPACE_ADMIN_RESOURCE_SECRET"`
	LoginURL        string   `env:"FRACTURING_SPACE_ADMIN_LOGIN_URL"`
}

func loadAdminServerEnv(values map[string]string) (adminServerEnv, error) {
	var cfg adminServerEnv
	var err error
	if values == nil {
		err = config.ParseEnv(&cfg)
	} else {
		err = config.ParseEnvMap(&cfg, values)
	}
	if err != nil {
		return adminServerEnv{}, fmt.Errorf("parse admin env: %w", err)
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join("data", "admin.db")
	}
	return cfg, nil
}

// authConfig returns the env-provided auth settings, or nil when
// introspection is not configured.
func (e adminServerEnv) authConfig() *AuthConfig {
	cfg := AuthConfig{
		IntrospectURL:  strings.TrimSpace(e.IntrospectURL),
		ResourceSecret: e.ResourceSecret,
		LoginURL:       strings.TrimSpace(e.LoginURL),
	}
	if !cfg.Enabled() {
		return nil
	}
	return &cfg
}

// Config defines the inputs for the admin operator process.
type Config struct {
	HTTPAddr string
	// AuthConfig enables token-based authentication when set. Nil falls back
	// to the environment.
	AuthConfig *AuthConfig
	// Registry receives the built-in and scripted actions. Nil uses the
	// process-wide default registry.
	Registry *actions.Registry
	// Env overrides process environment lookups, mainly for tests.
	Env map[string]string
}

// Server hosts the admin change lists and owns the admin store.
type Server struct {
	httpAddr   string
	httpServer *http.Server
	adminStore *adminsqlite.Store
}

// NewServer builds a configured admin server.
func NewServer(ctx context.Context, cfg Config) (*Server, error) {
	httpAddr := strings.TrimSpace(cfg.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}

	adminEnv, err := loadAdminServerEnv(cfg.Env)
	if err != nil {
		return nil, err
	}
	registry := cfg.Registry
	if registry == nil {
		registry = actions.Default()
	}
	if err := registerActions(registry, adminEnv); err != nil {
		return nil, err
	}

	adminStore, err := openAdminStore(adminEnv.DBPath)
	if err != nil {
		return nil, err
	}

	adminMux, err := NewHandler(HandlerConfig{
		Store:    adminStore,
		Registry: registry,
		Messages: flash.NewQueue(),
	})
	if err != nil {
		_ = adminStore.Close()
		return nil, fmt.Errorf("build admin handler: %w", err)
	}

	authCfg := cfg.AuthConfig
	if authCfg == nil {
		authCfg = adminEnv.authConfig()
	}
	var appHandler = adminMux
	if authCfg != nil && authCfg.Enabled() {
		introspector := newHTTPIntrospector(authCfg.IntrospectURL, authCfg.ResourceSecret)
		appHandler = requireAuth(adminMux, introspector, authCfg.LoginURL, log.Printf)
	}

	rootMux := http.NewServeMux()
	httpmux.MountHealth(rootMux, adminStore.Ping)
	httpmux.MountAdminRoutes(rootMux, appHandler)

	httpServer := &http.Server{
		Addr:              httpAddr,
		Handler:           rootMux,
		ReadHeaderTimeout: timeouts.ReadHeader,
	}

	return &Server{
		httpAddr:   httpAddr,
		httpServer: httpServer,
		adminStore: adminStore,
	}, nil
}

// registerActions adds built-in and scripted actions, then applies the
// configured disabled set.
func registerActions(registry *actions.Registry, env adminServerEnv) error {
	if err := builtin.Register(registry); err != nil {
		return err
	}
	if dir := strings.TrimSpace(env.ScriptsDir); dir != "" {
		names, err := scripted.RegisterDir(registry, dir)
		if err != nil {
			return fmt.Errorf("load action scripts: %w", err)
		}
		log.Printf("admin registered %d scripted actions from %s", len(names), dir)
	}
	for _, name := range env.DisabledActions {
		if name = strings.TrimSpace(name); name != "" {
			registry.Disable(name)
		}
	}
	return nil
}

// ListenAndServe runs the HTTP server until the context ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("admin server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	serveErr := make(chan error, 1)
	log.Printf("admin listening on %s", s.httpAddr)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

// Close releases the admin store.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.adminStore != nil {
		if err := s.adminStore.Close(); err != nil {
			log.Printf("close admin store: %v", err)
		}
	}
}

func openAdminStore(path string) (*adminsqlite.Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}

	store, err := adminsqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open admin sqlite store: %w", err)
	}
	return store, nil
}

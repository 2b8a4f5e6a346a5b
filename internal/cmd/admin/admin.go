package admin

import (
	"context"
	"flag"
	"fmt"
	"strings"

	platformcmd "github.com/louisbranch/adminactions/internal/platform/cmd"
	"github.com/louisbranch/adminactions/internal/services/admin"
)

// Config holds the admin command configuration.
type Config struct {
	HTTPAddr string `env:"FRACTURING_SPACE_ADMIN_ADDR" envDefault:":8082"`
}

// ParseConfig loads env defaults and then parses flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := platformcmd.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if strings.TrimSpace(cfg.HTTPAddr) == "" {
		return Config{}, fmt.Errorf("http address is required")
	}
	return cfg, nil
}

// Run starts the admin server with telemetry configured.
func Run(ctx context.Context, cfg Config) error {
	return platformcmd.RunWithTelemetry(ctx, platformcmd.ServiceAdmin, func(ctx context.Context) error {
		server, err := admin.NewServer(ctx, admin.Config{HTTPAddr: cfg.HTTPAddr})
		if err != nil {
			return fmt.Errorf("init admin server: %w", err)
		}
		defer server.Close()

		if err := server.ListenAndServe(ctx); err != nil {
			return fmt.Errorf("serve admin: %w", err)
		}
		return nil
	})
}

// Command listing-service runs the marketplace listing service.
// It wires subcommands (serve, migrate, expire), loads configuration, and initializes logging.
package main

import (
	"fmt"
	"os"

	"go-marketplace/internal/conf"
	"go-marketplace/internal/logging"

	"github.com/go-kratos/kratos/v2/config"
	"github.com/go-kratos/kratos/v2/config/env"
	"github.com/go-kratos/kratos/v2/config/file"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "go.uber.org/automaxprocs"
)

// go build -ldflags "-X main.Version=x.y.z"
var (
	// Name is the name of the compiled software.
	Name = "listing-service"
	// Version is the version of the compiled software.
	Version string

	id = logging.Hostname()
)

// envPrefix selects the environment variables merged over the config file.
const envPrefix = "LISTINGS_"

// runtime is what every subcommand needs once the config is loaded.
type runtime struct {
	bc     conf.Bootstrap
	logger log.Logger
	zap    *zap.Logger
}

// loadRuntime reads the config directory or file at path, then the
// LISTINGS_ environment, and builds the loggers.
func loadRuntime(path string) (*runtime, error) {
	c := config.New(
		config.WithSource(
			file.NewSource(path),
			env.NewSource(envPrefix),
		),
	)
	defer c.Close()

	if err := c.Load(); err != nil {
		return nil, fmt.Errorf("could not load config from %s: %w", path, err)
	}

	var bc conf.Bootstrap
	if err := c.Scan(&bc); err != nil {
		return nil, fmt.Errorf("could not scan config: %w", err)
	}

	z, err := logging.NewZap(bc.GetLog())
	if err != nil {
		return nil, err
	}

	return &runtime{
		bc:     bc,
		logger: logging.NewLogger(z, id, Name, Version),
		zap:    z,
	}, nil
}

func main() {
	var confPath string
	rt := &runtime{}

	rootCmd := &cobra.Command{
		Use:          "listing-service",
		Short:        "Marketplace listing lifecycle and discovery service",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := loadRuntime(confPath)
			if err != nil {
				return err
			}
			*rt = *loaded
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if rt.zap != nil {
				_ = rt.zap.Sync()
			}
		},
	}
	rootCmd.PersistentFlags().StringVarP(&confPath, "conf", "c", "configs", "config path, eg: --conf configs/config.yaml")

	rootCmd.AddCommand(
		serveCommand(rt),
		migrateCommand(rt),
		expireCommand(rt),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"slotmarket/internal/app"
	"slotmarket/internal/config"
	"slotmarket/internal/database"
	"slotmarket/internal/export"
	"slotmarket/internal/logging"
)

type options struct {
	configPath string
	role       string
	id         string
	exportPath string
	seedPath   string
}

func main() {
	if err := run(parseFlags()); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func parseFlags() options {
	var opts options
	flag.StringVar(&opts.configPath, "config", "configs/config.yaml", "path to the config file")
	flag.StringVar(&opts.role, "role", "client", "dashboard role: client or professional")
	flag.StringVar(&opts.id, "id", "", "client or professional id")
	flag.StringVar(&opts.exportPath, "export", "", "write the dashboard to this .xlsx file or directory")
	flag.StringVar(&opts.seedPath, "seed", "", "load a JSON fixture into the database source first")
	flag.Parse()
	return opts
}

func run(opts options) error {
	if opts.id == "" {
		return errors.New("-id is required")
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}
	logger := logging.Component(baseLogger, "dashboard-cli")

	application, err := app.New(cfg, logger)
	if err != nil {
		return err
	}
	defer (func() { _ = application.Close() })()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.seedPath != "" {
		if application.DB == nil {
			return errors.New("-seed requires source: database")
		}
		fixture, err := database.LoadFixture(opts.seedPath)
		if err != nil {
			return err
		}
		if err := application.DB.Seed(ctx, fixture); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}

	exportDir := cfg.Exports.Path
	if opts.exportPath != "" {
		exportDir = opts.exportPath
		if filepath.Ext(opts.exportPath) == ".xlsx" {
			exportDir = filepath.Dir(opts.exportPath)
		}
	}
	exporter := export.NewExporter(exportDir, logger)
	now := application.Clock.Now()

	var (
		dashboard any
		written   string
	)
	switch opts.role {
	case "client":
		dash, err := application.Dashboards.Client(ctx, opts.id)
		if err != nil {
			return err
		}
		dashboard = dash
		if opts.exportPath != "" {
			if written, err = exporter.ClientDashboard(dash, now); err != nil {
				return err
			}
		}
	case "professional":
		dash, err := application.Dashboards.Professional(ctx, opts.id)
		if err != nil {
			return err
		}
		dashboard = dash
		if opts.exportPath != "" {
			if written, err = exporter.ProfessionalDashboard(dash, now); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("unknown role %q", opts.role)
	}

	if written != "" && filepath.Ext(opts.exportPath) == ".xlsx" && written != opts.exportPath {
		if err := os.Rename(written, opts.exportPath); err != nil {
			return fmt.Errorf("move export: %w", err)
		}
		written = opts.exportPath
	}
	if written != "" {
		logger.Info().Str("file_path", written).Msg("dashboard exported")
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(dashboard)
}

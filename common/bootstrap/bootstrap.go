package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/toolworks/catalog/common/cache"
	"github.com/toolworks/catalog/common/config"
	"github.com/toolworks/catalog/common/logger"
	"github.com/toolworks/catalog/common/telemetry"
)

// Setup initializes all service components
// This is the main entry point for the service
func Setup(ctx context.Context, serviceName string, opts ...Option) (*Components, error) {
	// Apply options
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	components := &Components{
		cleanupFuncs: make([]func() error, 0),
	}

	// 1. Load configuration
	var err error
	if options.customConfig != nil {
		components.Config = options.customConfig
	} else {
		components.Config, err = config.Load(serviceName)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	// 2. Initialize logger
	if options.customLogger != nil {
		components.Logger = options.customLogger
	} else {
		components.Logger = logger.New(
			components.Config.Service.LogLevel,
			components.Config.Service.LogFormat,
		)
	}

	components.Logger.Info("initializing service",
		"service", serviceName,
		"environment", components.Config.Service.Environment,
	)

	// 3. Initialize storage layout (if not skipped)
	if !options.skipStorage {
		components.Logger.Info("preparing storage layout",
			"data_file", components.Config.Storage.DataFile,
			"uploads_dir", components.Config.Storage.UploadsDir,
		)
		if err := ensureStorage(components.Config); err != nil {
			return nil, fmt.Errorf("failed to prepare storage: %w", err)
		}
	}

	// 4. Initialize cache (if not skipped)
	if !options.skipCache && components.Config.Cache.Enabled {
		components.Logger.Info("initializing cache",
			"ttl", components.Config.Cache.DefaultTTL,
		)

		components.Cache = cache.NewMemoryCache(components.Logger)

		// Register cleanup
		components.addCleanup(func() error {
			components.Logger.Info("closing cache")
			return components.Cache.Close()
		})
	}

	// 5. Initialize telemetry (if not skipped)
	if !options.skipTelemetry && components.Config.Telemetry.EnablePprof {
		components.Logger.Info("initializing telemetry")
		components.Telemetry = telemetry.New(
			components.Config.Telemetry.PprofPort,
			components.Logger,
		)

		if err := components.Telemetry.Start(ctx); err != nil {
			components.Logger.Warn("failed to start telemetry", "error", err)
			// Don't fail startup if telemetry fails
		}
	}

	components.Logger.Info("service initialization complete",
		"service", serviceName,
		"cache", components.Cache != nil,
		"telemetry", components.Telemetry != nil,
	)

	return components, nil
}

// MustSetup is like Setup but panics on error
func MustSetup(ctx context.Context, serviceName string, opts ...Option) *Components {
	components, err := Setup(ctx, serviceName, opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to setup service %s: %v", serviceName, err))
	}
	return components
}

// ensureStorage creates the uploads directory and seeds an empty product
// document when none exists yet. An existing but malformed document is left
// alone: the repository surfaces it as a storage failure on every read
// rather than masking corruption with an empty list.
func ensureStorage(cfg *config.Config) error {
	if err := os.MkdirAll(cfg.Storage.UploadsDir, 0o755); err != nil {
		return fmt.Errorf("create uploads dir: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Storage.DataFile), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	if _, err := os.Stat(cfg.Storage.DataFile); os.IsNotExist(err) {
		if err := os.WriteFile(cfg.Storage.DataFile, []byte("[]\n"), 0o644); err != nil {
			return fmt.Errorf("seed product document: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("stat product document: %w", err)
	}

	return nil
}

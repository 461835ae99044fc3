package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/tokcodec-go/internal/core/service"
	"github.com/yndnr/tokcodec-go/internal/infra/buildinfo"
	"github.com/yndnr/tokcodec-go/internal/infra/confloader"
	"github.com/yndnr/tokcodec-go/internal/infra/shutdown"
	"github.com/yndnr/tokcodec-go/internal/infra/tlsroots"
	"github.com/yndnr/tokcodec-go/internal/server/config"
	"github.com/yndnr/tokcodec-go/internal/server/httpserver"
	"github.com/yndnr/tokcodec-go/internal/server/localserver"
	"github.com/yndnr/tokcodec-go/internal/server/redisserver"
	"github.com/yndnr/tokcodec-go/internal/telemetry/logger"
	"github.com/yndnr/tokcodec-go/internal/telemetry/metric"
	"github.com/yndnr/tokcodec-go/internal/telemetry/tracer"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "tokcodec-server",
		Usage:   "HTTP and Redis protocol API for encoding, decoding and generating auth tokens",
		Version: buildinfo.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				EnvVars: []string{"TOKCODEC_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (overrides server.http.addr)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level: debug, info, warn, error (overrides log.level)",
			},
			&cli.BoolFlag{
				Name:  "check",
				Usage: "Validate the configuration and exit",
			},
		},
		Action: run,
	}
}

// flagOverrides maps explicitly set flags to configuration keys.
func flagOverrides(c *cli.Context) map[string]any {
	o := make(map[string]any)
	if c.IsSet("addr") {
		o["server.http.addr"] = c.String("addr")
	}
	if c.IsSet("log-level") {
		o["log.level"] = c.String("log-level")
	}
	return o
}

// loadConfig loads configuration from file, environment and flags.
func loadConfig(loader *confloader.Loader) (*config.ServerConfig, error) {
	cfg := config.Default()
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}
	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func run(c *cli.Context) error {
	loader := confloader.NewLoader(
		confloader.WithConfigFile(c.String("config")),
		confloader.WithOverrides(flagOverrides(c)),
	)

	cfg, err := loadConfig(loader)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if c.Bool("check") {
		fmt.Fprintln(c.App.Writer, "configuration OK")
		return nil
	}

	log, err := logger.New(logger.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Backend: cfg.Log.Backend,
		Output:  os.Stdout,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.SetDefault(log)

	info := buildinfo.Get()
	log.Info("starting tokcodec-server",
		"version", info.Version,
		"commit", info.Commit,
		"config", loader.FilePath(),
	)
	log.Debug("effective configuration", config.LogAttrs(cfg)...)

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	tp, err := tracer.New(cfg.Tracing.Service, cfg.Tracing.Endpoint,
		tracer.WithHeaders(cfg.Tracing.Headers))
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}

	reg := metric.Global()
	tokenSvc := service.NewTokenService(
		service.WithLogger(log),
		service.WithMetrics(reg),
	)

	routerCfg := httpserver.DefaultRouterConfig()
	routerCfg.TokenService = tokenSvc
	routerCfg.Logger = log
	routerCfg.Metrics = reg
	routerCfg.MetricsPath = ""
	if cfg.Metrics.Enabled {
		routerCfg.MetricsPath = cfg.Metrics.Path
	}
	routerCfg.CORSAllowedOrigins = cfg.Server.HTTP.CORS.Origins
	routerCfg.RateLimitRPS = 0
	if cfg.Server.HTTP.RateLimit.Enabled {
		routerCfg.RateLimitRPS = cfg.Server.HTTP.RateLimit.RPS
		routerCfg.RateLimitBurst = cfg.Server.HTTP.RateLimit.Burst
	}
	router := httpserver.NewRouter(routerCfg)

	httpServer := httpserver.New(cfg.Server.HTTP.Addr, router)

	// Hooks run in reverse order of registration.
	sd := shutdown.NewHandler(cfg.Server.Shutdown.Timeout, shutdown.WithLogger(log))

	sd.OnShutdown("tracer", tp.Shutdown)

	if path := loader.FilePath(); path != "" {
		watcher, err := watchConfig(loader, path, log)
		if err != nil {
			log.Warn("configuration hot-reload disabled", "error", err)
		} else {
			sd.OnShutdown("config watcher", func(context.Context) error {
				return watcher.Stop()
			})
		}
	}

	// The HTTP and RESP listeners share one reloading certificate.
	var serverTLS *tls.Config
	serve := httpServer.ListenAndServe
	if tlsCfg := cfg.Server.HTTP.TLS; tlsCfg.Enabled() {
		reloader, err := tlsroots.NewCertReloader(tlsCfg.Cert, tlsCfg.Key, tlsroots.WithLogger(log))
		if err != nil {
			return fmt.Errorf("init tls: %w", err)
		}
		go func() {
			if err := reloader.Run(ctx); err != nil {
				log.Warn("certificate hot-reload disabled", "error", err)
			}
		}()
		serverTLS = reloader.ServerConfig()
		serve = func() error {
			return httpServer.ListenAndServeTLS(serverTLS)
		}
	}

	if sock := cfg.Server.Local.Socket; sock != "" {
		localServer := localserver.New(sock, router, log)
		sd.OnShutdown("local socket", localServer.Shutdown)
		sd.Go("local socket", localServer.ListenAndServe)
	}

	if respCfg := cfg.Server.RESP; respCfg.Enabled {
		respServer := redisserver.New(redisserver.Config{
			Addr:        respCfg.Addr,
			TLSConfig:   serverTLS,
			IdleTimeout: respCfg.IdleTimeout,
			RateLimit:   respCfg.RateLimit,
		}, tokenSvc, log, reg)
		sd.OnShutdown("resp", respServer.Shutdown)
		sd.Go("resp", respServer.ListenAndServe)
	}

	sd.OnShutdown("http", httpServer.Shutdown)
	sd.OnShutdown("readiness", func(context.Context) error {
		router.SetReady(false)
		return nil
	})

	log.Info("HTTP server listening",
		"addr", cfg.Server.HTTP.Addr,
		"tls", cfg.Server.HTTP.TLS.Enabled(),
	)
	sd.Go("http", serve)

	router.SetReady(true)
	log.Info("server started, press Ctrl+C to stop")

	if err := sd.Wait(ctx); err != nil {
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// watchConfig re-applies the log level when the configuration file changes.
// Listener and TLS settings require a restart.
func watchConfig(loader *confloader.Loader, path string, log logger.Logger) (*confloader.Watcher, error) {
	watcher, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return nil, err
	}
	if err := watcher.Watch(path); err != nil {
		watcher.Stop()
		return nil, err
	}

	watcher.OnChange(func(string) {
		next := config.Default()
		if err := loader.Reload(next); err != nil {
			log.Error("configuration reload failed", "error", err)
			return
		}
		if err := config.Verify(next); err != nil {
			log.Error("reloaded configuration is invalid", "error", err)
			return
		}
		logger.SetLevel(next.Log.Level)
		log.Info("configuration reloaded", "log_level", next.Log.Level)
	})
	watcher.StartAsync()

	return watcher, nil
}

package cli

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kbukum/solrkit/adapter"
	"github.com/kbukum/solrkit/client"
	"github.com/kbukum/solrkit/component"
	"github.com/kbukum/solrkit/config"
	"github.com/kbukum/solrkit/httpadapter"
	"github.com/kbukum/solrkit/logger"
	"github.com/kbukum/solrkit/observability"
)

const shutdownTimeout = 10 * time.Second

// app is the infrastructure behind a single command invocation.
type app struct {
	cfg        *config.Config
	log        *logger.Logger
	components *component.Registry
	adapter    *httpadapter.Component
	client     *client.Client
	registry   *prometheus.Registry
	provider   *sdktrace.TracerProvider
}

// newApp loads the configuration and assembles the adapter stack. Nothing
// is started until run is called.
func newApp(ctx context.Context, f *globalFlags, stderr io.Writer) (*app, error) {
	cfg := &config.Config{}
	opts := []config.LoaderOption{}
	if f.configFile != "" {
		opts = append(opts, config.WithConfigFile(f.configFile))
	}
	if f.environ != nil {
		opts = append(opts, config.WithEnviron(f.environ))
	}
	if err := config.LoadConfig(cliName, cfg, opts...); err != nil {
		return nil, err
	}
	if f.logLevel != "" {
		cfg.Logging.Level = f.logLevel
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = logger.OutputStderr
	}
	cfg.ApplyDefaults()
	if f.endpoint != "" {
		cfg.DefaultEndpoint = f.endpoint
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	a := &app{cfg: cfg}
	if cfg.Logging.IsFile() {
		a.log = logger.New(&cfg.Logging, cfg.Name)
	} else {
		a.log = logger.NewWithWriter(&cfg.Logging, cfg.Name, stderr)
	}
	logger.SetGlobalLogger(a.log)
	a.components = component.NewRegistry(a.log)

	adapterOpts := []httpadapter.Option{httpadapter.WithLogger(a.log)}
	if cfg.Metrics.Enabled {
		a.registry = prometheus.NewRegistry()
		adapterOpts = append(adapterOpts, httpadapter.WithMetrics(observability.NewMetrics(a.registry)))
	}
	if cfg.Tracing.Enabled {
		tp, err := observability.InitTracer(ctx, cfg.Tracing)
		if err != nil {
			return nil, err
		}
		a.provider = tp
		adapterOpts = append(adapterOpts, httpadapter.WithTracer(tp.Tracer(observability.TracerName)))
	}

	a.adapter = httpadapter.NewComponent(cfg.Adapter, adapterOpts...)
	if err := a.components.Register(a.adapter); err != nil {
		return nil, err
	}
	return a, nil
}

// run starts the components, builds the client, runs task and shuts
// everything down. SIGINT and SIGTERM cancel the task.
func (a *app) run(ctx context.Context, task func(ctx context.Context, c *client.Client) error) error {
	defer a.shutdown()
	if err := a.components.StartAll(ctx); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	if err := a.readyCheck(ctx); err != nil {
		return err
	}

	eps, err := a.cfg.BuildEndpoints()
	if err != nil {
		return err
	}
	wrapped := adapter.WithResilience(a.adapter.Adapter(), a.cfg.Resilience, a.log)
	a.client = client.New(wrapped, client.WithLogger(a.log), client.WithEndpoints(eps...))

	taskCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return task(taskCtx, a.client)
}

func (a *app) readyCheck(ctx context.Context) error {
	var unhealthy []string
	for _, h := range a.components.HealthAll(ctx) {
		if h.Status != component.StatusHealthy {
			unhealthy = append(unhealthy, h.Name+"="+string(h.Status))
		}
	}
	if len(unhealthy) > 0 {
		return fmt.Errorf("unhealthy components: %v", unhealthy)
	}
	return nil
}

func (a *app) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.components.StopAll(ctx); err != nil {
		a.log.Warn("component shutdown failed", logger.ErrorFields("stop", err))
	}
	if a.provider != nil {
		if err := a.provider.Shutdown(ctx); err != nil {
			a.log.Warn("tracer shutdown failed", logger.ErrorFields("shutdown", err))
		}
	}
	if a.registry != nil && a.cfg.Metrics.Textfile != "" {
		if err := prometheus.WriteToTextfile(a.cfg.Metrics.Textfile, a.registry); err != nil {
			a.log.Warn("writing metrics failed", logger.ErrorFields("metrics", err))
		}
	}
}

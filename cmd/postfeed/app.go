package main

import (
	"context"
	"time"

	"github.com/spf13/pflag"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/mohammad-safakhou/postfeed/config"
	"github.com/mohammad-safakhou/postfeed/internal/dom"
	"github.com/mohammad-safakhou/postfeed/internal/logging"
	"github.com/mohammad-safakhou/postfeed/internal/pipeline"
	"github.com/mohammad-safakhou/postfeed/internal/runtime"
	"github.com/mohammad-safakhou/postfeed/internal/source"
)

const version = "1.0.0"

// app is the wiring shared by every command.
type app struct {
	cfg    *config.Config
	logger *logging.ZerologAdapter
	tele   *runtime.Telemetry
	meter  otelmetric.Meter
	tracer trace.Tracer
	client *source.Client
}

// binding maps a config key to a command flag.
type binding struct {
	key  string
	flag *pflag.Flag
}

func loadConfig(flags *rootFlags, bindings ...binding) (*config.Config, error) {
	v := config.New(flags.cfgPath)
	for _, b := range bindings {
		if b.flag == nil {
			continue
		}
		if err := v.BindPFlag(b.key, b.flag); err != nil {
			return nil, err
		}
	}
	if flags.logLevel != "" {
		v.Set("general.log_level", flags.logLevel)
	}
	if err := config.Read(v, flags.cfgPath); err != nil {
		return nil, err
	}
	return config.Decode(v)
}

func newApp(ctx context.Context, flags *rootFlags, bindings ...binding) (*app, error) {
	cfg, err := loadConfig(flags, bindings...)
	if err != nil {
		return nil, err
	}
	logging.SetLevel(cfg.General.LogLevel)
	logger := logging.NewDefaultLogger().With(logging.String("component", "postfeed"))

	tele, meter, tracer, err := runtime.SetupTelemetry(ctx, cfg.Telemetry, runtime.TelemetryOptions{
		ServiceVersion: version,
		Logger:         logger,
	})
	if err != nil {
		return nil, err
	}

	client, err := source.NewClient(source.Options{
		PostsURL:       cfg.Source.PostsURL,
		Timeout:        cfg.Source.Timeout,
		UserAgent:      cfg.Source.UserAgent,
		ValidateSchema: cfg.Source.ValidateSchema,
		MaxBodyBytes:   cfg.Source.MaxBodyBytes,
	}, logger.With(logging.String("subsystem", "source")))
	if err != nil {
		_ = tele.Shutdown(ctx)
		return nil, err
	}

	return &app{cfg: cfg, logger: logger, tele: tele, meter: meter, tracer: tracer, client: client}, nil
}

func (a *app) pipelineOptions() (pipeline.Options, error) {
	timing, err := pipeline.ParseTimingMode(a.cfg.Render.TimingMode)
	if err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{
		Timing:   timing,
		Sanitize: a.cfg.Render.Sanitize,
		Logger:   a.logger.With(logging.String("subsystem", "pipeline")),
		Meter:    a.meter,
		Tracer:   a.tracer,
	}, nil
}

func (a *app) newPage() *dom.Document {
	return dom.NewPage(a.cfg.Server.PageTitle)
}

func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.tele.Shutdown(ctx); err != nil {
		a.logger.Warn("telemetry shutdown", logging.Err(err))
	}
}

// flagIfSet returns the flag only when the user set it, so unset flags do
// not shadow file and environment values.
func flagIfSet(fs *pflag.FlagSet, name string) *pflag.Flag {
	f := fs.Lookup(name)
	if f == nil || !f.Changed {
		return nil
	}
	return f
}

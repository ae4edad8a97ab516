package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mohammad-safakhou/postfeed/internal/logging"
	"github.com/mohammad-safakhou/postfeed/internal/pipeline"
	"github.com/mohammad-safakhou/postfeed/internal/runtime"
	srv "github.com/mohammad-safakhou/postfeed/internal/server"
)

func serveCMD(flags *rootFlags) *cobra.Command {
	var serve = &cobra.Command{
		Use:   "serve",
		Short: "Serve the page with its get and fetch triggers",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			fs := cmd.Flags()
			a, err := newApp(ctx, flags,
				binding{"server.address", flagIfSet(fs, "addr")},
				binding{"render.timing_mode", flagIfSet(fs, "timing")},
				binding{"render.sanitize", flagIfSet(fs, "sanitize")},
			)
			if err != nil {
				return err
			}
			defer a.close()

			opts, err := a.pipelineOptions()
			if err != nil {
				return err
			}
			doc := a.newPage()
			set, err := pipeline.NewSet(doc, a.client, opts)
			if err != nil {
				return err
			}
			server := srv.New(doc, set, srv.Options{
				Address:      a.cfg.Server.Address,
				AllowOrigins: a.cfg.Server.AllowOrigins,
				WaitTimeout:  a.cfg.Server.WaitTimeout,
				Logger:       a.logger.With(logging.String("subsystem", "http")),
			})

			ctx, cancel := runtime.SignalContext(ctx, "serve", a.logger)
			defer cancel()
			a.logger.Info("serving posts page",
				logging.String("addr", a.cfg.Server.Address),
				logging.String("posts_url", a.client.Endpoint()),
				logging.String("timing_mode", a.cfg.Render.TimingMode),
			)
			return server.Run(ctx)
		},
	}
	serve.Flags().String("addr", ":8080", "listen address")
	serve.Flags().String("timing", "issue", "timer mode: issue or completion")
	serve.Flags().Bool("sanitize", false, "sanitize post HTML before rendering")
	return serve
}

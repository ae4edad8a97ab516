package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mohammad-safakhou/postfeed/internal/apperrors"
	"github.com/mohammad-safakhou/postfeed/internal/dom"
	"github.com/mohammad-safakhou/postfeed/internal/pipeline"
)

// runCMD builds the one-shot command for the named pipeline.
func runCMD(flags *rootFlags, name, short string) *cobra.Command {
	var showHTML bool
	var cmd = &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			fs := cmd.Flags()
			a, err := newApp(ctx, flags,
				binding{"source.posts_url", flagIfSet(fs, "url")},
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
			p, err := pipeline.New(name, doc, a.client, opts)
			if err != nil {
				return err
			}
			rep, err := p.Run(ctx).Wait(ctx)
			if err != nil {
				return err
			}
			if err := printReport(cmd.OutOrStdout(), rep); err != nil {
				return err
			}
			if showHTML {
				inner, err := doc.InnerHTML(dom.ContainerID)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), inner)
			}
			if rep.Err != nil {
				return apperrors.WrapError(rep.Err, "%s pipeline", name)
			}
			return nil
		},
	}
	cmd.Flags().String("url", "", "posts endpoint (overrides source.posts_url)")
	cmd.Flags().String("timing", "issue", "timer mode: issue or completion")
	cmd.Flags().Bool("sanitize", false, "sanitize post HTML before rendering")
	cmd.Flags().BoolVar(&showHTML, "html", false, "print the rendered post container")
	return cmd
}

func printReport(w io.Writer, rep pipeline.Report) error {
	_, err := fmt.Fprintf(w, "pipeline=%s invocation=%s posts=%d timer=%s outcome=%s\n",
		rep.Pipeline, rep.ID, rep.Posts, rep.TimerText, rep.Outcome())
	return err
}

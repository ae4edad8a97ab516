package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mohammad-safakhou/postfeed/internal/pipeline"
	"github.com/mohammad-safakhou/postfeed/internal/render"
)

func compareCMD(flags *rootFlags) *cobra.Command {
	var rounds int
	var names []string
	var cmd = &cobra.Command{
		Use:   "compare",
		Short: "Run both pipelines repeatedly and compare completion times",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			a, err := newApp(ctx, flags, binding{"source.posts_url", flagIfSet(cmd.Flags(), "url")})
			if err != nil {
				return err
			}
			defer a.close()

			opts, err := a.pipelineOptions()
			if err != nil {
				return err
			}
			results, err := pipeline.Compare(ctx, a.client, names, rounds, opts)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "PIPELINE\tROUNDS\tMEDIAN\tMIN\tMAX\tPOSTS\tFAILURES")
			for _, r := range results {
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%d\t%d\n",
					r.Pipeline, r.Rounds,
					render.FormatElapsed(r.Median), render.FormatElapsed(r.Min), render.FormatElapsed(r.Max),
					r.Posts, r.Failures)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			for _, r := range results {
				if r.Err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: last failure: %v\n", r.Pipeline, r.Err)
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&rounds, "rounds", "n", 5, "invocations per pipeline")
	cmd.Flags().StringSliceVar(&names, "pipelines", pipeline.Names, "pipelines to compare ("+strings.Join(pipeline.Names, ",")+")")
	cmd.Flags().String("url", "", "posts endpoint (overrides source.posts_url)")
	return cmd
}

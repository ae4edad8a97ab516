package main

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/mohammad-safakhou/postfeed/internal/pipeline"
	srv "github.com/mohammad-safakhou/postfeed/internal/server"
	"github.com/mohammad-safakhou/postfeed/tools/page_driver"
)

func clickCMD(flags *rootFlags) *cobra.Command {
	var pageURL, trigger string
	var timeout time.Duration
	var cmd = &cobra.Command{
		Use:   "click",
		Short: "Click a trigger on the page in headless Chrome and print what it shows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			driver, err := page_driver.NewPageDriver(page_driver.ChromedpDriverType, timeout, 0)
			if err != nil {
				return err
			}

			if pageURL == "" {
				// serve a page in-process on a loopback port
				a, err := newApp(ctx, flags, binding{"render.timing_mode", flagIfSet(cmd.Flags(), "timing")})
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
				ln, err := net.Listen("tcp", "127.0.0.1:0")
				if err != nil {
					return err
				}
				hs := &http.Server{
					Handler:           srv.New(doc, set, srv.Options{WaitTimeout: timeout, Logger: a.logger}).Handler(),
					ReadHeaderTimeout: 5 * time.Second,
				}
				go func() {
					if err := hs.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
						a.logger.Error("page server", err)
					}
				}()
				defer hs.Close()
				pageURL = "http://" + ln.Addr().String() + "/"
			}

			res, err := driver.Click(ctx, pageURL, trigger)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
	cmd.Flags().StringVar(&pageURL, "url", "", "page to drive (default: serve one in-process)")
	cmd.Flags().StringVar(&trigger, "trigger", pipeline.NameFetch, "trigger id to click (get or fetch)")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "browser timeout")
	cmd.Flags().String("timing", "issue", "timer mode for the in-process page")
	return cmd
}

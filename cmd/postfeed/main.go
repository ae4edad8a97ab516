package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mohammad-safakhou/postfeed/internal/apperrors"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(apperrors.ExitCode(err))
	}
}

type rootFlags struct {
	cfgPath  string
	logLevel string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	var root = &cobra.Command{
		Use:           "postfeed",
		Short:         "Retrieve posts, render them into a page and time each run",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&flags.cfgPath, "config", "c", "", "config file (default is ./config or .)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	root.AddCommand(
		serveCMD(flags),
		runCMD(flags, "get", "Run the callback pipeline once and print the report"),
		runCMD(flags, "fetch", "Run the future pipeline once and print the report"),
		compareCMD(flags),
		clickCMD(flags),
	)
	return root
}

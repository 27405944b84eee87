package cmd

import (
	"log/slog"
	"os"
	"time"

	sentryslog "github.com/getsentry/sentry-go/slog"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func SetBuildVersion(v string, c string, d string) {
	version = v
	commit = c
	date = d
}

// Root represents the base command when called without any subcommands
var Root = &cobra.Command{
	Use:   "untar",
	Short: "Extract tar archives with protection against malicious entries",

	// Dont show CLI usage on error.
	SilenceUsage:  true,
	SilenceErrors: true,
}

var programLevel = new(slog.LevelVar)

func setLogLevel(l slog.Level) {
	programLevel.Set(l)
}

func init() {
	l := slog.New(
		Fanout(
			tint.NewHandler(os.Stderr, &tint.Options{
				Level:      programLevel,
				TimeFormat: time.Kitchen,
			}),
			sentryslog.Option{
				Level:     slog.LevelWarn,
				AddSource: true,
			}.NewSentryHandler(),
		),
	)
	slog.SetDefault(l)

	// Cobra supports persistent flags, which, if defined here,
	// will be global for your application.

	Root.PersistentFlags().Bool("debug", false, "enable verbose debug logs")
}

package dustmask

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	flagJSON          bool
	flagFormat        string
	flagThreads       int
	flagNoColor       bool
	flagNoCache       bool
	flagLogLevel      string
	flagNoUpdateCheck bool

	version = "0.1.0"
)

// rootCmd is the base Cobra command for the dustmask CLI.
var rootCmd = &cobra.Command{
	Use:           "dustmask",
	Short:         "Find and mask low-complexity regions in DNA sequences",
	Long:          "dustmask runs the symmetric DUST algorithm over FASTA files, reports low-complexity regions and soft- or hard-masks them.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// exitError carries a process exit code without printing anything.
type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

// Execute runs the dustmask CLI. It should be called by the main package.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var ee *exitError
		if errors.As(err, &ee) {
			os.Exit(ee.code)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(2)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "emit JSON (same as --format json)")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "", "output format: table | text | json | bed")
	rootCmd.PersistentFlags().IntVar(&flagThreads, "threads", 0, "worker count (0 = GOMAXPROCS)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colorized output")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "disable incremental scan cache")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug | info | warn | error")
	rootCmd.PersistentFlags().BoolVar(&flagNoUpdateCheck, "no-update-check", false, "disable update check")
}

// newLogger builds the stderr logger shared by all commands.
func newLogger(level string) (*logrus.Logger, error) {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true, DisableColors: flagNoColor})
	if level == "" {
		level = "warn"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid --log-level: %w", err)
	}
	l.SetLevel(lvl)
	return l, nil
}

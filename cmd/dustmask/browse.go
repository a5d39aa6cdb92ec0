package dustmask

import (
	"fmt"
	"path/filepath"

	"github.com/dustmask/dustmask/internal/cache"
	"github.com/dustmask/dustmask/internal/engine"
	"github.com/dustmask/dustmask/internal/tui"
	"github.com/dustmask/dustmask/internal/types"
	"github.com/spf13/cobra"
)

var flagCached bool

func init() {
	cmd := &cobra.Command{
		Use:   "browse [paths...]",
		Short: "Browse low-complexity regions interactively",
		RunE:  runBrowse,
	}
	rootCmd.AddCommand(cmd)

	cmd.Flags().StringVarP(&flagRoot, "path", "p", ".", "root directory; paths are resolved against it")
	addScanParamFlags(cmd)
	addArchiveFlags(cmd)
	cmd.Flags().BoolVar(&flagCached, "cached", false, "show the results of the last scan without rescanning")
}

func runBrowse(cmd *cobra.Command, args []string) error {
	abs, err := filepath.Abs(flagRoot)
	if err != nil {
		return err
	}
	cfg, _, _, err := buildEngineConfig(cmd, abs, args)
	if err != nil {
		return err
	}
	rescan := func() ([]types.Region, error) {
		res, err := engine.ScanContext(cmd.Context(), cfg)
		if err != nil {
			return nil, err
		}
		if err := cache.SaveResults(abs, res.Regions, res.Records); err != nil {
			cfg.Logger.WithError(err).Debug("could not save last scan results")
		}
		return res.Regions, nil
	}

	if flagCached {
		results, err := cache.LoadResults(abs)
		if err != nil {
			return fmt.Errorf("no cached scan in %s (run 'dustmask scan' first): %w", abs, err)
		}
		return tui.RunCached(results.Regions, rescan, results.Timestamp)
	}

	regions, err := rescan()
	if err != nil {
		return fmt.Errorf("scan error: %w", err)
	}
	return tui.Run(regions, rescan)
}

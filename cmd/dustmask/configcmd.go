package dustmask

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustmask/dustmask/internal/config"
	"github.com/dustmask/dustmask/internal/files"
	"github.com/spf13/cobra"
)

var (
	cfgOutput    string
	cfgForce     bool
	cfgAddIgnore bool
	cfgGlobal    bool
)

func init() {
	cfgCmd := &cobra.Command{Use: "config", Short: "Configuration helpers"}
	rootCmd.AddCommand(cfgCmd)

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a .dustmask.yml with the default settings",
		RunE:  runConfigInit,
	}
	cfgCmd.AddCommand(initCmd)

	addScanParamFlags(initCmd)
	initCmd.Flags().StringVar(&cfgOutput, "output", ".dustmask.yml", "output file path")
	initCmd.Flags().BoolVar(&cfgForce, "force", false, "overwrite an existing file")
	initCmd.Flags().BoolVar(&cfgAddIgnore, "add-ignore", false, "add dustmask state files to .gitignore")
	initCmd.Flags().BoolVar(&cfgGlobal, "global", false, "write the global config instead of a local one")

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the global config directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, err := config.Dir()
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
	cfgCmd.AddCommand(pathCmd)
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	fc := config.Default()
	window, threshold := flagWindow, flagThreshold
	fc.WindowSize = &window
	fc.ScoreThreshold = &threshold

	path := cfgOutput
	if cfgGlobal {
		dir, err := config.Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		path = filepath.Join(dir, "config.yml")
	}
	if err := config.WriteFile(path, fc, cfgForce); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Wrote", path)

	if cfgAddIgnore {
		root := filepath.Dir(path)
		for _, name := range files.StateFiles() {
			if err := files.AppendIgnore(root, name); err != nil {
				return fmt.Errorf("update .gitignore: %w", err)
			}
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Updated", filepath.Join(root, ".gitignore"))
	}
	return nil
}

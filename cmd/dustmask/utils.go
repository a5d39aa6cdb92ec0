package dustmask

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"

	semver3 "github.com/blang/semver"
	semver "github.com/blang/semver/v4"
	"github.com/dustmask/dustmask/internal/config"
	"github.com/dustmask/dustmask/internal/update"
	"github.com/rhysd/go-github-selfupdate/selfupdate"
	"github.com/spf13/cobra"
)

func selfUpdate() (string, error) {
	v := version
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && len(v) == 0 {
				v = s.Value
			}
		}
	}
	ver, err := semver.ParseTolerant(v)
	if err != nil {
		ver = semver.MustParse("0.0.0")
	}
	latest, err := selfupdate.UpdateSelf(semver3.MustParse(ver.String()), update.Repo)
	if err != nil {
		return "", err
	}
	return latest.Version.String(), nil
}

// loadConfigs returns the global and repo-local config files; missing files
// yield empty configs.
func loadConfigs(root string) (global, local config.FileConfig) {
	if c, err := config.LoadGlobal(); err == nil {
		global = c
	}
	if c, err := config.LoadLocal(root); err == nil {
		local = c
	}
	return global, local
}

// outputFormat resolves --json / --format; json wins when both are given.
func outputFormat() (string, error) {
	if flagJSON {
		return "json", nil
	}
	switch flagFormat {
	case "":
		return "table", nil
	case "table", "text", "json", "bed":
		return flagFormat, nil
	}
	return "", fmt.Errorf("unsupported --format %q (want table, text, json or bed)", flagFormat)
}

// openOutput returns stdout for "" or "-", otherwise a created file.
func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func printUpdateNotice(cmd *cobra.Command) {
	if flagNoUpdateCheck {
		return
	}
	if latest, newer, _ := update.Check(version, false); newer && latest != "" {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "(new version available: v%s)  run 'dustmask update' to upgrade\n", latest)
	}
}

// pickInt prefers an explicitly set flag, then local, then global config,
// then the flag default.
func pickInt(cmd *cobra.Command, name string, cli int, local, global *int) int {
	if cmd.Flags().Changed(name) {
		return cli
	}
	if local != nil {
		return *local
	}
	if global != nil {
		return *global
	}
	return cli
}

func pickInt64(cmd *cobra.Command, name string, cli int64, local, global *int64) int64 {
	if cmd.Flags().Changed(name) {
		return cli
	}
	if local != nil {
		return *local
	}
	if global != nil {
		return *global
	}
	return cli
}

func pickFloat(cmd *cobra.Command, name string, cli float64, local, global *float64) float64 {
	if cmd.Flags().Changed(name) {
		return cli
	}
	if local != nil {
		return *local
	}
	if global != nil {
		return *global
	}
	return cli
}

func pickString(cmd *cobra.Command, name string, cli string, local, global *string) string {
	if cmd.Flags().Changed(name) {
		return cli
	}
	if local != nil && *local != "" {
		return *local
	}
	if global != nil && *global != "" {
		return *global
	}
	return cli
}

func pickBool(cmd *cobra.Command, name string, cli bool, local, global *bool) bool {
	if cmd.Flags().Changed(name) {
		return cli
	}
	if local != nil {
		return *local
	}
	if global != nil {
		return *global
	}
	return cli
}

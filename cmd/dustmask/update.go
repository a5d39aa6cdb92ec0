package dustmask

import (
	"fmt"

	"github.com/dustmask/dustmask/internal/update"
	"github.com/spf13/cobra"
)

var flagCheckOnly bool

func init() {
	updateCmd := &cobra.Command{
		Use:   "update",
		Short: "Update dustmask to the latest release",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if flagCheckOnly {
				latest, newer, err := update.Check(version, false)
				if err != nil {
					return err
				}
				if newer {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "v%s is available (running v%s)\n", latest, version)
				} else {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "v%s is up to date\n", version)
				}
				return nil
			}
			v, err := selfUpdate()
			if err != nil {
				return fmt.Errorf("self update: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "updated to v%s; re-run command\n", v)
			return nil
		},
	}
	updateCmd.Flags().BoolVar(&flagCheckOnly, "check", false, "only report whether a newer release exists")
	rootCmd.AddCommand(updateCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the dustmask version",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "dustmask v%s\n", version)
		},
	})
}

package dustmask

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/dustmask/dustmask/internal/fasta"
	"github.com/dustmask/dustmask/internal/mask"
	"github.com/dustmask/dustmask/internal/sdust"
	"github.com/spf13/cobra"
)

var (
	flagHard      bool
	flagLineWidth int
	flagInPlace   bool
)

func init() {
	cmd := &cobra.Command{
		Use:   "mask <file|->",
		Short: "Write a FASTA file with low-complexity regions masked",
		Long:  "Mask lowercases (soft) or replaces with N (hard) every low-complexity region of every record. Gzip input is detected automatically; output ending in .gz is compressed.",
		Args:  cobra.ExactArgs(1),
		RunE:  runMask,
	}
	rootCmd.AddCommand(cmd)

	addScanParamFlags(cmd)
	cmd.Flags().BoolVar(&flagHard, "hard", false, "replace masked bases with N instead of lowercasing them")
	cmd.Flags().IntVar(&flagLineWidth, "line-width", fasta.DefaultLineWidth, "sequence line width (0 = single line)")
	cmd.Flags().StringVarP(&flagOutput, "output", "o", "-", "output file (- for stdout)")
	cmd.Flags().BoolVar(&flagInPlace, "in-place", false, "rewrite the input file")
	cmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "report what would be masked without writing output")
}

func maskOptions(cmd *cobra.Command, root string) (mask.Options, error) {
	gcfg, lcfg := loadConfigs(root)
	opts := mask.Options{
		WindowSize: pickInt(cmd, "window", flagWindow, lcfg.WindowSize, gcfg.WindowSize),
		Threshold:  pickInt(cmd, "threshold", flagThreshold, lcfg.ScoreThreshold, gcfg.ScoreThreshold),
		LineWidth:  pickInt(cmd, "line-width", flagLineWidth, lcfg.LineWidth, gcfg.LineWidth),
	}
	if cmd.Flags().Changed("hard") {
		if flagHard {
			opts.Mode = mask.Hard
		}
	} else if m := lcfg.MaskMode; m != nil || gcfg.MaskMode != nil {
		if m == nil {
			m = gcfg.MaskMode
		}
		mode, err := mask.ParseMode(*m)
		if err != nil {
			return opts, err
		}
		opts.Mode = mode
	}
	if err := sdust.ValidateWindow(opts.WindowSize); err != nil {
		return opts, err
	}
	if err := sdust.ValidateThreshold(opts.Threshold); err != nil {
		return opts, err
	}
	return opts, nil
}

func runMask(cmd *cobra.Command, args []string) error {
	path := args[0]
	root := "."
	if path != "-" {
		root = filepath.Dir(path)
	}
	opts, err := maskOptions(cmd, root)
	if err != nil {
		return err
	}
	stderr := cmd.ErrOrStderr()

	if flagInPlace {
		if path == "-" {
			return errors.New("--in-place needs a file, not stdin")
		}
		if flagDryRun {
			changed, err := mask.WouldChange(path, opts)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: would change=%v\n", path, changed)
			return nil
		}
		changed, err := mask.ApplyFile(path, opts)
		if err != nil {
			return err
		}
		if changed {
			_, _ = fmt.Fprintf(stderr, "masked %s (%s)\n", path, opts.Mode)
		} else {
			_, _ = fmt.Fprintf(stderr, "%s unchanged\n", path)
		}
		return nil
	}

	var src io.Reader
	if path == "-" {
		src, err = fasta.NewReader(cmd.InOrStdin())
		if err != nil {
			return err
		}
	} else {
		rc, err := fasta.Open(path)
		if err != nil {
			return err
		}
		defer func() { _ = rc.Close() }()
		src = rc
	}

	var (
		dst      io.Writer
		closeDst = func() error { return nil }
	)
	switch {
	case flagDryRun:
		dst = io.Discard
	case flagOutput == "" || flagOutput == "-":
		dst = cmd.OutOrStdout()
	default:
		wc, err := fasta.Create(flagOutput)
		if err != nil {
			return err
		}
		dst, closeDst = wc, wc.Close
	}

	st, err := mask.WriteFASTA(cmd.Context(), src, dst, opts)
	if cerr := closeDst(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("mask %s: %w", path, err)
	}
	_, _ = fmt.Fprintf(stderr, "%d records, %d masked bases, %d changed, %d too short\n", st.Records, st.Masked, st.Changed, st.Skipped)
	return nil
}

package dust

import (
	"context"

	"github.com/dustmask/dustmask/internal/engine"
	"github.com/dustmask/dustmask/internal/types"
)

// Re-export selected internal types as a stable public API surface.
type (
	Config        = engine.Config
	Result        = engine.Result
	Region        = types.Region
	RecordSummary = types.RecordSummary
)

// DefaultConfig scans root with the default window and threshold.
func DefaultConfig(root string) Config {
	return Config{
		Root:            root,
		WindowSize:      DefaultWindowSize,
		Threshold:       DefaultScoreThreshold,
		MaxBytes:        256 << 20,
		DefaultExcludes: true,
	}
}

// ScanFiles scans the FASTA files selected by cfg.
func ScanFiles(cfg Config) ([]Region, error) {
	return engine.Scan(cfg)
}

// ScanFilesContext is ScanFiles with cancellation and per-record statistics.
func ScanFilesContext(ctx context.Context, cfg Config) (Result, error) {
	return engine.ScanContext(ctx, cfg)
}

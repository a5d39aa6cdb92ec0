package engine

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/dustmask/dustmask/internal/sdust"
)

func BenchmarkScanContext(b *testing.B) {
	dir := b.TempDir()
	rng := rand.New(rand.NewSource(1))
	const alphabet = "ACGT"
	var body []byte
	for r := 0; r < 16; r++ {
		body = append(body, fmt.Sprintf(">chr%d\n", r)...)
		for i := 0; i < 50_000; i++ {
			body = append(body, alphabet[rng.Intn(4)])
		}
		body = append(body, '\n')
	}
	if err := os.WriteFile(filepath.Join(dir, "bench.fa"), body, 0644); err != nil {
		b.Fatal(err)
	}

	for _, threads := range []int{1, 4} {
		b.Run(fmt.Sprintf("threads_%d", threads), func(b *testing.B) {
			cfg := Config{
				Root:       dir,
				WindowSize: sdust.DefaultWindowSize,
				Threshold:  sdust.DefaultScoreThreshold,
				Threads:    threads,
				NoCache:    true,
			}
			b.SetBytes(int64(len(body)))
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := ScanWithStats(cfg); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

package artifacts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitPath(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected []string
	}{
		{"plain file", "chr1.fa", []string{"chr1.fa"}},
		{"archive member", "refs.zip::chr1.fa", []string{"refs.zip", "chr1.fa"}},
		{"nested archive", "outer.zip::inner.tar::data/chr1.fa", []string{"outer.zip", "inner.tar", "data/chr1.fa"}},
		{"image layer", "ghcr.io/lab/ref:v1::sha256:abc/genome.fa", []string{"ghcr.io/lab/ref:v1", "sha256:abc/genome.fa"}},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitPath(tt.path))
			if tt.path != "" {
				assert.Equal(t, tt.path, JoinPath(tt.expected...))
			}
		})
	}
}

func TestVirtualPathHelpers(t *testing.T) {
	assert.False(t, IsVirtualPath("chr1.fa"))
	assert.True(t, IsVirtualPath("refs.zip::chr1.fa"))

	assert.Equal(t, "refs.zip", RootOf("refs.zip::inner.tar::chr1.fa"))
	assert.Equal(t, "chr1.fa", RootOf("chr1.fa"))

	assert.Equal(t, 0, Depth(""))
	assert.Equal(t, 1, Depth("chr1.fa"))
	assert.Equal(t, 3, Depth("refs.zip::inner.tar::chr1.fa"))
}

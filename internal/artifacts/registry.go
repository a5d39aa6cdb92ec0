package artifacts

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/google/go-containerregistry/pkg/name"
	v1 "github.com/google/go-containerregistry/pkg/v1"
	"github.com/google/go-containerregistry/pkg/v1/remote"
	"github.com/google/go-containerregistry/pkg/v1/tarball"
)

// ScanImage streams the layers of a container image and emits the FASTA
// files they contain, e.g. reference genomes shipped as OCI artifacts. ref is
// either a registry reference ("ghcr.io/org/refs:hg38") or the path of a
// `docker save` tarball. Layers are read one at a time without pulling the
// image to disk; registry credentials come from the local Docker config.
//
// Emitted paths look like "<ref>::sha256:<digest>/<path in layer>".
func ScanImage(ctx context.Context, ref string, limits Limits, stats *Stats, emit EmitFunc) error {
	img, err := loadImage(ctx, ref)
	if err != nil {
		return err
	}
	layers, err := img.Layers()
	if err != nil {
		return fmt.Errorf("failed to get layers for %q: %w", ref, err)
	}

	w := newWalker(ctx, limits, stats, emit)
	for _, layer := range layers {
		if err := w.check(0); err != nil {
			if errors.Is(err, errBudget) {
				return nil
			}
			return err
		}
		digest, err := layer.Digest()
		if err != nil {
			continue
		}
		rc, err := layer.Uncompressed()
		if err != nil {
			return fmt.Errorf("failed to read layer %s: %w", digest, err)
		}
		err = w.tar(JoinPath(ref, digest.String())+"/", rc, 1)
		_ = rc.Close()
		if errors.Is(err, errBudget) {
			return nil
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func loadImage(ctx context.Context, ref string) (v1.Image, error) {
	if st, err := os.Stat(ref); err == nil && !st.IsDir() {
		img, err := tarball.ImageFromPath(ref, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to open image tarball %q: %w", ref, err)
		}
		return img, nil
	}
	r, err := name.ParseReference(ref)
	if err != nil {
		return nil, fmt.Errorf("invalid image reference %q: %w", ref, err)
	}
	img, err := remote.Image(r, remote.WithContext(ctx), remote.WithAuthFromKeychain(authn.DefaultKeychain))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image metadata for %q: %w", ref, err)
	}
	return img, nil
}

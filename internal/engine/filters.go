package engine

import "strings"

var defaultExcludeDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	".venv":        true,
	"venv":         true,
	"__pycache__":  true,
	".snakemake":   true,
	".nextflow":    true,
	"work":         true, // nextflow work dirs
	"conda-meta":   true,
}

// suffixes of index, alignment and binary files that sit next to FASTA data
// and are skipped when AllFiles is set
var defaultExcludeFileSuffixes = []string{
	".fai", ".gzi", ".dict",
	".bam", ".bai", ".cram", ".crai", ".csi", ".tbi",
	".2bit", ".sa", ".bwt", ".pac", ".ann", ".amb",
	".png", ".jpg", ".jpeg", ".gif", ".svg", ".pdf",
	".zip", ".tar", ".tgz", ".7z", ".bz2", ".xz", ".zst",
	".exe", ".dll", ".so", ".pyc",
}

var defaultExcludeFileNames = map[string]bool{
	".DS_Store": true,
}

func isDefaultDirExcluded(name string) bool {
	return defaultExcludeDirs[name] || strings.HasPrefix(name, ".git")
}

func isDefaultFileExcluded(lowerRel string) bool {
	for _, s := range defaultExcludeFileSuffixes {
		if strings.HasSuffix(lowerRel, s) {
			return true
		}
	}
	base := lowerRel
	if i := strings.LastIndex(lowerRel, "/"); i >= 0 {
		base = lowerRel[i+1:]
	}
	return defaultExcludeFileNames[base] || strings.HasPrefix(base, ".dustmask")
}

// Package engine contains the scanning pipeline of dustmask. It selects FASTA
// files under a root, scans every record for low-complexity regions and
// returns them with per-record summaries. FASTA members of archives and
// container images are scanned through internal/artifacts, and a git base
// revision can narrow the scan to changed files. This package is internal;
// external consumers should use the stable facade in pkg/dust.
package engine

// Package dust provides a small, stable facade over dustmask's internal
// packages for external programs. It exposes the Masker type for single
// sequences and re-exports a narrow slice of the file-scanning engine.
//
// Example:
//
//	m, err := dust.New("ACGTACGTAAAAAAAAAAAAAAAAAAAAAAAAGCTA")
//	if err != nil { /* handle */ }
//	fmt.Println(m.Intervals(), m.Mask(false))
//
//	regions, err := dust.ScanFiles(dust.Config{Root: "genomes"})
//	if err != nil { /* handle */ }
//	_ = dust.MarshalRegions(os.Stdout, regions)
package dust

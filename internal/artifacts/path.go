package artifacts

import "strings"

// SplitPath splits a virtual path into its components.
// "refs.zip::inner.tar::chr1.fa" -> ["refs.zip", "inner.tar", "chr1.fa"]
func SplitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, Sep)
}

// JoinPath builds a virtual path from components.
func JoinPath(components ...string) string {
	return strings.Join(components, Sep)
}

// IsVirtualPath reports whether path names something inside an archive or image.
func IsVirtualPath(path string) bool {
	return strings.Contains(path, Sep)
}

// RootOf returns the outermost archive or image of a virtual path, or path
// itself when it is a plain file.
func RootOf(path string) string {
	if i := strings.Index(path, Sep); i >= 0 {
		return path[:i]
	}
	return path
}

// Depth returns how many components path has; a plain file has depth 1.
func Depth(path string) int {
	return len(SplitPath(path))
}

// Package ignore matches paths against .dustmaskignore patterns.
package ignore

import (
	"bufio"
	"errors"
	"io/fs"
	"os"
	"path"
	"strings"

	doublestar "github.com/bmatcuk/doublestar/v4"
)

// FileName is the ignore file looked up at the scan root.
const FileName = ".dustmaskignore"

// Matcher holds ignore patterns. The zero value matches nothing.
type Matcher struct {
	dirs  []string
	globs []string
}

// Load reads patterns from path, one per line. Blank lines and lines starting
// with '#' are skipped. A missing file yields an empty matcher.
func Load(p string) (Matcher, error) {
	var m Matcher
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return m, nil
		}
		return m, err
	}
	defer func() { _ = f.Close() }()
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		m.Add(sc.Text())
	}
	return m, sc.Err()
}

// Add appends a single pattern. A trailing '/' marks a directory prefix.
func (m *Matcher) Add(pattern string) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" || strings.HasPrefix(pattern, "#") {
		return
	}
	pattern = strings.TrimPrefix(pattern, "./")
	if strings.HasSuffix(pattern, "/") {
		m.dirs = append(m.dirs, strings.TrimSuffix(pattern, "/"))
		return
	}
	m.globs = append(m.globs, pattern)
}

// Match reports whether rel (slash or OS separated) is ignored.
func (m Matcher) Match(rel string) bool {
	rel = strings.ReplaceAll(rel, "\\", "/")
	for _, d := range m.dirs {
		if rel == d || strings.HasPrefix(rel, d+"/") || strings.Contains(rel, "/"+d+"/") {
			return true
		}
	}
	base := path.Base(rel)
	for _, g := range m.globs {
		if ok, _ := doublestar.Match(g, rel); ok {
			return true
		}
		if ok, _ := doublestar.Match(g, base); ok {
			return true
		}
	}
	return false
}

// Empty reports whether the matcher holds no patterns.
func (m Matcher) Empty() bool { return len(m.dirs) == 0 && len(m.globs) == 0 }

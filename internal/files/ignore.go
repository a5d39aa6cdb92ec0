package files

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// AppendIgnore ensures the given pattern is present in .gitignore at repoRoot.
// It creates the file if missing and appends a newline if needed. Idempotent.
func AppendIgnore(repoRoot, pattern string) error {
	path := filepath.Join(repoRoot, ".gitignore")
	existing := map[string]bool{}
	endsWithNewline := true
	if b, err := os.ReadFile(path); err == nil {
		sc := bufio.NewScanner(strings.NewReader(string(b)))
		for sc.Scan() {
			existing[strings.TrimSpace(sc.Text())] = true
		}
		endsWithNewline = len(b) == 0 || b[len(b)-1] == '\n'
	}
	if existing[pattern] {
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	line := pattern + "\n"
	if !endsWithNewline {
		line = "\n" + line
	}
	_, err = f.WriteString(line)
	return err
}

// StateFiles returns the files dustmask may write into a scanned directory
// when it has no .git directory to hide them in.
func StateFiles() []string {
	return []string{
		".dustmaskcache.json",
		".dustmask_last_scan.json",
		".dustmask_audit.jsonl",
	}
}

// Package git reads repository state for scan roots that live inside a git
// work tree: provenance for audit records and the set of files changed since
// a base revision.
package git

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/merkletrie"
)

// Metadata identifies the repository state a scan ran against.
type Metadata struct {
	Repo   string
	Commit string
	Branch string
}

// validateRoot validates and normalizes a git repository root path.
func validateRoot(root string) (string, error) {
	if strings.ContainsRune(root, 0) {
		return "", fmt.Errorf("invalid path: contains null byte")
	}
	abs, err := filepath.Abs(filepath.Clean(root))
	if err != nil {
		return "", fmt.Errorf("invalid path %q: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("cannot access path %q: %w", root, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("path is not a directory: %s", root)
	}
	return abs, nil
}

func open(root string) (*gogit.Repository, string, error) {
	abs, err := validateRoot(root)
	if err != nil {
		return nil, "", err
	}
	repo, err := gogit.PlainOpenWithOptions(abs, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, "", fmt.Errorf("open repository at %s: %w", root, err)
	}
	return repo, abs, nil
}

// RepoMetadata returns repo, commit and branch for root, best-effort.
// Fields are empty when root is not inside a repository or when the value
// cannot be determined (no origin remote, unborn HEAD, detached HEAD).
func RepoMetadata(root string) Metadata {
	var md Metadata
	repo, _, err := open(root)
	if err != nil {
		return md
	}
	if remote, err := repo.Remote("origin"); err == nil && len(remote.Config().URLs) > 0 {
		md.Repo = shortRepo(remote.Config().URLs[0])
	}
	if head, err := repo.Head(); err == nil {
		md.Commit = head.Hash().String()
		if head.Name().IsBranch() {
			md.Branch = head.Name().Short()
		}
	}
	return md
}

// shortRepo keeps owner/name from a remote URL when possible.
func shortRepo(url string) string {
	s := strings.TrimSuffix(strings.TrimSpace(url), ".git")
	if i := strings.Index(s, "github.com/"); i >= 0 {
		return s[i+len("github.com/"):]
	}
	if !strings.Contains(s, "://") {
		if i := strings.LastIndex(s, ":"); i >= 0 {
			s = s[i+1:]
		}
	}
	return s
}

// ChangedFiles lists files that differ from the base revision: files added
// or modified in commits between base and HEAD, plus staged, modified and
// untracked files in the work tree. Deleted files are left out. Paths are
// slash-separated and relative to root; files outside root are dropped.
func ChangedFiles(root, base string) ([]string, error) {
	repo, abs, err := open(root)
	if err != nil {
		return nil, err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("worktree: %w", err)
	}
	top := wt.Filesystem.Root()

	changed := map[string]bool{}
	if err := committedChanges(repo, base, changed); err != nil {
		return nil, err
	}
	status, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("worktree status: %w", err)
	}
	for p, st := range status {
		if st.Worktree == gogit.Deleted || (st.Staging == gogit.Deleted && st.Worktree == gogit.Unmodified) {
			delete(changed, p)
			continue
		}
		if st.Worktree != gogit.Unmodified || st.Staging != gogit.Unmodified {
			changed[p] = true
		}
	}

	absRoot := resolve(abs)
	absTop := resolve(top)
	out := make([]string, 0, len(changed))
	for p := range changed {
		rel, err := filepath.Rel(absRoot, filepath.Join(absTop, filepath.FromSlash(p)))
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		out = append(out, filepath.ToSlash(rel))
	}
	sort.Strings(out)
	return out, nil
}

func committedChanges(repo *gogit.Repository, base string, into map[string]bool) error {
	head, err := repo.Head()
	if err != nil {
		return fmt.Errorf("resolve HEAD: %w", err)
	}
	baseHash, err := repo.ResolveRevision(plumbing.Revision(base))
	if err != nil {
		return fmt.Errorf("resolve %q: %w", base, err)
	}
	baseTree, err := treeOf(repo, *baseHash)
	if err != nil {
		return err
	}
	headTree, err := treeOf(repo, head.Hash())
	if err != nil {
		return err
	}
	changes, err := object.DiffTree(baseTree, headTree)
	if err != nil {
		return fmt.Errorf("diff %s..HEAD: %w", base, err)
	}
	for _, c := range changes {
		action, err := c.Action()
		if err != nil {
			return err
		}
		if action == merkletrie.Delete {
			continue
		}
		into[c.To.Name] = true
	}
	return nil
}

func treeOf(repo *gogit.Repository, h plumbing.Hash) (*object.Tree, error) {
	commit, err := repo.CommitObject(h)
	if err != nil {
		return nil, fmt.Errorf("commit %s: %w", h, err)
	}
	return commit.Tree()
}

// resolve follows symlinks so temp dirs like /var -> /private/var compare equal.
func resolve(p string) string {
	if r, err := filepath.EvalSymlinks(p); err == nil {
		return r
	}
	return p
}

package git

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

type testRepo struct {
	t    *testing.T
	dir  string
	repo *gogit.Repository
	wt   *gogit.Worktree
}

func newTestRepo(t *testing.T) *testRepo {
	t.Helper()
	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	if err != nil {
		t.Fatal(err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatal(err)
	}
	return &testRepo{t: t, dir: dir, repo: repo, wt: wt}
}

func (r *testRepo) write(name, content string) {
	r.t.Helper()
	p := filepath.Join(r.dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		r.t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		r.t.Fatal(err)
	}
}

func (r *testRepo) commit(msg string, names ...string) plumbing.Hash {
	r.t.Helper()
	for _, n := range names {
		if _, err := r.wt.Add(n); err != nil {
			r.t.Fatal(err)
		}
	}
	h, err := r.wt.Commit(msg, &gogit.CommitOptions{
		Author: &object.Signature{Name: "tester", Email: "test@example.com", When: time.Now()},
	})
	if err != nil {
		r.t.Fatal(err)
	}
	return h
}

func TestRepoMetadata(t *testing.T) {
	r := newTestRepo(t)
	r.write("ref.fa", ">a\nACGT\n")
	h := r.commit("base", "ref.fa")
	if _, err := r.repo.CreateRemote(&config.RemoteConfig{
		Name: "origin",
		URLs: []string{"git@github.com:acme/genomes.git"},
	}); err != nil {
		t.Fatal(err)
	}

	md := RepoMetadata(r.dir)
	if md.Commit != h.String() {
		t.Fatalf("commit = %q, want %q", md.Commit, h.String())
	}
	if md.Branch != "master" {
		t.Fatalf("branch = %q", md.Branch)
	}
	if md.Repo != "acme/genomes" {
		t.Fatalf("repo = %q", md.Repo)
	}
}

func TestRepoMetadata_NotARepo(t *testing.T) {
	if md := RepoMetadata(t.TempDir()); md != (Metadata{}) {
		t.Fatalf("expected empty metadata, got %+v", md)
	}
}

func TestShortRepo(t *testing.T) {
	cases := map[string]string{
		"https://github.com/acme/genomes.git": "acme/genomes",
		"git@gitlab.com:lab/refs.git":         "lab/refs",
		"https://example.org/lab/refs":        "https://example.org/lab/refs",
	}
	for in, want := range cases {
		if got := shortRepo(in); got != want {
			t.Errorf("shortRepo(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestChangedFiles(t *testing.T) {
	r := newTestRepo(t)
	r.write("old.fa", ">a\nACGT\n")
	r.write("gone.fa", ">b\nACGT\n")
	base := r.commit("base", "old.fa", "gone.fa")

	r.write("data/new.fa", ">c\nAAAA\n")
	if _, err := r.wt.Remove("gone.fa"); err != nil {
		t.Fatal(err)
	}
	r.commit("change", "data/new.fa")

	r.write("old.fa", ">a\nACGTACGT\n")
	r.write("untracked.fa", ">d\nTTTT\n")

	got, err := ChangedFiles(r.dir, base.String())
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"data/new.fa", "old.fa", "untracked.fa"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestChangedFiles_Subdirectory(t *testing.T) {
	r := newTestRepo(t)
	r.write("top.fa", ">a\nACGT\n")
	base := r.commit("base", "top.fa")
	r.write("data/in.fa", ">b\nAAAA\n")
	r.write("top.fa", ">a\nAAAA\n")

	got, err := ChangedFiles(filepath.Join(r.dir, "data"), base.String())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != "in.fa" {
		t.Fatalf("got %v, want [in.fa]", got)
	}
}

func TestChangedFiles_Errors(t *testing.T) {
	if _, err := ChangedFiles(t.TempDir(), "HEAD"); err == nil {
		t.Fatal("expected error outside a repository")
	}
	r := newTestRepo(t)
	r.write("a.fa", ">a\nACGT\n")
	r.commit("base", "a.fa")
	if _, err := ChangedFiles(r.dir, "no-such-branch"); err == nil {
		t.Fatal("expected error for unknown revision")
	}
	if _, err := ChangedFiles(filepath.Join(r.dir, "a.fa"), "HEAD"); err == nil {
		t.Fatal("expected error for a file root")
	}
}

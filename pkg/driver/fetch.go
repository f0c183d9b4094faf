package driver

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Fetcher materializes suite sources as pinned git checkouts under a cache
// directory. A source already present at its resolved revision is reused.
type Fetcher struct {
	cacheDir string
}

// NewFetcher creates a fetcher caching under dir.
func NewFetcher(dir string) *Fetcher {
	return &Fetcher{cacheDir: dir}
}

// Fetch ensures the named source is checked out and returns the checkout
// directory.
func (f *Fetcher) Fetch(name string, spec *SourceSpec) (string, error) {
	if f == nil || f.cacheDir == "" {
		return "", fmt.Errorf("fetch %s: no cache directory configured", name)
	}
	if spec == nil || spec.Git == "" {
		return "", fmt.Errorf("fetch %s: git URL required", name)
	}

	revision, descriptor, err := revisionFromSpec(spec)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", name, err)
	}

	baseDir := filepath.Join(f.cacheDir, "sources", sanitizeSegment(name))
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return "", err
	}

	// An explicit rev pin can be satisfied from the cache without cloning.
	if spec.Rev != "" {
		existing := filepath.Join(baseDir, sanitizeSegment(spec.Rev))
		if _, err := os.Stat(existing); err == nil {
			return existing, nil
		}
	}

	tmpDir, err := os.MkdirTemp(baseDir, "fetch-*")
	if err != nil {
		return "", err
	}
	if err := os.RemoveAll(tmpDir); err != nil {
		return "", err
	}

	repo, err := git.PlainClone(tmpDir, false, &git.CloneOptions{URL: spec.Git})
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", fmt.Errorf("git clone %s: %w", spec.Git, err)
	}

	hash, err := repo.ResolveRevision(revision)
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", fmt.Errorf("resolve revision %s: %w", descriptor, err)
	}

	targetDir := filepath.Join(baseDir, sanitizeSegment(hash.String()))
	if _, err := os.Stat(targetDir); err == nil {
		_ = os.RemoveAll(tmpDir)
		return targetDir, nil
	}

	worktree, err := repo.Worktree()
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", err
	}
	if err := worktree.Checkout(&git.CheckoutOptions{Hash: *hash, Force: true}); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", fmt.Errorf("git checkout %s: %w", descriptor, err)
	}

	if err := os.Rename(tmpDir, targetDir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return "", err
	}
	return targetDir, nil
}

func revisionFromSpec(spec *SourceSpec) (plumbing.Revision, string, error) {
	if spec.Rev != "" {
		return plumbing.Revision(spec.Rev), spec.Rev, nil
	}
	if spec.Tag != "" {
		return plumbing.Revision("refs/tags/" + spec.Tag), spec.Tag, nil
	}
	if spec.Branch != "" {
		return plumbing.Revision("refs/heads/" + spec.Branch), spec.Branch, nil
	}
	return "", "", fmt.Errorf("sources require rev, tag, or branch")
}

func sanitizeSegment(segment string) string {
	segment = strings.TrimSpace(segment)
	if segment == "" {
		return "default"
	}
	var b strings.Builder
	for _, r := range segment {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	return b.String()
}

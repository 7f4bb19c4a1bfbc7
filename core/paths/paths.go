// Package paths resolves the process-wide locations that script search
// directories are relative to: the user's home directory and the root of the
// enclosing git working tree.
package paths

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	homedir "github.com/mitchellh/go-homedir"
)

// HomeMarker is the prefix replaced by the user's home directory.
const HomeMarker = "~"

// HomeFunc looks up the current user's home directory.
type HomeFunc func() (string, error)

// RootFunc looks up the root of the enclosing working tree. ok is false when
// there is none.
type RootFunc func() (root string, ok bool, err error)

// Environment holds the external lookups path resolution depends on.
type Environment struct {
	Home HomeFunc
	Root RootFunc
}

// System returns the Environment of the running process.
func System() Environment {
	return Environment{
		Home: homedir.Dir,
		Root: GitRoot,
	}
}

// Fixed returns an Environment with a constant home directory and working
// tree root. An empty root means "not inside a repository".
func Fixed(home, root string) Environment {
	return Environment{
		Home: func() (string, error) {
			return home, nil
		},
		Root: func() (string, bool, error) {
			return root, root != "", nil
		},
	}
}

// ExtendHome replaces a leading "~" path component with the home directory.
// Paths without the marker are returned unchanged. If the home directory
// can't be determined the remainder is returned relative to "".
func (e Environment) ExtendHome(path string) string {
	rest, ok := stripHome(path)
	if !ok {
		return path
	}

	var home string
	if e.Home != nil {
		// Best effort, an unknown home leaves an empty base.
		home, _ = e.Home()
	}

	if rest == "" {
		return home
	}
	return filepath.Join(home, rest)
}

// VCSRoot returns the root of the working tree containing the working
// directory.
func (e Environment) VCSRoot() (string, bool, error) {
	if e.Root == nil {
		return "", false, nil
	}
	return e.Root()
}

// ExtendHome expands path against the process's home directory.
func ExtendHome(path string) string {
	return System().ExtendHome(path)
}

// GitRoot returns the working tree root of the git repository at or above
// the current working directory.
func GitRoot() (string, bool, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", false, err
	}
	return GitRootFrom(wd)
}

// GitRootFrom returns the working tree root of the git repository at or
// above dir. Bare repositories have no working tree and report ok=false.
func GitRootFrom(dir string) (string, bool, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		// git.ErrRepositoryNotExists as well as unreadable repositories:
		// either way there's no working tree to search.
		return "", false, nil
	}

	wt, err := repo.Worktree()
	if errors.Is(err, git.ErrIsBareRepository) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	return wt.Filesystem.Root(), true, nil
}

func stripHome(path string) (string, bool) {
	if path == HomeMarker {
		return "", true
	}

	for _, sep := range separators() {
		if prefix := HomeMarker + sep; strings.HasPrefix(path, prefix) {
			return strings.TrimLeft(path[len(prefix):], sep), true
		}
	}

	return "", false
}

func separators() []string {
	if filepath.Separator == '/' {
		return []string{"/"}
	}
	return []string{string(filepath.Separator), "/"}
}

package scripts

import (
	"path/filepath"

	"github.com/devscripts/devscripts/core/config"
	"github.com/devscripts/devscripts/core/paths"
)

// Tier is one of the priority levels of script directories.
type Tier int

const (
	TierRepository Tier = iota
	TierUser
	TierSystem
)

func (t Tier) String() string {
	switch t {
	case TierRepository:
		return "repository"
	case TierUser:
		return "user"
	case TierSystem:
		return "system"
	default:
		return "unknown"
	}
}

// Directory is a resolved script search directory.
type Directory struct {
	Path string
	Tier Tier
}

// Directories resolves the configured search directories in priority order:
// repository directories (only inside a working tree), then user
// directories, then system directories. Each tier keeps its configured
// order. Directory contents aren't read.
func Directories(cfg *config.Configuration, env paths.Environment) ([]Directory, error) {
	scripts := cfg.Paths.Scripts
	dirs := make([]Directory, 0, len(scripts.Repository)+len(scripts.User)+len(scripts.System))

	root, ok, err := env.VCSRoot()
	if err != nil {
		return nil, err
	}
	if ok {
		for _, p := range scripts.Repository {
			dirs = append(dirs, Directory{Path: joinRoot(root, p), Tier: TierRepository})
		}
	}

	for _, p := range scripts.User {
		dirs = append(dirs, Directory{Path: env.ExtendHome(p), Tier: TierUser})
	}

	for _, p := range scripts.System {
		dirs = append(dirs, Directory{Path: p, Tier: TierSystem})
	}

	return dirs, nil
}

// joinRoot places p under root unless p is already absolute.
func joinRoot(root, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

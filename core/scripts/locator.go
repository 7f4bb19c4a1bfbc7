// Package scripts finds script files in the configured search directories
// and runs them.
package scripts

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/devscripts/devscripts/core/config"
	"github.com/devscripts/devscripts/core/paths"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// Locator searches script directories. Every call reads the filesystem
// again, nothing is cached between calls.
type Locator struct {
	Fs  afero.Fs
	Env paths.Environment
	Log zerolog.Logger
}

// NewLocator creates a Locator for the host filesystem and process
// environment.
func NewLocator() *Locator {
	return &Locator{
		Fs:  afero.NewOsFs(),
		Env: paths.System(),
		Log: zerolog.Nop(),
	}
}

// Directories resolves the search directories for cfg.
func (l *Locator) Directories(cfg *config.Configuration) ([]Directory, error) {
	return Directories(cfg, l.Env)
}

// FindScript returns the path of the first regular file called name in the
// search directories. Higher priority directories win, no later directory is
// read once a match is found. Missing directories are skipped; any other
// error aborts the search.
func (l *Locator) FindScript(name string, cfg *config.Configuration) (string, bool, error) {
	if !ValidName(name) {
		l.Log.Debug().Str("script", name).Msg("not a valid script name")
		return "", false, nil
	}

	dirs, err := l.Directories(cfg)
	if err != nil {
		return "", false, err
	}

	for _, dir := range dirs {
		entries, err := l.readDir(dir)
		if err != nil {
			return "", false, err
		}

		for _, entry := range entries {
			if entry.Mode().IsRegular() && entry.Name() == name {
				script, err := filepath.Abs(filepath.Join(dir.Path, entry.Name()))
				if err != nil {
					return "", false, err
				}

				l.Log.Debug().Str("script", script).Stringer("tier", dir.Tier).Msg("found script")
				return script, true, nil
			}
		}
	}

	return "", false, nil
}

// ScriptExists reports whether FindScript finds name. Errors count as not
// found; use FindScript to see them.
func (l *Locator) ScriptExists(name string, cfg *config.Configuration) bool {
	_, found, err := l.FindScript(name, cfg)
	return err == nil && found
}

// AllScripts returns the names of all regular files in every search
// directory, deduplicated and sorted. The result says which names can be
// run, not which directory each one resolves to.
func (l *Locator) AllScripts(cfg *config.Configuration) ([]string, error) {
	dirs, err := l.Directories(cfg)
	if err != nil {
		return nil, err
	}

	set := make(map[string]struct{})
	for _, dir := range dirs {
		entries, err := l.readDir(dir)
		if err != nil {
			return nil, err
		}

		for _, entry := range entries {
			if entry.Mode().IsRegular() {
				set[entry.Name()] = struct{}{}
			}
		}
	}

	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)

	return names, nil
}

// readDir lists a directory without following symlinks. A missing
// directory reads as empty.
func (l *Locator) readDir(dir Directory) ([]os.FileInfo, error) {
	entries, err := afero.ReadDir(l.Fs, dir.Path)
	if errors.Is(err, fs.ErrNotExist) {
		l.Log.Debug().Str("dir", dir.Path).Stringer("tier", dir.Tier).Msg("skipping missing directory")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	l.Log.Debug().Str("dir", dir.Path).Stringer("tier", dir.Tier).Int("entries", len(entries)).Msg("searched directory")
	return entries, nil
}

// ValidName reports whether name can refer to a file directly inside a
// search directory. Names containing a path separator, "." and ".." never
// match anything.
func ValidName(name string) bool {
	switch name {
	case "", ".", "..":
		return false
	}
	return !strings.ContainsRune(name, '/') && !strings.ContainsRune(name, filepath.Separator)
}

var defaultLocator = NewLocator()

// FindScript searches the host filesystem; see Locator.FindScript.
func FindScript(name string, cfg *config.Configuration) (string, bool, error) {
	return defaultLocator.FindScript(name, cfg)
}

// ScriptExists checks the host filesystem; see Locator.ScriptExists.
func ScriptExists(name string, cfg *config.Configuration) bool {
	return defaultLocator.ScriptExists(name, cfg)
}

// AllScripts lists scripts on the host filesystem; see Locator.AllScripts.
func AllScripts(cfg *config.Configuration) ([]string, error) {
	return defaultLocator.AllScripts(cfg)
}

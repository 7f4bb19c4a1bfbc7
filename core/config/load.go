package config

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/devscripts/devscripts/core/paths"
	"github.com/spf13/afero"
)

const (
	// SystemConfigPath is the system-wide configuration file.
	SystemConfigPath = "/etc/devscripts/config.toml"
	// UserConfigPath is the per-user configuration file.
	UserConfigPath = "~/.config/devscripts/config.toml"
	// RepositoryConfigName is the configuration file at the root of a
	// repository.
	RepositoryConfigName = ".devscripts.toml"
)

// ErrMissingFile is returned when a required configuration file doesn't
// exist.
var ErrMissingFile = fmt.Errorf("required file does not exist: %w", fs.ErrNotExist)

// Source is a configuration file to merge. Reading fails if a Required
// source is missing, other missing sources are skipped.
type Source struct {
	Path     string
	Required bool
}

// DefaultSources returns the system, user and repository configuration
// files in merge order. None of them are required.
func DefaultSources(env paths.Environment) []Source {
	sources := []Source{
		{Path: SystemConfigPath},
		{Path: env.ExtendHome(UserConfigPath)},
	}

	// Best effort, a broken working directory just loses the repository
	// layer.
	if root, ok, err := env.VCSRoot(); err == nil && ok {
		sources = append(sources, Source{Path: filepath.Join(root, RepositoryConfigName)})
	}

	return sources
}

// Reader merges configuration from multiple files on top of the defaults.
// Files added later override values from files added earlier.
type Reader struct {
	fs      afero.Fs
	sources []Source
}

// NewReader creates a Reader without any sources.
func NewReader(fs afero.Fs) *Reader {
	return &Reader{fs: fs}
}

// Add a configuration file. The order sources are added in is their merge
// order.
func (r *Reader) Add(path string, required bool) *Reader {
	r.sources = append(r.sources, Source{Path: path, Required: required})
	return r
}

// AddSources adds several configuration files in order.
func (r *Reader) AddSources(sources ...Source) *Reader {
	r.sources = append(r.sources, sources...)
	return r
}

// Read all sources and build the merged configuration.
//
// A list set in a file replaces the list from earlier layers entirely; keys
// a file doesn't set keep their earlier value.
func (r *Reader) Read() (*Configuration, error) {
	cfg := Default()

	for _, src := range r.sources {
		exists, err := afero.Exists(r.fs, src.Path)
		if err != nil {
			return nil, fmt.Errorf("config load failed (%s): %w", src.Path, err)
		}

		if !exists {
			if !src.Required {
				continue
			}
			return nil, fmt.Errorf("config load failed (%s): %w", src.Path, ErrMissingFile)
		}

		if err := r.merge(cfg, src.Path); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (r *Reader) merge(cfg *Configuration, path string) error {
	data, err := afero.ReadFile(r.fs, path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}

	var layer Configuration
	md, err := toml.Decode(string(data), &layer)
	if err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		var keys []string
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		return fmt.Errorf("config parse failed (%s): unknown keys: %s", path, strings.Join(keys, ", "))
	}

	scripts := &cfg.Paths.Scripts
	if md.IsDefined("paths", "scripts", "system") {
		scripts.System = layer.Paths.Scripts.System
	}
	if md.IsDefined("paths", "scripts", "user") {
		scripts.User = layer.Paths.Scripts.User
	}
	if md.IsDefined("paths", "scripts", "repository") {
		scripts.Repository = layer.Paths.Scripts.Repository
	}

	return nil
}

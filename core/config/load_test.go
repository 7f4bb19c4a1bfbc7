package config

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/devscripts/devscripts/core/paths"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, fsys afero.Fs, name, contents string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fsys, name, []byte(contents), 0644))
}

func TestReader_noSources(t *testing.T) {
	cfg, err := NewReader(afero.NewMemMapFs()).Read()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestReader_layers(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "/etc/a.toml", `
[paths.scripts]
system = ["/opt/a"]
user = ["~/a"]
`)
	writeFile(t, fsys, "/etc/b.toml", `
[paths.scripts]
user = ["~/b1", "~/b2"]
`)

	cfg, err := NewReader(fsys).
		Add("/etc/a.toml", true).
		Add("/etc/b.toml", true).
		Read()
	require.NoError(t, err)

	scripts := cfg.Paths.Scripts
	assert.Equal(t, []string{"/opt/a"}, scripts.System, "earlier layer kept")
	assert.Equal(t, []string{"~/b1", "~/b2"}, scripts.User, "later layer replaces the list")
	assert.Equal(t, []string{"./.devscripts"}, scripts.Repository, "default kept")
}

func TestReader_emptyListDisablesTier(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "/c.toml", `
[paths.scripts]
system = []
`)

	cfg, err := NewReader(fsys).Add("/c.toml", true).Read()
	require.NoError(t, err)
	assert.Empty(t, cfg.Paths.Scripts.System)
	assert.Equal(t, Default().Paths.Scripts.User, cfg.Paths.Scripts.User)
}

func TestReader_missingFiles(t *testing.T) {
	t.Run("optional", func(t *testing.T) {
		cfg, err := NewReader(afero.NewMemMapFs()).Add("/nope.toml", false).Read()
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("required", func(t *testing.T) {
		_, err := NewReader(afero.NewMemMapFs()).Add("/nope.toml", true).Read()
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMissingFile))
		assert.True(t, errors.Is(err, fs.ErrNotExist))
		assert.Contains(t, err.Error(), "/nope.toml")
	})
}

func TestReader_invalidFiles(t *testing.T) {
	cases := map[string]string{
		"malformed":     "[paths.scripts\nsystem = 1",
		"wrong type":    "[paths.scripts]\nsystem = \"/opt\"",
		"unknown key":   "[paths.scripts]\nsytem = [\"/opt\"]",
		"unknown table": "[theme]\ncolor = \"red\"",
		"empty entry":   "[paths.scripts]\nuser = [\"\"]",
	}

	for tn, contents := range cases {
		t.Run(tn, func(t *testing.T) {
			fsys := afero.NewMemMapFs()
			writeFile(t, fsys, "/bad.toml", contents)

			_, err := NewReader(fsys).Add("/bad.toml", false).Read()
			assert.Error(t, err)
		})
	}
}

func TestReader_unknownKeyNamed(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "/bad.toml", "[paths.scripts]\nsytem = [\"/opt\"]")

	_, err := NewReader(fsys).Add("/bad.toml", false).Read()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "paths.scripts.sytem")
	assert.Contains(t, err.Error(), "/bad.toml")
}

func TestDefaultSources(t *testing.T) {
	t.Run("outside repository", func(t *testing.T) {
		sources := DefaultSources(paths.Fixed("/home/u", ""))
		assert.Equal(t, []Source{
			{Path: "/etc/devscripts/config.toml"},
			{Path: "/home/u/.config/devscripts/config.toml"},
		}, sources)
	})

	t.Run("inside repository", func(t *testing.T) {
		sources := DefaultSources(paths.Fixed("/home/u", "/src/project"))
		assert.Equal(t, []Source{
			{Path: "/etc/devscripts/config.toml"},
			{Path: "/home/u/.config/devscripts/config.toml"},
			{Path: "/src/project/.devscripts.toml"},
		}, sources)
	})

	t.Run("root lookup fails", func(t *testing.T) {
		env := paths.Fixed("/home/u", "")
		env.Root = func() (string, bool, error) {
			return "", false, errors.New("getwd failed")
		}
		assert.Len(t, DefaultSources(env), 2)
	})
}

// Package config holds the script search configuration and reads it from
// layered TOML files.
package config

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"sigs.k8s.io/yaml"
)

// Configuration is the top level configuration.
type Configuration struct {
	// Paths specifies paths or lists of paths.
	Paths Paths `toml:"paths" json:"paths"`
}

// Paths holds options that are paths or lists of paths.
type Paths struct {
	// Scripts holds the search paths for script files.
	Scripts ScriptPaths `toml:"scripts" json:"scripts"`
}

// ScriptPaths holds the search directories for each tier. Order within a
// list is the search priority inside that tier.
type ScriptPaths struct {
	// System lists directories containing system-wide scripts.
	System []string `toml:"system" json:"system" validate:"dive,required"`

	// User lists directories containing user-specific scripts. A leading
	// "~" is replaced with the home directory.
	User []string `toml:"user" json:"user" validate:"dive,required"`

	// Repository lists directories relative to the root of the enclosing
	// git working tree. Ignored outside of a repository.
	Repository []string `toml:"repository" json:"repository" validate:"dive,required"`
}

// Default returns the configuration used when no file overrides a value.
func Default() *Configuration {
	return &Configuration{
		Paths: Paths{
			Scripts: ScriptPaths{
				System: []string{
					"/usr/share/devscripts",
					"/usr/local/share/devscripts",
				},
				User:       []string{"~/.local/share/devscripts"},
				Repository: []string{"./.devscripts"},
			},
		},
	}
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("toml"), ",", 2)[0]
		return name
	})

	return validate.Struct(c)
}

// Format is an encoding the configuration can be written in.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// Formats lists the supported encodings.
var Formats = []Format{FormatTOML, FormatYAML}

// Encode the configuration in the given format.
func (c *Configuration) Encode(format Format) ([]byte, error) {
	switch format {
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(c); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatYAML:
		return yaml.Marshal(c)
	default:
		return nil, fmt.Errorf("unknown config format %q, expected one of %q", format, Formats)
	}
}

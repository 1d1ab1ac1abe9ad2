// Package config loads simulator configuration files. YAML (.yaml, .yml) and TOML
// (.toml) are accepted; both map onto the same File structure.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"
)

// ErrUnsupportedFormat is returned for files that are neither YAML nor TOML.
var ErrUnsupportedFormat = errors.New("config: unsupported file format")

// File is the root of a simulator configuration file.
type File struct {
	Log       Log       `yaml:"log" toml:"log"`
	Encoding  Encoding  `yaml:"encoding" toml:"encoding"`
	Transport Transport `yaml:"transport" toml:"transport"`
	Send      Send      `yaml:"send" toml:"send"`
	Targets   []Target  `yaml:"targets" toml:"targets"`
}

// Load reads, defaults and validates the configuration file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config load failed (%s): %w", path, err)
	}

	f, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	return f, nil
}

// Parse decodes data in the format named by ext (".yaml", ".yml" or ".toml"), then
// applies defaults and validates the result.
func Parse(data []byte, ext string) (*File, error) {
	var f File

	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), &f); err != nil {
			return nil, fmt.Errorf("parse toml: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	f.setDefaults()
	if err := f.Validate(); err != nil {
		return nil, err
	}

	return &f, nil
}

// Default returns the configuration used when no file is given.
func Default() *File {
	var f File
	f.setDefaults()

	return &f
}

func (f *File) setDefaults() {
	f.Log.setDefaults()
	f.Encoding.setDefaults()
	f.Transport.setDefaults()
	f.Send.setDefaults()
	for i := range f.Targets {
		f.Targets[i].setDefaults(i)
	}
}

// Validate checks every section and reports all problems at once. Callers that
// modify a loaded File call it again before use.
func (f *File) Validate() error {
	var allErrors []error

	allErrors = append(allErrors, f.Log.validate()...)
	allErrors = append(allErrors, f.Transport.validate()...)
	allErrors = append(allErrors, f.Send.validate()...)

	seen := make(map[string]int, len(f.Targets))
	for i := range f.Targets {
		t := &f.Targets[i]
		for _, err := range t.validate() {
			allErrors = append(allErrors, fmt.Errorf("targets[%d] %v", i, err))
		}
		if j, dup := seen[t.Name]; dup {
			allErrors = append(allErrors, fmt.Errorf("targets[%d] name %q already used by targets[%d]", i, t.Name, j))
		}
		seen[t.Name] = i
	}

	return writeErr(allErrors)
}

func writeErr(allErrors []error) error {
	if len(allErrors) > 0 {
		messages := make([]string, 0, len(allErrors))
		for _, err := range allErrors {
			messages = append(messages, err.Error())
		}

		return fmt.Errorf("validation failed:\n  - %s", strings.Join(messages, "\n  - "))
	}

	return nil
}

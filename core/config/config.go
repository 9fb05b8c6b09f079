// Package config reads the optional ducky settings file.
//
// The file is YAML, validated against an embedded JSON schema before it is
// decoded. Command-line flags override whatever it sets.
package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where the settings file lives unless --config says otherwise.
const DefaultPath = "~/.config/ducky/config.yaml"

// SupportedMajor is the settings format major version this build reads.
const SupportedMajor = "v1"

// Backend names.
const (
	BackendXdotool = "xdotool"
	BackendDryRun  = "dry-run"
)

//go:embed schema.json
var schemaJSON string

var schema = mustCompile()

func mustCompile() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true
	if compiler.Formats == nil {
		compiler.Formats = make(map[string]func(interface{}) bool)
	}
	compiler.Formats["semver"] = func(v interface{}) bool {
		s, ok := v.(string)
		if !ok {
			return true
		}
		return semver.IsValid(canonicalVersion(s))
	}
	compiler.Formats["duration"] = func(v interface{}) bool {
		s, ok := v.(string)
		if !ok {
			return true
		}
		d, err := time.ParseDuration(s)
		return err == nil && d >= 0
	}

	const url = "schema://ducky/config.json"
	if err := compiler.AddResource(url, strings.NewReader(schemaJSON)); err != nil {
		panic(fmt.Sprintf("config schema: %v", err))
	}
	return compiler.MustCompile(url)
}

// canonicalVersion accepts versions with or without the "v" prefix.
func canonicalVersion(s string) string {
	if !strings.HasPrefix(s, "v") {
		return "v" + s
	}
	return s
}

// File is the on-disk settings. Unset fields leave the defaults alone.
type File struct {
	Version      string `yaml:"version"`
	Pause        string `yaml:"pause"`
	FailSafe     *bool  `yaml:"failsafe"`
	DefaultDelay *int   `yaml:"default_delay"`
	LogLevel     string `yaml:"log_level"`
	Backend      string `yaml:"backend"`
}

// Settings are the effective values after the file is applied.
type Settings struct {
	Pause        time.Duration
	FailSafe     bool
	DefaultDelay int
	LogLevel     slog.Level
	Backend      string
}

// Defaults returns the settings used with no file and no flags.
func Defaults() Settings {
	return Settings{
		FailSafe: true,
		LogLevel: slog.LevelWarn,
		Backend:  BackendXdotool,
	}
}

// Error reports a settings file that cannot be used.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Load reads the settings file at path and applies it to the defaults. An
// empty path means DefaultPath, which is allowed to be missing; an explicit
// path must exist.
func Load(path string) (Settings, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	expanded, err := homedir.Expand(path)
	if err != nil {
		return Settings{}, &Error{Path: path, Err: err}
	}

	data, err := os.ReadFile(expanded)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Defaults(), nil
		}
		return Settings{}, &Error{Path: expanded, Err: err}
	}

	f, err := Parse(data)
	if err != nil {
		return Settings{}, &Error{Path: expanded, Err: err}
	}

	s := Defaults()
	if err := f.Apply(&s); err != nil {
		return Settings{}, &Error{Path: expanded, Err: err}
	}
	return s, nil
}

// Parse validates and decodes settings YAML.
func Parse(data []byte) (*File, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decoding settings: %w", err)
	}
	if f.Version != "" && semver.Major(canonicalVersion(f.Version)) != SupportedMajor {
		return nil, fmt.Errorf("unsupported settings version %s (want %s.x)", f.Version, SupportedMajor)
	}
	return &f, nil
}

// Validate checks settings YAML against the schema.
func Validate(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing settings: %w", err)
	}
	if doc == nil {
		return nil
	}

	// Round-trip through JSON so the validator sees JSON types.
	js, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("parsing settings: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(js))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("parsing settings: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	return nil
}

// Apply overlays the fields set in f onto s.
func (f *File) Apply(s *Settings) error {
	if f.Pause != "" {
		d, err := time.ParseDuration(f.Pause)
		if err != nil {
			return fmt.Errorf("pause: %w", err)
		}
		s.Pause = d
	}
	if f.FailSafe != nil {
		s.FailSafe = *f.FailSafe
	}
	if f.DefaultDelay != nil {
		s.DefaultDelay = *f.DefaultDelay
	}
	if f.LogLevel != "" {
		if err := s.LogLevel.UnmarshalText([]byte(f.LogLevel)); err != nil {
			return fmt.Errorf("log_level: %w", err)
		}
	}
	if f.Backend != "" {
		s.Backend = f.Backend
	}
	return nil
}

package config

import (
	"bytes"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/prgm-dev/preen/errors"
	"github.com/prgm-dev/preen/fs"
	"github.com/prgm-dev/preen/patch"
	"github.com/prgm-dev/preen/sync"
)

// Load reads and validates the configuration at path within fsys.
func Load(fsys fs.Filesystem, path string) (*Config, error) {
	return LoadWithOptions(fsys, path, LoadOptions{})
}

// LoadWithOptions reads the configuration at path within fsys, applying
// the given load options.
//
// The function performs the following steps:
//  1. Reads the file through the filesystem abstraction
//  2. Decodes the YAML document, rejecting unknown fields
//  3. Applies defaults for unset fields
//  4. Validates the configuration (unless SkipValidation is set)
//
// All errors are wrapped with context using the errors package.
func LoadWithOptions(fsys fs.Filesystem, path string, opts LoadOptions) (*Config, error) {
	if path == "" {
		path = DefaultFileName
	}

	exists, err := fsys.Exists(path)
	if err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeInvalidConfig,
			"failed to stat configuration", map[string]interface{}{"path": path})
	}
	if !exists {
		return nil, errors.New(errors.CodeNotFound, "configuration file not found: "+path)
	}

	raw, err := fsys.ReadFile(path)
	if err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeInvalidConfig,
			"failed to read configuration", map[string]interface{}{"path": path})
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if decodeErr := dec.Decode(&cfg); decodeErr != nil {
		// An empty file decodes to io.EOF; treat it as a defaults-only
		// configuration rather than a decode failure.
		if !errors.Is(decodeErr, io.EOF) {
			return nil, errors.WrapWithContext(decodeErr, errors.CodeInvalidConfig,
				"failed to decode configuration", map[string]interface{}{"path": path})
		}
	}

	cfg.applyDefaults()

	if !opts.SkipValidation {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset fields.
func (c *Config) applyDefaults() {
	if c.Version == "" {
		c.Version = SupportedVersion
	}
	if c.Staging.Dir == "" {
		c.Staging.Dir = sync.DefaultStagingDir
	}
	if c.Commit.Message == "" {
		c.Commit.Message = "chore: sync generated sources"
	}
	if c.Repo.DefaultBranch == "" {
		c.Repo.DefaultBranch = "main"
	}
	// The trampoline rules are the built-in patch set. An explicit empty
	// list (patches: []) opts out; only an absent key gets the default.
	if c.Patches == nil {
		c.Patches = patch.TrampolineRules()
	}
}

// Package config provides parsing, validation, and convenient access to
// the preen configuration a repository carries in .preen.yaml.
//
// # Basic Usage
//
// Load a configuration from a repository root:
//
//	import (
//	    "github.com/prgm-dev/preen/config"
//	    billyfs "github.com/prgm-dev/preen/fs/billy"
//	)
//
//	func main() {
//	    fs := billyfs.NewOSFS("/path/to/repo")
//
//	    // Load and validate the repository configuration.
//	    cfg, err := config.Load(fs, config.DefaultFileName)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    fmt.Println(cfg.Staging.Dir)
//	    for _, rule := range cfg.Patches {
//	        fmt.Printf("patch %s: %s\n", rule.File, rule.Pattern)
//	    }
//	}
//
// Skip validation during loading:
//
//	cfg, err := config.LoadWithOptions(fs, config.DefaultFileName,
//	    config.LoadOptions{SkipValidation: true})
package config

import "github.com/prgm-dev/preen/patch"

// DefaultFileName is the configuration file looked up at the repository
// root.
const DefaultFileName = ".preen.yaml"

// SupportedVersion defines the configuration version this build supports.
// Configurations outside VersionConstraint fail validation.
const SupportedVersion = "0.1.0"

// VersionConstraint is the semver range of accepted configuration
// versions.
const VersionConstraint = "^0.1"

// Config is the full preen configuration for one repository.
type Config struct {
	// Version is the configuration schema version (semver).
	Version string `yaml:"version"`

	// Repo describes the repository for template rendering.
	Repo Repo `yaml:"repo"`

	// Staging configures the generated-file merge stage.
	Staging Staging `yaml:"staging"`

	// Templates configures the template application stage.
	Templates Templates `yaml:"templates"`

	// Patches are applied in order after sync and templates. When the
	// key is absent the trampoline rules are used; an explicit empty
	// list disables patching.
	Patches []patch.Rule `yaml:"patches"`

	// Upstream identifies the generator-output repository used by the
	// pull command.
	Upstream Upstream `yaml:"upstream"`

	// Commit configures the optional commit of sync results.
	Commit Commit `yaml:"commit"`
}

// Repo describes the repository templates are rendered for.
type Repo struct {
	// Name is the repository or package name.
	Name string `yaml:"name"`

	// DefaultBranch is the repository's default branch.
	DefaultBranch string `yaml:"defaultBranch"`
}

// Staging configures the merge of generated files into the working tree.
type Staging struct {
	// Dir is the staging tree root relative to the repository root.
	Dir string `yaml:"dir"`

	// Excludes are the paths protected from being overwritten.
	Excludes []string `yaml:"excludes"`
}

// Templates configures template application.
type Templates struct {
	// Dir optionally names an on-disk template tree overriding the
	// built-in set.
	Dir string `yaml:"dir"`

	// Excludes are the paths exempt from template regeneration.
	Excludes []string `yaml:"excludes"`
}

// Upstream identifies the repository the generator output is pulled from.
type Upstream struct {
	// URL is the clone URL.
	URL string `yaml:"url"`

	// Branch is the branch to mirror. Defaults to the remote HEAD.
	Branch string `yaml:"branch"`

	// Path is the subtree within the upstream repository that holds this
	// library's staging output.
	Path string `yaml:"path"`
}

// Commit configures the optional commit created after a successful run.
type Commit struct {
	// Message is the commit message.
	Message string `yaml:"message"`

	// Conventional validates the message as a conventional commit before
	// committing.
	Conventional bool `yaml:"conventional"`
}

// LoadOptions tunes configuration loading.
type LoadOptions struct {
	// SkipValidation loads the configuration without validating it.
	SkipValidation bool
}

package config

import (
	"fmt"
	"path"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/prgm-dev/preen/errors"
)

// Validate checks the configuration for problems the YAML decoder cannot
// express: version compatibility, exclude path hygiene, and patch rule
// well-formedness.
func (c *Config) Validate() error {
	if err := c.validateVersion(); err != nil {
		return err
	}

	// Collect all validation errors so a broken config is reported once.
	var validationErrors []string

	for _, p := range c.Staging.Excludes {
		if err := validateExcludePath("staging", p); err != nil {
			validationErrors = append(validationErrors, err.Error())
		}
	}
	for _, p := range c.Templates.Excludes {
		if err := validateExcludePath("templates", p); err != nil {
			validationErrors = append(validationErrors, err.Error())
		}
	}

	for i, rule := range c.Patches {
		if rule.File == "" {
			validationErrors = append(validationErrors,
				fmt.Sprintf("patches[%d]: file is required", i))
			continue
		}
		if _, err := rule.Compile(); err != nil {
			return errors.WrapWithContext(err, errors.CodeInvalidPattern,
				fmt.Sprintf("patches[%d]: pattern does not compile", i),
				map[string]interface{}{"file": rule.File, "pattern": rule.Pattern})
		}
	}

	if len(validationErrors) > 0 {
		return errors.New(errors.CodeInvalidConfig,
			"configuration validation failed: "+strings.Join(validationErrors, "; "))
	}

	return nil
}

// validateVersion gates the declared config version against the range
// this build supports.
func (c *Config) validateVersion() error {
	v, err := semver.NewVersion(c.Version)
	if err != nil {
		return errors.WrapWithContext(err, errors.CodeInvalidConfig,
			"version is not valid semver", map[string]interface{}{"version": c.Version})
	}

	constraint, err := semver.NewConstraint(VersionConstraint)
	if err != nil {
		return errors.Wrap(err, errors.CodeInvalidConfig, "version constraint does not parse")
	}

	if !constraint.Check(v) {
		return errors.New(errors.CodeUnsupportedVersion,
			fmt.Sprintf("configuration version %s is outside the supported range %s",
				c.Version, VersionConstraint))
	}

	return nil
}

// validateExcludePath rejects exclude entries that could reach outside
// the working tree.
func validateExcludePath(section, p string) error {
	if p == "" {
		return fmt.Errorf("%s.excludes: empty path", section)
	}
	if path.IsAbs(p) {
		return fmt.Errorf("%s.excludes: %q must be relative", section, p)
	}
	clean := path.Clean(p)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return fmt.Errorf("%s.excludes: %q escapes the working tree", section, p)
	}
	return nil
}

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prgm-dev/preen/errors"
	"github.com/prgm-dev/preen/patch"
)

func validConfig() *Config {
	cfg := &Config{Version: SupportedVersion}
	cfg.applyDefaults()
	return cfg
}

func TestValidateVersion(t *testing.T) {
	tests := []struct {
		name     string
		version  string
		wantCode errors.Code
	}{
		{"supported version", "0.1.0", ""},
		{"patch release within range", "0.1.5", ""},
		{"next minor is out of range", "0.2.0", errors.CodeUnsupportedVersion},
		{"next major is out of range", "1.0.0", errors.CodeUnsupportedVersion},
		{"garbage is invalid", "not-a-version", errors.CodeInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Version = tt.version

			err := cfg.Validate()
			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, errors.GetCode(err))
		})
	}
}

func TestValidateExcludes(t *testing.T) {
	tests := []struct {
		name    string
		exclude string
		wantErr bool
	}{
		{"relative path is fine", "src/index.ts", false},
		{"glob is fine", "samples/*.js", false},
		{"absolute path is rejected", "/etc/passwd", true},
		{"escaping path is rejected", "../outside.txt", true},
		{"empty path is rejected", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Staging.Excludes = []string{tt.exclude}

			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, errors.CodeInvalidConfig, errors.GetCode(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePatches(t *testing.T) {
	t.Run("compilable rules pass", func(t *testing.T) {
		cfg := validConfig()
		cfg.Patches = patch.TrampolineRules()
		assert.NoError(t, cfg.Validate())
	})

	t.Run("uncompilable pattern is rejected", func(t *testing.T) {
		cfg := validConfig()
		cfg.Patches = []patch.Rule{{File: "a.txt", Pattern: "([", Replace: "x"}}

		err := cfg.Validate()
		require.Error(t, err)
		assert.Equal(t, errors.CodeInvalidPattern, errors.GetCode(err))
	})

	t.Run("rule without a file is rejected", func(t *testing.T) {
		cfg := validConfig()
		cfg.Patches = []patch.Rule{{Pattern: "x", Replace: "y"}}

		err := cfg.Validate()
		require.Error(t, err)
		assert.Equal(t, errors.CodeInvalidConfig, errors.GetCode(err))
	})
}

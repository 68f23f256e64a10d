// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		config      string
		errContains string
		check       func(t *testing.T, cfg *Config)
	}{
		{
			name:     "valid_yaml",
			filename: "datepatch.yaml",
			config: `
async: true
targets:
  - path: ./src/Table.jsx
    backup: true
    rules:
      - name: greet
        pattern: hello
        replacement: hi
      - name: block
        kind: regex
        pattern: 'start.*?end'
        replacement: X
        dot_all: true
        file_filter_glob: "**/*.jsx"
  - path: src/Other.jsx
    atomic: true
    rules:
      - name: other
        pattern: a
        replacement: b
`,
			check: func(t *testing.T, cfg *Config) {
				assert.True(t, cfg.Async, "async should be true")
				require.Len(t, cfg.Targets, 2, "should have 2 targets")
				assert.Equal(t, filepath.Clean("src/Table.jsx"), cfg.Targets[0].Path, "path should be cleaned")
				assert.True(t, cfg.Targets[0].Backup, "backup should be true")
				assert.False(t, cfg.Targets[0].Atomic, "atomic should default to false")
				require.Len(t, cfg.Targets[0].Rules, 2, "should have 2 rules")
				assert.Equal(t, "greet", cfg.Targets[0].Rules[0].Name, "first rule name should match")
				assert.Equal(t, "regex", cfg.Targets[0].Rules[1].Kind, "second rule kind should match")
				assert.True(t, cfg.Targets[0].Rules[1].DotAll, "dot_all should be true")
				assert.Equal(t, "**/*.jsx", cfg.Targets[0].Rules[1].FileFilterGlob, "glob should match")
				assert.True(t, cfg.Targets[1].Atomic, "atomic should be true")
			},
		},
		{
			name:     "valid_json",
			filename: "datepatch.json",
			config: `{
	"targets": [
		{
			"path": "src/Table.jsx",
			"rules": [
				{"name": "greet", "pattern": "hello", "replacement": "hi"}
			]
		}
	]
}`,
			check: func(t *testing.T, cfg *Config) {
				require.Len(t, cfg.Targets, 1, "should have 1 target")
				assert.Equal(t, "src/Table.jsx", cfg.Targets[0].Path, "path should match")
				assert.Equal(t, "hi", cfg.Targets[0].Rules[0].Replacement, "replacement should match")
				assert.False(t, cfg.Async, "async should default to false")
			},
		},
		{
			name:     "valid_hcl_with_variables",
			filename: "datepatch.hcl",
			config: `
async = true

target "src/Table.jsx" {
  backup = true

  rule "display-format" {
    pattern     = "date.toLocaleDateString('en-CA')"
    replacement = "formatDateForDisplay(value, '${default_date_format}')"
  }

  rule "helper" {
    kind    = "regex"
    pattern = "const\\s+helper"
    replacement = ""
    dot_all = true
  }
}

target "src/Other.jsx" {
  rule "noop" {
    pattern     = "x"
    replacement = "x"
  }
}
`,
			check: func(t *testing.T, cfg *Config) {
				assert.True(t, cfg.Async, "async should be true")
				require.Len(t, cfg.Targets, 2, "should have 2 targets")
				assert.True(t, cfg.Targets[0].Backup, "backup should be true")
				require.Len(t, cfg.Targets[0].Rules, 2, "should have 2 rules")
				assert.Equal(t, "display-format", cfg.Targets[0].Rules[0].Name, "rule label should be the name")
				assert.Equal(t, "formatDateForDisplay(value, 'DD/MM/YYYY')", cfg.Targets[0].Rules[0].Replacement, "variable should be expanded")
				assert.Equal(t, `const\s+helper`, cfg.Targets[0].Rules[1].Pattern, "escapes should be decoded")
				assert.Equal(t, "src/Other.jsx", cfg.Targets[1].Path, "second target path should match")
			},
		},
		{
			name:     "unknown_yaml_field",
			filename: "datepatch.yaml",
			config: `
targets:
  - path: a.jsx
    mode: fast
    rules: []
`,
			errContains: "parsing YAML",
		},
		{
			name:        "unknown_json_field",
			filename:    "datepatch.json",
			config:      `{"targets": [], "verbose": true}`,
			errContains: "parsing JSON",
		},
		{
			name:        "no_targets",
			filename:    "datepatch.yaml",
			config:      "targets: []\n",
			errContains: "at least one target is required",
		},
		{
			name:     "missing_path",
			filename: "datepatch.yaml",
			config: `
targets:
  - rules:
      - pattern: a
        replacement: b
`,
			errContains: "target 0: path is required",
		},
		{
			name:     "duplicate_paths",
			filename: "datepatch.yaml",
			config: `
targets:
  - path: src/a.jsx
    rules: []
  - path: ./src/a.jsx
    rules: []
`,
			errContains: "already used by target 0",
		},
		{
			name:     "invalid_rule",
			filename: "datepatch.yaml",
			config: `
targets:
  - path: src/a.jsx
    rules:
      - name: broken
        kind: regex
        pattern: "("
        replacement: x
`,
			errContains: "compiling pattern",
		},
		{
			name:        "unsupported_extension",
			filename:    "datepatch.toml",
			config:      "targets = []",
			errContains: "no parser found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			configPath := filepath.Join(dir, tt.filename)
			err := os.WriteFile(configPath, []byte(tt.config), 0644)
			require.NoError(t, err, "writing config file should succeed")

			ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())
			cfg, err := Load(ctx, configPath)
			if tt.errContains != "" {
				require.Error(t, err, "loading config should fail")
				assert.Contains(t, err.Error(), tt.errContains, "error should contain expected message")
				return
			}

			require.NoError(t, err, "loading config should succeed")
			require.NotNil(t, cfg, "config should not be nil")
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestTarget_ReplacementRules(t *testing.T) {
	target := Target{
		Path: "a.jsx",
		Rules: []Rule{
			{Name: "one", Kind: "regex", Pattern: "a+", Replacement: "b", DotAll: true, FileFilterGlob: "*.jsx"},
		},
	}

	rules := target.ReplacementRules()
	require.Len(t, rules, 1)
	assert.Equal(t, "one", rules[0].Name)
	assert.Equal(t, "regex", string(rules[0].Kind))
	assert.Equal(t, "a+", rules[0].Pattern)
	assert.Equal(t, "b", rules[0].Replacement)
	assert.True(t, rules[0].DotAll)
	assert.Equal(t, "*.jsx", rules[0].FileFilterGlob)
}

func TestConfig_String(t *testing.T) {
	assert.Equal(t, DefaultTargetPath+" (3 rules)", Default().String())
}

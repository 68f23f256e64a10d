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
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/datepatch/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 🔄 Rule is one substitution applied to a target's content
type Rule struct {
	Name           string `json:"name" yaml:"name"`
	Kind           string `json:"kind,omitempty" yaml:"kind,omitempty"` // literal (default), regex or block
	Pattern        string `json:"pattern" yaml:"pattern"`
	Replacement    string `json:"replacement" yaml:"replacement"`
	DotAll         bool   `json:"dot_all,omitempty" yaml:"dot_all,omitempty"`
	FileFilterGlob string `json:"file_filter_glob,omitempty" yaml:"file_filter_glob,omitempty"`
}

// 🎯 Target is a file and the ordered rules applied to it
type Target struct {
	Path   string `json:"path" yaml:"path"`
	Rules  []Rule `json:"rules" yaml:"rules"`
	Atomic bool   `json:"atomic,omitempty" yaml:"atomic,omitempty"` // write to a temp file and rename
	Backup bool   `json:"backup,omitempty" yaml:"backup,omitempty"` // keep <path>.bak of the original
}

// 📚 Config represents the complete configuration
type Config struct {
	Targets []Target `json:"targets" yaml:"targets"`
	Async   bool     `json:"async,omitempty" yaml:"async,omitempty"`
}

// ReplacementRules converts the target's rules for the text package
func (t Target) ReplacementRules() []text.ReplacementRule {
	rules := make([]text.ReplacementRule, 0, len(t.Rules))
	for _, r := range t.Rules {
		rules = append(rules, text.ReplacementRule{
			Name:           r.Name,
			Kind:           text.RuleKind(r.Kind),
			Pattern:        r.Pattern,
			Replacement:    r.Replacement,
			DotAll:         r.DotAll,
			FileFilterGlob: r.FileFilterGlob,
		})
	}
	return rules
}

// 🎯 Load loads the configuration from a file
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	logger.Debug().Int("targets", len(cfg.Targets)).Msg("configuration loaded")

	return cfg, nil
}

// 🔍 Validate checks if the configuration is valid and normalizes paths
func (cfg *Config) Validate() error {
	if len(cfg.Targets) == 0 {
		return errors.Errorf("at least one target is required")
	}

	replacer := text.NewRegexTextReplacer()
	seen := make(map[string]int, len(cfg.Targets))
	for i := range cfg.Targets {
		target := &cfg.Targets[i]
		if strings.TrimSpace(target.Path) == "" {
			return errors.Errorf("target %d: path is required", i)
		}
		target.Path = filepath.Clean(target.Path)

		// two patchers on one file would race on read-modify-write
		if prev, ok := seen[target.Path]; ok {
			return errors.Errorf("target %d: path %s already used by target %d", i, target.Path, prev)
		}
		seen[target.Path] = i

		if err := replacer.ValidateRules(target.ReplacementRules()); err != nil {
			return errors.Errorf("target %s: %w", target.Path, err)
		}
	}

	return nil
}

// 📝 String returns a string representation of the config
func (cfg *Config) String() string {
	paths := make([]string, 0, len(cfg.Targets))
	for _, t := range cfg.Targets {
		paths = append(paths, fmt.Sprintf("%s (%d rules)", t.Path, len(t.Rules)))
	}
	return strings.Join(paths, ", ")
}

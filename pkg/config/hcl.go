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
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".hcl")
}

// 📝 Parse parses the config from HCL.
//
//	async = false
//
//	target "src/Table.jsx" {
//	  backup = true
//
//	  rule "display-format" {
//	    pattern     = "date.toLocaleDateString('en-CA')"
//	    replacement = "formatDateForDisplay(value, '${default_date_format}')"
//	  }
//	}
func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "datepatch.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	// Variables usable in any expression
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"default_date_format": cty.StringVal(DefaultDateFormat),
		},
	}

	// Define HCL schema
	type hclRule struct {
		Name           string `hcl:"name,label"`
		Kind           string `hcl:"kind,optional"`
		Pattern        string `hcl:"pattern"`
		Replacement    string `hcl:"replacement"`
		DotAll         bool   `hcl:"dot_all,optional"`
		FileFilterGlob string `hcl:"file_filter_glob,optional"`
	}
	type hclTarget struct {
		Path   string    `hcl:"path,label"`
		Atomic bool      `hcl:"atomic,optional"`
		Backup bool      `hcl:"backup,optional"`
		Rules  []hclRule `hcl:"rule,block"`
	}
	type hclConfig struct {
		Targets []hclTarget `hcl:"target,block"`
		Async   bool        `hcl:"async,optional"`
	}

	var hclCfg hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	// Convert to model
	cfg := &Config{Async: hclCfg.Async}
	for _, t := range hclCfg.Targets {
		target := Target{
			Path:   t.Path,
			Atomic: t.Atomic,
			Backup: t.Backup,
		}
		for _, r := range t.Rules {
			target.Rules = append(target.Rules, Rule{
				Name:           r.Name,
				Kind:           r.Kind,
				Pattern:        r.Pattern,
				Replacement:    r.Replacement,
				DotAll:         r.DotAll,
				FileFilterGlob: r.FileFilterGlob,
			})
		}
		cfg.Targets = append(cfg.Targets, target)
	}

	return cfg, nil
}

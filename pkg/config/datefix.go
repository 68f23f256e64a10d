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
	"github.com/walteh/datepatch/pkg/text"
)

const (
	// DefaultTargetPath is the table body component, relative to the web app root
	DefaultTargetPath = "FE/src/pages/DatabaseManagement/Components/TableBody.jsx"

	// DefaultDateFormat is used when a column has no dateConfig.format
	DefaultDateFormat = "DD/MM/YYYY"
)

// Rule names of the built-in date patch
const (
	RuleDisplayFormat = "display-format"
	RuleInputHelper   = "input-helper"
	RuleInputCall     = "input-call"
)

// DateRules returns the built-in date formatting rules, in application order.
//
// display-format swaps the fixed en-CA rendering for the shared formatter
// driven by the column's dateConfig. input-helper drops the component's local
// formatDateForInput definition in favour of the one in utils/dateFormatter.
// input-call rewrites the helper call to itself and changes nothing; it is
// kept so the rule set matches what has already been applied to the app.
//
// input-helper matches the helper's header with a regex and removes through
// the brace that closes its body, so nested blocks and one-line definitions
// are removed whole. Unrelated formatting changes to the signature can still
// stop it from matching.
func DateRules() []Rule {
	return []Rule{
		{
			Name:        RuleDisplayFormat,
			Kind:        string(text.KindLiteral),
			Pattern:     "return date.toLocaleDateString('en-CA'); // YYYY-MM-DD format",
			Replacement: "return formatDateForDisplay(value, column.dateConfig?.format || '" + DefaultDateFormat + "');",
		},
		{
			Name:        RuleInputHelper,
			Kind:        string(text.KindBlock),
			Pattern:     `const\s+formatDateForInput\s*=\s*\(\s*\w*\s*\)\s*=>\s*\{`,
			Replacement: "// formatDateForInput is imported from utils/dateFormatter",
		},
		{
			Name:        RuleInputCall,
			Kind:        string(text.KindLiteral),
			Pattern:     "formatDateForInput(cellValue)",
			Replacement: "formatDateForInput(cellValue)",
		},
	}
}

// Default returns the built-in configuration: the date patch applied in place
// to DefaultTargetPath.
func Default() *Config {
	return &Config{
		Targets: []Target{
			{
				Path:  DefaultTargetPath,
				Rules: DateRules(),
			},
		},
	}
}

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

package patch

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/datepatch/pkg/config"
	"github.com/walteh/datepatch/pkg/log"
	"github.com/walteh/datepatch/pkg/status"
	"github.com/walteh/datepatch/pkg/text"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// 🔧 RunnerOptions configures a Runner
type RunnerOptions struct {
	Logger    *log.Logger
	Files     status.FileManager
	Replacer  text.TextReplacer
	Formatter status.Formatter
	// Async patches distinct targets concurrently
	Async bool
	// DryRun transforms without writing
	DryRun bool
}

// 🏃 Runner patches every target of a config
type Runner struct {
	logger    *log.Logger
	files     status.FileManager
	replacer  text.TextReplacer
	formatter status.Formatter
	async     bool
	dryRun    bool
}

// 🏗️ NewRunner creates a new runner
func NewRunner(opts RunnerOptions) *Runner {
	if opts.Logger == nil {
		opts.Logger = log.NewWithZerolog(io.Discard, zerolog.Nop())
	}
	if opts.Files == nil {
		opts.Files = status.New(".")
	}
	if opts.Replacer == nil {
		opts.Replacer = text.NewRegexTextReplacer()
	}
	if opts.Formatter == nil {
		opts.Formatter = status.NewDefaultFormatter()
	}
	return &Runner{
		logger:    opts.Logger,
		files:     opts.Files,
		replacer:  opts.Replacer,
		formatter: opts.Formatter,
		async:     opts.Async,
		dryRun:    opts.DryRun,
	}
}

// 🏃 Run patches each target and prints a single success notice at the end.
// Reports are returned in target order.
func (r *Runner) Run(ctx context.Context, targets []config.Target) ([]*Report, error) {
	var reports []*Report
	var err error
	if r.async {
		reports, err = r.runAsync(ctx, targets)
	} else {
		reports, err = r.runSync(ctx, targets)
	}
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(reports))
	for _, report := range reports {
		paths = append(paths, report.Path)
	}
	if r.dryRun {
		r.logger.Successf("Checked %s, nothing written", strings.Join(paths, ", "))
	} else {
		r.logger.Successf("Patched %s", strings.Join(paths, ", "))
	}

	return reports, nil
}

// 🔄 runSync patches targets one after another
func (r *Runner) runSync(ctx context.Context, targets []config.Target) ([]*Report, error) {
	reports := make([]*Report, 0, len(targets))
	for _, target := range targets {
		if err := ctx.Err(); err != nil {
			return nil, errors.Errorf("operation cancelled: %w", err)
		}
		report, err := r.patch(ctx, target)
		if err != nil {
			return nil, err
		}
		r.logReport(ctx, report)
		reports = append(reports, report)
	}
	return reports, nil
}

// ⚡ runAsync patches targets concurrently, then logs them in order
func (r *Runner) runAsync(ctx context.Context, targets []config.Target) ([]*Report, error) {
	seen := make(map[string]bool, len(targets))
	for _, target := range targets {
		path := filepath.Clean(target.Path)
		if seen[path] {
			return nil, errors.Errorf("target %s listed twice", path)
		}
		seen[path] = true
	}

	reports := make([]*Report, len(targets))
	g, gctx := errgroup.WithContext(ctx)
	for i, target := range targets {
		g.Go(func() error {
			report, err := r.patch(gctx, target)
			if err != nil {
				return err
			}
			reports[i] = report
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, report := range reports {
		r.logReport(ctx, report)
	}
	return reports, nil
}

func (r *Runner) patch(ctx context.Context, target config.Target) (*Report, error) {
	p, err := New(Options{
		Path:     target.Path,
		Rules:    target.ReplacementRules(),
		Replacer: r.replacer,
		Files:    r.files,
		Atomic:   target.Atomic,
		Backup:   target.Backup,
		DryRun:   r.dryRun,
	})
	if err != nil {
		return nil, errors.Errorf("creating patcher: %w", err)
	}
	report, err := p.Run(ctx)
	if err != nil {
		r.logger.Errorf("%s not patched", target.Path)
		return nil, err
	}
	return report, nil
}

func (r *Runner) logReport(ctx context.Context, report *Report) {
	r.logger.StartTargetOperation(ctx, log.TargetOperation{
		Path:   report.Path,
		Rules:  len(report.Rules),
		Atomic: report.Atomic,
		DryRun: report.DryRun,
	})
	for _, rule := range report.Rules {
		r.logger.LogRuleOperation(ctx, log.RuleOperation{
			Target:  report.Path,
			Name:    rule.Name,
			Matches: rule.Matches,
			Changed: rule.Changed,
			Skipped: rule.Skipped,
		})
	}
	r.logger.Detail(r.formatter.FormatTargetResult(report.Path, report.Status, report.ChangedRules(), len(report.Rules), report.DryRun))
	if report.Matches() == 0 {
		r.logger.Warningf("no rule matched %s", report.Path)
	}
	if report.BackupPath != "" {
		r.logger.Detail("backup: " + report.BackupPath)
	}
	r.logger.EndTargetOperation(ctx)
}

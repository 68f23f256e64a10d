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
	"bytes"
	"context"

	"github.com/rs/zerolog"
	"github.com/walteh/datepatch/pkg/status"
	"github.com/walteh/datepatch/pkg/text"
	"gitlab.com/tozd/go/errors"
)

// 🚦 State is the patcher's position in Load → Transform → Persist
type State int

const (
	StateInit State = iota
	StateLoaded
	StateTransformed
	StatePersisted
)

// String returns a string representation of State
func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateLoaded:
		return "loaded"
	case StateTransformed:
		return "transformed"
	case StatePersisted:
		return "persisted"
	default:
		return "unknown"
	}
}

// 🔧 Options configures a Patcher
type Options struct {
	// Path is the file to patch, resolved by Files
	Path string
	// Rules are applied in order, each to the previous rule's output
	Rules []text.ReplacementRule
	// Replacer applies the rules, defaults to text.NewRegexTextReplacer
	Replacer text.TextReplacer
	// Files reads and writes the target, defaults to status.New(".")
	Files status.FileManager
	// Atomic writes a temp file and renames it over Path
	Atomic bool
	// Backup copies the original to Path.bak before writing
	Backup bool
	// DryRun stops after Transform
	DryRun bool
}

// 📋 Report is the outcome of patching one file
type Report struct {
	Path           string
	State          State
	Status         status.FileStatus
	Rules          []text.RuleResult
	Before         []byte
	After          []byte
	ChecksumBefore string
	ChecksumAfter  string
	BackupPath     string
	Atomic         bool
	DryRun         bool
}

// ChangedRules counts the rules that altered the content
func (r *Report) ChangedRules() int {
	n := 0
	for _, rule := range r.Rules {
		if rule.Changed {
			n++
		}
	}
	return n
}

// Matches sums the matches of every rule
func (r *Report) Matches() int {
	n := 0
	for _, rule := range r.Rules {
		n += rule.Matches
	}
	return n
}

// 🩹 Patcher applies an ordered rule set to a single file
type Patcher struct {
	opts   Options
	state  State
	before []byte
	buffer []byte
	result *text.ReplacementResult
	backup string
}

// 🏭 New creates a new patcher with the given options
func New(opts Options) (*Patcher, error) {
	if opts.Path == "" {
		return nil, errors.Errorf("path is required")
	}
	if opts.Replacer == nil {
		opts.Replacer = text.NewRegexTextReplacer()
	}
	if opts.Files == nil {
		opts.Files = status.New(".")
	}
	if err := opts.Replacer.ValidateRules(opts.Rules); err != nil {
		return nil, errors.Errorf("validating rules for %s: %w", opts.Path, err)
	}
	return &Patcher{opts: opts}, nil
}

// State returns the current state
func (p *Patcher) State() State {
	return p.state
}

func (p *Patcher) expect(want State, op string) error {
	if p.state != want {
		return errors.Errorf("%s %s: patcher is %s, want %s", op, p.opts.Path, p.state, want)
	}
	return nil
}

// 📥 Load reads the whole file into memory
func (p *Patcher) Load(ctx context.Context) error {
	if err := p.expect(StateInit, "loading"); err != nil {
		return err
	}

	content, err := p.opts.Files.ReadFile(ctx, p.opts.Path)
	if err != nil {
		return errors.Errorf("loading %s: %w", p.opts.Path, err)
	}

	p.before = content
	p.buffer = content
	p.state = StateLoaded

	zerolog.Ctx(ctx).Debug().
		Str("path", p.opts.Path).
		Int("bytes", len(content)).
		Msg("loaded file")

	return nil
}

// 🔄 Transform applies every rule to the buffer
func (p *Patcher) Transform(ctx context.Context) error {
	if err := p.expect(StateLoaded, "transforming"); err != nil {
		return err
	}

	result, err := p.opts.Replacer.ReplaceText(ctx, p.opts.Path, bytes.NewReader(p.buffer), p.opts.Rules)
	if err != nil {
		return errors.Errorf("transforming %s: %w", p.opts.Path, err)
	}

	p.result = result
	p.buffer = result.ModifiedContent
	p.state = StateTransformed

	zerolog.Ctx(ctx).Debug().
		Str("path", p.opts.Path).
		Int("replacements", result.ReplacementCount).
		Bool("modified", result.WasModified).
		Msg("transformed file")

	return nil
}

// 💾 Persist writes the buffer back to the same path. The buffer is written
// even when no rule changed it.
func (p *Patcher) Persist(ctx context.Context) error {
	if err := p.expect(StateTransformed, "persisting"); err != nil {
		return err
	}
	if p.opts.DryRun {
		return errors.Errorf("persisting %s: dry run", p.opts.Path)
	}

	if p.opts.Backup {
		backup, err := p.opts.Files.BackupFile(ctx, p.opts.Path)
		if err != nil {
			return errors.Errorf("persisting %s: %w", p.opts.Path, err)
		}
		p.backup = backup
	}

	write := p.opts.Files.WriteFile
	if p.opts.Atomic {
		write = p.opts.Files.WriteFileAtomic
	}
	if err := write(ctx, p.opts.Path, p.buffer); err != nil {
		return errors.Errorf("persisting %s: %w", p.opts.Path, err)
	}

	p.state = StatePersisted

	zerolog.Ctx(ctx).Debug().
		Str("path", p.opts.Path).
		Bool("atomic", p.opts.Atomic).
		Str("backup", p.backup).
		Msg("persisted file")

	return nil
}

// 🏃 Run executes Load, Transform and, unless DryRun is set, Persist
func (p *Patcher) Run(ctx context.Context) (*Report, error) {
	if err := p.Load(ctx); err != nil {
		return nil, err
	}
	if err := p.Transform(ctx); err != nil {
		return nil, err
	}
	if !p.opts.DryRun {
		if err := p.Persist(ctx); err != nil {
			return nil, err
		}
	}
	return p.Report(), nil
}

// 📋 Report summarizes the patcher's current state
func (p *Patcher) Report() *Report {
	report := &Report{
		Path:           p.opts.Path,
		State:          p.state,
		Before:         p.before,
		After:          p.buffer,
		ChecksumBefore: status.Checksum(p.before),
		ChecksumAfter:  status.Checksum(p.buffer),
		Status:         status.StatusOf(p.before, p.buffer),
		BackupPath:     p.backup,
		Atomic:         p.opts.Atomic,
		DryRun:         p.opts.DryRun,
	}
	if p.state == StateInit {
		report.Status = status.StatusUnknown
	}
	if p.result != nil {
		report.Rules = p.result.Rules
	}
	return report
}

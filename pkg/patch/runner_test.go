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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/datepatch/pkg/config"
	"github.com/walteh/datepatch/pkg/log"
	"github.com/walteh/datepatch/pkg/status"
)

func greetTarget(path string) config.Target {
	return config.Target{
		Path: path,
		Rules: []config.Rule{
			{Name: "greet", Pattern: "hello", Replacement: "hi"},
		},
	}
}

func newTestRunner(t *testing.T, dir string, async, dryRun bool) (*Runner, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	return NewRunner(RunnerOptions{
		Logger: log.NewWithZerolog(buf, zerolog.Nop()),
		Files:  status.New(dir),
		Async:  async,
		DryRun: dryRun,
	}), buf
}

func TestRunner_Run(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	for _, async := range []bool{false, true} {
		name := "sync"
		if async {
			name = "async"
		}
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			names := []string{"a.txt", "b.txt", "c.txt", "d.txt"}
			targets := make([]config.Target, 0, len(names))
			for _, n := range names {
				require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("hello "+n), 0644))
				targets = append(targets, greetTarget(n))
			}

			runner, buf := newTestRunner(t, dir, async, false)
			reports, err := runner.Run(context.Background(), targets)
			require.NoError(t, err)
			require.Len(t, reports, len(names))

			for i, n := range names {
				assert.Equal(t, n, reports[i].Path, "reports should follow target order")
				content, err := os.ReadFile(filepath.Join(dir, n))
				require.NoError(t, err)
				assert.Equal(t, "hi "+n, string(content))
			}

			out := buf.String()
			assert.Equal(t, 1, strings.Count(out, "✅"), "success should be printed once")
			assert.Contains(t, out, "✅ Patched a.txt, b.txt, c.txt, d.txt")
			assert.Contains(t, out, "📝 Modified a.txt (1/1 rules changed content)")
			assert.Less(t, strings.Index(out, "◆ a.txt"), strings.Index(out, "◆ d.txt"))
		})
	}
}

func TestRunner_Run_NoMatchStillSucceeds(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("nothing here"), 0644))

	runner, buf := newTestRunner(t, dir, false, false)
	reports, err := runner.Run(context.Background(), []config.Target{greetTarget("a.txt")})
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, status.StatusUnchanged, reports[0].Status)
	assert.Contains(t, buf.String(), "✅ Patched a.txt")
	assert.Contains(t, buf.String(), "👍 Unchanged a.txt")
	assert.Contains(t, buf.String(), "no rule matched a.txt")
}

func TestRunner_Run_DryRun(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0644))

	runner, buf := newTestRunner(t, dir, false, true)
	reports, err := runner.Run(context.Background(), []config.Target{greetTarget("a.txt")})
	require.NoError(t, err)
	assert.Equal(t, "hi", string(reports[0].After))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))
	assert.Contains(t, buf.String(), "✅ Checked a.txt, nothing written")
	assert.Contains(t, buf.String(), "📝 Would modify a.txt")
	assert.NotContains(t, buf.String(), "no rule matched")
}

func TestRunner_Run_Failure(t *testing.T) {
	for _, async := range []bool{false, true} {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello"), 0644))

		runner, buf := newTestRunner(t, dir, async, false)
		reports, err := runner.Run(context.Background(), []config.Target{
			greetTarget("a.txt"),
			greetTarget("missing.txt"),
		})
		require.Error(t, err)
		assert.Nil(t, reports)
		assert.ErrorIs(t, err, os.ErrNotExist)
		assert.NotContains(t, buf.String(), "✅", "no success notice on failure")
		assert.Contains(t, buf.String(), "missing.txt not patched")
	}
}

func TestRunner_Run_AsyncRejectsDuplicates(t *testing.T) {
	tests := []struct {
		name  string
		paths []string
	}{
		{name: "same_path", paths: []string{"a.txt", "a.txt"}},
		{name: "dot_prefix", paths: []string{"a.txt", "./a.txt"}},
		{name: "redundant_segments", paths: []string{"sub/../a.txt", "a.txt"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello"), 0644))

			targets := make([]config.Target, 0, len(tt.paths))
			for _, p := range tt.paths {
				targets = append(targets, greetTarget(p))
			}

			runner, _ := newTestRunner(t, dir, true, false)
			_, err := runner.Run(context.Background(), targets)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "target a.txt listed twice")

			content, err := os.ReadFile(filepath.Join(dir, "a.txt"))
			require.NoError(t, err)
			assert.Equal(t, "hello", string(content), "nothing should be written")
		})
	}
}

func TestRunner_Run_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner, _ := newTestRunner(t, t.TempDir(), false, false)
	_, err := runner.Run(ctx, []config.Target{greetTarget("a.txt")})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

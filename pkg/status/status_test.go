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

package status

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, dir, name, content string, mode os.FileMode) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), mode))
	require.NoError(t, os.Chmod(path, mode))
	return path
}

func TestManager_Resolve(t *testing.T) {
	m := New("/srv/app/")

	assert.Equal(t, filepath.Join("/srv/app", "FE/src/Table.jsx"), m.Resolve("FE/src/Table.jsx"))
	assert.Equal(t, "/etc/other.jsx", m.Resolve("/etc/other.jsx"))
}

func TestManager_ReadFile(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "a.jsx", "hello", 0644)
	m := New(dir)

	content, err := m.ReadFile(context.Background(), "a.jsx")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))

	_, err = m.ReadFile(context.Background(), "missing.jsx")
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestManager_WriteFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "a.jsx", "a much longer original content", 0600)
	m := New(dir)

	require.NoError(t, m.WriteFile(context.Background(), "a.jsx", []byte("short")))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "short", string(content), "file should be truncated before writing")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm(), "mode should be preserved")
}

func TestManager_WriteFile_DoesNotCreate(t *testing.T) {
	dir := t.TempDir()
	m := New(dir)

	err := m.WriteFile(context.Background(), "missing.jsx", []byte("x"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = os.Stat(filepath.Join(dir, "missing.jsx"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestManager_WriteFileAtomic(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not preserved on windows")
	}

	dir := t.TempDir()
	path := writeFixture(t, dir, "a.jsx", "original", 0640)
	m := New(dir)

	require.NoError(t, m.WriteFileAtomic(context.Background(), "a.jsx", []byte("patched")))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "patched", string(content))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0640), info.Mode().Perm(), "mode should be preserved")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file should not be left behind")
}

func TestManager_WriteFileAtomic_Missing(t *testing.T) {
	dir := t.TempDir()
	m := New(dir)

	err := m.WriteFileAtomic(context.Background(), "missing.jsx", []byte("x"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestManager_BackupFile(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "a.jsx", "original", 0644)
	m := New(dir)

	backup, err := m.BackupFile(context.Background(), "a.jsx")
	require.NoError(t, err)
	assert.Equal(t, "a.jsx.bak", backup)

	content, err := os.ReadFile(filepath.Join(dir, "a.jsx.bak"))
	require.NoError(t, err)
	assert.Equal(t, "original", string(content))

	_, err = m.BackupFile(context.Background(), "missing.jsx")
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, StatusUnchanged, StatusOf([]byte("a"), []byte("a")))
	assert.Equal(t, StatusModified, StatusOf([]byte("a"), []byte("b")))
	assert.Equal(t, "modified", StatusModified.String())
	assert.Equal(t, "unchanged", StatusUnchanged.String())
	assert.Equal(t, "unknown", StatusUnknown.String())
}

func TestChecksum(t *testing.T) {
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", Checksum([]byte("hello")))
	assert.Equal(t, Checksum([]byte("x")), Checksum([]byte("x")))
	assert.NotEqual(t, Checksum([]byte("x")), Checksum([]byte("y")))
}

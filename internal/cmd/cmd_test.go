// SPDX-License-Identifier: AGPL-3.0-or-later
// hqfbp-go - Hamradio Quick File Broadcasting Protocol implementation
// Copyright (C) 2023-2026 Jacob McSwain
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// The source code is available at <https://github.com/loic-fejoz/hqfbp-go>

package cmd_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/USA-RedDragon/configulator"
	"github.com/stretchr/testify/require"

	"github.com/loic-fejoz/hqfbp-go/internal/cmd"
	"github.com/loic-fejoz/hqfbp-go/internal/config"
)

func newRootWithContext(t *testing.T) context.Context {
	t.Helper()
	c := configulator.New[config.Config]()
	return c.ToContext(context.Background())
}

func TestPackThenUnpackFileRoundTrips(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	inputPath := filepath.Join(dir, "message.txt")
	outputPath := filepath.Join(dir, "message.kiss")
	outDir := filepath.Join(dir, "out")

	message := []byte("the quick brown fox jumps over the lazy dog, many times over")
	require.NoError(t, os.WriteFile(inputPath, message, 0o644))

	root := cmd.NewCommand("test", "test")
	root.SetArgs([]string{
		"pack", inputPath,
		"--output", outputPath,
		"--src-callsign", "N0CALL",
		"--encodings", "h,chunk(32),crc32",
	})
	require.NoError(t, root.ExecuteContext(newRootWithContext(t)))

	require.FileExists(t, outputPath)

	root = cmd.NewCommand("test", "test")
	root.SetArgs([]string{
		"unpack", outDir,
		"--input", outputPath,
	})
	require.NoError(t, root.ExecuteContext(newRootWithContext(t)))

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	got, err := os.ReadFile(filepath.Join(outDir, entries[0].Name()))
	require.NoError(t, err)
	require.Equal(t, message, got)
}

func TestPackRequiresOutputOrTCP(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	inputPath := filepath.Join(dir, "message.txt")
	require.NoError(t, os.WriteFile(inputPath, []byte("hi"), 0o644))

	root := cmd.NewCommand("test", "test")
	root.SetArgs([]string{"pack", inputPath})
	err := root.ExecuteContext(newRootWithContext(t))
	require.Error(t, err)
}

func TestSimulateCleanChannelReportsFullSuccess(t *testing.T) {
	t.Parallel()

	root := cmd.NewCommand("test", "test")
	root.SetArgs([]string{
		"simulate",
		"--ber", "0",
		"--limit", "5",
		"--file-size", "64",
		"--encodings", "h,chunk(223),crc32",
		"--seed", "7",
	})
	var out bytes.Buffer
	root.SetOut(&out)

	require.NoError(t, root.ExecuteContext(newRootWithContext(t)))
	require.Contains(t, out.String(), "trials=5")
	require.Contains(t, out.String(), "successes=5")
}

func TestSimulateMarkdownFormat(t *testing.T) {
	t.Parallel()

	root := cmd.NewCommand("test", "test")
	root.SetArgs([]string{
		"simulate",
		"--ber", "0",
		"--limit", "3",
		"--file-size", "64",
		"--encodings", "h,chunk(223),crc32",
		"--seed", "7",
		"--format", "markdown",
	})
	var out bytes.Buffer
	root.SetOut(&out)

	require.NoError(t, root.ExecuteContext(newRootWithContext(t)))
	require.Contains(t, out.String(), "|")
}

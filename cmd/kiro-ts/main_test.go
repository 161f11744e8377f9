package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gotest.tools/v3/golden"

	"github.com/kiro-lang/tree-sitter-kiro/pkg/grammar"
	"github.com/kiro-lang/tree-sitter-kiro/pkg/ioctx"
	"github.com/kiro-lang/tree-sitter-kiro/pkg/kiro"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()

	t.Setenv("TERM", "dumb")

	var stdout, stderr bytes.Buffer
	ctx := context.Background()
	ctx = ioctx.StdoutToContext(ctx, &stdout)
	ctx = ioctx.StderrToContext(ctx, &stderr)

	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	err := cmd.ExecuteContext(ctx)
	return stdout.String(), err
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "kiro.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestPrintResults(t *testing.T) {
	t.Setenv("TERM", "dumb")

	var buf bytes.Buffer
	failed := printResults(styledWriter(&buf), []kiro.FileResult{
		{Path: "a.kiro", Errors: []kiro.SyntaxError{{Line: 1, Column: 4, Length: 1, Message: `missing ";"`}}},
		{Path: "b.kiro", Err: errors.New("open b.kiro: permission denied")},
		{Path: "c.kiro"},
	})

	assert.Equal(t, 2, failed)
	golden.Assert(t, buf.String(), "check.golden")
}

func TestPrintResultsAllOK(t *testing.T) {
	t.Setenv("TERM", "dumb")

	var buf bytes.Buffer
	failed := printResults(styledWriter(&buf), []kiro.FileResult{{Path: "a.kiro"}})

	assert.Zero(t, failed)
	assert.Equal(t, "1 file OK\n", buf.String())
}

func TestPrintInfo(t *testing.T) {
	t.Setenv("TERM", "dumb")

	var buf bytes.Buffer
	require.NoError(t, printInfo(styledWriter(&buf), kiro.Info{
		ABIVersion:     14,
		NamedKinds:     []string{"Program", "VarDecl", "identifier"},
		AnonymousKinds: []string{"var", "="},
		Fields:         []string{"name", "value"},
		Library:        "/usr/lib/libtree-sitter-kiro.so",
	}))
	golden.Assert(t, buf.String(), "info.golden")
}

func TestConfigCommand(t *testing.T) {
	t.Setenv(grammar.LibraryEnv, "")
	path := writeConfig(t, `
[grammar]
library = "lib/kiro.so"

[check]
jobs = 3
`)

	out, err := runCmd(t, "--config", path, "config")
	require.NoError(t, err)

	assert.Contains(t, out, "# "+path)
	assert.Contains(t, out, filepath.Join(filepath.Dir(path), "lib", "kiro.so"))
	assert.Contains(t, out, "Jobs:")
}

func TestGrammarFlagOverridesConfig(t *testing.T) {
	t.Setenv(grammar.LibraryEnv, "/from/env.so")
	path := writeConfig(t, `
[grammar]
library = "/from/config.so"
`)

	out, err := runCmd(t, "--config", path, "--grammar", "/from/flag.so", "config")
	require.NoError(t, err)
	assert.Contains(t, out, "/from/flag.so")
	assert.NotContains(t, out, "/from/env.so")
}

func TestInvalidConfig(t *testing.T) {
	path := writeConfig(t, `
[log]
level = "loud"
`)

	_, err := runCmd(t, "--config", path, "config")
	assert.ErrorContains(t, err, "log.level")
}

func TestPathsCommand(t *testing.T) {
	dir := t.TempDir()
	lib := filepath.Join(dir, grammar.LibraryNames("kiro", runtime.GOOS)[0])
	require.NoError(t, os.WriteFile(lib, nil, 0o644))

	t.Setenv(grammar.LibraryEnv, "")
	t.Setenv(grammar.PathEnv, dir)
	path := writeConfig(t, "")

	out, err := runCmd(t, "--config", path, "paths")
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	assert.Equal(t, lib+" (found)", lines[0])
	assert.Equal(t, filepath.Join(dir, grammar.LibraryNames("kiro", runtime.GOOS)[1]), lines[1])
}

func TestInfoWithoutGrammar(t *testing.T) {
	path := writeConfig(t, "")
	missing := filepath.Join(t.TempDir(), "libtree-sitter-kiro.so")

	_, err := runCmd(t, "--config", path, "--grammar", missing, "info")
	assert.ErrorIs(t, err, grammar.ErrNotFound)
}

func TestCheckEmptyDirectory(t *testing.T) {
	path := writeConfig(t, "")

	// no files means the grammar is never loaded
	out, err := runCmd(t, "--config", path, "--grammar", "/nonexistent.so", "check", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "0 files OK\n", out)
}

func TestCheckMissingFile(t *testing.T) {
	path := writeConfig(t, "")

	_, err := runCmd(t, "--config", path, "check", filepath.Join(t.TempDir(), "main.kiro"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseRequiresFiles(t *testing.T) {
	path := writeConfig(t, "")

	_, err := runCmd(t, "--config", path, "parse")
	assert.Error(t, err)
}

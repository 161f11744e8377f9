package kiro

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"unsafe"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/kiro-lang/tree-sitter-kiro/pkg/grammar"
)

func failingSource(calls *atomic.Int32, err error) Source {
	return func() (unsafe.Pointer, error) {
		calls.Add(1)
		return nil, err
	}
}

func TestLanguageSourceError(t *testing.T) {
	var calls atomic.Int32
	boom := errors.New("boom")
	g := New(failingSource(&calls, boom))

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := g.Language()
			assert.ErrorIs(t, err, boom)
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, calls.Load())
}

func TestLanguageNullPointer(t *testing.T) {
	g := New(func() (unsafe.Pointer, error) { return nil, nil })

	_, err := g.Language()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "null language")
}

func TestLanguageIncompatibleVersion(t *testing.T) {
	// a zeroed TSLanguage reports ABI version 0
	table := make([]uint64, 64)
	g := New(func() (unsafe.Pointer, error) { return unsafe.Pointer(&table[0]), nil })

	_, err := g.Language()
	var langErr *tree_sitter.LanguageError
	assert.ErrorAs(t, err, &langErr)
}

func TestFromLoaderNotFound(t *testing.T) {
	g := FromLoader(&grammar.Loader{Language: "kiro", Paths: []string{t.TempDir()}})

	_, err := g.Language()
	assert.ErrorIs(t, err, grammar.ErrNotFound)
	assert.ErrorContains(t, err, "load kiro grammar")
}

func TestParseWithoutGrammar(t *testing.T) {
	var calls atomic.Int32
	g := New(failingSource(&calls, errors.New("no grammar")))

	_, err := g.Parse(context.Background(), []byte("var x = 1"))
	assert.ErrorContains(t, err, "no grammar")

	_, err = g.Check(context.Background(), []byte("var x = 1"))
	assert.ErrorContains(t, err, "no grammar")

	_, err = g.Info()
	assert.ErrorContains(t, err, "no grammar")
}

func TestIsSource(t *testing.T) {
	assert.True(t, IsSource("main.kiro"))
	assert.True(t, IsSource("dir/LIB.KIRO"))
	assert.False(t, IsSource("main.rs"))
	assert.False(t, IsSource("kiro"))
}

func writeFiles(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		path := filepath.Join(root, f)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("var x = 1\n"), 0o644))
	}
}

func TestExpandPaths(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "main.kiro", "lib/net.kiro", "lib/deep/fs.kiro", "lib/LOUD.KIRO", "notes.txt")

	files, err := ExpandPaths([]string{root})
	require.NoError(t, err)
	want := []string{
		filepath.Join(root, "lib", "LOUD.KIRO"),
		filepath.Join(root, "lib", "deep", "fs.kiro"),
		filepath.Join(root, "lib", "net.kiro"),
		filepath.Join(root, "main.kiro"),
	}
	if diff := cmp.Diff(want, files); diff != "" {
		t.Errorf("ExpandPaths(dir) mismatch (-want +got):\n%s", diff)
	}

	files, err = ExpandPaths([]string{
		filepath.Join(root, "lib", "*.kiro"),
		filepath.Join(root, "lib", "net.kiro"),
		filepath.Join(root, "notes.txt"),
	})
	require.NoError(t, err)
	want = []string{
		filepath.Join(root, "lib", "net.kiro"),
		filepath.Join(root, "notes.txt"),
	}
	if diff := cmp.Diff(want, files); diff != "" {
		t.Errorf("ExpandPaths(glob) mismatch (-want +got):\n%s", diff)
	}
}

func TestExpandPathsMissing(t *testing.T) {
	root := t.TempDir()

	files, err := ExpandPaths([]string{filepath.Join(root, "**", "*.kiro")})
	require.NoError(t, err)
	assert.Empty(t, files)

	_, err = ExpandPaths([]string{filepath.Join(root, "main.kiro")})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCheckFilesReadErrors(t *testing.T) {
	var calls atomic.Int32
	g := New(failingSource(&calls, errors.New("no grammar")))

	root := t.TempDir()
	paths := []string{
		filepath.Join(root, "a.kiro"),
		filepath.Join(root, "b.kiro"),
		filepath.Join(root, "c.kiro"),
	}

	results, err := CheckFiles(context.Background(), g, paths, 2)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for i, r := range results {
		assert.Equal(t, paths[i], r.Path)
		assert.ErrorIs(t, r.Err, os.ErrNotExist)
		assert.False(t, r.OK())
	}
	assert.Zero(t, calls.Load())
}

func TestCheckFilesGrammarError(t *testing.T) {
	var calls atomic.Int32
	g := New(failingSource(&calls, errors.New("no grammar")))

	root := t.TempDir()
	writeFiles(t, root, "main.kiro")

	_, err := CheckFiles(context.Background(), g, []string{filepath.Join(root, "main.kiro")}, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "main.kiro")
	assert.Contains(t, err.Error(), "no grammar")
}

func grammarOrSkip(t *testing.T) *Grammar {
	t.Helper()
	g := Default()
	if _, err := g.Language(); err != nil {
		t.Skipf("kiro grammar unavailable: %v", err)
	}
	return g
}

func TestDefaultLanguageIsStable(t *testing.T) {
	g := grammarOrSkip(t)

	first, err := g.Language()
	require.NoError(t, err)
	second, err := g.Language()
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Same(t, g, Default())
}

func TestCheckWithGrammar(t *testing.T) {
	g := grammarOrSkip(t)
	ctx := context.Background()

	errs, err := g.Check(ctx, []byte("var x = 10\n"))
	require.NoError(t, err)
	assert.Empty(t, errs)

	errs, err = g.Check(ctx, []byte("var x = (\n"))
	require.NoError(t, err)
	assert.NotEmpty(t, errs)
}

func TestInfoWithGrammar(t *testing.T) {
	g := grammarOrSkip(t)

	info, err := g.Info()
	require.NoError(t, err)
	assert.NotZero(t, info.ABIVersion)
	assert.NotEmpty(t, info.NamedKinds)
}

func TestConcurrentParses(t *testing.T) {
	g := grammarOrSkip(t)

	var wg sync.WaitGroup
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sexp, err := g.Sexp(context.Background(), []byte("var x = 10\n"))
			assert.NoError(t, err)
			assert.NotEmpty(t, sexp)
		}()
	}
	wg.Wait()
}

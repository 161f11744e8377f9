package kiro

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"
)

const (
	// Extension is the file extension of Kiro source files.
	Extension = ".kiro"

	// EntryFile is the program entry point looked for in a project root.
	EntryFile = "main" + Extension
)

// IsSource reports whether path names a Kiro source file.
func IsSource(path string) bool {
	return strings.EqualFold(filepath.Ext(path), Extension)
}

// ExpandPaths resolves files, directories and doublestar glob patterns to a
// sorted, de-duplicated list of files. Directories expand to every Kiro
// source file beneath them.
func ExpandPaths(patterns []string) ([]string, error) {
	seen := map[string]bool{}
	var files []string
	add := func(path string) {
		path = filepath.Clean(path)
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, pattern := range patterns {
		if info, err := os.Stat(pattern); err == nil {
			if !info.IsDir() {
				add(pattern)
				continue
			}
			sources, err := sourcesIn(pattern)
			if err != nil {
				return nil, err
			}
			for _, src := range sources {
				add(src)
			}
			continue
		}

		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 && !hasMeta(pattern) {
			return nil, fmt.Errorf("%s: %w", pattern, fs.ErrNotExist)
		}
		for _, m := range matches {
			add(m)
		}
	}

	slices.Sort(files)
	return files, nil
}

// sourcesIn lists the Kiro source files beneath dir.
func sourcesIn(dir string) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(dir), "**/*", doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	var sources []string
	for _, m := range matches {
		if IsSource(m) {
			sources = append(sources, filepath.Join(dir, filepath.FromSlash(m)))
		}
	}
	return sources, nil
}

func hasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

// FileResult is the outcome of checking one file.
type FileResult struct {
	Path   string
	Errors []SyntaxError
	// Err is set when the file could not be read.
	Err error
}

// OK reports whether the file was read and has no syntax errors.
func (r FileResult) OK() bool {
	return r.Err == nil && len(r.Errors) == 0
}

// CheckFiles checks paths concurrently, at most jobs at a time (GOMAXPROCS
// if jobs <= 0). Results are in the order of paths. Unreadable files are
// reported per file; a grammar or parse failure aborts the whole run.
func CheckFiles(ctx context.Context, g *Grammar, paths []string, jobs int) ([]FileResult, error) {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	results := make([]FileResult, len(paths))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(jobs)
	for i, path := range paths {
		eg.Go(func() error {
			results[i].Path = path

			source, err := os.ReadFile(path)
			if err != nil {
				results[i].Err = err
				return nil
			}

			errs, err := g.Check(ctx, source)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i].Errors = errs
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

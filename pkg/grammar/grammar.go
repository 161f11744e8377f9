// Package grammar locates a compiled tree-sitter grammar on disk and resolves
// its language accessor symbol at run time.
//
// A grammar library is the shared object produced by compiling a grammar's
// parser.c (and scanner.c, if any). It exports one symbol,
// tree_sitter_<name>, returning a pointer to a statically allocated
// TSLanguage. The pointer is owned by the library and stays valid until the
// library is closed.
package grammar

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/adrg/xdg"
)

const (
	// LibraryEnv names an explicit grammar library file, bypassing the search.
	LibraryEnv = "KIRO_GRAMMAR_LIBRARY"

	// PathEnv is an OS path list of directories searched before the defaults.
	PathEnv = "KIRO_GRAMMAR_PATH"
)

var (
	// ErrNotFound is returned when no candidate library exists on disk.
	ErrNotFound = errors.New("grammar library not found")

	// ErrNullLanguage is returned when the accessor symbol returns NULL.
	ErrNullLanguage = errors.New("grammar accessor returned a null language")

	// ErrClosed is returned by Load after the Loader has been closed.
	ErrClosed = errors.New("grammar loader is closed")

	// ErrUnsupported is returned on platforms without dynamic loading.
	ErrUnsupported = errors.New("dynamic grammar loading is not supported on this platform")
)

// SearchError reports every path tried while looking for a grammar library.
type SearchError struct {
	Language string
	Tried    []string
}

func (e *SearchError) Error() string {
	if len(e.Tried) == 0 {
		return fmt.Sprintf("%s: no search paths configured for %q (set %s or %s)",
			ErrNotFound, e.Language, LibraryEnv, PathEnv)
	}
	return fmt.Sprintf("%s: %q not in any of %d candidates:\n  %s",
		ErrNotFound, e.Language, len(e.Tried), strings.Join(e.Tried, "\n  "))
}

func (e *SearchError) Unwrap() error {
	return ErrNotFound
}

// SymbolName returns the C accessor symbol exported by a grammar, e.g.
// "tree_sitter_kiro" for "kiro".
func SymbolName(lang string) string {
	return "tree_sitter_" + strings.ReplaceAll(lang, "-", "_")
}

// LibraryNames returns the file names a compiled grammar may have on goos,
// most specific first.
func LibraryNames(lang, goos string) []string {
	ext := ".so"
	switch goos {
	case "darwin":
		ext = ".dylib"
	case "windows":
		ext = ".dll"
	}

	names := []string{
		"libtree-sitter-" + lang + ext,
		"tree-sitter-" + lang + ext,
		lang + ext,
	}
	if goos == "darwin" {
		// the tree-sitter CLI writes .so files on every platform
		names = append(names, lang+".so")
	}
	return names
}

// DefaultPaths returns the directories searched for grammar libraries:
// entries from $KIRO_GRAMMAR_PATH, then the XDG data and cache locations
// used by the tree-sitter CLI, then the system library directories.
func DefaultPaths() []string {
	var paths []string
	if env := os.Getenv(PathEnv); env != "" {
		for _, p := range filepath.SplitList(env) {
			if p != "" {
				paths = append(paths, p)
			}
		}
	}

	paths = append(paths,
		filepath.Join(xdg.DataHome, "tree-sitter", "lib"),
		filepath.Join(xdg.CacheHome, "tree-sitter", "lib"),
	)

	return append(paths, systemLibraryDirs(runtime.GOOS)...)
}

func systemLibraryDirs(goos string) []string {
	switch goos {
	case "darwin":
		return []string{"/opt/homebrew/lib", "/usr/local/lib"}
	case "windows":
		return nil
	default:
		return []string{"/usr/local/lib", "/usr/lib", "/usr/lib64"}
	}
}

package grammar

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
)

// Opener opens a compiled grammar library.
type Opener interface {
	Open(path string) (Library, error)
}

// Library is an open grammar library.
type Library interface {
	// Lookup resolves a no-argument C function returning a pointer.
	Lookup(symbol string) (func() uintptr, error)
	Close() error
}

// Loader finds a grammar library, resolves its accessor and calls it once.
//
// The zero value is not usable; Language must be set. A Loader must not be
// copied after first use.
type Loader struct {
	// Language is the grammar name, e.g. "kiro".
	Language string

	// Library is an explicit library path. When set, Paths are ignored.
	Library string

	// Paths are searched in order for any of LibraryNames.
	Paths []string

	// Opener defaults to the platform's dynamic loader.
	Opener Opener

	once sync.Once
	ptr  uintptr
	path string
	err  error

	mu     sync.Mutex
	lib    Library
	closed bool
}

// FromEnv returns a Loader for lang configured from $KIRO_GRAMMAR_LIBRARY
// and DefaultPaths.
func FromEnv(lang string) *Loader {
	return &Loader{
		Language: lang,
		Library:  os.Getenv(LibraryEnv),
		Paths:    DefaultPaths(),
	}
}

// Candidates returns the library paths Load will try, in order.
func (l *Loader) Candidates() []string {
	if l.Library != "" {
		return []string{l.Library}
	}

	names := LibraryNames(l.Language, runtime.GOOS)
	candidates := make([]string, 0, len(l.Paths)*len(names))
	for _, dir := range l.Paths {
		for _, name := range names {
			candidates = append(candidates, filepath.Join(dir, name))
		}
	}
	return candidates
}

// Load returns the language pointer, loading the library on first call.
//
// Every call returns the same pointer and error until Close; a failed load
// is not retried.
func (l *Loader) Load(ctx context.Context) (uintptr, error) {
	l.once.Do(func() {
		l.ptr, l.err = l.load(ctx)
	})

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return 0, ErrClosed
	}
	return l.ptr, l.err
}

// Path returns the library file the language was loaded from, or "" before
// a successful Load.
func (l *Loader) Path() string {
	if _, err := l.Load(context.Background()); err != nil {
		return ""
	}
	return l.path
}

// Close releases the library. Languages obtained from it must not be used
// afterwards, and later calls to Load return ErrClosed.
func (l *Loader) Close() error {
	// waits for a Load in progress, or prevents one from starting
	l.once.Do(func() {
		l.err = ErrClosed
	})

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	if l.lib == nil {
		return nil
	}
	lib := l.lib
	l.lib = nil
	return lib.Close()
}

func (l *Loader) load(ctx context.Context) (uintptr, error) {
	if l.Language == "" {
		return 0, errors.New("grammar loader: no language name")
	}

	opener := l.Opener
	if opener == nil {
		opener = DefaultOpener
	}

	symbol := SymbolName(l.Language)

	var tried []string
	for _, candidate := range l.Candidates() {
		tried = append(tried, candidate)

		if _, err := os.Stat(candidate); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				slog.DebugContext(ctx, "grammar candidate missing", "path", candidate)
				continue
			}
			return 0, fmt.Errorf("stat %s: %w", candidate, err)
		}

		lib, err := opener.Open(candidate)
		if err != nil {
			return 0, fmt.Errorf("open grammar %s: %w", candidate, err)
		}

		accessor, err := lib.Lookup(symbol)
		if err != nil {
			_ = lib.Close()
			return 0, fmt.Errorf("resolve %s in %s: %w", symbol, candidate, err)
		}

		ptr := accessor()
		if ptr == 0 {
			_ = lib.Close()
			return 0, fmt.Errorf("%s in %s: %w", symbol, candidate, ErrNullLanguage)
		}

		l.mu.Lock()
		l.lib = lib
		l.mu.Unlock()
		l.path = candidate
		slog.DebugContext(ctx, "loaded grammar", "language", l.Language, "path", candidate)
		return ptr, nil
	}

	return 0, &SearchError{Language: l.Language, Tried: tried}
}

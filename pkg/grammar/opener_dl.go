//go:build darwin || freebsd || linux

package grammar

import (
	"fmt"

	"github.com/ebitengine/purego"
)

// DefaultOpener opens libraries with dlopen(3).
var DefaultOpener Opener = dlOpener{}

type dlOpener struct{}

func (dlOpener) Open(path string) (Library, error) {
	// RTLD_GLOBAL so external scanners can see symbols from the runtime
	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, fmt.Errorf("dlopen: %w", err)
	}
	return &dlLibrary{handle: handle}, nil
}

type dlLibrary struct {
	handle uintptr
}

func (l *dlLibrary) Lookup(symbol string) (func() uintptr, error) {
	sym, err := purego.Dlsym(l.handle, symbol)
	if err != nil {
		return nil, fmt.Errorf("dlsym: %w", err)
	}

	var fn func() uintptr
	purego.RegisterFunc(&fn, sym)
	return fn, nil
}

func (l *dlLibrary) Close() error {
	return purego.Dlclose(l.handle)
}

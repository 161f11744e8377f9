//go:build !(cgo && kiro_static)

package tree_sitter_kiro

import (
	"context"
	"sync"
	"unsafe"

	"github.com/kiro-lang/tree-sitter-kiro/pkg/grammar"
)

// Static reports whether the grammar is linked into the binary.
const Static = false

var loader = sync.OnceValue(func() *grammar.Loader {
	return grammar.FromEnv("kiro")
})

// Get the tree-sitter Language for this grammar.
//
// It panics if the grammar library cannot be loaded; use Load to handle
// that case.
func Language() unsafe.Pointer {
	ptr, err := Load()
	if err != nil {
		panic("tree-sitter-kiro: " + err.Error())
	}
	return ptr
}

// Load locates the grammar library on first call and returns its language.
// The result, including any error, is the same on every call.
func Load() (unsafe.Pointer, error) {
	ptr, err := loader().Load(context.Background())
	if err != nil {
		return nil, err
	}
	// ptr addresses static data inside the loaded library, not Go memory
	return *(*unsafe.Pointer)(unsafe.Pointer(&ptr)), nil
}

// LibraryPath returns the grammar library file in use, or "" if none could
// be loaded.
func LibraryPath() string {
	return loader().Path()
}

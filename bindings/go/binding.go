//go:build cgo && kiro_static

package tree_sitter_kiro

// #cgo CFLAGS: -I${SRCDIR}/../c
// #cgo LDFLAGS: -ltree-sitter-kiro
// #include "tree_sitter/tree-sitter-kiro.h"
import "C"

import "unsafe"

// Static reports whether the grammar is linked into the binary.
const Static = true

// Get the tree-sitter Language for this grammar.
func Language() unsafe.Pointer {
	return unsafe.Pointer(C.tree_sitter_kiro())
}

// Load is Language; a linked grammar cannot fail to load.
func Load() (unsafe.Pointer, error) {
	return Language(), nil
}

// LibraryPath returns "" because no library is loaded at run time.
func LibraryPath() string {
	return ""
}

// Package tree_sitter_kiro exposes the tree-sitter language for Kiro.
//
// Language returns a pointer to the grammar's TSLanguage, suitable for
// tree_sitter.NewLanguage. The grammar tables come from the compiled grammar
// library, libtree-sitter-kiro, which is built separately from this module.
//
// Built with the kiro_static tag (and cgo), the library is linked into the
// binary and tree_sitter_kiro is resolved by the linker. Otherwise it is
// located at first use; see the grammar package for the search order.
package tree_sitter_kiro

package tree_sitter_kiro_test

import (
	"sync"
	"testing"
	"unsafe"

	tree_sitter_kiro "github.com/kiro-lang/tree-sitter-kiro/bindings/go"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

func loadOrSkip(t *testing.T) unsafe.Pointer {
	t.Helper()
	ptr, err := tree_sitter_kiro.Load()
	if err != nil {
		t.Skipf("kiro grammar unavailable: %v", err)
	}
	return ptr
}

func TestCanLoadGrammar(t *testing.T) {
	language := tree_sitter.NewLanguage(loadOrSkip(t))
	if language == nil {
		t.Errorf("Error loading Kiro grammar")
	}
}

func TestLanguageIsStable(t *testing.T) {
	first := loadOrSkip(t)

	if first == nil {
		t.Fatal("Language returned nil")
	}
	if second := tree_sitter_kiro.Language(); second != first {
		t.Errorf("Language returned %p, then %p", first, second)
	}

	var wg sync.WaitGroup
	results := make([]unsafe.Pointer, 32)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = tree_sitter_kiro.Language()
		}()
	}
	wg.Wait()

	for i, ptr := range results {
		if ptr != first {
			t.Errorf("goroutine %d got %p, want %p", i, ptr, first)
		}
	}
}

func TestLanguageVersionIsCompatible(t *testing.T) {
	parser := tree_sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(tree_sitter.NewLanguage(loadOrSkip(t))); err != nil {
		t.Errorf("incompatible grammar: %v", err)
	}
}

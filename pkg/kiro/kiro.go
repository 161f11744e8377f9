// Package kiro parses Kiro source with the tree-sitter runtime.
//
// A Grammar wraps the language pointer returned by the grammar accessor. The
// language is shared and immutable; parsers are not goroutine-safe, so a
// Grammar keeps a small pool of them and hands one to each parse.
package kiro

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"unsafe"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	tree_sitter_kiro "github.com/kiro-lang/tree-sitter-kiro/bindings/go"
	"github.com/kiro-lang/tree-sitter-kiro/pkg/grammar"
)

// Source returns a pointer to a TSLanguage.
type Source func() (unsafe.Pointer, error)

// Grammar is the Kiro language bound to the tree-sitter runtime.
type Grammar struct {
	source Source

	once sync.Once
	lang *tree_sitter.Language
	err  error

	parsers chan *tree_sitter.Parser
}

// New returns a Grammar whose language comes from source. The source is
// called at most once.
func New(source Source) *Grammar {
	return &Grammar{
		source:  source,
		parsers: make(chan *tree_sitter.Parser, runtime.GOMAXPROCS(0)),
	}
}

var defaultGrammar = sync.OnceValue(func() *Grammar {
	return New(tree_sitter_kiro.Load)
})

// Default returns the Grammar backed by the tree_sitter_kiro binding.
func Default() *Grammar {
	return defaultGrammar()
}

// FromLoader returns a Grammar whose language is loaded by l.
func FromLoader(l *grammar.Loader) *Grammar {
	return New(func() (unsafe.Pointer, error) {
		ptr, err := l.Load(context.Background())
		if err != nil {
			return nil, err
		}
		return *(*unsafe.Pointer)(unsafe.Pointer(&ptr)), nil
	})
}

// Language returns the tree-sitter language, loading and validating it on
// first use. Every call returns the same *Language.
func (g *Grammar) Language() (*tree_sitter.Language, error) {
	g.once.Do(func() {
		g.lang, g.err = g.load()
	})
	return g.lang, g.err
}

func (g *Grammar) load() (*tree_sitter.Language, error) {
	ptr, err := g.source()
	if err != nil {
		return nil, fmt.Errorf("load kiro grammar: %w", err)
	}
	if ptr == nil {
		return nil, errors.New("load kiro grammar: accessor returned a null language")
	}

	lang := tree_sitter.NewLanguage(ptr)

	parser := tree_sitter.NewParser()
	if err := parser.SetLanguage(lang); err != nil {
		parser.Close()
		return nil, fmt.Errorf("kiro grammar: %w", err)
	}
	g.release(parser)

	return lang, nil
}

func (g *Grammar) acquire() (*tree_sitter.Parser, error) {
	lang, err := g.Language()
	if err != nil {
		return nil, err
	}

	select {
	case p := <-g.parsers:
		return p, nil
	default:
	}

	p := tree_sitter.NewParser()
	if err := p.SetLanguage(lang); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

func (g *Grammar) release(p *tree_sitter.Parser) {
	p.Reset()
	select {
	case g.parsers <- p:
	default:
		p.Close()
	}
}

// Parse parses source into a syntax tree. The caller must Close the tree.
//
// Parsing stops early if ctx is cancelled, in which case ctx.Err() is
// returned.
func (g *Grammar) Parse(ctx context.Context, source []byte) (*tree_sitter.Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p, err := g.acquire()
	if err != nil {
		return nil, err
	}
	defer g.release(p)

	var cancelled uintptr
	var pinner runtime.Pinner
	pinner.Pin(&cancelled)
	defer pinner.Unpin()

	p.SetCancellationFlag(&cancelled)
	defer p.SetCancellationFlag(nil)

	stop := context.AfterFunc(ctx, func() {
		atomic.StoreUintptr(&cancelled, 1)
	})
	tree := p.Parse(source, nil)
	stop()

	if tree == nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, errors.New("parse failed")
	}
	return tree, nil
}

// Sexp returns the S-expression form of source's syntax tree.
func (g *Grammar) Sexp(ctx context.Context, source []byte) (string, error) {
	tree, err := g.Parse(ctx, source)
	if err != nil {
		return "", err
	}
	defer tree.Close()

	return tree.RootNode().ToSexp(), nil
}

// KindsAt returns the kinds of the nodes enclosing the given 0-based point,
// innermost first.
func (g *Grammar) KindsAt(ctx context.Context, source []byte, row, column uint) ([]string, error) {
	tree, err := g.Parse(ctx, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	point := tree_sitter.NewPoint(row, column)

	var kinds []string
	for node := tree.RootNode().DescendantForPointRange(point, point); node != nil; node = node.Parent() {
		kinds = append(kinds, node.Kind())
	}
	return kinds, nil
}

// Info describes the loaded grammar.
type Info struct {
	// ABIVersion is the tree-sitter language ABI the grammar was generated for.
	ABIVersion     uint32   `json:"abi_version"`
	NamedKinds     []string `json:"named_kinds"`
	AnonymousKinds []string `json:"anonymous_kinds"`
	Fields         []string `json:"fields"`
	Library        string   `json:"library,omitempty"`
}

// Info reports the grammar's version, node kinds and field names.
func (g *Grammar) Info() (Info, error) {
	lang, err := g.Language()
	if err != nil {
		return Info{}, err
	}

	info := Info{ABIVersion: lang.Version()}

	seen := map[string]bool{}
	for id := range int(lang.NodeKindCount()) {
		kid := uint16(id)
		if !lang.NodeKindIsVisible(kid) {
			continue
		}
		kind := lang.NodeKindForId(kid)
		named := lang.NodeKindIsNamed(kid)
		key := fmt.Sprintf("%t:%s", named, kind)
		if kind == "" || seen[key] {
			continue
		}
		seen[key] = true
		if named {
			info.NamedKinds = append(info.NamedKinds, kind)
		} else {
			info.AnonymousKinds = append(info.AnonymousKinds, kind)
		}
	}

	// field ids start at 1
	for id := 1; id <= int(lang.FieldCount()); id++ {
		if name := lang.FieldNameForId(uint16(id)); name != "" {
			info.Fields = append(info.Fields, name)
		}
	}

	return info, nil
}

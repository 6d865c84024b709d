// Package lang registers the tree-sitter grammars the engine understands.
// C++ is the primary source language, C covers plain headers, Rust is the
// transformation target (generated code is reparsed before it is stored),
// and Python is accepted for analysis-only runs.
package lang

import (
	"fmt"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	c "github.com/tree-sitter/tree-sitter-c/bindings/go"
	cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
)

// Language pairs a grammar with its identifier.
type Language struct {
	Name string
	TS   *sitter.Language
}

var (
	cppLang    = &Language{Name: "cpp", TS: sitter.NewLanguage(cpp.Language())}
	cLang      = &Language{Name: "c", TS: sitter.NewLanguage(c.Language())}
	rustLang   = &Language{Name: "rust", TS: sitter.NewLanguage(rust.Language())}
	pythonLang = &Language{Name: "python", TS: sitter.NewLanguage(python.Language())}
)

// CPP returns the C++ grammar.
func CPP() *Language { return cppLang }

// C returns the C grammar.
func C() *Language { return cLang }

// Rust returns the Rust grammar.
func Rust() *Language { return rustLang }

// Python returns the Python grammar.
func Python() *Language { return pythonLang }

// FromName looks a language up by identifier.
func FromName(name string) (*Language, error) {
	switch strings.ToLower(name) {
	case "cpp", "c++":
		return cppLang, nil
	case "c":
		return cLang, nil
	case "rust":
		return rustLang, nil
	case "python":
		return pythonLang, nil
	default:
		return nil, fmt.Errorf("unsupported language: %s", name)
	}
}

// FromExtension maps a file extension to a language. Headers go through
// the C++ grammar, which is a superset of what appears in C headers.
func FromExtension(ext string) (*Language, bool) {
	switch strings.ToLower(ext) {
	case ".cpp", ".cc", ".cxx", ".hpp", ".hh", ".h":
		return cppLang, true
	case ".c":
		return cLang, true
	case ".rs":
		return rustLang, true
	case ".py":
		return pythonLang, true
	default:
		return nil, false
	}
}

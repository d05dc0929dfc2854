package parser

import (
	"os"
	"path/filepath"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
)

func TestNew(t *testing.T) {
	p := New()
	if p == nil {
		t.Fatal("New() returned nil")
	}
	if p.parser == nil {
		t.Error("parser field is nil")
	}
	p.Close()
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		path string
		want Language
	}{
		// Python
		{"script.py", LangPython},
		{"module.pyw", LangPython},
		{"types.pyi", LangPython},

		// Dart
		{"lib/widgets.dart", LangDart},

		// Go
		{"main.go", LangGo},
		{"pkg/parser/parser.go", LangGo},

		// JavaScript
		{"script.js", LangJavaScript},
		{"module.mjs", LangJavaScript},
		{"common.cjs", LangJavaScript},
		{"component.jsx", LangJSX},

		// TypeScript
		{"app.ts", LangTypeScript},
		{"component.tsx", LangTSX},

		// Recognized but pattern-only or unhandled languages
		{"Main.java", LangJava},
		{"Program.cs", LangCSharp},
		{"script.rb", LangRuby},
		{"index.php", LangPHP},
		{"App.swift", LangSwift},
		{"lib.rs", LangRust},

		// Unknown
		{"file.txt", LangUnknown},
		{"file.md", LangUnknown},
		{"file.json", LangUnknown},
		{"file", LangUnknown},

		// Case insensitivity
		{"SCRIPT.PY", LangPython},
		{"Main.GO", LangGo},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := DetectLanguage(tt.path)
			if got != tt.want {
				t.Errorf("DetectLanguage(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		lang Language
		want string
	}{
		{LangPython, "Python"},
		{LangDart, "Dart/Flutter"},
		{LangGo, "Go"},
		{LangJSX, "JavaScript (React)"},
		{LangTSX, "TypeScript (React)"},
		{LangCSharp, "C#"},
		{LangUnknown, "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.lang.DisplayName(); got != tt.want {
			t.Errorf("DisplayName(%v) = %q, want %q", tt.lang, got, tt.want)
		}
	}
}

func TestGetTreeSitterLanguage(t *testing.T) {
	tsLang, err := GetTreeSitterLanguage(LangPython)
	if err != nil {
		t.Fatalf("GetTreeSitterLanguage(python) error: %v", err)
	}
	if tsLang == nil {
		t.Fatal("GetTreeSitterLanguage(python) returned nil")
	}

	for _, lang := range []Language{LangDart, LangGo, LangJavaScript, LangJava, LangUnknown} {
		t.Run(string(lang), func(t *testing.T) {
			if _, err := GetTreeSitterLanguage(lang); err == nil {
				t.Errorf("GetTreeSitterLanguage(%v) should return error", lang)
			}
		})
	}
}

func TestHasGrammar(t *testing.T) {
	if !HasGrammar(LangPython) {
		t.Error("HasGrammar(python) = false, want true")
	}
	for _, lang := range []Language{LangDart, LangGo, LangJavaScript, LangRuby, LangUnknown} {
		if HasGrammar(lang) {
			t.Errorf("HasGrammar(%v) = true, want false", lang)
		}
	}
}

func TestParse(t *testing.T) {
	source := "class Greeter:\n    def greet(self, name):\n        return name\n\ndef main():\n    g = Greeter()\n    g.greet(\"world\")\n"

	p := New()
	defer p.Close()

	result, err := p.Parse([]byte(source), LangPython, "greeter.py")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if result.Tree == nil {
		t.Fatal("result.Tree is nil")
	}
	if result.Language != LangPython {
		t.Errorf("result.Language = %v, want %v", result.Language, LangPython)
	}
	if string(result.Source) != source {
		t.Error("result.Source doesn't match input")
	}
	if result.Path != "greeter.py" {
		t.Errorf("result.Path = %v, want greeter.py", result.Path)
	}

	root := result.Tree.RootNode()
	if root == nil {
		t.Fatal("root node is nil")
	}
	if root.HasError() {
		t.Error("valid source reported a syntax error")
	}

	classes := FindNodesByType(root, result.Source, "class_definition")
	if len(classes) != 1 {
		t.Fatalf("found %d class_definition nodes, expected 1", len(classes))
	}
	if got := GetNodeText(classes[0].ChildByFieldName("name"), result.Source); got != "Greeter" {
		t.Errorf("class name = %q, want Greeter", got)
	}
	if got := Line(classes[0]); got != 1 {
		t.Errorf("Line(class) = %d, want 1", got)
	}

	funcs := FindNodesByType(root, result.Source, "function_definition")
	if len(funcs) != 2 {
		t.Errorf("found %d function_definition nodes, expected 2", len(funcs))
	}
}

func TestParseNoGrammar(t *testing.T) {
	p := New()
	defer p.Close()

	if _, err := p.Parse([]byte("void main() {}\n"), LangDart, "main.dart"); err == nil {
		t.Error("Parse() should return error for language without grammar")
	}
}

func TestParseFile(t *testing.T) {
	tmpDir := t.TempDir()
	pyFile := filepath.Join(tmpDir, "test.py")
	content := "def hello():\n    pass\n"

	if err := os.WriteFile(pyFile, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}

	p := New()
	defer p.Close()

	result, err := p.ParseFile(pyFile)
	if err != nil {
		t.Fatalf("ParseFile() error: %v", err)
	}

	if result.Language != LangPython {
		t.Errorf("result.Language = %v, want %v", result.Language, LangPython)
	}
	if result.Path != pyFile {
		t.Errorf("result.Path = %v, want %v", result.Path, pyFile)
	}
}

func TestParseFileErrors(t *testing.T) {
	p := New()
	defer p.Close()

	// Non-existent file
	_, err := p.ParseFile("/nonexistent/path/file.py")
	if err == nil {
		t.Error("ParseFile() should return error for non-existent file")
	}

	// Language without a grammar
	tmpDir := t.TempDir()
	txtFile := filepath.Join(tmpDir, "test.txt")
	if err := os.WriteFile(txtFile, []byte("hello"), 0644); err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}

	_, err = p.ParseFile(txtFile)
	if err == nil {
		t.Error("ParseFile() should return error for unsupported language")
	}
}

func TestWalk(t *testing.T) {
	p := New()
	defer p.Close()

	source := "def main():\n    x = 1\n"
	result, err := p.Parse([]byte(source), LangPython, "test.py")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	// Test that Walk visits nodes
	count := 0
	Walk(result.Tree.RootNode(), result.Source, func(node *sitter.Node, source []byte) bool {
		count++
		return true
	})

	if count == 0 {
		t.Error("Walk() visited no nodes")
	}

	// Test WalkTyped collects node types
	var nodeTypes []string
	WalkTyped(result.Tree.RootNode(), result.Source, func(node *sitter.Node, nodeType string, source []byte) bool {
		nodeTypes = append(nodeTypes, nodeType)
		return true
	})

	if len(nodeTypes) == 0 {
		t.Error("WalkTyped() visited no nodes")
	}

	// Check for expected node types
	found := make(map[string]bool)
	for _, nt := range nodeTypes {
		found[nt] = true
	}

	expectedTypes := []string{"module", "function_definition", "assignment"}
	for _, expected := range expectedTypes {
		if !found[expected] {
			t.Errorf("Expected node type %q not found", expected)
		}
	}

	// Test early termination - Walk stops when visitor returns false
	count = 0
	WalkTyped(result.Tree.RootNode(), result.Source, func(node *sitter.Node, nodeType string, source []byte) bool {
		count++
		return count < 3 // Stop after 3 nodes
	})

	// The walk stops descending at the node where we return false (the 3rd),
	// but may have already scheduled siblings. We just verify it stopped early.
	if count < 3 {
		t.Errorf("Early termination: visited %d nodes, expected at least 3", count)
	}
}

func TestWalkNil(t *testing.T) {
	// Walk should handle nil node gracefully
	Walk(nil, nil, func(node *sitter.Node, source []byte) bool {
		t.Error("Visitor should not be called for nil node")
		return true
	})

	WalkTyped(nil, nil, func(node *sitter.Node, nodeType string, source []byte) bool {
		t.Error("Visitor should not be called for nil node")
		return true
	})
}

func TestFindNodes(t *testing.T) {
	p := New()
	defer p.Close()

	source := "def one():\n    pass\n\ndef two():\n    pass\n\ndef three():\n    pass\n"
	result, err := p.Parse([]byte(source), LangPython, "test.py")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	// Find all function definitions
	nodes := FindNodesByType(result.Tree.RootNode(), result.Source, "function_definition")
	if len(nodes) != 3 {
		t.Errorf("Found %d function_definition nodes, expected 3", len(nodes))
	}

	// Find nodes with predicate
	nodes = FindNodes(result.Tree.RootNode(), result.Source, func(n *sitter.Node) bool {
		return n.Type() == "identifier"
	})
	if len(nodes) < 3 {
		t.Errorf("Found %d identifier nodes, expected at least 3", len(nodes))
	}
}

func TestGetNodeText(t *testing.T) {
	p := New()
	defer p.Close()

	source := "value = 42\n"
	result, err := p.Parse([]byte(source), LangPython, "test.py")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	idents := FindNodesByType(result.Tree.RootNode(), result.Source, "identifier")
	if len(idents) == 0 {
		t.Fatal("No identifiers found")
	}
	if got := GetNodeText(idents[0], result.Source); got != "value" {
		t.Errorf("GetNodeText() = %q, want %q", got, "value")
	}

	if got := GetNodeText(nil, result.Source); got != "" {
		t.Errorf("GetNodeText(nil) = %q, want empty", got)
	}
}

func TestLine(t *testing.T) {
	p := New()
	defer p.Close()

	source := "x = 1\n\n\ndef later():\n    pass\n"
	result, err := p.Parse([]byte(source), LangPython, "test.py")
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	funcs := FindNodesByType(result.Tree.RootNode(), result.Source, "function_definition")
	if len(funcs) != 1 {
		t.Fatalf("found %d functions, expected 1", len(funcs))
	}
	if got := Line(funcs[0]); got != 4 {
		t.Errorf("Line() = %d, want 4", got)
	}
	if got := Line(nil); got != 0 {
		t.Errorf("Line(nil) = %d, want 0", got)
	}
}

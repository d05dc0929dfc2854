// Package usage builds a symbol-usage index from extracted definitions and
// references and classifies refactoring opportunities over it: methods whose
// only call site is local to their defining file (narrowing candidates) and
// elements with zero detected uses (dead elements).
//
// The index correlates definitions and references by a heuristic string
// identity, not resolved symbols. Two same-named definitions in one file under
// the same class hint are indistinguishable; that ambiguity is part of the
// contract, not a defect to paper over.
package usage

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// DefKind discriminates definition records.
type DefKind string

const (
	DefFunction DefKind = "function"
	DefClass    DefKind = "class"
	DefVariable DefKind = "variable"
)

// RefKind discriminates reference records.
type RefKind string

const (
	// RefCall is a call expression targeting a name.
	RefCall RefKind = "call"

	// RefNameLoad is a bare identifier read outside assignment-target position.
	RefNameLoad RefKind = "name_load"

	// RefImport is an imported binding. Imports count both as a name use in
	// the importing file and as a global class use.
	RefImport RefKind = "import"
)

// Definition is a recorded declaration site.
type Definition struct {
	// Name is the declared identifier.
	Name string `json:"name" toon:"name"`

	// Unit is the source file the definition was extracted from. Extraction
	// never attributes a definition to another file.
	Unit string `json:"file" toon:"file"`

	// Class is the lexically enclosing class, empty at module or
	// function-local scope.
	Class string `json:"class,omitempty" toon:"class,omitempty"`

	// Function is the lexically enclosing function. Populated only for
	// variable definitions; empty means module or class level.
	Function string `json:"function,omitempty" toon:"function,omitempty"`

	// Line is the 1-based declaration line.
	Line int `json:"line" toon:"line"`

	Kind DefKind `json:"kind" toon:"kind"`

	// IsConstant marks variables bound to an all-uppercase name. A naming
	// convention proxy, not actual immutability.
	IsConstant bool `json:"is_constant,omitempty" toon:"is_constant,omitempty"`
}

// Identity returns the correlation key for the definition.
func (d Definition) Identity() Identity {
	return Identity{Unit: d.Unit, Name: d.Name, Class: d.Class}
}

// Reference is a recorded call, name-read, or import site.
type Reference struct {
	// TargetName is the referenced identifier.
	TargetName string `json:"name" toon:"name"`

	// TargetClassHint is the inferred owning class for call references: the
	// caller's enclosing class when the receiver is the self token, the
	// literal receiver identifier otherwise, empty for bare calls. The hint
	// is lexical; no type resolution is attempted.
	TargetClassHint string `json:"class,omitempty" toon:"class,omitempty"`

	// SiteUnit, SiteClass and SiteFunction identify the call or use site.
	SiteUnit     string `json:"file" toon:"file"`
	SiteClass    string `json:"site_class,omitempty" toon:"site_class,omitempty"`
	SiteFunction string `json:"site_function,omitempty" toon:"site_function,omitempty"`

	Kind RefKind `json:"kind" toon:"kind"`
}

// Identity returns the correlation key for a call reference. The site file
// stands in for the target's file, so calls only ever match definitions in
// the file they appear in.
func (r Reference) Identity() Identity {
	return Identity{Unit: r.SiteUnit, Name: r.TargetName, Class: r.TargetClassHint}
}

// Identity is the (file, name, class-hint) triple correlating definitions
// with call references. Class is empty when no class context applies.
type Identity struct {
	Unit  string
	Name  string
	Class string
}

func (id Identity) String() string {
	if id.Class == "" {
		return fmt.Sprintf("%s:%s", id.Unit, id.Name)
	}
	return fmt.Sprintf("%s:%s.%s", id.Unit, id.Class, id.Name)
}

// Caller describes one distinct call site of a candidate method.
type Caller struct {
	Unit     string `json:"file" toon:"file"`
	Class    string `json:"class,omitempty" toon:"class,omitempty"`
	Function string `json:"function,omitempty" toon:"function,omitempty"`
}

// Candidate is a method whose single call site is local to its defining
// file, making it a candidate for narrowed visibility.
type Candidate struct {
	Unit        string   `json:"file" toon:"file"`
	Class       string   `json:"class" toon:"class"`
	Method      string   `json:"method" toon:"method"`
	Line        int      `json:"line" toon:"line"`
	Callers     []Caller `json:"callers" toon:"callers"`
	Fingerprint string   `json:"fingerprint" toon:"fingerprint"`
}

// Dead element kinds.
const (
	KindUnusedFunction = "unused_function"
	KindUnusedClass    = "unused_class"
	KindUnusedVariable = "unused_variable"
)

// DeadElement is a function, class, or module/class-level variable with no
// detected reference.
type DeadElement struct {
	Unit        string `json:"file" toon:"file"`
	Class       string `json:"class,omitempty" toon:"class,omitempty"`
	Name        string `json:"name" toon:"name"`
	Line        int    `json:"line" toon:"line"`
	Kind        string `json:"kind" toon:"kind"`
	IsConstant  bool   `json:"is_constant,omitempty" toon:"is_constant,omitempty"`
	Fingerprint string `json:"fingerprint" toon:"fingerprint"`
}

// Fingerprint returns a stable hash identifying a finding across runs.
func Fingerprint(kind, unit, class, name string) string {
	sum := xxhash.Sum64String(kind + ":" + unit + ":" + class + ":" + name)
	return fmt.Sprintf("%016x", sum)
}

// isDunder reports whether the name follows the double-underscore method
// convention (__init__ and friends). Such names are invoked by the runtime
// and never counted as dead.
func isDunder(name string) bool {
	return len(name) > 4 &&
		name[0] == '_' && name[1] == '_' &&
		name[len(name)-1] == '_' && name[len(name)-2] == '_'
}

// IsConstantName reports whether the name consists of uppercase letters,
// digits and underscores with at least one letter. Extractors use it to set
// Definition.IsConstant on variable definitions.
func IsConstantName(name string) bool {
	hasLetter := false
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'A' && c <= 'Z':
			hasLetter = true
		case c >= '0' && c <= '9', c == '_':
		default:
			return false
		}
	}
	return hasLetter
}

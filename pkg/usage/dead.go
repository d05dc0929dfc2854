package usage

import "strings"

// DeadRules holds the naming conventions that exempt definitions from
// dead-element classification. Exempt names are invoked by harnesses or
// runtimes that never show up as call references.
type DeadRules struct {
	// TestPrefixes exempt functions whose name starts with any entry.
	TestPrefixes []string

	// FixtureNames exempt functions by exact name (framework hooks).
	FixtureNames []string

	// EntryPoints exempt functions by exact name (runtime entry points).
	EntryPoints []string

	// AbstractMarkers exempt classes carrying a marker as prefix or suffix.
	AbstractMarkers []string

	// TestClassAffixes exempt classes carrying an affix as prefix or suffix.
	TestClassAffixes []string
}

// DefaultDeadRules returns the conventional exclusion lists.
func DefaultDeadRules() DeadRules {
	return DeadRules{
		TestPrefixes:     []string{"test_"},
		FixtureNames:     []string{"setUp", "tearDown"},
		EntryPoints:      []string{"main"},
		AbstractMarkers:  []string{"Abstract"},
		TestClassAffixes: []string{"Test", "Tests", "TestCase"},
	}
}

// FindDeadElements runs the three unused-element rule sets over the index
// and unions their findings. The categories are independent; a name reused
// as both a function and a class can be reported twice, once per kind.
func FindDeadElements(ix *Index, rules DeadRules) []DeadElement {
	var dead []DeadElement

	for i, def := range ix.Definitions() {
		switch def.Kind {
		case DefFunction:
			if rules.exemptFunction(def.Name) {
				continue
			}
			if ix.IsCalled(uint32(i)) {
				continue
			}
			dead = append(dead, DeadElement{
				Unit:        def.Unit,
				Class:       def.Class,
				Name:        def.Name,
				Line:        def.Line,
				Kind:        KindUnusedFunction,
				Fingerprint: Fingerprint(KindUnusedFunction, def.Unit, def.Class, def.Name),
			})

		case DefClass:
			if rules.exemptClass(def.Name) {
				continue
			}
			if ix.ClassUsed(def.Name) {
				continue
			}
			dead = append(dead, DeadElement{
				Unit:        def.Unit,
				Name:        def.Name,
				Line:        def.Line,
				Kind:        KindUnusedClass,
				Fingerprint: Fingerprint(KindUnusedClass, def.Unit, "", def.Name),
			})

		case DefVariable:
			// Function-local variables are out of scope for this check.
			if def.Function != "" {
				continue
			}
			if isDunder(def.Name) {
				continue
			}
			if ix.NameUsedIn(def.Unit, def.Name) {
				continue
			}
			dead = append(dead, DeadElement{
				Unit:        def.Unit,
				Class:       def.Class,
				Name:        def.Name,
				Line:        def.Line,
				Kind:        KindUnusedVariable,
				IsConstant:  def.IsConstant,
				Fingerprint: Fingerprint(KindUnusedVariable, def.Unit, def.Class, def.Name),
			})
		}
	}

	return dead
}

func (r DeadRules) exemptFunction(name string) bool {
	if isDunder(name) {
		return true
	}
	for _, prefix := range r.TestPrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	for _, fixture := range r.FixtureNames {
		if name == fixture {
			return true
		}
	}
	for _, entry := range r.EntryPoints {
		if name == entry {
			return true
		}
	}
	return false
}

func (r DeadRules) exemptClass(name string) bool {
	for _, marker := range r.AbstractMarkers {
		if strings.HasPrefix(name, marker) || strings.HasSuffix(name, marker) {
			return true
		}
	}
	for _, affix := range r.TestClassAffixes {
		if strings.HasPrefix(name, affix) || strings.HasSuffix(name, affix) {
			return true
		}
	}
	return false
}

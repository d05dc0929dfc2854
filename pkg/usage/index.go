package usage

import (
	"github.com/RoaringBitmap/roaring/v2"
)

// Index aggregates definitions and references from all analyzed files into
// the lookup structures the classifiers query. It is write-once: populate it
// with Add during the extraction phase, then only read. Iteration over
// definitions and callers follows insertion order, so identical input yields
// identical output.
type Index struct {
	defs []Definition

	// defIDs maps an identity to the insertion indexes of its definitions.
	// Several definitions can share an identity; that ambiguity is accepted.
	defIDs map[Identity][]uint32

	// called holds insertion indexes of definitions with at least one
	// matching call reference.
	called *roaring.Bitmap

	callCounts map[Identity]int
	callers    map[Identity][]Caller
	callerSeen map[Identity]map[Caller]struct{}

	// loadedNames tracks name-load and import references per file for the
	// unused-variable check.
	loadedNames map[string]map[string]struct{}

	// usedNames is the global set fed by call receiver hints and imports,
	// matched by bare identifier text for the dead-class check. Two classes
	// sharing a name across files are indistinguishable here.
	usedNames map[string]struct{}

	refCount  int
	callTotal int
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{
		defIDs:      make(map[Identity][]uint32),
		called:      roaring.New(),
		callCounts:  make(map[Identity]int),
		callers:     make(map[Identity][]Caller),
		callerSeen:  make(map[Identity]map[Caller]struct{}),
		loadedNames: make(map[string]map[string]struct{}),
		usedNames:   make(map[string]struct{}),
	}
}

// Add folds one file's extraction results into the index. usedNames carries
// the receiver tokens and imported identifiers the extractor saw; they feed
// the global set behind ClassUsed. Call order across files determines
// definition iteration order; references may arrive before or after the
// definitions they target.
func (ix *Index) Add(defs []Definition, refs []Reference, usedNames []string) {
	for _, def := range defs {
		ix.addDefinition(def)
	}
	for _, ref := range refs {
		ix.addReference(ref)
	}
	for _, name := range usedNames {
		ix.usedNames[name] = struct{}{}
	}
}

func (ix *Index) addDefinition(def Definition) {
	id := uint32(len(ix.defs))
	ix.defs = append(ix.defs, def)

	identity := def.Identity()
	ix.defIDs[identity] = append(ix.defIDs[identity], id)
	if ix.callCounts[identity] > 0 {
		ix.called.Add(id)
	}
}

func (ix *Index) addReference(ref Reference) {
	ix.refCount++

	switch ref.Kind {
	case RefCall:
		ix.callTotal++
		identity := ref.Identity()
		ix.callCounts[identity]++
		ix.addCaller(identity, Caller{
			Unit:     ref.SiteUnit,
			Class:    ref.SiteClass,
			Function: ref.SiteFunction,
		})
		for _, id := range ix.defIDs[identity] {
			ix.called.Add(id)
		}

	case RefNameLoad:
		ix.addLoadedName(ref.SiteUnit, ref.TargetName)

	case RefImport:
		// An imported identifier is used merely by being imported.
		ix.addLoadedName(ref.SiteUnit, ref.TargetName)
		ix.usedNames[ref.TargetName] = struct{}{}
	}
}

func (ix *Index) addCaller(identity Identity, caller Caller) {
	seen, ok := ix.callerSeen[identity]
	if !ok {
		seen = make(map[Caller]struct{})
		ix.callerSeen[identity] = seen
	}
	if _, dup := seen[caller]; dup {
		return
	}
	seen[caller] = struct{}{}
	ix.callers[identity] = append(ix.callers[identity], caller)
}

func (ix *Index) addLoadedName(unit, name string) {
	names, ok := ix.loadedNames[unit]
	if !ok {
		names = make(map[string]struct{})
		ix.loadedNames[unit] = names
	}
	names[name] = struct{}{}
}

// Definitions returns all definitions in insertion order. The returned slice
// is shared; callers must not mutate it.
func (ix *Index) Definitions() []Definition {
	return ix.defs
}

// CallCount returns the number of call references matching the identity.
func (ix *Index) CallCount(identity Identity) int {
	return ix.callCounts[identity]
}

// CallersOf returns the distinct call sites referencing the identity, in
// first-seen order.
func (ix *Index) CallersOf(identity Identity) []Caller {
	return ix.callers[identity]
}

// NameUsedIn reports whether a name-load or import reference in the given
// file carries exactly the given name. Cross-file use is not tracked.
func (ix *Index) NameUsedIn(unit, name string) bool {
	names, ok := ix.loadedNames[unit]
	if !ok {
		return false
	}
	_, used := names[name]
	return used
}

// ClassUsed reports whether the name appears in the global used-names set
// accumulated from call receiver hints and imports across all files.
func (ix *Index) ClassUsed(name string) bool {
	_, used := ix.usedNames[name]
	return used
}

// IsCalled reports whether the definition at the given insertion index has
// at least one matching call reference.
func (ix *Index) IsCalled(defID uint32) bool {
	return ix.called.Contains(defID)
}

// Stats returns the total definition, reference and call record counts.
func (ix *Index) Stats() (definitions, references, calls int) {
	return len(ix.defs), ix.refCount, ix.callTotal
}

package usage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func funcDef(unit, class, name string, line int) Definition {
	return Definition{Name: name, Unit: unit, Class: class, Line: line, Kind: DefFunction}
}

func classDef(unit, name string, line int) Definition {
	return Definition{Name: name, Unit: unit, Line: line, Kind: DefClass}
}

func varDef(unit, class, function, name string, line int) Definition {
	return Definition{
		Name:       name,
		Unit:       unit,
		Class:      class,
		Function:   function,
		Line:       line,
		Kind:       DefVariable,
		IsConstant: IsConstantName(name),
	}
}

func callRef(unit, name, hint, siteClass, siteFunction string) Reference {
	return Reference{
		TargetName:      name,
		TargetClassHint: hint,
		SiteUnit:        unit,
		SiteClass:       siteClass,
		SiteFunction:    siteFunction,
		Kind:            RefCall,
	}
}

func loadRef(unit, name string) Reference {
	return Reference{TargetName: name, SiteUnit: unit, Kind: RefNameLoad}
}

func importRef(unit, name string) Reference {
	return Reference{TargetName: name, SiteUnit: unit, Kind: RefImport}
}

func TestIndexCallCount(t *testing.T) {
	ix := NewIndex()
	ix.Add(nil, []Reference{
		callRef("a.py", "helper", "", "", "main"),
		callRef("a.py", "helper", "", "", "run"),
		callRef("a.py", "helper", "Util", "", "run"),
		callRef("b.py", "helper", "", "", "other"),
	}, nil)

	// Matching is exact on the (file, name, hint) triple.
	assert.Equal(t, 2, ix.CallCount(Identity{Unit: "a.py", Name: "helper"}))
	assert.Equal(t, 1, ix.CallCount(Identity{Unit: "a.py", Name: "helper", Class: "Util"}))
	assert.Equal(t, 1, ix.CallCount(Identity{Unit: "b.py", Name: "helper"}))
	assert.Equal(t, 0, ix.CallCount(Identity{Unit: "c.py", Name: "helper"}))
	assert.Equal(t, 0, ix.CallCount(Identity{Unit: "a.py", Name: "other"}))
}

func TestIndexCallersDeduplicated(t *testing.T) {
	ix := NewIndex()
	ix.Add(nil, []Reference{
		callRef("a.py", "save", "User", "User", "update"),
		callRef("a.py", "save", "User", "User", "update"),
		callRef("a.py", "save", "User", "User", "create"),
	}, nil)

	identity := Identity{Unit: "a.py", Name: "save", Class: "User"}
	assert.Equal(t, 3, ix.CallCount(identity))

	callers := ix.CallersOf(identity)
	require.Len(t, callers, 2)
	// First-seen order.
	assert.Equal(t, "update", callers[0].Function)
	assert.Equal(t, "create", callers[1].Function)
}

func TestIndexDefinitionsInsertionOrder(t *testing.T) {
	ix := NewIndex()
	ix.Add([]Definition{funcDef("b.py", "", "beta", 1)}, nil, nil)
	ix.Add([]Definition{funcDef("a.py", "", "alpha", 1)}, nil, nil)
	ix.Add([]Definition{classDef("a.py", "Alpha", 5)}, nil, nil)

	defs := ix.Definitions()
	require.Len(t, defs, 3)
	assert.Equal(t, "beta", defs[0].Name)
	assert.Equal(t, "alpha", defs[1].Name)
	assert.Equal(t, "Alpha", defs[2].Name)
}

func TestIndexNameUsedInScopedPerUnit(t *testing.T) {
	ix := NewIndex()
	ix.Add(nil, []Reference{
		loadRef("a.py", "MAX_RETRIES"),
		importRef("b.py", "timedelta"),
	}, nil)

	assert.True(t, ix.NameUsedIn("a.py", "MAX_RETRIES"))
	assert.False(t, ix.NameUsedIn("b.py", "MAX_RETRIES"), "name loads do not cross files")
	assert.True(t, ix.NameUsedIn("b.py", "timedelta"), "imports count as name use")
	assert.False(t, ix.NameUsedIn("a.py", "timedelta"))
	assert.False(t, ix.NameUsedIn("c.py", "anything"))
}

func TestIndexClassUsed(t *testing.T) {
	ix := NewIndex()
	ix.Add(nil, []Reference{importRef("a.py", "User")}, []string{"Logger"})

	assert.True(t, ix.ClassUsed("User"), "imported names mark the class used")
	assert.True(t, ix.ClassUsed("Logger"), "receiver tokens mark the class used")
	assert.False(t, ix.ClassUsed("Repository"))
}

func TestIndexClassUsedIsGlobal(t *testing.T) {
	ix := NewIndex()
	ix.Add(nil, nil, []string{"Shared"})

	// Matching is bare-identifier text with no file awareness, so a use in
	// any file covers every class of that name.
	assert.True(t, ix.ClassUsed("Shared"))
}

func TestIndexIsCalledRegardlessOfArrivalOrder(t *testing.T) {
	// References before definitions.
	ix := NewIndex()
	ix.Add(nil, []Reference{callRef("a.py", "early", "", "", "")}, nil)
	ix.Add([]Definition{funcDef("a.py", "", "early", 3)}, nil, nil)
	assert.True(t, ix.IsCalled(0))

	// Definitions before references.
	ix = NewIndex()
	ix.Add([]Definition{funcDef("a.py", "", "late", 3)}, nil, nil)
	ix.Add(nil, []Reference{callRef("a.py", "late", "", "", "")}, nil)
	assert.True(t, ix.IsCalled(0))

	// Never called.
	ix = NewIndex()
	ix.Add([]Definition{funcDef("a.py", "", "idle", 3)}, nil, nil)
	assert.False(t, ix.IsCalled(0))
}

func TestIndexStats(t *testing.T) {
	ix := NewIndex()
	ix.Add(
		[]Definition{funcDef("a.py", "", "f", 1), classDef("a.py", "C", 2)},
		[]Reference{
			callRef("a.py", "f", "", "", ""),
			loadRef("a.py", "x"),
			importRef("a.py", "os"),
		},
		nil,
	)

	defs, refs, calls := ix.Stats()
	assert.Equal(t, 2, defs)
	assert.Equal(t, 3, refs)
	assert.Equal(t, 1, calls)
}

func TestIdentityString(t *testing.T) {
	assert.Equal(t, "a.py:helper", Identity{Unit: "a.py", Name: "helper"}.String())
	assert.Equal(t, "a.py:User.save", Identity{Unit: "a.py", Name: "save", Class: "User"}.String())
}

func TestFingerprintStable(t *testing.T) {
	a := Fingerprint(KindUnusedFunction, "a.py", "User", "save")
	b := Fingerprint(KindUnusedFunction, "a.py", "User", "save")
	c := Fingerprint(KindUnusedClass, "a.py", "User", "save")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 16)
}

func TestIsConstantName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"MAX_RETRIES", true},
		{"X", true},
		{"HTTP2", true},
		{"_PRIVATE_CONST", true},
		{"maxRetries", false},
		{"Max_Retries", false},
		{"__all__", false},
		{"_", false},
		{"123", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsConstantName(tt.name))
		})
	}
}

package usage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindCandidatesSingleSelfCall(t *testing.T) {
	// class User defines deactivate and _log_status_change; deactivate calls
	// self._log_status_change(...) once and nothing else does.
	ix := NewIndex()
	ix.Add(
		[]Definition{
			classDef("user.py", "User", 1),
			funcDef("user.py", "User", "deactivate", 5),
			funcDef("user.py", "User", "_log_status_change", 9),
		},
		[]Reference{
			callRef("user.py", "_log_status_change", "User", "User", "deactivate"),
		},
		nil,
	)

	candidates := FindCandidates(ix)
	require.Len(t, candidates, 1)

	got := candidates[0]
	assert.Equal(t, "user.py", got.Unit)
	assert.Equal(t, "User", got.Class)
	assert.Equal(t, "_log_status_change", got.Method)
	assert.Equal(t, 9, got.Line)
	assert.NotEmpty(t, got.Fingerprint)

	require.Len(t, got.Callers, 1)
	assert.Equal(t, Caller{Unit: "user.py", Class: "User", Function: "deactivate"}, got.Callers[0])
}

func TestFindCandidatesHelperCalledOnce(t *testing.T) {
	// _build_user is called exactly once from create_user in the same file;
	// create_user itself has no recorded caller.
	ix := NewIndex()
	ix.Add(
		[]Definition{
			classDef("service.py", "UserService", 1),
			funcDef("service.py", "UserService", "create_user", 2),
			funcDef("service.py", "UserService", "_build_user", 7),
		},
		[]Reference{
			callRef("service.py", "_build_user", "UserService", "UserService", "create_user"),
		},
		nil,
	)

	candidates := FindCandidates(ix)
	require.Len(t, candidates, 1)
	assert.Equal(t, "_build_user", candidates[0].Method)
}

func TestFindCandidatesMultipleCallersRejected(t *testing.T) {
	ix := NewIndex()
	ix.Add(
		[]Definition{funcDef("user.py", "User", "_log", 3)},
		[]Reference{
			callRef("user.py", "_log", "User", "User", "activate"),
			callRef("user.py", "_log", "User", "User", "deactivate"),
		},
		nil,
	)

	assert.Empty(t, FindCandidates(ix))
}

func TestFindCandidatesRepeatedCallFromSameSiteRejected(t *testing.T) {
	// Two calls from one site still mean two calls; the rule requires
	// exactly one.
	ix := NewIndex()
	ix.Add(
		[]Definition{funcDef("user.py", "User", "_check", 3)},
		[]Reference{
			callRef("user.py", "_check", "User", "User", "validate"),
			callRef("user.py", "_check", "User", "User", "validate"),
		},
		nil,
	)

	assert.Empty(t, FindCandidates(ix))
}

func TestFindCandidatesClasslessFunctionRejected(t *testing.T) {
	ix := NewIndex()
	ix.Add(
		[]Definition{funcDef("util.py", "", "helper", 3)},
		[]Reference{callRef("util.py", "helper", "", "", "main")},
		nil,
	)

	assert.Empty(t, FindCandidates(ix), "module-level functions are not narrowing candidates")
}

func TestFindCandidatesCrossFileCallDoesNotMatch(t *testing.T) {
	// A call in another file carries that file in its identity, so it never
	// correlates with the definition.
	ix := NewIndex()
	ix.Add(
		[]Definition{funcDef("a.py", "User", "refresh", 3)},
		[]Reference{callRef("b.py", "refresh", "User", "Session", "renew")},
		nil,
	)

	assert.Empty(t, FindCandidates(ix))
}

func TestFindCandidatesHintMustMatchClass(t *testing.T) {
	// A bare call matches only classless identities, not the method.
	ix := NewIndex()
	ix.Add(
		[]Definition{funcDef("a.py", "User", "refresh", 3)},
		[]Reference{callRef("a.py", "refresh", "", "", "main")},
		nil,
	)

	assert.Empty(t, FindCandidates(ix))
}

func TestFindCandidatesUnusedMethodRejected(t *testing.T) {
	ix := NewIndex()
	ix.Add([]Definition{funcDef("a.py", "User", "_never_called", 3)}, nil, nil)

	assert.Empty(t, FindCandidates(ix), "zero callers is dead code, not a narrowing candidate")
}

func TestFindCandidatesEachQualifyingDefinitionOnce(t *testing.T) {
	ix := NewIndex()
	ix.Add(
		[]Definition{
			funcDef("a.py", "A", "_first", 3),
			funcDef("a.py", "B", "_second", 9),
		},
		[]Reference{
			callRef("a.py", "_first", "A", "A", "run"),
			callRef("a.py", "_second", "B", "B", "run"),
		},
		nil,
	)

	candidates := FindCandidates(ix)
	require.Len(t, candidates, 2)
	assert.Equal(t, "_first", candidates[0].Method)
	assert.Equal(t, "_second", candidates[1].Method)
}

func TestFindCandidatesDeterministicAcrossRuns(t *testing.T) {
	build := func() *Index {
		ix := NewIndex()
		ix.Add(
			[]Definition{
				funcDef("a.py", "A", "_x", 1),
				funcDef("a.py", "A", "_y", 2),
			},
			[]Reference{
				callRef("a.py", "_x", "A", "A", "run"),
				callRef("a.py", "_y", "A", "A", "run"),
			},
			nil,
		)
		return ix
	}

	first := FindCandidates(build())
	second := FindCandidates(build())
	assert.Equal(t, first, second)
}

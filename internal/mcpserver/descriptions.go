package mcpserver

// Tool descriptions with interpretation guidance for LLMs.
// Each description explains what the tool does, when to use it,
// how to interpret results, and where the heuristic is blind.

func describeUsage() string {
	return `Builds a symbol-usage report over Python, Dart, Go, and JavaScript/TypeScript sources.

USE WHEN:
- Getting oriented in an unfamiliar codebase
- Measuring how many functions, classes, and variables a project defines
- Checking which files were skipped and why before trusting other results
- Feeding definition and call totals into review notes or dashboards

INTERPRETING RESULTS:
- Matching is heuristic and file-local: a call only matches definitions in its own file
- analyzed_units plus skipped_units always equals total_files
- skipped_units entries name the stage that rejected the file: read, parse, or language
- findings_per_file_p90 is the 90th percentile of findings per analyzed file
- digest changes whenever any input file's content changes, useful for caching

METRICS RETURNED:
- Summary: file, definition, reference, and call totals plus finding counts
- Languages: per-language file, function, class, and finding counts
- private_method_candidates and dead_elements: the full finding lists
- skipped_units: files that contributed nothing, with stage and reason`
}

func describeCandidates() string {
	return `Finds methods whose only call site lives in the file that defines them (narrowing candidates).

USE WHEN:
- Tightening class interfaces before a refactor
- Finding methods that can become private or file-local
- Reducing the public surface reviewers have to reason about
- Auditing encapsulation class by class

INTERPRETING RESULTS:
- A candidate has exactly one detected call, and that call is in the defining file
- callers lists the call sites with their enclosing class and function
- Matching is lexical: dynamic dispatch, reflection, and callers outside the scanned paths are invisible
- Fingerprints are stable across runs, use them to track individual findings
- An empty result means no method met the single-local-call bar, not that visibility is already minimal

METRICS RETURNED:
- Candidates: file, class, method, line, call sites, fingerprint
- Summary: run totals for context (files, definitions, calls)

Verify each candidate before narrowing it. External consumers do not show up here.`
}

func describeDeadCode() string {
	return `Identifies functions, classes, and module-level variables with no detected use.

USE WHEN:
- Cleaning up after a feature removal
- Shrinking a codebase before a migration or rewrite
- Finding orphaned helpers and abandoned constants
- Auditing a package for deletable surface

INTERPRETING RESULTS:
- Dead means zero detected calls, name reads, or imports within the scanned files
- Test functions, fixtures, entry points, dunder methods, and abstract or test classes are exempt
- is_constant marks variables bound to all-uppercase names
- Fingerprints are stable across runs, use them to track individual findings
- Dynamic dispatch, reflection, and callers outside the scanned paths are invisible, so verify before deleting

METRICS RETURNED:
- Dead elements: file, class, name, line, kind, fingerprint
- Summary: run totals for context (files, definitions, references)

Entry point names from configuration are always exempt. Pass entry_points to exempt more.`
}

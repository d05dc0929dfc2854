package usage

// FindCandidates applies the narrowing rule over the index. A method
// definition qualifies when it has a class, exactly one matching call
// reference, and every recorded caller lives in the method's own file. The
// single same-file caller is evidence, not proof: reflection, dynamic
// dispatch and callers outside the analyzed tree are invisible here.
func FindCandidates(ix *Index) []Candidate {
	var candidates []Candidate

	for _, def := range ix.Definitions() {
		if def.Kind != DefFunction || def.Class == "" {
			continue
		}

		identity := def.Identity()
		if ix.CallCount(identity) != 1 {
			continue
		}

		callers := ix.CallersOf(identity)
		local := true
		for _, caller := range callers {
			if caller.Unit != def.Unit {
				local = false
				break
			}
		}
		if !local {
			continue
		}

		candidates = append(candidates, Candidate{
			Unit:        def.Unit,
			Class:       def.Class,
			Method:      def.Name,
			Line:        def.Line,
			Callers:     append([]Caller(nil), callers...),
			Fingerprint: Fingerprint("candidate", def.Unit, def.Class, def.Name),
		})
	}

	return candidates
}

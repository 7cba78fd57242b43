package participant

// ReconcileResult partitions a candidate batch against an existing set.
type ReconcileResult struct {
	Added        []Participant
	Skipped      []Participant
	SkippedCount int
}

// Reconcile classifies candidates as added or skipped by identity key.
// A candidate is skipped when its email key or its name+phone key is already
// present in existing or in an earlier added candidate. First occurrence wins.
// PRE: none
// POST: len(Added)+SkippedCount == len(candidates); Added preserves input order
// INVARIANT: inputs are not mutated; identical inputs yield identical output
func Reconcile(existing, candidates []Participant) ReconcileResult {
	emails := make(map[string]struct{}, len(existing)+len(candidates))
	namePhones := make(map[string]struct{}, len(existing)+len(candidates))
	for _, p := range existing {
		emails[p.EmailKey()] = struct{}{}
		namePhones[p.NamePhoneKey()] = struct{}{}
	}

	result := ReconcileResult{Added: make([]Participant, 0, len(candidates))}
	for _, c := range candidates {
		ek := c.EmailKey()
		nk := c.NamePhoneKey()
		_, emailSeen := emails[ek]
		_, namePhoneSeen := namePhones[nk]
		if emailSeen || namePhoneSeen {
			result.Skipped = append(result.Skipped, c)
			result.SkippedCount++
			continue
		}
		emails[ek] = struct{}{}
		namePhones[nk] = struct{}{}
		result.Added = append(result.Added, c)
	}
	return result
}

package prospect

import "strings"

// Ingest selects the freshly collected candidates that are not pending yet.
//
// The result keeps the input order. A URL repeated inside collected counts as a
// duplicate after its first occurrence, so identities stay unique in the pending set.
// Candidates without a profile URL have no identity and are dropped as duplicates.
// Neither argument is modified.
func Ingest(collected []*Candidate, pending map[string]struct{}) ([]*Candidate, int) {
	toInsert := make([]*Candidate, 0, len(collected))
	seen := make(map[string]struct{}, len(collected))

	for _, c := range collected {
		if c == nil {
			continue
		}
		url := strings.TrimSpace(c.ProfileURL)
		if url == "" {
			continue
		}
		if _, ok := pending[url]; ok {
			continue
		}
		if _, ok := seen[url]; ok {
			continue
		}
		seen[url] = struct{}{}
		toInsert = append(toInsert, c)
	}

	return toInsert, len(collected) - len(toInsert)
}

package domain

// MatchConfidenceThreshold is the sole admission threshold into Matches.
// Anything below it goes to Unmatched.
const MatchConfidenceThreshold = 0.5

// ExactMatchReason is the fixed reason attached to exact normalized matches.
const ExactMatchReason = "exact match"

// MatchResult is the decision for one import name that was matched.
type MatchResult struct {
	PropertyID string  `json:"property_id"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// MatchOutcome partitions a list of import names: every input name appears
// either as a key of Matches or in Unmatched, never both.
type MatchOutcome struct {
	Matches   map[string]MatchResult
	Unmatched []string
}

// VendorDocument is the parsed content of a vendor statement: line entries
// keyed by the vendor's free-text property labels. Producing it from the
// raw document is a collaborator's concern.
type VendorDocument struct {
	Entries []VendorEntry
}

// VendorEntry is one parsed line from a vendor statement. Amount stays raw;
// it is parsed best-effort at import time.
type VendorEntry struct {
	PropertyName string       `json:"property_name"`
	Kind         LineItemKind `json:"kind"`
	Description  string       `json:"description"`
	Amount       string       `json:"amount"`
}

// PropertyNames returns the distinct property labels in document order.
func (d *VendorDocument) PropertyNames() []string {
	seen := make(map[string]bool)

	var names []string
	for _, e := range d.Entries {
		if !seen[e.PropertyName] {
			seen[e.PropertyName] = true
			names = append(names, e.PropertyName)
		}
	}

	return names
}

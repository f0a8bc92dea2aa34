// Package metadata holds the display record resolved from a proposal's
// off-chain reference.
package metadata

// Details is the human-readable description of a proposal. Fields absent from
// the fetched payload carry the documented defaults; a failed fetch yields a
// placeholder record, never an error.
type Details struct {
	Title             string `json:"title"`
	Synopsis          string `json:"synopsis"`
	Genre             string `json:"genre"`
	EstimatedBudget   string `json:"estimatedBudget"`
	EstimatedDuration string `json:"estimatedDuration"`
}

// Invalid returns the record shown for proposals that carry no usable
// reference at all, as opposed to one that failed to resolve.
func Invalid() Details {
	return Details{
		Title:             "Invalid Proposal",
		Synopsis:          "No valid link provided.",
		Genre:             "Unknown",
		EstimatedBudget:   "0",
		EstimatedDuration: "0",
	}
}

// Placeholder returns the record shown when the reference could not be
// resolved. note explains what went wrong in display-safe terms.
func Placeholder(note string) Details {
	if note == "" {
		note = "Could not fetch proposal details."
	}
	return Details{
		Title:             "Error loading",
		Synopsis:          note,
		Genre:             "Unknown",
		EstimatedBudget:   "0",
		EstimatedDuration: "0",
	}
}

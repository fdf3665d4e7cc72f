package tariff

// Tier validity reasons surfaced next to the offending row.
const (
	ReasonHalfEmpty    = "duration and cost must both be set"
	ReasonNonPositive  = "duration must be greater than zero"
	ReasonNegativeCost = "cost must not be negative"
)

// TierInvalid checks one tier's value pair.  A tier is invalid when exactly
// one of the two fields is set (both-or-neither is required), when the
// duration is not positive, or when the cost is negative.  A fully empty pair
// is not invalid here: empty rows are either placeholders or get dropped by
// normalization before validation ever sees them.
func TierInvalid(durationHours, cost *float64) (string, bool) {
	if durationHours == nil && cost == nil {
		return "", false
	}
	if durationHours == nil || cost == nil {
		return ReasonHalfEmpty, true
	}
	if *durationHours <= 0 {
		return ReasonNonPositive, true
	}
	if *cost < 0 {
		return ReasonNegativeCost, true
	}
	return "", false
}

// RowIssue points at one invalid editable row.  The presence of any issue
// anywhere in the draft blocks saving.
type RowIssue struct {
	ScopeKey string `json:"scope_key"`
	RowKey   string `json:"row_key"`
	Order    int    `json:"order"`
	Reason   string `json:"reason"`
}

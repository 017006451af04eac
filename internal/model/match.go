package model

// MatchType identifies which signal linked a licensee to a dealer.
type MatchType string

const (
	MatchPhone  MatchType = "phone"
	MatchDomain MatchType = "domain"
)

// Confidence returns the fixed confidence score for a match type.
// Confidence is a strict function of match type, never set independently.
func (t MatchType) Confidence() int {
	switch t {
	case MatchPhone:
		return 100
	case MatchDomain:
		return 90
	default:
		return 0
	}
}

// Match links one licensee to one dealer. A licensee may produce zero, one,
// or many matches; matching is fan-out, not one-to-one.
type Match struct {
	Licensee   Licensee  `json:"licensee"`
	Dealer     Dealer    `json:"dealer"`
	MatchType  MatchType `json:"match_type"`
	Confidence int       `json:"confidence"`

	// EnrichedDealer is the dealer's display fields plus license_* keys.
	// Absent optional dates are omitted entirely, not written as empty,
	// so downstream CSV export stays sparse.
	EnrichedDealer map[string]string `json:"enriched_dealer"`
}

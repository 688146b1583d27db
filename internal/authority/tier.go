// Package authority resolves the binding weight of a document from its
// container trust tier and its institutional document type. Resolution is a
// total function: unrecognized inputs fall back to defaults, never errors.
package authority

import "strings"

// Tier is the closed 5-level authority enumeration, totally ordered by
// binding weight.
type Tier int

const (
	TierNarrative Tier = iota + 1
	TierIntelligence
	TierEvidence
	TierPolicy
	TierBinding
)

var tierNames = map[Tier]string{
	TierNarrative:    "NARRATIVE",
	TierIntelligence: "INTELLIGENCE",
	TierEvidence:     "EVIDENCE",
	TierPolicy:       "POLICY",
	TierBinding:      "BINDING",
}

var tiersByName = map[string]Tier{
	"NARRATIVE":    TierNarrative,
	"INTELLIGENCE": TierIntelligence,
	"EVIDENCE":     TierEvidence,
	"POLICY":       TierPolicy,
	"BINDING":      TierBinding,
}

func (t Tier) String() string {
	if name, ok := tierNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

// Valid reports whether t is a member of the 5-tier enumeration.
func (t Tier) Valid() bool {
	_, ok := tierNames[t]
	return ok
}

// AtLeast reports whether t carries at least the binding weight of other.
func (t Tier) AtLeast(other Tier) bool {
	return t >= other
}

// ParseTier maps a container authority tag to a Tier. The second return is
// false when the tag is not a recognized tier name.
func ParseTier(tag string) (Tier, bool) {
	t, ok := tiersByName[strings.ToUpper(strings.TrimSpace(tag))]
	return t, ok
}

// BindingScope is the organizational unit a binding obligation applies to.
type BindingScope string

const (
	ScopeFund            BindingScope = "FUND"
	ScopeServiceProvider BindingScope = "SERVICE_PROVIDER"
	ScopeManager         BindingScope = "MANAGER"
)

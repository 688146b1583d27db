// Package linker scans every in-scope document against the entity index and
// emits authority-gated knowledge links. The permission matrix in this file
// is the enforcement point for the authority hierarchy: a document may only
// assert the semantic relations its resolved tier is trusted for.
package linker

import (
	"govlink/internal/authority"
	"govlink/internal/graph"
)

// AllowedLinkTypes computes the link-type set a source document of the given
// tier may assert.
//
// BINDING and POLICY documents assert everything except SATISFIES: binding
// text states obligations, it does not evidence their fulfilment. EVIDENCE
// documents do the opposite. INTELLIGENCE documents only relate and
// reference. Anything unrecognized degrades to REFERENCES only.
func AllowedLinkTypes(tier authority.Tier) map[graph.LinkType]bool {
	switch tier {
	case authority.TierBinding, authority.TierPolicy:
		return map[graph.LinkType]bool{
			graph.LinkReferences:        true,
			graph.LinkDerivesObligation: true,
			graph.LinkConflictsWith:     true,
			graph.LinkRequires:          true,
			graph.LinkRelatesToManager:  true,
			graph.LinkRelatesToDeal:     true,
		}
	case authority.TierIntelligence:
		return map[graph.LinkType]bool{
			graph.LinkReferences:       true,
			graph.LinkRelatesToManager: true,
			graph.LinkRelatesToDeal:    true,
		}
	case authority.TierEvidence:
		return map[graph.LinkType]bool{
			graph.LinkSatisfies:  true,
			graph.LinkReferences: true,
		}
	default:
		return map[graph.LinkType]bool{
			graph.LinkReferences: true,
		}
	}
}

// decideLinkType picks the target link type from the matched entity's type
// and the source document's context. This is an ordered decision list; the
// REFERENCES fallback at the bottom is what an under-trusted document
// degrades to.
//
// OBLIGATION targets derive only under BINDING or POLICY authority: a
// service-provider contract REQUIRES the obligation, any other binding
// document DERIVES it. Lower tiers compute plain REFERENCES here, so the
// matrix check in the service is a second, independent safety net.
func decideLinkType(entityType graph.EntityType, tier authority.Tier, container, providerContainer string) graph.LinkType {
	switch entityType {
	case graph.EntityManager:
		return graph.LinkRelatesToManager
	case graph.EntityDeal:
		return graph.LinkRelatesToDeal
	case graph.EntityObligation:
		if tier == authority.TierBinding || tier == authority.TierPolicy {
			if container == providerContainer {
				return graph.LinkRequires
			}
			return graph.LinkDerivesObligation
		}
		return graph.LinkReferences
	default:
		return graph.LinkReferences
	}
}

// Match confidences: exact canonical-name matches are strong, partial or
// keyword matches weaker. Fixed constants, not tuned from data.
const (
	ConfidenceExact   = 0.92
	ConfidencePartial = 0.72
)

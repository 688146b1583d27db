package authority

import (
	"strings"

	"govlink/internal/classify"
)

// Profile is the resolved governance profile for one document.
type Profile struct {
	Authority Tier
	Scope     BindingScope
	// Jurisdiction is a best-effort hint inferred from path markers, empty
	// when no marker is found. It is never authoritative.
	Jurisdiction string
}

// JurisdictionMarker maps a case-insensitive path substring to the
// jurisdiction it hints at.
type JurisdictionMarker struct {
	Marker       string
	Jurisdiction string
}

// Tables holds the fixed resolution tables. They are injected at construction
// so tests can override them without global mutable state.
type Tables struct {
	// ContainerTiers is the static container→tier map. Container identity is
	// authoritative over any denormalized authority tag on a registry row.
	ContainerTiers map[string]Tier
	// Overrides forces a tier for specific document types.
	Overrides map[classify.DocType]Tier
	// Scopes maps document types to the organizational unit their
	// obligations bind. Types absent from the map scope to the fund.
	Scopes map[classify.DocType]BindingScope
	// Jurisdictions is scanned in order; the first matching marker wins.
	Jurisdictions []JurisdictionMarker
}

// DefaultTables returns the production resolution tables.
func DefaultTables() Tables {
	return Tables{
		ContainerTiers: map[string]Tier{
			"fund-governance":            TierBinding,
			"regulatory-filings":         TierBinding,
			"service-provider-contracts": TierPolicy,
			"deal-pipeline":              TierIntelligence,
			"portfolio-monitoring":       TierEvidence,
			"investor-relations":         TierNarrative,
		},
		Overrides: map[classify.DocType]Tier{
			classify.DocTypeRegulatory:              TierBinding,
			classify.DocTypeFundConstitution:        TierBinding,
			classify.DocTypeServiceProviderContract: TierBinding,
			classify.DocTypeRiskPolicy:              TierPolicy,
			classify.DocTypeInvestmentMemo:          TierIntelligence,
			classify.DocTypePortfolioAudit:          TierEvidence,
			classify.DocTypeMarketingDeck:           TierNarrative,
			classify.DocTypeInvestorNarrative:       TierNarrative,
		},
		Scopes: map[classify.DocType]BindingScope{
			classify.DocTypeRegulatory:              ScopeFund,
			classify.DocTypeFundConstitution:        ScopeFund,
			classify.DocTypeRiskPolicy:              ScopeFund,
			classify.DocTypeServiceProviderContract: ScopeServiceProvider,
			classify.DocTypeInvestmentMemo:          ScopeManager,
			classify.DocTypeMarketingDeck:           ScopeManager,
		},
		Jurisdictions: []JurisdictionMarker{
			{Marker: "cima", Jurisdiction: "Cayman Islands"},
			{Marker: "cayman", Jurisdiction: "Cayman Islands"},
			{Marker: "delaware", Jurisdiction: "United States (Delaware)"},
			{Marker: "cssf", Jurisdiction: "Luxembourg"},
			{Marker: "luxembourg", Jurisdiction: "Luxembourg"},
			{Marker: "aifmd", Jurisdiction: "European Union"},
			{Marker: "fca", Jurisdiction: "United Kingdom"},
			{Marker: "ireland", Jurisdiction: "Ireland"},
		},
	}
}

// Resolver resolves document governance profiles against fixed tables.
// Resolution is pure: no I/O, no side effects, always returns a value.
type Resolver struct {
	tables Tables
}

// NewResolver builds a Resolver from the given tables.
func NewResolver(tables Tables) *Resolver {
	return &Resolver{tables: tables}
}

// Resolve computes the governance profile for a document. containerTag is the
// raw authority tag observed on the container; unrecognized tags default to
// EVIDENCE. containerName and blobPath feed only the jurisdiction hint.
//
// Anti-inversion: a document physically stored in an INTELLIGENCE container
// can never acquire BINDING authority from its document-type override — the
// container's trust ceiling holds. Every other combination resolves to
// max(container tier, override tier). The guard is deliberately asymmetric:
// it does not cover the NARRATIVE-container case.
func (r *Resolver) Resolve(containerTag string, docType classify.DocType, containerName, blobPath string) Profile {
	containerTier, ok := ParseTier(containerTag)
	if !ok {
		containerTier = TierEvidence
	}

	resolved := containerTier
	if override, ok := r.tables.Overrides[docType]; ok {
		switch {
		case containerTier == TierIntelligence && override == TierBinding:
			resolved = TierIntelligence
		case override > containerTier:
			resolved = override
		}
	}

	return Profile{
		Authority:    resolved,
		Scope:        r.scopeFor(docType),
		Jurisdiction: r.jurisdictionFor(containerName, blobPath, docType),
	}
}

// TierForContainer returns the static tier for a container name. Containers
// absent from the map default to EVIDENCE.
func (r *Resolver) TierForContainer(container string) Tier {
	if t, ok := r.tables.ContainerTiers[strings.ToLower(strings.TrimSpace(container))]; ok {
		return t
	}
	return TierEvidence
}

func (r *Resolver) scopeFor(docType classify.DocType) BindingScope {
	if s, ok := r.tables.Scopes[docType]; ok {
		return s
	}
	return ScopeFund
}

func (r *Resolver) jurisdictionFor(containerName, blobPath string, docType classify.DocType) string {
	haystack := strings.ToLower(containerName + " " + blobPath + " " + string(docType))
	for _, m := range r.tables.Jurisdictions {
		if strings.Contains(haystack, m.Marker) {
			return m.Jurisdiction
		}
	}
	return ""
}

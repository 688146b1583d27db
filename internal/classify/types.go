// Package classify assigns an institutional document type to each registry
// entry using ordered path/content heuristics. Classification is a total
// function: garbage or empty text degrades to path-only signals and the OTHER
// type, never an error.
package classify

import (
	"sort"
	"strings"
)

// DocType is the closed enumeration of institutional document types.
type DocType string

const (
	DocTypeRegulatory              DocType = "REGULATORY"
	DocTypeFundConstitution        DocType = "FUND_CONSTITUTION"
	DocTypeServiceProviderContract DocType = "SERVICE_PROVIDER_CONTRACT"
	DocTypeInvestmentMemo          DocType = "INVESTMENT_MEMO"
	DocTypeMarketingDeck           DocType = "MARKETING_DECK"
	DocTypeRiskPolicy              DocType = "RISK_POLICY"
	DocTypePortfolioAudit          DocType = "PORTFOLIO_AUDIT"
	DocTypeInvestorNarrative       DocType = "INVESTOR_NARRATIVE"
	DocTypeOther                   DocType = "OTHER"
)

// Signal names the evidence category that contributed to a classification.
type Signal string

const (
	SignalContainer Signal = "container"
	SignalFilename  Signal = "filename"
	SignalContent   Signal = "content"
)

// Input carries everything the classifier may inspect for one document.
// Text may be empty; the extraction collaborator substitutes degraded text
// (title + path) on I/O failure, so the classifier never sees an error.
type Input struct {
	Container string
	Filename  string
	DomainTag string
	Text      string
}

// Result is the classification outcome. Confidence is a fixed per-branch
// constant in 0..100 reflecting signal strength, not a derived statistic.
type Result struct {
	DocType    DocType
	Confidence int
	Basis      []Signal
}

// BasisString renders the basis as a stable comma-joined string for storage.
func (r Result) BasisString() string {
	parts := make([]string, 0, len(r.Basis))
	for _, s := range r.Basis {
		parts = append(parts, string(s))
	}
	return strings.Join(parts, ",")
}

// normalizeBasis deduplicates and sorts signals so the recorded basis is
// deterministic across runs.
func normalizeBasis(signals []Signal) []Signal {
	seen := make(map[Signal]bool, len(signals))
	out := make([]Signal, 0, len(signals))
	for _, s := range signals {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

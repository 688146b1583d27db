package classify

import "strings"

// Keywords holds the marker tables the decision list matches against. The
// tables are injected at construction so tests can narrow or extend them
// without global mutable state.
type Keywords struct {
	// Regulatory markers identify rulebooks, circulars, and filings.
	Regulatory []string
	// Constitutional markers identify fund-constitutional documents.
	Constitutional []string
	// Contract markers identify service-provider agreements by path.
	Contract []string
	// ContractContent markers confirm a contract classification from body
	// text and raise the evidence basis accordingly.
	ContractContent []string
	// MemoContent markers identify investment memos inside pipeline
	// containers.
	MemoContent []string
	// Marketing markers identify investor-facing decks by filename.
	Marketing []string
	// RiskPolicy markers identify internal risk policies.
	RiskPolicy []string
	// Audit markers identify portfolio-monitoring and audit output.
	Audit []string

	// Container identity sets. Container identity is authoritative over any
	// denormalized tag carried on the registry row.
	PipelineContainers   []string
	InvestorContainers   []string
	MonitoringContainers []string
}

// DefaultKeywords returns the production marker tables.
func DefaultKeywords() Keywords {
	return Keywords{
		Regulatory: []string{
			"cima", "rulebook", "regulation", "regulatory", "aifmd",
			"statement of guidance", "compliance circular",
		},
		Constitutional: []string{
			"constitution", "limited partnership agreement",
			"articles of association", "memorandum of association",
			"trust deed",
		},
		Contract: []string{
			"agreement", "contract", "engagement letter", "side letter",
		},
		ContractContent: []string{
			"administrator", "custodian", "services to be provided",
			"service provider",
		},
		MemoContent: []string{
			"investment thesis", "deal memo", "investment memo",
			"sponsor", "term sheet",
		},
		Marketing: []string{
			"deck", "presentation", "teaser", "overview", "factsheet",
		},
		RiskPolicy: []string{
			"risk policy", "risk management policy", "risk appetite",
		},
		Audit: []string{
			"audit", "portfolio report", "valuation report", "nav pack",
		},
		PipelineContainers:   []string{"deal-pipeline"},
		InvestorContainers:   []string{"investor-relations"},
		MonitoringContainers: []string{"portfolio-monitoring"},
	}
}

func containsAny(haystack string, markers []string) bool {
	for _, m := range markers {
		if m != "" && strings.Contains(haystack, m) {
			return true
		}
	}
	return false
}

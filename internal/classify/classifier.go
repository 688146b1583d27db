package classify

import "strings"

// Branch confidences are fixed constants reflecting signal strength. They are
// part of the public contract, not tuned from data.
const (
	ConfidenceRegulatory     = 95
	ConfidenceConstitutional = 93
	ConfidenceContract       = 90
	ConfidenceMemo           = 88
	ConfidenceMarketing      = 86
	ConfidenceRiskPolicy     = 90
	ConfidenceAudit          = 84
	ConfidenceNarrative      = 82
	ConfidenceDefault        = 60
)

// Rule is one branch of the classification decision list. Evaluation order is
// the list order and the first matching rule wins; reordering Rules is a
// contract change and must be reviewed as one.
type Rule struct {
	Name  string
	Match func(in lowered) (Result, bool)
}

// Classifier applies the ordered decision list to document metadata and text.
type Classifier struct {
	rules []Rule
}

// lowered is the case-folded view of an Input the rules match against.
type lowered struct {
	container string
	filename  string
	domainTag string
	text      string
}

// New builds a Classifier from the given marker tables.
func New(kw Keywords) *Classifier {
	return &Classifier{rules: buildRules(kw)}
}

// Classify runs the decision list over one document. It never fails: with no
// matching branch the document classifies as OTHER at low confidence.
func (c *Classifier) Classify(in Input) Result {
	low := lowered{
		container: strings.ToLower(in.Container),
		filename:  strings.ToLower(in.Filename),
		domainTag: strings.ToLower(in.DomainTag),
		text:      strings.ToLower(in.Text),
	}
	for _, rule := range c.rules {
		if res, ok := rule.Match(low); ok {
			res.Basis = normalizeBasis(res.Basis)
			return res
		}
	}
	return Result{DocType: DocTypeOther, Confidence: ConfidenceDefault, Basis: []Signal{}}
}

// Rules exposes the decision list for inspection in tests and reviews.
func (c *Classifier) Rules() []Rule {
	return c.rules
}

func buildRules(kw Keywords) []Rule {
	return []Rule{
		{Name: "regulatory", Match: markerRule(kw.Regulatory, DocTypeRegulatory, ConfidenceRegulatory)},
		{Name: "constitutional", Match: markerRule(kw.Constitutional, DocTypeFundConstitution, ConfidenceConstitutional)},
		{Name: "service-provider-contract", Match: contractRule(kw)},
		{Name: "pipeline-memo", Match: containerContentRule(kw.PipelineContainers, kw.MemoContent, DocTypeInvestmentMemo, ConfidenceMemo)},
		{Name: "marketing", Match: marketingRule(kw)},
		{Name: "risk-policy", Match: markerRule(kw.RiskPolicy, DocTypeRiskPolicy, ConfidenceRiskPolicy)},
		{Name: "portfolio-audit", Match: auditRule(kw)},
		{Name: "investor-narrative", Match: investorFallbackRule(kw)},
	}
}

// markerRule matches its markers against container, filename, and content,
// recording each signal category that contributed.
func markerRule(markers []string, docType DocType, confidence int) func(lowered) (Result, bool) {
	return func(in lowered) (Result, bool) {
		var basis []Signal
		if containsAny(in.container, markers) || containsAny(in.domainTag, markers) {
			basis = append(basis, SignalContainer)
		}
		if containsAny(in.filename, markers) {
			basis = append(basis, SignalFilename)
		}
		if containsAny(in.text, markers) {
			basis = append(basis, SignalContent)
		}
		if len(basis) == 0 {
			return Result{}, false
		}
		return Result{DocType: docType, Confidence: confidence, Basis: basis}, true
	}
}

// contractRule matches contract markers on the path, then runs a secondary
// content check that raises the evidence basis when the body confirms it.
func contractRule(kw Keywords) func(lowered) (Result, bool) {
	return func(in lowered) (Result, bool) {
		var basis []Signal
		if containsAny(in.container, kw.Contract) {
			basis = append(basis, SignalContainer)
		}
		if containsAny(in.filename, kw.Contract) {
			basis = append(basis, SignalFilename)
		}
		if len(basis) == 0 {
			return Result{}, false
		}
		if containsAny(in.text, kw.ContractContent) {
			basis = append(basis, SignalContent)
		}
		return Result{DocType: DocTypeServiceProviderContract, Confidence: ConfidenceContract, Basis: basis}, true
	}
}

// containerContentRule matches a container identity plus a content marker.
func containerContentRule(containers, markers []string, docType DocType, confidence int) func(lowered) (Result, bool) {
	return func(in lowered) (Result, bool) {
		if !containsAny(in.container, containers) {
			return Result{}, false
		}
		if !containsAny(in.text, markers) {
			return Result{}, false
		}
		return Result{
			DocType:    docType,
			Confidence: confidence,
			Basis:      []Signal{SignalContainer, SignalContent},
		}, true
	}
}

// marketingRule matches an investor-facing container plus a marketing
// filename marker.
func marketingRule(kw Keywords) func(lowered) (Result, bool) {
	return func(in lowered) (Result, bool) {
		if !containsAny(in.container, kw.InvestorContainers) {
			return Result{}, false
		}
		if !containsAny(in.filename, kw.Marketing) {
			return Result{}, false
		}
		return Result{
			DocType:    DocTypeMarketingDeck,
			Confidence: ConfidenceMarketing,
			Basis:      []Signal{SignalContainer, SignalFilename},
		}, true
	}
}

// auditRule matches the monitoring container or audit markers on filename
// or content.
func auditRule(kw Keywords) func(lowered) (Result, bool) {
	return func(in lowered) (Result, bool) {
		var basis []Signal
		if containsAny(in.container, kw.MonitoringContainers) {
			basis = append(basis, SignalContainer)
		}
		if containsAny(in.filename, kw.Audit) {
			basis = append(basis, SignalFilename)
		}
		if containsAny(in.text, kw.Audit) {
			basis = append(basis, SignalContent)
		}
		if len(basis) == 0 {
			return Result{}, false
		}
		return Result{DocType: DocTypePortfolioAudit, Confidence: ConfidenceAudit, Basis: basis}, true
	}
}

// investorFallbackRule classifies anything left in an investor-facing
// container as narrative.
func investorFallbackRule(kw Keywords) func(lowered) (Result, bool) {
	return func(in lowered) (Result, bool) {
		if !containsAny(in.container, kw.InvestorContainers) {
			return Result{}, false
		}
		return Result{
			DocType:    DocTypeInvestorNarrative,
			Confidence: ConfidenceNarrative,
			Basis:      []Signal{SignalContainer},
		}, true
	}
}

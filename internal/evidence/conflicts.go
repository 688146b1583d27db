package evidence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"govlink/internal/authority"
	"govlink/internal/graph"
	"govlink/internal/index"
	"govlink/internal/obligation"
	"govlink/internal/registry"
	"govlink/pkg/domain"
	"govlink/pkg/platform/sentinel"
)

const (
	// conflictKeyWords is the grouping-key width for duplicate detection.
	conflictKeyWords = 8

	// ConfidenceConflict is the fixed confidence of a CONFLICTS_WITH link.
	ConfidenceConflict = 0.95

	// dueRuleDefault substitutes an unset due rule before comparison.
	dueRuleDefault = "ongoing"
)

// ConflictResult reports one conflict-detection pass.
type ConflictResult struct {
	// Detected counts obligation register rows belonging to a group whose
	// due rules diverge, including rows that could not be linked.
	Detected int
	// LinksCreated counts newly created CONFLICTS_WITH links.
	LinksCreated int
}

// DetectConflicts groups the fund's obligation register rows by an 8-word
// normalized text key and flags groups whose due rules diverge. All prior
// CONFLICTS_WITH links for the fund are invalidated first, so resolved
// conflicts disappear on the next run rather than lingering.
//
// Only rows whose originating document resolves to a BINDING or POLICY
// container receive a link; unresolvable or lower-tier rows still count.
func (s *Service) DetectConflicts(ctx context.Context, fund domain.FundID, asOf time.Time) (ConflictResult, error) {
	var result ConflictResult

	if err := s.graph.DeleteLinksByType(ctx, fund, graph.LinkConflictsWith); err != nil {
		return result, fmt.Errorf("invalidate conflict links: %w", err)
	}

	rows, err := s.obligations.ListByFund(ctx, fund, asOf)
	if err != nil {
		return result, fmt.Errorf("list obligation register: %w", err)
	}

	groups := make(map[string][]obligation.Entry)
	order := make([]string, 0)
	for _, row := range rows {
		key := strings.Join(index.SignificantWords(row.Text, conflictKeyWords), " ")
		if key == "" {
			continue
		}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], row)
	}

	for _, key := range order {
		group := groups[key]
		if len(group) < 2 || !dueRulesDiverge(group) {
			continue
		}
		result.Detected += len(group)
		s.metrics.ObserveConflictRows(len(group))

		for _, row := range group {
			created, err := s.linkConflict(ctx, fund, row)
			if err != nil {
				return result, err
			}
			if created {
				result.LinksCreated++
			}
		}
	}
	return result, nil
}

// dueRulesDiverge reports whether a duplicate group carries more than one
// distinct normalized due rule.
func dueRulesDiverge(group []obligation.Entry) bool {
	rules := make(map[string]bool, len(group))
	for _, row := range group {
		rule := index.Normalize(row.DueRule)
		if rule == "" {
			rule = dueRuleDefault
		}
		rules[rule] = true
	}
	return len(rules) > 1
}

// linkConflict upserts a CONFLICTS_WITH link for one conflicting row when
// its source document resolves to a BINDING or POLICY container. Every
// failure to resolve is soft.
func (s *Service) linkConflict(ctx context.Context, fund domain.FundID, row obligation.Entry) (bool, error) {
	entity, err := s.graph.FindEntity(ctx, fund, graph.EntityObligation, row.ObligationID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("find obligation entity %q: %w", row.ObligationID, err)
	}

	doc := s.resolveSource(ctx, fund, row)
	if doc == nil {
		return false, nil
	}
	tier := s.resolver.TierForContainer(doc.Container)
	if !tier.AtLeast(authority.TierPolicy) {
		return false, nil
	}

	rule := index.Normalize(row.DueRule)
	if rule == "" {
		rule = dueRuleDefault
	}
	link := graph.Link{
		FundID:           fund,
		SourceDocumentID: doc.ID,
		TargetEntityID:   entity.ID,
		Type:             graph.LinkConflictsWith,
		AuthorityTier:    tier,
		Confidence:       ConfidenceConflict,
		Snippet:          fmt.Sprintf("duplicate obligation with divergent due rule %q", rule),
	}
	created, err := s.graph.UpsertLink(ctx, &link)
	if err != nil {
		return false, fmt.Errorf("upsert conflict link for %q: %w", row.ObligationID, err)
	}
	return created, nil
}

// resolveSource returns the first resolvable source document of a register
// row, or nil when none resolves.
func (s *Service) resolveSource(ctx context.Context, fund domain.FundID, row obligation.Entry) *registry.Document {
	for _, docID := range row.SourceDocumentIDs {
		doc, err := s.documents.FindByID(ctx, fund, docID)
		if err == nil {
			return doc
		}
		if !errors.Is(err, sentinel.ErrNotFound) && s.logger != nil {
			s.logger.WarnContext(ctx, "conflict source document lookup failed",
				"obligation_id", row.ObligationID, "document_id", docID.String(), "error", err)
		}
	}
	return nil
}

// Package pipeline orchestrates one linking run for a fund: classification,
// governance profiling, anchor extraction, entity indexing, cross-container
// linking, evidence mapping, and conflict detection, in that order.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"govlink/internal/anchor"
	"govlink/internal/authority"
	"govlink/internal/classify"
	"govlink/internal/corpus"
	"govlink/internal/evidence"
	"govlink/internal/index"
	"govlink/internal/linker"
	"govlink/internal/pipeline/metrics"
	"govlink/internal/registry"
	"govlink/pkg/domain"
	"govlink/pkg/platform/audit"
	"govlink/pkg/platform/audit/publisher"
)

// Status is the run verdict.
type Status string

const (
	// StatusBlock signals an empty entity index: nothing could be linked.
	StatusBlock Status = "BLOCK"
	// StatusPartial signals a completed run with at least one conflict.
	StatusPartial Status = "PARTIAL"
	// StatusPass signals a clean completed run.
	StatusPass Status = "PASS"
)

// Payload carries the run counts for monitoring consumers.
type Payload struct {
	EntitiesLinked       int `json:"entities_linked"`
	LinksCreated         int `json:"links_created"`
	ObligationsSatisfied int `json:"obligations_satisfied"`
	ConflictsDetected    int `json:"conflicts_detected"`
}

// Summary is the structured result of one run.
type Summary struct {
	RunID   domain.RunID  `json:"run_id"`
	FundID  domain.FundID `json:"fund_id"`
	Mode    string        `json:"mode"`
	AsOf    time.Time     `json:"as_of"`
	Status  Status        `json:"status"`
	Payload Payload       `json:"payload"`
}

// Runner executes the full stage sequence for one fund. It holds no per-run
// state; a Runner is safe to share across funds running in parallel.
type Runner struct {
	documents  registry.Store
	classifier *classify.Classifier
	resolver   *authority.Resolver
	extractor  *anchor.Extractor
	anchors    anchor.Store
	builder    *index.Builder
	linker     *linker.Service
	evidence   *evidence.Service
	corpus     corpus.Provider

	audit   *publisher.Publisher
	tracer  trace.Tracer
	metrics *metrics.Metrics
	logger  *slog.Logger
	mode    string
	now     func() time.Time
}

// Option configures the Runner.
type Option func(*Runner)

// WithAudit sets the audit publisher for run and governance events.
func WithAudit(p *publisher.Publisher) Option {
	return func(r *Runner) {
		r.audit = p
	}
}

// WithTracer sets the tracer for per-stage spans.
func WithTracer(t trace.Tracer) Option {
	return func(r *Runner) {
		r.tracer = t
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Runner) {
		r.metrics = m
	}
}

// WithLogger sets the run logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithMode overrides the mode label reported in summaries.
func WithMode(mode string) Option {
	return func(r *Runner) {
		if mode != "" {
			r.mode = mode
		}
	}
}

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		r.now = now
	}
}

// NewRunner wires the stage services together.
func NewRunner(
	documents registry.Store,
	classifier *classify.Classifier,
	resolver *authority.Resolver,
	extractor *anchor.Extractor,
	anchors anchor.Store,
	builder *index.Builder,
	linkerService *linker.Service,
	evidenceService *evidence.Service,
	corpusProvider corpus.Provider,
	opts ...Option,
) *Runner {
	r := &Runner{
		documents:  documents,
		classifier: classifier,
		resolver:   resolver,
		extractor:  extractor,
		anchors:    anchors,
		builder:    builder,
		linker:     linkerService,
		evidence:   evidenceService,
		corpus:     corpusProvider,
		tracer:     noop.NewTracerProvider().Tracer("pipeline"),
		mode:       "batch",
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes one full pass for the fund as of the given cutoff. Reruns
// over unchanged inputs are idempotent: rows are refreshed, never
// duplicated, and stale conflict links are invalidated.
func (r *Runner) Run(ctx context.Context, fund domain.FundID, asOf time.Time) (Summary, error) {
	start := r.now()
	summary := Summary{
		RunID:  domain.NewRunID(),
		FundID: fund,
		Mode:   r.mode,
		AsOf:   asOf,
	}

	ctx, span := r.tracer.Start(ctx, "pipeline.run", trace.WithAttributes(
		attribute.String("fund_id", fund.String()),
		attribute.String("as_of", asOf.Format(time.RFC3339)),
	))
	defer span.End()

	r.emit(ctx, summary, audit.ActionRunStarted, "", "")

	if err := r.stage(ctx, "classify", func(ctx context.Context) error {
		return r.classifyDocuments(ctx, fund)
	}); err != nil {
		return summary, err
	}

	var entries []index.Entry
	if err := r.stage(ctx, "index", func(ctx context.Context) (err error) {
		entries, err = r.builder.Build(ctx, fund, asOf)
		return err
	}); err != nil {
		return summary, err
	}
	if len(entries) == 0 {
		summary.Status = StatusBlock
		r.emit(ctx, summary, audit.ActionRunBlocked, string(StatusBlock), "entity index is empty")
		r.metrics.ObserveRun(string(StatusBlock), time.Since(start))
		if r.logger != nil {
			r.logger.WarnContext(ctx, "run blocked: entity index is empty",
				"run_id", summary.RunID.String(), "fund_id", fund.String())
		}
		return summary, nil
	}

	if err := r.stage(ctx, "link", func(ctx context.Context) error {
		return r.linkDocuments(ctx, fund, entries, &summary)
	}); err != nil {
		return summary, err
	}

	if err := r.stage(ctx, "evidence", func(ctx context.Context) error {
		res, err := r.evidence.MapObligations(ctx, fund, asOf)
		if err != nil {
			return err
		}
		summary.Payload.ObligationsSatisfied = res.Satisfied
		summary.Payload.LinksCreated += res.LinksCreated
		return nil
	}); err != nil {
		return summary, err
	}

	if err := r.stage(ctx, "conflicts", func(ctx context.Context) error {
		res, err := r.evidence.DetectConflicts(ctx, fund, asOf)
		if err != nil {
			return err
		}
		summary.Payload.ConflictsDetected = res.Detected
		summary.Payload.LinksCreated += res.LinksCreated
		if res.Detected > 0 {
			r.emit(ctx, summary, audit.ActionConflictDetected, "",
				fmt.Sprintf("%d conflicting obligation rows", res.Detected))
		}
		return nil
	}); err != nil {
		return summary, err
	}

	summary.Status = StatusPass
	if summary.Payload.ConflictsDetected > 0 {
		summary.Status = StatusPartial
	}

	r.emit(ctx, summary, audit.ActionRunCompleted, string(summary.Status),
		fmt.Sprintf("entities=%d links=%d satisfied=%d conflicts=%d",
			summary.Payload.EntitiesLinked, summary.Payload.LinksCreated,
			summary.Payload.ObligationsSatisfied, summary.Payload.ConflictsDetected))
	r.metrics.ObserveRun(string(summary.Status), time.Since(start))
	if r.logger != nil {
		r.logger.InfoContext(ctx, "run completed",
			"run_id", summary.RunID.String(), "fund_id", fund.String(),
			"status", string(summary.Status),
			"links_created", summary.Payload.LinksCreated,
			"conflicts_detected", summary.Payload.ConflictsDetected)
	}
	return summary, nil
}

// classifyDocuments runs classification, governance profiling, and anchor
// extraction over every registry document. Corpus failures degrade to title
// + path; no document is skipped.
func (r *Runner) classifyDocuments(ctx context.Context, fund domain.FundID) error {
	docs, err := r.documents.ListByFund(ctx, fund)
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}

	for i := range docs {
		doc := &docs[i]
		text := r.documentText(ctx, doc)

		result := r.classifier.Classify(classify.Input{
			Container: doc.Container,
			Filename:  doc.Title,
			DomainTag: doc.DomainTag,
			Text:      text,
		})

		classification := registry.Classification{
			FundID:     fund,
			DocumentID: doc.ID,
			DocType:    result.DocType,
			Confidence: result.Confidence,
			UpdatedAt:  r.now(),
		}
		for _, s := range result.Basis {
			classification.Basis = append(classification.Basis, string(s))
		}
		if err := r.documents.UpsertClassification(ctx, &classification); err != nil {
			return fmt.Errorf("upsert classification %s: %w", doc.ID, err)
		}
		if err := r.documents.SetDetectedDocType(ctx, fund, doc.ID, result.DocType); err != nil {
			return fmt.Errorf("set detected doc type %s: %w", doc.ID, err)
		}

		resolved := r.resolver.Resolve(doc.AuthorityTag, result.DocType, doc.Container, doc.BlobPath)
		profile := registry.GovernanceProfile{
			FundID:            fund,
			DocumentID:        doc.ID,
			Authority:         resolved.Authority,
			Scope:             resolved.Scope,
			ShareabilityFinal: shareability(doc.Shareability),
			Jurisdiction:      resolved.Jurisdiction,
			UpdatedAt:         r.now(),
		}
		if err := r.documents.UpsertProfile(ctx, &profile); err != nil {
			return fmt.Errorf("upsert governance profile %s: %w", doc.ID, err)
		}

		extracted := r.extractor.Extract(text, result.DocType)
		if err := r.anchors.ReplaceForDocument(ctx, fund, doc.ID, extracted); err != nil {
			return fmt.Errorf("replace anchors %s: %w", doc.ID, err)
		}
	}
	return nil
}

// linkDocuments runs the linker over every document and accumulates counts.
// EntitiesLinked counts distinct entities any document linked to.
func (r *Runner) linkDocuments(ctx context.Context, fund domain.FundID, entries []index.Entry, summary *Summary) error {
	docs, err := r.documents.ListByFund(ctx, fund)
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}

	linked := make(map[domain.EntityID]bool)
	for i := range docs {
		res, err := r.linker.LinkDocument(ctx, &docs[i], entries)
		if err != nil {
			return fmt.Errorf("link document %s: %w", docs[i].ID, err)
		}
		summary.Payload.LinksCreated += res.Created
		for _, e := range res.Matched {
			linked[e] = true
		}
	}
	summary.Payload.EntitiesLinked = len(linked)
	return nil
}

// documentText assembles a document's raw text from its corpus chunks,
// degrading to title + path on extraction failure.
func (r *Runner) documentText(ctx context.Context, doc *registry.Document) string {
	chunks, err := corpus.TextOrFallback(ctx, r.corpus, doc)
	if err != nil && r.logger != nil {
		r.logger.WarnContext(ctx, "corpus degraded to title and path",
			"document_id", doc.ID.String(), "error", err)
	}
	parts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		parts = append(parts, c.Body)
	}
	return strings.Join(parts, "\n")
}

// stage runs one pipeline stage inside a span with latency recording.
func (r *Runner) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := r.tracer.Start(ctx, "pipeline."+name)
	defer span.End()

	start := r.now()
	err := fn(ctx)
	r.metrics.ObserveStage(name, time.Since(start))
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("stage %s: %w", name, err)
	}
	return nil
}

func (r *Runner) emit(ctx context.Context, summary Summary, action audit.Action, outcome, detail string) {
	if r.audit == nil {
		return
	}
	err := r.audit.Emit(ctx, audit.Event{
		RunID:   summary.RunID,
		FundID:  summary.FundID,
		Action:  action,
		Outcome: outcome,
		Detail:  detail,
	})
	if err != nil && r.logger != nil {
		r.logger.WarnContext(ctx, "audit emit failed", "action", string(action), "error", err)
	}
}

// shareability finalizes the scanner's shareability tag, defaulting unset
// tags to restricted.
func shareability(tag string) string {
	if tag == "" {
		return "restricted"
	}
	return tag
}

package anchor

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"govlink/internal/classify"
)

const (
	// maxAnchors caps the anchor set per document.
	maxAnchors = 40
	// snippetLen is the evidentiary snippet clip length.
	snippetLen = 450
	// lawClipLen bounds the governing-law anchor value.
	lawClipLen = 120
)

var (
	dateRe = regexp.MustCompile(`\b(\d{4})[-/](\d{2})[-/](\d{2})\b`)
	lawRe  = regexp.MustCompile(`(?i)governed by the laws? of\s+[^.;\n]+`)
	sectRe = regexp.MustCompile(`(?i)\b(?:section|sec\.)\s+\d+(?:\.\d+)*`)
)

// Config holds the keyword tables the extractor matches against, injected so
// tests can override them.
type Config struct {
	// BrandMarkers identify the fund family in running text.
	BrandMarkers []string
	// ProviderRoles are the service-provider role keywords.
	ProviderRoles []string
	// ObligationKeywords mark binding language.
	ObligationKeywords []string
}

// DefaultConfig returns the production keyword tables.
func DefaultConfig() Config {
	return Config{
		BrandMarkers:       []string{"meridian"},
		ProviderRoles:      []string{"administrator", "custodian", "counsel", "service provider"},
		ObligationKeywords: []string{"must", "shall", "required", "requirement"},
	}
}

// Extractor produces knowledge anchors from raw text. Extraction is pure and
// total: any input, including empty text, yields at least one anchor.
type Extractor struct {
	cfg Config
}

// NewExtractor builds an Extractor from the given keyword tables.
func NewExtractor(cfg Config) *Extractor {
	return &Extractor{cfg: cfg}
}

// Extract returns the full anchor set for a document, capped at 40. The
// classified docType only feeds the fallback anchor emitted when nothing
// else matched.
func (e *Extractor) Extract(text string, docType classify.DocType) []Anchor {
	low := strings.ToLower(text)
	anchors := make([]Anchor, 0, 8)

	// Fund name: one anchor when both a brand marker and the word "fund"
	// appear.
	if strings.Contains(low, "fund") {
		for _, brand := range e.cfg.BrandMarkers {
			if strings.Contains(low, brand) {
				anchors = append(anchors, Anchor{
					Type:    TypeFundName,
					Value:   brand,
					Snippet: clip(text, snippetLen),
				})
				break
			}
		}
	}

	// Provider roles: one anchor per role keyword present.
	for _, role := range e.cfg.ProviderRoles {
		if idx := strings.Index(low, role); idx >= 0 {
			anchors = append(anchors, Anchor{
				Type:    TypeProviderName,
				Value:   role,
				Snippet: snippetAround(text, idx),
			})
		}
	}

	// Effective dates: every ISO-like occurrence counts, normalized to
	// hyphens, no dedup.
	for _, loc := range dateRe.FindAllStringSubmatchIndex(text, -1) {
		raw := text[loc[0]:loc[1]]
		anchors = append(anchors, Anchor{
			Type:    TypeEffectiveDate,
			Value:   strings.ReplaceAll(raw, "/", "-"),
			Snippet: snippetAround(text, loc[0]),
		})
	}

	// Governing law: first matching phrase only.
	if loc := lawRe.FindStringIndex(text); loc != nil {
		anchors = append(anchors, Anchor{
			Type:    TypeGoverningLaw,
			Value:   clip(text[loc[0]:loc[1]], lawClipLen),
			Snippet: snippetAround(text, loc[0]),
		})
	}

	// Regulatory references: every "section N" occurrence.
	for _, loc := range sectRe.FindAllStringIndex(text, -1) {
		anchors = append(anchors, Anchor{
			Type:    TypeRegulatoryReference,
			Value:   strings.ToLower(text[loc[0]:loc[1]]),
			Snippet: snippetAround(text, loc[0]),
		})
	}

	// Obligation keywords: one anchor per distinct keyword found.
	for _, kw := range e.cfg.ObligationKeywords {
		if idx := wordIndex(low, kw); idx >= 0 {
			anchors = append(anchors, Anchor{
				Type:    TypeObligationKeyword,
				Value:   kw,
				Snippet: snippetAround(text, idx),
			})
		}
	}

	// Fallback: every document carries at least one anchor.
	if len(anchors) == 0 {
		anchors = append(anchors, Anchor{
			Type:    TypeDocType,
			Value:   string(docType),
			Snippet: clip(text, snippetLen),
		})
	}

	if len(anchors) > maxAnchors {
		anchors = anchors[:maxAnchors]
	}
	return anchors
}

// wordIndex finds kw as a whole word in s, returning -1 when absent. Plain
// substring search would count "required" inside "requirement".
func wordIndex(s, kw string) int {
	for start := 0; start < len(s); {
		idx := strings.Index(s[start:], kw)
		if idx < 0 {
			return -1
		}
		abs := start + idx
		before := abs == 0 || !isWordChar(s[abs-1])
		afterIdx := abs + len(kw)
		after := afterIdx >= len(s) || !isWordChar(s[afterIdx])
		if before && after {
			return abs
		}
		start = abs + 1
	}
	return -1
}

func isWordChar(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// clip truncates s to at most max bytes with a trailing ellipsis, never
// cutting through a multi-byte rune.
func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:runeFloor(s, max-3)] + "..."
}

// snippetAround clips a window of source text starting shortly before idx.
func snippetAround(text string, idx int) string {
	start := idx - 80
	if start < 0 {
		start = 0
	}
	return clip(text[runeFloor(text, start):], snippetLen)
}

// runeFloor backs idx up to the nearest rune boundary at or before it.
func runeFloor(s string, idx int) int {
	for idx > 0 && !utf8.RuneStart(s[idx]) {
		idx--
	}
	return idx
}

package model

import (
	"fmt"
	"path"
	"sort"
	"strings"
)

// EvidenceDocument represents a retrieved text chunk used to ground a claim
type EvidenceDocument struct {
	Content  string            `json:"content" yaml:"content"`                       // Raw text snippet
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"` // Source path/URL, title, page hint
	Score    float64           `json:"score" yaml:"score"`                           // Combined relevance, higher = more relevant
}

// Key builds a stable identity for merging/de-duplication across retrieval
// backends: the content plus all metadata items in sorted order.
func (d EvidenceDocument) Key() string {
	keys := make([]string, 0, len(d.Metadata))
	for k := range d.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(d.Content)
	for _, k := range keys {
		b.WriteByte('\x00')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(d.Metadata[k])
	}
	return b.String()
}

// Source returns the raw source identifier (file path or URL), or "unknown"
func (d EvidenceDocument) Source() string {
	if src := d.Metadata["source"]; src != "" {
		return src
	}
	if src := d.Metadata["file_path"]; src != "" {
		return src
	}
	return "unknown"
}

// SourceLabel returns a short citation label like "report.pdf, p.3"
func (d EvidenceDocument) SourceLabel() string {
	name := path.Base(d.Source())
	if page := d.Metadata["page"]; page != "" {
		return fmt.Sprintf("%s, p.%s", name, page)
	}
	return name
}

// WebResult is a single external web search hit
type WebResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Link    string `json:"link"`
}

// EvidenceBundle groups the evidence attached to one verification record
type EvidenceBundle struct {
	LocalSnippets []string `json:"local_snippets"`
	LocalSources  []string `json:"local_sources"`
	WebSnippets   []string `json:"web_snippets"`
	WebLinks      []string `json:"web_links"`
}

// VerificationRecord is the aggregate output for a single verified claim.
// SourceScore and FinalScore are nil when source scoring is disabled.
type VerificationRecord struct {
	Claim        string         `json:"claim"`
	Verdict      Verdict        `json:"verdict"`
	SupportScore float64        `json:"support_score"`
	SourceScore  *float64       `json:"source_score,omitempty"`
	FinalScore   *float64       `json:"final_score,omitempty"`
	Explanation  string         `json:"explanation,omitempty"`
	Evidence     EvidenceBundle `json:"evidence"`
}

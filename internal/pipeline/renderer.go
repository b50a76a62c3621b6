package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/claimlens/internal/model"
)

// Renderer writes reports as JSON or Markdown
type Renderer struct {
	includeTimings bool
}

// NewRenderer creates a renderer. includeTimings adds the per-stage
// latency table to Markdown output.
func NewRenderer(includeTimings bool) *Renderer {
	return &Renderer{includeTimings: includeTimings}
}

// RenderJSON writes the report as indented JSON
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// RenderMarkdown writes the report as a readable Markdown document
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	if err := os.WriteFile(path, []byte(r.Markdown(report)), 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// Markdown builds the Markdown body for a report
func (r *Renderer) Markdown(report *model.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Analysis Report\n\n")
	fmt.Fprintf(&b, "**Question:** %s\n\n", report.Question)
	fmt.Fprintf(&b, "**Analyzed:** %s\n\n", report.AnalyzedAt.Format("2006-01-02 15:04:05 UTC"))

	fmt.Fprintf(&b, "## Answer\n\n%s\n\n", report.Answer.Text)
	if len(report.Answer.Sources) > 0 {
		fmt.Fprintf(&b, "**Sources:** %s\n\n", strings.Join(report.Answer.Sources, "; "))
	}

	if len(report.Claims) > 0 {
		fmt.Fprintf(&b, "## Claims\n\n")
		for _, claim := range report.Claims {
			fmt.Fprintf(&b, "- %s\n", claim)
		}
		b.WriteString("\n")
	}

	if len(report.Verification) > 0 {
		fmt.Fprintf(&b, "## Verification\n\n")
		for _, v := range report.Verification {
			fmt.Fprintf(&b, "### %s\n\n", v.Claim)
			fmt.Fprintf(&b, "- Verdict: %s\n", v.Verdict)
			fmt.Fprintf(&b, "- Evidence support: %.1f\n", v.SupportScore)
			if v.SourceScore != nil {
				fmt.Fprintf(&b, "- Source credibility: %.1f\n", *v.SourceScore)
			}
			if v.FinalScore != nil {
				fmt.Fprintf(&b, "- Final score: %.3f\n", *v.FinalScore)
			}
			if len(v.Evidence.LocalSources) > 0 {
				fmt.Fprintf(&b, "- Local sources: %s\n", strings.Join(v.Evidence.LocalSources, "; "))
			}
			if len(v.Evidence.WebLinks) > 0 {
				fmt.Fprintf(&b, "- Web links: %s\n", strings.Join(v.Evidence.WebLinks, "; "))
			}
			if v.Explanation != "" {
				fmt.Fprintf(&b, "\n%s\n", v.Explanation)
			}
			b.WriteString("\n")
		}
	}

	if r.includeTimings && len(report.Timings) > 0 {
		fmt.Fprintf(&b, "## Timings\n\n")
		for _, stage := range []string{"reformulation", "retrieval", "answer", "claims", "verification"} {
			if secs, ok := report.Timings[stage]; ok {
				fmt.Fprintf(&b, "- %s: %.2fs\n", stage, secs)
			}
		}
		b.WriteString("\n")
	}

	return b.String()
}

// RenderSummary prints a short result overview to stdout
func (r *Renderer) RenderSummary(report *model.Report) {
	fmt.Printf("\nQuestion: %s\n", report.Question)
	fmt.Printf("Answer:   %s\n", report.Answer.Text)

	if len(report.Verification) > 0 {
		fmt.Println("\nClaims:")
		for _, v := range report.Verification {
			line := fmt.Sprintf("  [%s] %s", v.Verdict, v.Claim)
			if v.FinalScore != nil {
				line += fmt.Sprintf(" (score %.3f)", *v.FinalScore)
			}
			fmt.Println(line)
		}
	}
}

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/claimlens/internal/model"
	"github.com/ppiankov/claimlens/internal/pipeline"
)

var (
	outJSON    string
	outMD      string
	timeout    time.Duration
	sessionID  string
	articleIn  string
	noClaims   bool
	noReform   bool
	noSources  bool
	withWeb    bool
	explain    bool
	kRetrieval int
	kMemory    int
	maxClaims  int
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [question]",
	Short: "Answer a question and verify an article's claims",
	Long: `Analyze answers a question over the local corpus and, when an article
is provided, extracts its factual claims and verifies each one:
- Retrieve local evidence with hybrid dense + keyword search
- Optionally add web search results as extra evidence
- Ask the language model for a support/contradict/unrelated verdict
- Aggregate evidence support, source credibility, and the verdict
  into a credibility score on a 1-5 scale

Example:
  claimlens analyze "when is the apple event?"
  claimlens analyze --article story.txt --web --json report.json
  claimlens analyze "did rates rise?" --session trading --md report.md`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	// Output flags
	analyzeCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path")
	analyzeCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path")

	// Input flags
	analyzeCmd.Flags().StringVar(&articleIn, "article", "", "article text file to verify ('-' for stdin)")
	analyzeCmd.Flags().StringVar(&sessionID, "session", "", "conversation session id")

	// Stage toggles
	analyzeCmd.Flags().BoolVar(&noClaims, "no-claims", false, "skip claim extraction and verification")
	analyzeCmd.Flags().BoolVar(&noReform, "no-reformulation", false, "skip query reformulation")
	analyzeCmd.Flags().BoolVar(&noSources, "no-source-scores", false, "skip source credibility scoring")
	analyzeCmd.Flags().BoolVar(&withWeb, "web", false, "include web search evidence")
	analyzeCmd.Flags().BoolVar(&explain, "explain", false, "generate score explanations")

	// Tuning flags
	analyzeCmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "overall analysis timeout")
	analyzeCmd.Flags().IntVar(&kRetrieval, "k", 8, "retrieval candidates per backend")
	analyzeCmd.Flags().IntVar(&kMemory, "k-memory", 3, "past exchanges recalled from memory")
	analyzeCmd.Flags().IntVar(&maxClaims, "max-claims", 8, "maximum claims to verify per article")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	question := ""
	if len(args) == 1 {
		question = args[0]
	}

	article, err := readArticle(articleIn)
	if err != nil {
		return err
	}
	if question == "" && article == "" {
		return fmt.Errorf("provide a question, an --article, or both")
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if withWeb {
		cfg.Web.Enabled = true
	}

	knobs := knobsFromFlags()
	application, err := buildApp(cfg, knobs)
	if err != nil {
		return err
	}
	defer application.Close()

	if verbose {
		fmt.Fprintf(os.Stderr, "Analyzing: %s\n", question)
		fmt.Fprintf(os.Stderr, "Web evidence: %v\n", cfg.Web.Enabled)
		fmt.Fprintln(os.Stderr)
	}

	report, err := application.analyzer.Analyze(ctx, pipeline.AnalyzeRequest{
		Question:  question,
		Article:   article,
		SessionID: sessionID,
	})
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Extracted %d claims\n", len(report.Claims))
		fmt.Fprintf(os.Stderr, "✓ Verified %d claims\n", len(report.Verification))
		fmt.Fprintln(os.Stderr)
	}

	if outJSON != "" {
		if err := application.renderer.RenderJSON(report, outJSON); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", outJSON)
		}
	}
	if outMD != "" {
		if err := application.renderer.RenderMarkdown(report, outMD); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote Markdown: %s\n", outMD)
		}
	}

	application.renderer.RenderSummary(report)
	return nil
}

// knobsFromFlags translates CLI toggles into pipeline knobs
func knobsFromFlags() model.Knobs {
	return model.Knobs{
		UseReformulation:  !noReform,
		DoClaims:          !noClaims,
		VerifySourceScore: !noSources,
		UseWeb:            withWeb,
		ExplainScores:     explain,
		KRetrieval:        kRetrieval,
		KMemory:           kMemory,
		MaxClaims:         maxClaims,
	}
}

// readArticle loads the article body from a file or stdin
func readArticle(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read article: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

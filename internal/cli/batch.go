package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/claimlens/internal/model"
	"github.com/ppiankov/claimlens/internal/pipeline"
	"github.com/ppiankov/claimlens/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Analyze multiple items from a JSONL file in parallel",
	Long: `Batch processes multiple items concurrently:
- Read items from a JSONL file, one JSON object per line with
  "question" and/or "article" fields (plus optional "id" and "session")
- Analyze items in parallel with a bounded worker count
- Write one JSON and one Markdown report per item

Example:
  claimlens batch items.jsonl
  claimlens batch items.jsonl --concurrency 8 --output-dir ./reports
  claimlens batch items.jsonl --web --explain`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 4, "number of concurrent analyses")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./claimlens-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for batch processing")

	// Stage toggles shared with analyze
	batchCmd.Flags().BoolVar(&noClaims, "no-claims", false, "skip claim extraction and verification")
	batchCmd.Flags().BoolVar(&noReform, "no-reformulation", false, "skip query reformulation")
	batchCmd.Flags().BoolVar(&noSources, "no-source-scores", false, "skip source credibility scoring")
	batchCmd.Flags().BoolVar(&withWeb, "web", false, "include web search evidence")
	batchCmd.Flags().BoolVar(&explain, "explain", false, "generate score explanations")
	batchCmd.Flags().IntVar(&kRetrieval, "k", 8, "retrieval candidates per backend")
	batchCmd.Flags().IntVar(&kMemory, "k-memory", 3, "past exchanges recalled from memory")
	batchCmd.Flags().IntVar(&maxClaims, "max-claims", 8, "maximum claims to verify per article")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	items, err := worker.ReadItems(file)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if withWeb {
		cfg.Web.Enabled = true
	}
	if concurrency < 1 {
		concurrency = cfg.Concurrency.Workers
	}

	application, err := buildApp(cfg, knobsFromFlags())
	if err != nil {
		return err
	}
	defer application.Close()

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Processing %d items with %d workers...\n\n", len(items), concurrency)

	runner := worker.NewRunner(concurrency)
	outcomes := runner.Run(ctx, items, func(ctx context.Context, item worker.Item) (*model.Report, error) {
		return application.analyzer.Analyze(ctx, pipeline.AnalyzeRequest{
			Question:  item.Question,
			Article:   item.Article,
			SessionID: item.Session,
		})
	})

	successCount := 0
	failureCount := 0
	for i, outcome := range outcomes {
		label := outcome.Item.ID
		if label == "" {
			label = fmt.Sprintf("item-%d", i+1)
		}

		if outcome.Err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", label, outcome.Err)
			continue
		}
		successCount++

		slug := sanitizeFilename(label)
		jsonPath := filepath.Join(outputDir, slug+".json")
		mdPath := filepath.Join(outputDir, slug+".md")

		if err := application.renderer.RenderJSON(outcome.Report, jsonPath); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write JSON: %v\n", label, err)
			continue
		}
		if err := application.renderer.RenderMarkdown(outcome.Report, mdPath); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write Markdown: %v\n", label, err)
			continue
		}

		fmt.Fprintf(os.Stderr, "✓ %s (%d claims verified)\n", label, len(outcome.Report.Verification))
	}

	fmt.Fprintf(os.Stderr, "\nTotal: %d  Success: %d  Failures: %d  Output: %s\n",
		len(outcomes), successCount, failureCount, outputDir)

	return nil
}

// sanitizeFilename sanitizes a string for use as a filename
func sanitizeFilename(s string) string {
	replacer := strings.NewReplacer(
		"/", "_", "\\", "_", ":", "_", "*", "_", "?", "_",
		"\"", "_", "<", "_", ">", "_", "|", "_", " ", "-",
	)
	s = replacer.Replace(s)
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

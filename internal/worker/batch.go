package worker

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/ppiankov/claimlens/internal/model"
)

// Item is one line of a batch input file
type Item struct {
	ID       string `json:"id,omitempty"`
	Question string `json:"question,omitempty"`
	Article  string `json:"article,omitempty"`
	Session  string `json:"session,omitempty"`
}

// Outcome pairs an item with its analysis result
type Outcome struct {
	Item   Item
	Report *model.Report
	Err    error
}

// AnalyzeFunc runs the analysis for a single item
type AnalyzeFunc func(ctx context.Context, item Item) (*model.Report, error)

// Runner executes batch items concurrently with a bounded number of
// in-flight analyses. Outcomes keep input order regardless of
// completion order.
type Runner struct {
	concurrency int
}

// NewRunner creates a runner. Concurrency below 1 runs sequentially.
func NewRunner(concurrency int) *Runner {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Runner{concurrency: concurrency}
}

// Run processes every item and returns one outcome per input, in input
// order. Individual failures are captured in their outcome; Run itself
// only stops early when the context is canceled.
func (r *Runner) Run(ctx context.Context, items []Item, fn AnalyzeFunc) []Outcome {
	outcomes := make([]Outcome, len(items))
	sem := make(chan struct{}, r.concurrency)
	var wg sync.WaitGroup

	for i, item := range items {
		select {
		case <-ctx.Done():
			outcomes[i] = Outcome{Item: item, Err: ctx.Err()}
			continue
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(i int, item Item) {
			defer wg.Done()
			defer func() { <-sem }()

			report, err := fn(ctx, item)
			outcomes[i] = Outcome{Item: item, Report: report, Err: err}
		}(i, item)
	}

	wg.Wait()
	return outcomes
}

// ReadItems loads batch items from a JSONL file, one JSON object per
// line. Blank lines are skipped; a malformed line fails the whole read
// so partial batches are never silently analyzed.
func ReadItems(path string) ([]Item, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open batch file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var items []Item
	lineNo := 0

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var item Item
		if err := json.Unmarshal([]byte(line), &item); err != nil {
			return nil, fmt.Errorf("parse line %d: %w", lineNo, err)
		}
		if item.Question == "" && item.Article == "" {
			return nil, fmt.Errorf("line %d: item needs a question or an article", lineNo)
		}
		items = append(items, item)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan batch file: %w", err)
	}

	return items, nil
}

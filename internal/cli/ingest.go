package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/claimlens/internal/model"
)

// chunkTargetChars is the soft length target when splitting documents
const chunkTargetChars = 800

var ingestTimeout time.Duration

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest <path>...",
	Short: "Index documents into the local corpus",
	Long: `Ingest loads documents into the retrieval indexes: the keyword index
and, when an embedding backend is configured, the dense index.

Text and Markdown files are split into paragraph-aligned chunks. JSONL
files are treated as pre-chunked documents, one JSON object per line:

  {"content": "...", "metadata": {"source": "...", "title": "..."}}

Directories are walked recursively; only .txt, .md and .jsonl files
are read.

Example:
  claimlens ingest ./corpus
  claimlens ingest notes/apple.md chunks.jsonl`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().DurationVar(&ingestTimeout, "timeout", 10*time.Minute, "total ingest timeout")
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), ingestTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	application, err := buildApp(cfg, model.Knobs{KRetrieval: cfg.Retrieval.K, MaxClaims: 1})
	if err != nil {
		return err
	}
	defer application.Close()

	var files []string
	for _, arg := range args {
		found, err := collectFiles(arg)
		if err != nil {
			return err
		}
		files = append(files, found...)
	}
	if len(files) == 0 {
		return fmt.Errorf("no .txt, .md or .jsonl files found")
	}

	totalChunks := 0
	for _, file := range files {
		docs, err := chunkFile(file)
		if err != nil {
			return err
		}
		if len(docs) == 0 {
			continue
		}

		if err := application.lexical.Add(ctx, docs); err != nil {
			return fmt.Errorf("index %s: %w", file, err)
		}
		if application.dense != nil {
			if err := application.dense.Add(ctx, docs); err != nil {
				return fmt.Errorf("embed %s: %w", file, err)
			}
		}

		totalChunks += len(docs)
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ %s (%d chunks)\n", file, len(docs))
		}
	}

	fmt.Fprintf(os.Stderr, "Indexed %d chunks from %d files\n", totalChunks, len(files))
	return nil
}

// collectFiles expands a path into the text files beneath it
func collectFiles(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return []string{root}, nil
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".txt", ".md", ".jsonl":
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return files, nil
}

// chunkFile reads a file and splits it into indexable documents
func chunkFile(path string) ([]model.EvidenceDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if strings.EqualFold(filepath.Ext(path), ".jsonl") {
		return parseDocLines(path, data)
	}

	title := firstHeading(string(data))
	chunks := chunkText(string(data))

	docs := make([]model.EvidenceDocument, 0, len(chunks))
	for i, chunk := range chunks {
		meta := map[string]string{
			"source": path,
			"page":   fmt.Sprintf("%d", i+1),
		}
		if title != "" {
			meta["title"] = title
		}
		docs = append(docs, model.EvidenceDocument{Content: chunk, Metadata: meta})
	}
	return docs, nil
}

// parseDocLines decodes a JSONL file of pre-chunked documents
func parseDocLines(path string, data []byte) ([]model.EvidenceDocument, error) {
	var docs []model.EvidenceDocument
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var doc model.EvidenceDocument
		if err := json.Unmarshal([]byte(line), &doc); err != nil {
			return nil, fmt.Errorf("parse %s line %d: %w", path, i+1, err)
		}
		if strings.TrimSpace(doc.Content) == "" {
			return nil, fmt.Errorf("parse %s line %d: missing content", path, i+1)
		}
		if doc.Metadata == nil {
			doc.Metadata = map[string]string{}
		}
		if doc.Metadata["source"] == "" {
			doc.Metadata["source"] = path
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// chunkText splits text on blank lines, packing paragraphs until the
// chunk target is reached. Paragraph boundaries are never broken.
func chunkText(text string) []string {
	paragraphs := strings.Split(text, "\n\n")

	var chunks []string
	var current strings.Builder
	for _, para := range paragraphs {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if current.Len() > 0 && current.Len()+len(para) > chunkTargetChars {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

// firstHeading returns the first Markdown heading, if any
func firstHeading(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "#") {
			return strings.TrimSpace(strings.TrimLeft(line, "#"))
		}
	}
	return ""
}

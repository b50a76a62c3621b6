package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/claimlens/internal/cache"
	"github.com/ppiankov/claimlens/internal/extract"
	"github.com/ppiankov/claimlens/internal/index"
	"github.com/ppiankov/claimlens/internal/llm"
	"github.com/ppiankov/claimlens/internal/memory"
	"github.com/ppiankov/claimlens/internal/model"
	"github.com/ppiankov/claimlens/internal/pipeline"
	"github.com/ppiankov/claimlens/internal/qa"
	"github.com/ppiankov/claimlens/internal/query"
	"github.com/ppiankov/claimlens/internal/retrieve"
	"github.com/ppiankov/claimlens/internal/score"
	"github.com/ppiankov/claimlens/internal/source"
	"github.com/ppiankov/claimlens/internal/verify"
	"github.com/ppiankov/claimlens/internal/web"
)

// app bundles the wired pipeline and the handles that need closing
type app struct {
	analyzer *pipeline.Analyzer
	renderer *pipeline.Renderer
	lexical  *index.BleveIndex
	dense    *index.MemoryDenseIndex
	config   *model.Config
	log      *slog.Logger
}

func (a *app) Close() {
	if a.lexical != nil {
		_ = a.lexical.Close()
	}
}

// loadConfig merges the config file over the defaults and pulls API keys
// from the environment.
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()

	if path := viper.ConfigFileUsed(); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		if cfg.LLM.APIKey == "" {
			cfg.LLM.APIKey = key
		}
		if cfg.Embedding.APIKey == "" {
			cfg.Embedding.APIKey = key
		}
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" && cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = key
	}
	if key := os.Getenv("SERPAPI_KEY"); key != "" && cfg.Web.APIKey == "" {
		cfg.Web.APIKey = key
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the component logger. Diagnostics go to stderr so
// stdout stays clean for report output.
func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// buildApp wires every pipeline component from configuration. All
// construction happens here so a broken setup fails before any work
// starts.
func buildApp(cfg *model.Config, knobs model.Knobs) (*app, error) {
	log := newLogger()

	gen, err := llm.NewGenerator(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return nil, fmt.Errorf("llm provider: %w", err)
	}

	lexical, err := index.OpenBleveIndex(cfg.Retrieval.IndexDir)
	if err != nil {
		return nil, fmt.Errorf("lexical index: %w", err)
	}

	var denseIdx *index.MemoryDenseIndex
	var dense index.DenseIndex
	embedder, err := llm.NewOpenAIEmbedder(cfg.Embedding)
	if err != nil {
		log.Warn("dense retrieval disabled", "error", err)
	} else {
		denseIdx, err = index.NewMemoryDenseIndex(embedder, cfg.Retrieval.DenseStorePath)
		if err != nil {
			_ = lexical.Close()
			return nil, fmt.Errorf("dense index: %w", err)
		}
		dense = denseIdx
	}

	ranker := retrieve.NewHybridRanker(dense, lexical, cfg.Retrieval.WeightDense, cfg.Retrieval.WeightSparse)
	selector := retrieve.NewEvidenceSelector(ranker, cfg.Retrieval.MaxEvidenceDocs)

	var store cache.Cache
	if cfg.Cache.Enabled {
		store = cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
	}

	var searcher pipeline.WebSearcher
	var enricher pipeline.SnippetEnricher
	if cfg.Web.Enabled && cfg.Web.Endpoint != "" {
		searcher = web.NewSearchClient(cfg.Web, store)
		if cfg.Web.FetchSnippets {
			enricher = web.NewSnippetFetcher(cfg.Web, store)
		}
	}

	var priorFallback llm.Generator
	if cfg.LLM.EnablePriorFallback {
		priorFallback = gen
	}
	scorer := source.NewScorer(cfg.Reputation, source.NewTierClassifier(nil, nil), priorFallback)
	if store != nil {
		scorer = scorer.WithCache(store)
	}

	var explainer llm.Generator
	if cfg.LLM.EnableExplanations {
		explainer = gen
	}
	aggregator, err := score.NewAggregator(cfg.Weights, explainer)
	if err != nil {
		_ = lexical.Close()
		return nil, err
	}

	verifier := pipeline.NewClaimVerifier(selector, searcher, enricher,
		verify.NewCrossVerifier(gen), scorer, aggregator, log)

	mem := memory.New(memory.Options{
		WindowPairs: cfg.Memory.WindowPairs,
		SessionTTL:  cfg.Memory.SessionTTL,
		LongTerm:    dense,
	})

	var planner pipeline.Planner
	if knobs.UseReformulation {
		planner = query.NewReformulator(gen)
	}

	analyzer := pipeline.NewAnalyzer(
		planner,
		ranker,
		qa.NewAnswerer(gen),
		extract.NewClaimExtractor(gen, knobs.MaxClaims),
		verifier,
		mem,
		knobs,
		log,
	)

	return &app{
		analyzer: analyzer,
		renderer: pipeline.NewRenderer(cfg.Output.IncludeTimings),
		lexical:  lexical,
		dense:    denseIdx,
		config:   cfg,
		log:      log,
	}, nil
}

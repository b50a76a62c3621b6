package model

import "time"

// Report represents the complete analysis of one question or article:
// the grounded answer, extracted claims, and per-claim verification.
type Report struct {
	ID         string    `json:"id"`
	Question   string    `json:"question"`
	SessionID  string    `json:"session_id,omitempty"`
	AnalyzedAt time.Time `json:"analyzed_at"`

	Answer Answer `json:"answer"`

	Claims       []string             `json:"claims"`
	Verification []VerificationRecord `json:"verification"`

	Plan *ReformulationPlan `json:"plan,omitempty"` // Query reformulation, if used

	Timings map[string]float64 `json:"timings"` // Per-stage latency in seconds
	Knobs   Knobs              `json:"knobs"`   // Feature toggles applied to this run
}

// Answer is the generated answer plus its cited local sources
type Answer struct {
	Text     string   `json:"text"`
	Sources  []string `json:"sources,omitempty"`
	LatencyS float64  `json:"latency_s"`
}

// ReformulationPlan is the retrieval plan produced by query reformulation
type ReformulationPlan struct {
	KeywordQueries   []string `json:"keyword_queries"`
	SemanticQuery    string   `json:"semantic_query"`
	PreferredDomains []string `json:"preferred_domains"`
}

// Knobs records which optional stages were enabled for a run
type Knobs struct {
	UseReformulation  bool `json:"use_reformulation"`
	DoClaims          bool `json:"do_claims"`
	VerifySourceScore bool `json:"verify_source_score"`
	UseWeb            bool `json:"use_web"`
	ExplainScores     bool `json:"explain_scores"`
	KRetrieval        int  `json:"k_retrieval"`
	KMemory           int  `json:"k_memory"`
	MaxClaims         int  `json:"max_claims"`
}

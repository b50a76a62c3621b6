package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/ppiankov/claimlens/internal/index"
	"github.com/ppiankov/claimlens/internal/model"
)

// GlobalSession is the sentinel for callers that do not track sessions.
// All such turns share one short-term window.
const GlobalSession = "global"

// defaultWindowPairs is how many question/answer pairs the short-term
// window retains per session.
const defaultWindowPairs = 4

// Turn is one question/answer exchange
type Turn struct {
	Question string
	Answer   string
	At       time.Time
}

// DualMemory keeps a bounded per-session short-term window plus a
// long-term semantic store shared across sessions. Short-term turns
// expire with their session; long-term memory only grows.
type DualMemory struct {
	mu       sync.Mutex
	sessions *gocache.Cache
	window   int
	ltm      index.DenseIndex // nil disables long-term recall
}

// Options tune a DualMemory. Zero values pick the defaults.
type Options struct {
	WindowPairs int
	SessionTTL  time.Duration
	LongTerm    index.DenseIndex
}

// New creates a DualMemory. Sessions idle past the TTL are evicted along
// with their windows.
func New(opts Options) *DualMemory {
	window := opts.WindowPairs
	if window < 1 {
		window = defaultWindowPairs
	}
	ttl := opts.SessionTTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &DualMemory{
		sessions: gocache.New(ttl, ttl),
		window:   window,
		ltm:      opts.LongTerm,
	}
}

// RecordTurn appends a turn to the session window and archives it in
// long-term memory. An empty session ID maps to the global session.
// Long-term archival is best-effort; its error is returned but the
// short-term write always lands first.
func (m *DualMemory) RecordTurn(ctx context.Context, sessionID, question, answer string) error {
	sessionID = normalizeSession(sessionID)
	turn := Turn{Question: question, Answer: answer, At: time.Now()}

	m.mu.Lock()
	var turns []Turn
	if val, found := m.sessions.Get(sessionID); found {
		turns = val.([]Turn)
	}
	turns = append(turns, turn)
	if len(turns) > m.window {
		turns = turns[len(turns)-m.window:]
	}
	m.sessions.Set(sessionID, turns, gocache.DefaultExpiration)
	m.mu.Unlock()

	if m.ltm == nil {
		return nil
	}
	doc := model.EvidenceDocument{
		Content: fmt.Sprintf("Q: %s\nA: %s", question, answer),
		Metadata: map[string]string{
			"source":  "memory",
			"session": sessionID,
		},
	}
	if err := m.ltm.Add(ctx, []model.EvidenceDocument{doc}); err != nil {
		return fmt.Errorf("archive turn: %w", err)
	}
	return nil
}

// History returns the session's short-term window, oldest first
func (m *DualMemory) History(sessionID string) []Turn {
	sessionID = normalizeSession(sessionID)

	m.mu.Lock()
	defer m.mu.Unlock()
	if val, found := m.sessions.Get(sessionID); found {
		turns := val.([]Turn)
		out := make([]Turn, len(turns))
		copy(out, turns)
		return out
	}
	return nil
}

// Recall searches long-term memory for past exchanges relevant to the
// query. Returns nil when long-term memory is disabled.
func (m *DualMemory) Recall(ctx context.Context, query string, k int) ([]model.EvidenceDocument, error) {
	if m.ltm == nil || strings.TrimSpace(query) == "" || k < 1 {
		return nil, nil
	}
	docs, err := m.ltm.Search(ctx, query, k)
	if err != nil {
		return nil, fmt.Errorf("recall: %w", err)
	}
	return docs, nil
}

func normalizeSession(id string) string {
	if strings.TrimSpace(id) == "" {
		return GlobalSession
	}
	return id
}

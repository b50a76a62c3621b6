package query

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

type fakeGenerator struct {
	reply string
	err   error
}

func (f *fakeGenerator) Name() string { return "fake" }

func (f *fakeGenerator) Generate(_ context.Context, _ string) (string, error) {
	return f.reply, f.err
}

func (f *fakeGenerator) IsAvailable(_ context.Context) bool { return true }

func TestReformulateParsesPlan(t *testing.T) {
	reply := `{
		"keyword_queries": ["apple launch event date", "apple september hardware event"],
		"semantic_query": "When is Apple holding its next hardware launch event?",
		"preferred_domains": ["theverge.com", "reuters.com"]
	}`
	r := NewReformulator(&fakeGenerator{reply: reply})

	plan := r.Reformulate(context.Background(), "when is the apple event?")
	if plan == nil {
		t.Fatal("nil plan")
	}
	want := []string{"apple launch event date", "apple september hardware event"}
	if !reflect.DeepEqual(plan.KeywordQueries, want) {
		t.Errorf("KeywordQueries = %v, want %v", plan.KeywordQueries, want)
	}
	if plan.SemanticQuery != "When is Apple holding its next hardware launch event?" {
		t.Errorf("SemanticQuery = %q", plan.SemanticQuery)
	}
	if !reflect.DeepEqual(plan.PreferredDomains, []string{"theverge.com", "reuters.com"}) {
		t.Errorf("PreferredDomains = %v", plan.PreferredDomains)
	}
}

func TestReformulateFiltersQueries(t *testing.T) {
	reply := `{
		"keyword_queries": ["too short", "this keyword query has exactly the right length", "one two three four five six seven eight nine ten", "Apple Launch Date", "apple launch date"],
		"semantic_query": "s",
		"preferred_domains": []
	}`
	r := NewReformulator(&fakeGenerator{reply: reply})

	plan := r.Reformulate(context.Background(), "when is the apple event?")
	for _, q := range plan.KeywordQueries {
		n := len(strings.Fields(q))
		if n < minQueryWords || n > maxQueryWords {
			t.Errorf("query %q has %d words", q, n)
		}
	}
	// "Apple Launch Date" and "apple launch date" dedupe case-insensitively.
	count := 0
	for _, q := range plan.KeywordQueries {
		if strings.EqualFold(q, "apple launch date") {
			count++
		}
	}
	if count != 1 {
		t.Errorf("case-insensitive dedupe failed: %v", plan.KeywordQueries)
	}
	// Empty domains list backfills with defaults.
	if len(plan.PreferredDomains) == 0 {
		t.Error("expected default domains")
	}
	if plan.PreferredDomains[0] != "reuters.com" {
		t.Errorf("default domains = %v", plan.PreferredDomains)
	}
}

func TestReformulateCoercesChattyReply(t *testing.T) {
	reply := "Sure! Here is the plan:\n{\"keyword_queries\": [\"apple launch event date\"], \"semantic_query\": \"q\", \"preferred_domains\": [\"bbc.com\"]}"
	r := NewReformulator(&fakeGenerator{reply: reply})

	plan := r.Reformulate(context.Background(), "question?")
	if len(plan.KeywordQueries) != 1 || plan.KeywordQueries[0] != "apple launch event date" {
		t.Errorf("KeywordQueries = %v", plan.KeywordQueries)
	}
}

func TestReformulateFallsBackOnError(t *testing.T) {
	r := NewReformulator(&fakeGenerator{err: errors.New("down")})

	plan := r.Reformulate(context.Background(), "Did the central bank raise interest rates this week?")
	if plan == nil {
		t.Fatal("nil plan on fallback")
	}
	if plan.SemanticQuery != "Did the central bank raise interest rates this week?" {
		t.Errorf("SemanticQuery = %q", plan.SemanticQuery)
	}
	if len(plan.KeywordQueries) != 1 {
		t.Fatalf("KeywordQueries = %v", plan.KeywordQueries)
	}
	if n := len(strings.Fields(plan.KeywordQueries[0])); n > maxQueryWords {
		t.Errorf("fallback query too long: %q", plan.KeywordQueries[0])
	}
	if !reflect.DeepEqual(plan.PreferredDomains, defaultDomains) {
		t.Errorf("PreferredDomains = %v", plan.PreferredDomains)
	}
}

func TestReformulateEmptyQuestion(t *testing.T) {
	r := NewReformulator(&fakeGenerator{reply: "{}"})
	if plan := r.Reformulate(context.Background(), "  "); plan != nil {
		t.Errorf("plan for blank question = %v, want nil", plan)
	}
}

func TestReformulateNilGenerator(t *testing.T) {
	r := NewReformulator(nil)
	plan := r.Reformulate(context.Background(), "what happened today?")
	if plan == nil || plan.SemanticQuery != "what happened today?" {
		t.Errorf("plan = %v", plan)
	}
}

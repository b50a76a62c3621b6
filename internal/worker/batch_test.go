package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ppiankov/claimlens/internal/model"
)

func TestRunnerPreservesOrder(t *testing.T) {
	items := make([]Item, 5)
	for i := range items {
		items[i] = Item{ID: fmt.Sprintf("item-%d", i), Question: "q"}
	}

	r := NewRunner(3)
	outcomes := r.Run(context.Background(), items, func(_ context.Context, item Item) (*model.Report, error) {
		// Later items finish first to exercise the ordering guarantee.
		idx := int(item.ID[len(item.ID)-1] - '0')
		time.Sleep(time.Duration(5-idx) * 2 * time.Millisecond)
		return &model.Report{ID: item.ID}, nil
	})

	if len(outcomes) != len(items) {
		t.Fatalf("got %d outcomes, want %d", len(outcomes), len(items))
	}
	for i, o := range outcomes {
		if o.Item.ID != items[i].ID {
			t.Errorf("outcome %d is for %q, want %q", i, o.Item.ID, items[i].ID)
		}
		if o.Err != nil || o.Report == nil || o.Report.ID != items[i].ID {
			t.Errorf("outcome %d = %+v", i, o)
		}
	}
}

func TestRunnerBoundsConcurrency(t *testing.T) {
	var mu sync.Mutex
	inFlight, peak := 0, 0

	items := make([]Item, 10)
	for i := range items {
		items[i] = Item{Question: "q"}
	}

	r := NewRunner(2)
	r.Run(context.Background(), items, func(_ context.Context, _ Item) (*model.Report, error) {
		mu.Lock()
		inFlight++
		if inFlight > peak {
			peak = inFlight
		}
		mu.Unlock()

		time.Sleep(5 * time.Millisecond)

		mu.Lock()
		inFlight--
		mu.Unlock()
		return &model.Report{}, nil
	})

	if peak > 2 {
		t.Errorf("peak concurrency = %d, want at most 2", peak)
	}
}

func TestRunnerCapturesItemErrors(t *testing.T) {
	items := []Item{{ID: "ok", Question: "q"}, {ID: "bad", Question: "q"}}
	wantErr := errors.New("analysis failed")

	r := NewRunner(2)
	outcomes := r.Run(context.Background(), items, func(_ context.Context, item Item) (*model.Report, error) {
		if item.ID == "bad" {
			return nil, wantErr
		}
		return &model.Report{}, nil
	})

	if outcomes[0].Err != nil {
		t.Errorf("outcome 0 err = %v", outcomes[0].Err)
	}
	if !errors.Is(outcomes[1].Err, wantErr) {
		t.Errorf("outcome 1 err = %v, want %v", outcomes[1].Err, wantErr)
	}
}

func TestReadItems(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.jsonl")
	content := `{"id": "a", "question": "what happened?"}

{"id": "b", "article": "Body text here.", "session": "s1"}
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	items, err := ReadItems(path)
	if err != nil {
		t.Fatalf("ReadItems: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].ID != "a" || items[0].Question != "what happened?" {
		t.Errorf("item 0 = %+v", items[0])
	}
	if items[1].Session != "s1" || items[1].Article != "Body text here." {
		t.Errorf("item 1 = %+v", items[1])
	}
}

func TestReadItemsRejectsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.jsonl")
	if err := os.WriteFile(path, []byte("{not json}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadItems(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestReadItemsRejectsEmptyItem(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.jsonl")
	if err := os.WriteFile(path, []byte(`{"id": "x"}`+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadItems(path); err == nil {
		t.Fatal("expected validation error")
	}
}

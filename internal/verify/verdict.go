package verify

import (
	"strings"

	"github.com/ppiankov/claimlens/internal/model"
)

// NormalizeVerdict collapses free-form model output into one of the three
// canonical verdicts. Matching is case-insensitive substring search with a
// fixed precedence: contradict, then support, then unrelated. The precedence
// matters because chatty outputs like "this contradicts the supported view"
// must land on contradict.
func NormalizeVerdict(raw string) model.Verdict {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.Contains(lowered, "contradict"):
		return model.VerdictContradict
	case strings.Contains(lowered, "support"):
		return model.VerdictSupport
	default:
		return model.VerdictUnrelated
	}
}

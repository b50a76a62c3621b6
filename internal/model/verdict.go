package model

// Verdict labels the relation between a claim and its evidence
type Verdict string

const (
	VerdictSupport    Verdict = "support"    // Evidence agrees with the claim
	VerdictContradict Verdict = "contradict" // Evidence conflicts with the claim
	VerdictUnrelated  Verdict = "unrelated"  // Evidence is off-topic or insufficient
)

// Valid reports whether v is one of the three allowed labels
func (v Verdict) Valid() bool {
	switch v {
	case VerdictSupport, VerdictContradict, VerdictUnrelated:
		return true
	}
	return false
}

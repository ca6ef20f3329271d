package model

import (
	"fmt"
	"math"
	"strings"
)

// Mode selects which analysis is performed and which result shape applies
type Mode string

const (
	ModeFact  Mode = "fact"  // Fact verification of a claim or link
	ModeLegal Mode = "legal" // Legal check of text or an attached document
)

// ParseMode parses a mode name (case-insensitive)
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeFact:
		return ModeFact, nil
	case ModeLegal:
		return ModeLegal, nil
	default:
		return "", fmt.Errorf("unknown mode %q (supported: fact, legal)", s)
	}
}

// Valid reports whether m is a known mode
func (m Mode) Valid() bool {
	return m == ModeFact || m == ModeLegal
}

// FactVerdict is the conclusion of a fact check
type FactVerdict string

const (
	FactTrue         FactVerdict = "True"
	FactFalse        FactVerdict = "False"
	FactInsufficient FactVerdict = "Insufficient data"
)

// Label returns the display label. False claims are shown as "Fake".
func (v FactVerdict) Label() string {
	if v == FactFalse {
		return "Fake"
	}
	return string(v)
}

// ParseFactVerdict maps a provider reply onto the fact vocabulary.
// "Original" and "Fake" are accepted as aliases of True and False.
func ParseFactVerdict(s string) (FactVerdict, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "original":
		return FactTrue, nil
	case "false", "fake":
		return FactFalse, nil
	case "insufficient data", "insufficient":
		return FactInsufficient, nil
	default:
		return "", fmt.Errorf("unknown fact verdict %q", s)
	}
}

// Confidence is the provider's confidence level for a fact check
type Confidence string

const (
	ConfidenceHigh   Confidence = "High"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceLow    Confidence = "Low"
	ConfidenceNA     Confidence = "N/A"
)

// ParseConfidence maps a provider reply onto the confidence vocabulary
func ParseConfidence(s string) (Confidence, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return ConfidenceHigh, nil
	case "medium":
		return ConfidenceMedium, nil
	case "low":
		return ConfidenceLow, nil
	case "n/a", "na", "none":
		return ConfidenceNA, nil
	default:
		return "", fmt.Errorf("unknown confidence %q", s)
	}
}

// LegalVerdict is the conclusion of a legal check
type LegalVerdict string

const (
	LegalOriginal    LegalVerdict = "Original"
	LegalFake        LegalVerdict = "Fake"
	LegalNeedsReview LegalVerdict = "Needs Further Verification"
)

// ParseLegalVerdict maps a provider reply onto the legal vocabulary
func ParseLegalVerdict(s string) (LegalVerdict, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "original":
		return LegalOriginal, nil
	case "fake":
		return LegalFake, nil
	case "needs further verification":
		return LegalNeedsReview, nil
	default:
		return "", fmt.Errorf("unknown legal verdict %q", s)
	}
}

// FactResult is the structured answer of a fact check
type FactResult struct {
	Result              FactVerdict `json:"result"`
	Confidence          Confidence  `json:"confidence"`
	DetailedExplanation string      `json:"detailedExplanation"`
	AccuracyScore       int         `json:"accuracyScore"`
}

// LegalResult is the structured answer of a legal check
type LegalResult struct {
	Verdict       LegalVerdict `json:"verdict"`
	Reason        string       `json:"reason"`
	Summary       string       `json:"summary"`
	AccuracyScore int          `json:"accuracyScore"`
}

// Result is an analysis result tagged with the mode that produced it.
// Exactly one of Fact or Legal is set, matching Mode.
type Result struct {
	Mode  Mode         `json:"mode"`
	Fact  *FactResult  `json:"fact,omitempty"`
	Legal *LegalResult `json:"legal,omitempty"`
}

// NewFactResult wraps a fact result
func NewFactResult(r FactResult) Result {
	return Result{Mode: ModeFact, Fact: &r}
}

// NewLegalResult wraps a legal result
func NewLegalResult(r LegalResult) Result {
	return Result{Mode: ModeLegal, Legal: &r}
}

// Validate checks that the payload matches the tag
func (r Result) Validate() error {
	switch r.Mode {
	case ModeFact:
		if r.Fact == nil || r.Legal != nil {
			return fmt.Errorf("fact result must carry only a fact payload")
		}
	case ModeLegal:
		if r.Legal == nil || r.Fact != nil {
			return fmt.Errorf("legal result must carry only a legal payload")
		}
	default:
		return fmt.Errorf("unknown result mode %q", r.Mode)
	}
	return nil
}

// Verdict returns the display label of the verdict
func (r Result) Verdict() string {
	switch {
	case r.Fact != nil:
		return r.Fact.Result.Label()
	case r.Legal != nil:
		return string(r.Legal.Verdict)
	}
	return ""
}

// Score returns the accuracy score (0-100)
func (r Result) Score() int {
	switch {
	case r.Fact != nil:
		return r.Fact.AccuracyScore
	case r.Legal != nil:
		return r.Legal.AccuracyScore
	}
	return 0
}

// NormalizeScore converts a provider score into the 0-100 integer range.
// Fractions are rounded; values outside the range are rejected.
func NormalizeScore(v float64) (int, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("accuracy score is not a number")
	}
	score := int(math.Round(v))
	if score < 0 || score > 100 {
		return 0, fmt.Errorf("accuracy score %v outside 0-100", v)
	}
	return score, nil
}

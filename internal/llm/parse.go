package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ppiankov/veritas/internal/model"
)

type factReply struct {
	Result              *string  `json:"result"`
	Confidence          *string  `json:"confidence"`
	DetailedExplanation *string  `json:"detailedExplanation"`
	AccuracyScore       *float64 `json:"accuracyScore"`
}

type legalReply struct {
	Verdict       *string  `json:"verdict"`
	Reason        *string  `json:"reason"`
	Summary       *string  `json:"summary"`
	AccuracyScore *float64 `json:"accuracyScore"`
}

// ParseResult decodes a provider reply into the result shape of mode.
// Missing fields, unknown verdicts and out-of-range scores are errors.
func ParseResult(mode model.Mode, text string) (model.Result, error) {
	body := stripFences(text)
	if body == "" {
		return model.Result{}, fmt.Errorf("empty reply")
	}

	switch mode {
	case model.ModeFact:
		r, err := parseFact(body)
		if err != nil {
			return model.Result{}, err
		}
		return model.NewFactResult(r), nil
	case model.ModeLegal:
		r, err := parseLegal(body)
		if err != nil {
			return model.Result{}, err
		}
		return model.NewLegalResult(r), nil
	default:
		return model.Result{}, fmt.Errorf("unknown mode %q", mode)
	}
}

func parseFact(body string) (model.FactResult, error) {
	var reply factReply
	if err := json.Unmarshal([]byte(body), &reply); err != nil {
		return model.FactResult{}, fmt.Errorf("invalid JSON: %w", err)
	}
	if err := requireFields(map[string]bool{
		"result":              reply.Result != nil,
		"confidence":          reply.Confidence != nil,
		"detailedExplanation": reply.DetailedExplanation != nil,
		"accuracyScore":       reply.AccuracyScore != nil,
	}, FactSchema); err != nil {
		return model.FactResult{}, err
	}

	verdict, err := model.ParseFactVerdict(*reply.Result)
	if err != nil {
		return model.FactResult{}, err
	}
	confidence, err := model.ParseConfidence(*reply.Confidence)
	if err != nil {
		return model.FactResult{}, err
	}
	score, err := model.NormalizeScore(*reply.AccuracyScore)
	if err != nil {
		return model.FactResult{}, err
	}

	return model.FactResult{
		Result:              verdict,
		Confidence:          confidence,
		DetailedExplanation: strings.TrimSpace(*reply.DetailedExplanation),
		AccuracyScore:       score,
	}, nil
}

func parseLegal(body string) (model.LegalResult, error) {
	var reply legalReply
	if err := json.Unmarshal([]byte(body), &reply); err != nil {
		return model.LegalResult{}, fmt.Errorf("invalid JSON: %w", err)
	}
	if err := requireFields(map[string]bool{
		"verdict":       reply.Verdict != nil,
		"reason":        reply.Reason != nil,
		"summary":       reply.Summary != nil,
		"accuracyScore": reply.AccuracyScore != nil,
	}, LegalSchema); err != nil {
		return model.LegalResult{}, err
	}

	verdict, err := model.ParseLegalVerdict(*reply.Verdict)
	if err != nil {
		return model.LegalResult{}, err
	}
	score, err := model.NormalizeScore(*reply.AccuracyScore)
	if err != nil {
		return model.LegalResult{}, err
	}

	return model.LegalResult{
		Verdict:       verdict,
		Reason:        strings.TrimSpace(*reply.Reason),
		Summary:       strings.TrimSpace(*reply.Summary),
		AccuracyScore: score,
	}, nil
}

// requireFields reports the first missing field in schema order
func requireFields(present map[string]bool, schema Schema) error {
	for _, name := range schema.Required() {
		if !present[name] {
			return fmt.Errorf("missing required field %q", name)
		}
	}
	return nil
}

// stripFences removes a markdown code fence some local models wrap around JSON
func stripFences(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

package analytics

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/JonnyWalker81/stride/backend/internal/models"
)

//go:generate mockgen -source=narrative.go -destination=mocks/narrative_mock.go -package=mocks

// NarrativeGenerator turns a statistical summary into free text that should
// contain a JSON object with confidence, factors/risks and recommendations.
// Implementations may fail or return anything; ParseAnalysis validates the output.
type NarrativeGenerator interface {
	Analyze(ctx context.Context, prompt PromptContext) (string, error)
}

// PromptContext is the input handed to a NarrativeGenerator
type PromptContext struct {
	Kind    models.InsightType `json:"kind"`
	Summary Payload            `json:"summary"`
}

// Analysis is validated narrative output
type Analysis struct {
	Confidence      int      `json:"confidence"`
	Factors         []string `json:"factors"`
	Risks           []string `json:"risks"`
	Recommendations []string `json:"recommendations"`
}

// ParseAnalysis extracts an Analysis from raw generator output. Code fences and
// surrounding prose are tolerated. Missing arrays become empty and a missing,
// unreadable or out-of-range confidence falls back to defaultConfidence. malformed reports that
// no JSON object could be read at all.
func ParseAnalysis(raw string, defaultConfidence int) (analysis Analysis, malformed bool) {
	analysis = Analysis{
		Confidence:      ClampConfidence(defaultConfidence),
		Factors:         []string{},
		Risks:           []string{},
		Recommendations: []string{},
	}

	content := strings.TrimSpace(raw)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return analysis, true
	}

	var fields map[string]interface{}
	if err := json.Unmarshal([]byte(content[start:end+1]), &fields); err != nil {
		return analysis, true
	}

	if c, ok := readConfidence(fields["confidence"]); ok {
		analysis.Confidence = c
	}
	analysis.Factors = stringItems(fields["factors"])
	analysis.Risks = stringItems(fields["risks"])
	analysis.Recommendations = stringItems(fields["recommendations"])

	return analysis, false
}

func readConfidence(v interface{}) (int, bool) {
	var f float64
	switch c := v.(type) {
	case float64:
		f = c
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(c), "%"), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if f < 0 || f > 100 {
		return 0, false
	}
	return int(math.Round(f)), true
}

func stringItems(v interface{}) []string {
	items := []string{}
	list, ok := v.([]interface{})
	if !ok {
		return items
	}
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if s != "" {
			items = append(items, s)
		}
	}
	return items
}

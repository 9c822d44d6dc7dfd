package narrative

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/JonnyWalker81/stride/backend/internal/analytics"
)

// Offline answers from the statistics alone. It is used when no model is
// configured so that narrative-backed insights are still produced.
type Offline struct{}

// Analyze implements analytics.NarrativeGenerator
func (Offline) Analyze(_ context.Context, prompt analytics.PromptContext) (string, error) {
	out := analytics.Analysis{
		Confidence:      analytics.DefaultConfidence(prompt.Kind),
		Factors:         []string{},
		Risks:           []string{},
		Recommendations: []string{},
	}

	switch s := prompt.Summary.(type) {
	case *analytics.CompletionPrediction:
		out.Confidence = s.BaselineLikelihood
		for _, g := range s.Goals {
			switch {
			case g.OnTrack != nil && !*g.OnTrack:
				out.Risks = append(out.Risks, fmt.Sprintf("%s is projected to miss its target date", g.Title))
			case g.DailyRate <= 0:
				out.Risks = append(out.Risks, fmt.Sprintf("%s has not progressed recently", g.Title))
			default:
				out.Factors = append(out.Factors, fmt.Sprintf("%s is moving %.1f%% per day", g.Title, g.DailyRate))
			}
		}
	case *analytics.SuccessFactorsPattern:
		if len(s.TopCategories) > 0 {
			out.Factors = append(out.Factors, fmt.Sprintf("Most completed goals are in %s", s.TopCategories[0].Category))
		}
		if s.BestStreak > 0 {
			out.Factors = append(out.Factors, fmt.Sprintf("Best habit streak of %d days", s.BestStreak))
		}
		if s.TaskCompletionRate < 50 {
			out.Risks = append(out.Risks, "Less than half of tasks get completed")
		}
	}

	data, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("failed to encode offline analysis: %w", err)
	}
	return string(data), nil
}

package narrative

import (
	"fmt"

	"github.com/JonnyWalker81/stride/backend/internal/models"
)

const systemPrompt = `You are a productivity coach analyzing a user's goal tracking statistics.
Respond with a single JSON object and nothing else, using exactly these keys:
  "confidence": integer from 0 to 100
  "factors": array of short strings
  "risks": array of short strings
  "recommendations": array of short, actionable strings (at most 4)
Base every statement on the numbers provided. Do not invent data.`

func userPrompt(kind models.InsightType, summary string) string {
	var question string
	switch kind {
	case models.InsightTypeCompletionPrediction:
		question = "Estimate how likely the user is to complete their active goals on time. " +
			"Use confidence for that likelihood. baseline_likelihood is a linear projection you may adjust."
	case models.InsightTypeSuccessFactors:
		question = "Identify what has helped the user complete goals and what puts future goals at risk. " +
			"Use confidence for how well the data supports your factors."
	default:
		question = "Explain what these statistics say about the user's productivity."
	}
	return fmt.Sprintf("%s\n\nStatistics (%s):\n%s", question, kind, summary)
}

package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAnalysis(t *testing.T) {
	tests := []struct {
		name          string
		raw           string
		want          Analysis
		wantMalformed bool
	}{
		{
			name: "plain json",
			raw:  `{"confidence": 64, "factors": ["steady check-ins"], "risks": ["late starts"], "recommendations": ["start earlier"]}`,
			want: Analysis{
				Confidence:      64,
				Factors:         []string{"steady check-ins"},
				Risks:           []string{"late starts"},
				Recommendations: []string{"start earlier"},
			},
		},
		{
			name: "fenced json",
			raw:  "```json\n{\"confidence\": 91, \"factors\": [\"focus\"]}\n```",
			want: Analysis{Confidence: 91, Factors: []string{"focus"}, Risks: []string{}, Recommendations: []string{}},
		},
		{
			name: "prose around the object",
			raw:  "Here is my analysis:\n{\"confidence\": \"70%\", \"risks\": [\"too many goals\"]}\nGood luck!",
			want: Analysis{Confidence: 70, Factors: []string{}, Risks: []string{"too many goals"}, Recommendations: []string{}},
		},
		{
			name: "missing confidence uses default",
			raw:  `{"recommendations": ["plan weekly", 3, "", null, "review goals"]}`,
			want: Analysis{Confidence: 75, Factors: []string{}, Risks: []string{}, Recommendations: []string{"plan weekly", "review goals"}},
		},
		{
			name: "out of range confidence uses default",
			raw:  `{"confidence": 140}`,
			want: Analysis{Confidence: 75, Factors: []string{}, Risks: []string{}, Recommendations: []string{}},
		},
		{
			name: "wrong shapes are ignored",
			raw:  `{"confidence": true, "factors": "not a list"}`,
			want: Analysis{Confidence: 75, Factors: []string{}, Risks: []string{}, Recommendations: []string{}},
		},
		{
			name:          "no object",
			raw:           "I could not analyze this data.",
			want:          Analysis{Confidence: 75, Factors: []string{}, Risks: []string{}, Recommendations: []string{}},
			wantMalformed: true,
		},
		{
			name:          "broken json",
			raw:           `{"confidence": 80, "factors": [}`,
			want:          Analysis{Confidence: 75, Factors: []string{}, Risks: []string{}, Recommendations: []string{}},
			wantMalformed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, malformed := ParseAnalysis(tt.raw, DefaultPredictionConfidence)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantMalformed, malformed)
		})
	}
}

func TestPredictionInsight_UsesNarrativeConfidence(t *testing.T) {
	p := &CompletionPrediction{BaselineLikelihood: 90, Likelihood: 90}
	analysis, _ := ParseAnalysis(`{"confidence": 55, "risks": ["missed deadlines"]}`, DefaultPredictionConfidence)

	d := PredictionInsight(p, analysis)

	assert.Equal(t, 55, d.Confidence)
	assert.Equal(t, 55, p.Likelihood)
	assert.Equal(t, 90, p.BaselineLikelihood)
	assert.Equal(t, []string{"missed deadlines"}, p.Risks)
	assert.Equal(t, "high", string(d.Priority))
	assert.NotEmpty(t, d.ActionItems)
}

func TestSuccessFactorsInsight_MalformedOutputDefaults(t *testing.T) {
	p := &SuccessFactorsPattern{TotalGoals: 4, CompletedGoals: 2, GoalCompletionRate: 50}
	analysis, malformed := ParseAnalysis("<html>502</html>", DefaultSuccessFactorsConfidence)
	assert.True(t, malformed)

	d := SuccessFactorsInsight(p, analysis)

	assert.Equal(t, 85, d.Confidence)
	assert.Equal(t, []string{}, p.Factors)
	assert.Equal(t, []string{}, p.Risks)
	assert.Equal(t, "medium", string(d.Priority))
	assert.NotEmpty(t, d.ActionItems)
}

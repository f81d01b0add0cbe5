// Package narrative talks to the AI narration collaborator that turns
// scores and alerts into human-readable text. Every caller must treat the
// collaborator as best-effort: the numeric scoring path never waits on it
// beyond its timeout and never fails with it.
package narrative

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sri5hat/aptdetection/internal/scoring"
)

// ErrUnavailable is returned when no narration backend is configured.
var ErrUnavailable = errors.New("narrative service unavailable")

// Narrator produces free-form text for a given task and prompt.
type Narrator interface {
	Generate(ctx context.Context, task, prompt string) (string, error)
}

// Disabled is the Narrator used when no service URL is configured.
type Disabled struct{}

// Generate always reports the service as unavailable.
func (Disabled) Generate(ctx context.Context, task, prompt string) (string, error) {
	return "", ErrUnavailable
}

// ExplainInput carries everything the explanation path consumes.
type ExplainInput struct {
	Scores      scoring.Scores
	Weights     scoring.Weights
	TopRuleHits []string
	TopFeatures []string
}

// ExplainPrompt renders the explanation request for the narrator.
func ExplainPrompt(in ExplainInput, composite float64) string {
	var b strings.Builder
	b.WriteString("You are an expert security analyst explaining alert scores. ")
	b.WriteString("Produce one concise sentence explaining how the composite score was derived, highlighting the dominant factors.\n")
	fmt.Fprintf(&b, "Scores: rule-based=%.2f anomaly=%.2f classifier=%.2f\n",
		in.Scores.RuleBased, in.Scores.AnomalyDetection, in.Scores.SupervisedClassifier)
	fmt.Fprintf(&b, "Weights: rule-based=%.2f anomaly=%.2f classifier=%.2f\n",
		in.Weights.RuleBased, in.Weights.AnomalyDetection, in.Weights.SupervisedClassifier)
	fmt.Fprintf(&b, "Composite score: %.4f\n", composite)
	if len(in.TopRuleHits) > 0 {
		fmt.Fprintf(&b, "Top rule hits: %s\n", strings.Join(in.TopRuleHits, ", "))
	}
	if len(in.TopFeatures) > 0 {
		fmt.Fprintf(&b, "Top features: %s\n", strings.Join(in.TopFeatures, ", "))
	}
	return b.String()
}

// FallbackExplanation is used whenever the narrator errors or times out.
// The composite number shown next to it is always the locally computed one.
func FallbackExplanation(composite float64) string {
	return fmt.Sprintf(
		"Automated explanation is unavailable. Composite score %.2f was computed locally as the clamped weighted sum of the rule-based, anomaly detection and supervised classifier scores.",
		composite)
}

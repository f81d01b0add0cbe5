// Package scoring fuses the three independent detector outputs into one
// bounded composite risk score.
package scoring

// Scores holds the raw detector outputs, each in [0,1].
type Scores struct {
	RuleBased            float64 `json:"ruleBasedScore"`
	AnomalyDetection     float64 `json:"anomalyDetectionScore"`
	SupervisedClassifier float64 `json:"supervisedClassifierScore"`
}

// Weights holds the analyst-adjustable weight vector. Weights are not
// required to sum to 1: out-of-range weighted sums are clamped, never
// renormalized.
type Weights struct {
	RuleBased            float64 `json:"ruleBasedWeight"`
	AnomalyDetection     float64 `json:"anomalyDetectionWeight"`
	SupervisedClassifier float64 `json:"supervisedClassifierWeight"`
}

// DefaultWeights is the weight vector the dashboard starts from.
func DefaultWeights() Weights {
	return Weights{
		RuleBased:            0.4,
		AnomalyDetection:     0.3,
		SupervisedClassifier: 0.3,
	}
}

// Composite returns clamp(w·s, 0, 1). Pure and deterministic; this number
// always overrides anything a narrative collaborator reports.
func Composite(s Scores, w Weights) float64 {
	sum := w.RuleBased*s.RuleBased +
		w.AnomalyDetection*s.AnomalyDetection +
		w.SupervisedClassifier*s.SupervisedClassifier
	return Clamp(sum, 0, 1)
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

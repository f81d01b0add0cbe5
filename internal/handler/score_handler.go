package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sri5hat/aptdetection/internal/middleware"
	"github.com/sri5hat/aptdetection/internal/narrative"
	"github.com/sri5hat/aptdetection/internal/scoring"
)

// ScoreHandler serves on-demand composite scoring with an optional
// AI-narrated explanation. The number returned is always the local
// weighted sum; the narrator only ever contributes prose.
type ScoreHandler struct {
	narrator narrative.Narrator
	defaults scoring.Weights
	log      *zap.Logger
}

// NewScoreHandler creates the scoring handler.
func NewScoreHandler(narrator narrative.Narrator, defaults scoring.Weights, log *zap.Logger) *ScoreHandler {
	if narrator == nil {
		narrator = narrative.Disabled{}
	}
	return &ScoreHandler{narrator: narrator, defaults: defaults, log: log}
}

type scoreRequest struct {
	RuleBasedScore            *float64 `json:"ruleBasedScore" binding:"required,gte=0,lte=1"`
	AnomalyDetectionScore     *float64 `json:"anomalyDetectionScore" binding:"required,gte=0,lte=1"`
	SupervisedClassifierScore *float64 `json:"supervisedClassifierScore" binding:"required,gte=0,lte=1"`

	// Weights fall back to the configured defaults when omitted. They are
	// not required to sum to 1; the composite is clamped, not renormalized.
	RuleBasedWeight            *float64 `json:"ruleBasedWeight" binding:"omitempty,gte=0"`
	AnomalyDetectionWeight     *float64 `json:"anomalyDetectionWeight" binding:"omitempty,gte=0"`
	SupervisedClassifierWeight *float64 `json:"supervisedClassifierWeight" binding:"omitempty,gte=0"`

	TopRuleHits []string `json:"topRuleHits"`
	TopFeatures []string `json:"topFeatures"`
}

// Handle implements POST /api/score.
func (h *ScoreHandler) Handle(c *gin.Context) {
	var req scoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid scoring payload."})
		return
	}

	scores := scoring.Scores{
		RuleBased:            *req.RuleBasedScore,
		AnomalyDetection:     *req.AnomalyDetectionScore,
		SupervisedClassifier: *req.SupervisedClassifierScore,
	}
	weights := h.defaults
	if req.RuleBasedWeight != nil {
		weights.RuleBased = *req.RuleBasedWeight
	}
	if req.AnomalyDetectionWeight != nil {
		weights.AnomalyDetection = *req.AnomalyDetectionWeight
	}
	if req.SupervisedClassifierWeight != nil {
		weights.SupervisedClassifier = *req.SupervisedClassifierWeight
	}

	composite := scoring.Composite(scores, weights)

	in := narrative.ExplainInput{
		Scores:      scores,
		Weights:     weights,
		TopRuleHits: req.TopRuleHits,
		TopFeatures: req.TopFeatures,
	}
	explanation, err := h.narrator.Generate(c.Request.Context(), "explain-score", narrative.ExplainPrompt(in, composite))
	if err != nil {
		h.log.Warn("narrator unavailable for score explanation",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.Error(err),
		)
		explanation = narrative.FallbackExplanation(composite)
	}

	c.JSON(http.StatusOK, gin.H{
		"compositeScore": composite,
		"explanation":    explanation,
	})
}

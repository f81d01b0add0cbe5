package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sri5hat/aptdetection/internal/domain"
	"github.com/sri5hat/aptdetection/internal/hub"
	"github.com/sri5hat/aptdetection/internal/middleware"
)

// IngestHandler accepts externally submitted alerts, validates them and
// publishes them onto the hub. Delivery is fire-and-forget: a 202 means
// the alert was published, not that any subscriber saw it.
type IngestHandler struct {
	hub *hub.Hub
	log *zap.Logger
}

// NewIngestHandler creates the ingestion handler.
func NewIngestHandler(h *hub.Hub, log *zap.Logger) *IngestHandler {
	return &IngestHandler{hub: h, log: log}
}

// ingestAlertRequest is the external alert schema. Score fields are
// pointers so a legitimate 0 still satisfies required; the ranked lists
// must be present but may be empty.
type ingestAlertRequest struct {
	Host        string   `json:"host" binding:"required"`
	AlertType   string   `json:"alertType" binding:"required,oneof=DataExfiltration DNSExfiltration FileStaging NetworkAnomaly ProcessAnomaly LateralMovement Beaconing FileAccess"`
	Score       *float64 `json:"score" binding:"required,gte=0,lte=1"`
	MitreTactic string   `json:"mitreTactic" binding:"required,mitretactic"`
	SrcIP       *string  `json:"srcIp" binding:"required"`
	DstIP       *string  `json:"dstIp" binding:"required"`
	Evidence    *string  `json:"evidence" binding:"required"`

	RuleBasedScore            *float64 `json:"ruleBasedScore" binding:"required,gte=0,lte=1"`
	AnomalyDetectionScore     *float64 `json:"anomalyDetectionScore" binding:"required,gte=0,lte=1"`
	SupervisedClassifierScore *float64 `json:"supervisedClassifierScore" binding:"required,gte=0,lte=1"`

	TopRuleHits *[]string `json:"topRuleHits" binding:"required"`
	TopFeatures *[]string `json:"topFeatures" binding:"required"`
}

// RegisterValidators installs the custom binding rules. Idempotent; must
// run before the first ingest request is bound.
func RegisterValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterValidation("mitretactic", func(fl validator.FieldLevel) bool {
		return domain.MitreTacticPattern.MatchString(fl.Field().String())
	})
	// Report validation errors under the JSON field name, not the Go one.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Handle implements POST /api/alerts/ingest.
func (h *IngestHandler) Handle(c *gin.Context) {
	var req ingestAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, gin.H{
				"message": "Invalid alert payload.",
				"errors":  fieldErrors(verrs),
			})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid JSON body."})
		return
	}

	alert := &domain.Alert{
		ID:                        domain.NewAlertID(),
		Time:                      domain.Timestamp(time.Now()),
		Host:                      req.Host,
		AlertType:                 domain.AlertType(req.AlertType),
		Score:                     *req.Score,
		MitreTactic:               req.MitreTactic,
		SrcIP:                     *req.SrcIP,
		DstIP:                     *req.DstIP,
		Evidence:                  *req.Evidence,
		Status:                    domain.StatusNew,
		RuleBasedScore:            *req.RuleBasedScore,
		AnomalyDetectionScore:     *req.AnomalyDetectionScore,
		SupervisedClassifierScore: *req.SupervisedClassifierScore,
		TopRuleHits:               *req.TopRuleHits,
		TopFeatures:               *req.TopFeatures,
	}

	h.hub.PublishAlert(alert)
	h.log.Info("alert ingested",
		zap.String("request_id", middleware.GetRequestID(c)),
		zap.String("alert_id", alert.ID),
		zap.String("alert_type", string(alert.AlertType)),
		zap.Float64("score", alert.Score),
	)

	c.JSON(http.StatusAccepted, gin.H{
		"message": "Alert ingested successfully.",
		"alertId": alert.ID,
	})
}

func fieldErrors(verrs validator.ValidationErrors) map[string][]string {
	out := make(map[string][]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = append(out[fe.Field()], validationMessage(fe))
	}
	return out
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of the supported alert types"
	case "gte", "lte":
		return "must be between 0 and 1"
	case "mitretactic":
		return "must be a MITRE tactic id matching TA0000"
	default:
		return "is invalid"
	}
}

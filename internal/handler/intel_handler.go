package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sri5hat/aptdetection/internal/intel"
)

// IntelHandler serves the stand-in threat-intelligence lookup.
type IntelHandler struct{}

// NewIntelHandler creates the intel handler.
func NewIntelHandler() *IntelHandler {
	return &IntelHandler{}
}

// Handle implements GET /api/intel?indicator=<ip|domain|hash>.
func (h *IntelHandler) Handle(c *gin.Context) {
	indicator := strings.TrimSpace(c.Query("indicator"))
	if indicator == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Query parameter 'indicator' is required."})
		return
	}
	c.JSON(http.StatusOK, intel.Lookup(indicator))
}

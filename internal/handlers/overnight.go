package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/attunelabs/attune-backend/internal/services"
)

type OvernightHandler struct {
	overnight services.OvernightService
}

func NewOvernightHandler(overnight services.OvernightService) *OvernightHandler {
	return &OvernightHandler{overnight: overnight}
}

type triggerRunRequest struct {
	Timezone string `json:"timezone"`
	DryRun   bool   `json:"dry_run"`
}

// POST /api/overnight/run
func (h *OvernightHandler) TriggerRun(c *gin.Context) {
	var req triggerRunRequest
	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_body", err)
			return
		}
	}
	summary, err := h.overnight.TriggerRun(c.Request.Context(), req.Timezone, req.DryRun)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"summary": summary})
}

// GET /api/overnight/latest?timezone=
func (h *OvernightHandler) GetLatestRun(c *gin.Context) {
	run, err := h.overnight.GetLatestRun(c.Request.Context(), c.Query("timezone"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"run": run})
}

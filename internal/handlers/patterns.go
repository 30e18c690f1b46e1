package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/attunelabs/attune-backend/internal/services"
)

type PatternsHandler struct {
	patterns services.PatternService
}

func NewPatternsHandler(patterns services.PatternService) *PatternsHandler {
	return &PatternsHandler{patterns: patterns}
}

// GET /api/patterns/latest
func (h *PatternsHandler) GetLatestSnapshot(c *gin.Context) {
	view, err := h.patterns.GetLatestSnapshot(c.Request.Context())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"snapshot": view})
}

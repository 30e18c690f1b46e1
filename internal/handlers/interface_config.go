package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/attunelabs/attune-backend/internal/services"
)

type InterfaceHandler struct {
	interfaces services.InterfaceService
}

func NewInterfaceHandler(interfaces services.InterfaceService) *InterfaceHandler {
	return &InterfaceHandler{interfaces: interfaces}
}

// GET /api/interface/config
func (h *InterfaceHandler) GetConfig(c *gin.Context) {
	view, err := h.interfaces.GetLatestConfig(c.Request.Context())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"config": view})
}

// GET /api/interface/changes?limit=
func (h *InterfaceHandler) ListChanges(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			RespondError(c, http.StatusBadRequest, "invalid_limit", fmt.Errorf("limit must be a non-negative integer, got %q", raw))
			return
		}
		limit = n
	}
	changes, err := h.interfaces.ListChanges(c.Request.Context(), limit)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"changes": changes})
}

package handlers

import (
	"net/http"

	"ptocal/models"
	"ptocal/services/pto"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PTOHandler exposes the booking policy engine over HTTP. It only binds JSON
// and maps errors; all business rules live in the service.
type PTOHandler struct {
	Service pto.PTOService
	Logger  *zap.Logger
}

func NewPTOHandler(service pto.PTOService, logger *zap.Logger) *PTOHandler {
	return &PTOHandler{Service: service, Logger: logger}
}

// RequestPTOHandler books PTO for an employee.
func (h *PTOHandler) RequestPTOHandler(c *gin.Context) {
	var req models.PTORequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	events, err := h.Service.RequestPTO(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

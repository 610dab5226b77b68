package handlers

import (
	"net/http"

	"github.com/andresuchdata/scm-dashboard/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

type ProcurementHandler struct {
	service *service.ProcurementService
}

func NewProcurementHandler(service *service.ProcurementService) *ProcurementHandler {
	return &ProcurementHandler{service: service}
}

func (h *ProcurementHandler) List(c *gin.Context) {
	suggestions, err := h.service.List(c.Request.Context())
	if err != nil {
		respondError(c, "failed to fetch procurement suggestions", err)
		return
	}
	c.JSON(http.StatusOK, suggestions)
}

func (h *ProcurementHandler) Generate(c *gin.Context) {
	result, err := h.service.Generate(c.Request.Context())
	if err != nil {
		respondError(c, "failed to generate procurement suggestions", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type recommendRequest struct {
	ProductID string `json:"product_id" binding:"required"`
}

func (h *ProcurementHandler) Recommend(c *gin.Context) {
	var req recommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.service.Recommend(c.Request.Context(), req.ProductID)
	if err != nil {
		respondError(c, "failed to recommend supplier", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProcurementHandler) RemoteSuggestions(c *gin.Context) {
	resp, err := h.service.RemoteSuggestions(c.Request.Context())
	if err != nil {
		respondError(c, "failed to fetch procurement suggestions", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

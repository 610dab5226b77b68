package handlers

import (
	"net/http"

	"github.com/andresuchdata/scm-dashboard/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

type AnomalyHandler struct {
	service *service.AnomalyService
}

func NewAnomalyHandler(service *service.AnomalyService) *AnomalyHandler {
	return &AnomalyHandler{service: service}
}

func (h *AnomalyHandler) List(c *gin.Context) {
	anomalies, err := h.service.List(c.Request.Context())
	if err != nil {
		respondError(c, "failed to fetch anomalies", err)
		return
	}
	c.JSON(http.StatusOK, anomalies)
}

func (h *AnomalyHandler) Status(c *gin.Context) {
	status, err := h.service.Status(c.Request.Context())
	if err != nil {
		respondError(c, "failed to fetch anomaly status", err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *AnomalyHandler) Detect(c *gin.Context) {
	result, err := h.service.Detect(c.Request.Context())
	if err != nil {
		respondError(c, "failed to detect anomalies", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *AnomalyHandler) DetectWithModel(c *gin.Context) {
	result, err := h.service.DetectWithModel(c.Request.Context())
	if err != nil {
		respondError(c, "failed to detect anomalies with model", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *AnomalyHandler) RawRows(c *gin.Context) {
	rows, err := h.service.RawRows(c.Request.Context())
	if err != nil {
		respondError(c, "failed to fetch anomaly dataset", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": rows})
}

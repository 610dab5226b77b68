package handlers

import (
	"net/http"

	"github.com/andresuchdata/scm-dashboard/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	service *service.DashboardService
}

func NewDashboardHandler(service *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

func (h *DashboardHandler) Summary(c *gin.Context) {
	summary, err := h.service.Summary(c.Request.Context())
	if err != nil {
		respondError(c, "failed to fetch dashboard summary", err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *DashboardHandler) Refresh(c *gin.Context) {
	if err := h.service.Refresh(c.Request.Context()); err != nil {
		respondError(c, "failed to refresh dashboard summary", err)
		return
	}
	c.Status(http.StatusNoContent)
}

type askRequest struct {
	Question      string `json:"question" binding:"required"`
	ScreenContent string `json:"screen_content"`
}

func (h *DashboardHandler) Ask(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.service.Ask(c.Request.Context(), req.Question, req.ScreenContent)
	if err != nil {
		respondError(c, "failed to get chatbot answer", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
